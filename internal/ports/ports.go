package ports

import (
	"context"
	"time"

	"PopulationSnapshot/internal/domain"
)

// CountrySource lists every entity the statistics provider knows, aggregates included.
type CountrySource interface {
	FetchCountries(ctx context.Context) ([]domain.RawCountry, error)
}

// PopulationSource returns the most recent population observation per entity.
type PopulationSource interface {
	FetchPopulation(ctx context.Context) ([]domain.RawPopulation, error)
}

// CrosswalkSource returns the country-codes table as CSV text.
type CrosswalkSource interface {
	FetchCrosswalk(ctx context.Context) (string, error)
}

// FlagSource maps alpha-2 codes to flag emoji.
type FlagSource interface {
	FetchFlags(ctx context.Context) (domain.FlagEmojis, error)
}

// CapitalSource lists capitals and their coordinates.
type CapitalSource interface {
	FetchCapitals(ctx context.Context) ([]domain.RawCapital, error)
}

// LeadershipSource runs the knowledge-base queries for government forms and office holders.
type LeadershipSource interface {
	FetchGovernmentForms(ctx context.Context) ([]domain.Binding, error)
	FetchLeaders(ctx context.Context) ([]domain.Binding, error)
}

// SnapshotSink publishes a finished snapshot (file, database, object storage).
type SnapshotSink interface {
	Name() string
	Write(ctx context.Context, snapshot domain.Snapshot) error
}

// SkipObserver is told about every source row that is dropped as unusable.
type SkipObserver interface {
	RowSkipped(component, reason string)
}

// BuildRecorder collects statistics about a build run.
type BuildRecorder interface {
	SkipObserver
	ObserveFetch(source string, elapsed time.Duration)
	ObserveSnapshot(countries int)
	ObserveResult(success bool, finishedAt time.Time)
}
