package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"PopulationSnapshot/internal/domain"
	"PopulationSnapshot/internal/ports"
	"PopulationSnapshot/internal/reconcile"
)

// PipelineDeps wires all driven adapters into the snapshot pipeline.
type PipelineDeps struct {
	Countries  ports.CountrySource
	Population ports.PopulationSource
	Crosswalk  ports.CrosswalkSource
	Flags      ports.FlagSource
	Capitals   ports.CapitalSource
	Leadership ports.LeadershipSource
	Engine     *reconcile.Engine
	Sinks      []ports.SnapshotSink
	Recorder   ports.BuildRecorder
	Logger     *slog.Logger
	Now        func() time.Time
}

// Pipeline implements the snapshot build: fetch every source, reconcile, publish.
type Pipeline struct {
	countries  ports.CountrySource
	population ports.PopulationSource
	crosswalk  ports.CrosswalkSource
	flags      ports.FlagSource
	capitals   ports.CapitalSource
	leadership ports.LeadershipSource
	engine     *reconcile.Engine
	sinks      []ports.SnapshotSink
	recorder   ports.BuildRecorder
	logger     *slog.Logger
	now        func() time.Time
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	engine := deps.Engine
	if engine == nil {
		engine = reconcile.New(reconcile.Options{Logger: deps.Logger})
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Pipeline{
		countries:  deps.Countries,
		population: deps.Population,
		crosswalk:  deps.Crosswalk,
		flags:      deps.Flags,
		capitals:   deps.Capitals,
		leadership: deps.Leadership,
		engine:     engine,
		sinks:      deps.Sinks,
		recorder:   deps.Recorder,
		logger:     deps.Logger,
		now:        now,
	}
}

// sourcePayloads holds everything fetched before reconciliation starts.
type sourcePayloads struct {
	countries  []domain.RawCountry
	population []domain.RawPopulation
	flags      domain.FlagEmojis
	capitals   []domain.RawCapital
	crosswalk  string
	govForms   []domain.Binding
	leaders    []domain.Binding
}

// Build fetches every source in turn and reconciles them into a snapshot.
// The first fetch failure aborts the build.
func (p *Pipeline) Build(ctx context.Context) (domain.Snapshot, error) {
	if err := p.validate(); err != nil {
		return domain.Snapshot{}, err
	}

	payloads, err := p.fetchAll(ctx)
	if err != nil {
		return domain.Snapshot{}, err
	}

	crosswalk, err := p.engine.ParseCrosswalk(payloads.crosswalk)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("parse crosswalk: %w", err)
	}
	registry := p.engine.BuildRegistry(payloads.countries)
	p.info("sources reconciled",
		"countries", registry.Len(),
		"crosswalk_codes", crosswalk.Len(),
	)

	snapshot := p.engine.Assemble(reconcile.Inputs{
		Population: p.engine.SelectPopulation(payloads.population, registry),
		Crosswalk:  crosswalk,
		Flags:      payloads.flags,
		Capitals:   p.engine.ResolveCapitals(payloads.capitals),
		Leaders:    p.engine.ResolveLeaders(payloads.govForms, payloads.leaders),
	})

	if p.recorder != nil {
		p.recorder.ObserveSnapshot(snapshot.Len())
	}
	return snapshot, nil
}

// Run builds the snapshot and hands it to every sink in order. No sink is invoked unless the
// build succeeded, and the first sink failure stops the run.
func (p *Pipeline) Run(ctx context.Context) (domain.Snapshot, error) {
	snapshot, err := p.Build(ctx)
	if err == nil {
		err = p.publish(ctx, snapshot)
	}

	if p.recorder != nil {
		p.recorder.ObserveResult(err == nil, p.now())
	}
	if err != nil {
		return domain.Snapshot{}, err
	}
	return snapshot, nil
}

func (p *Pipeline) publish(ctx context.Context, snapshot domain.Snapshot) error {
	for _, s := range p.sinks {
		if err := s.Write(ctx, snapshot); err != nil {
			return fmt.Errorf("write %s sink: %w", s.Name(), err)
		}
		p.info("wrote snapshot", "sink", s.Name(), "entries", snapshot.Len())
	}
	return nil
}

func (p *Pipeline) fetchAll(ctx context.Context) (sourcePayloads, error) {
	var (
		out sourcePayloads
		err error
	)

	if out.countries, err = p.countries.FetchCountries(ctx); err != nil {
		return out, fmt.Errorf("fetch countries: %w", err)
	}
	if out.population, err = p.population.FetchPopulation(ctx); err != nil {
		return out, fmt.Errorf("fetch population: %w", err)
	}
	if out.flags, err = p.flags.FetchFlags(ctx); err != nil {
		return out, fmt.Errorf("fetch flags: %w", err)
	}
	if out.capitals, err = p.capitals.FetchCapitals(ctx); err != nil {
		return out, fmt.Errorf("fetch capitals: %w", err)
	}
	if out.crosswalk, err = p.crosswalk.FetchCrosswalk(ctx); err != nil {
		return out, fmt.Errorf("fetch crosswalk: %w", err)
	}
	if out.govForms, err = p.leadership.FetchGovernmentForms(ctx); err != nil {
		return out, fmt.Errorf("fetch government forms: %w", err)
	}
	if out.leaders, err = p.leadership.FetchLeaders(ctx); err != nil {
		return out, fmt.Errorf("fetch leaders: %w", err)
	}

	p.info("sources fetched",
		"countries", len(out.countries),
		"population_rows", len(out.population),
		"flags", len(out.flags),
		"capitals", len(out.capitals),
		"government_form_rows", len(out.govForms),
		"leader_rows", len(out.leaders),
	)
	return out, nil
}

func (p *Pipeline) validate() error {
	switch {
	case p.countries == nil:
		return fmt.Errorf("pipeline: country source is not configured")
	case p.population == nil:
		return fmt.Errorf("pipeline: population source is not configured")
	case p.flags == nil:
		return fmt.Errorf("pipeline: flag source is not configured")
	case p.capitals == nil:
		return fmt.Errorf("pipeline: capital source is not configured")
	case p.crosswalk == nil:
		return fmt.Errorf("pipeline: crosswalk source is not configured")
	case p.leadership == nil:
		return fmt.Errorf("pipeline: leadership source is not configured")
	}
	return nil
}

func (p *Pipeline) info(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}
