package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"PopulationSnapshot/internal/config"
	"PopulationSnapshot/internal/domain"
	"PopulationSnapshot/internal/infrastructure/countrycodes"
	"PopulationSnapshot/internal/infrastructure/fetch"
	"PopulationSnapshot/internal/infrastructure/flags"
	"PopulationSnapshot/internal/infrastructure/objectstore"
	"PopulationSnapshot/internal/infrastructure/restcountries"
	"PopulationSnapshot/internal/infrastructure/storage"
	"PopulationSnapshot/internal/infrastructure/wikidata"
	"PopulationSnapshot/internal/infrastructure/worldbank"
	"PopulationSnapshot/internal/logging"
	"PopulationSnapshot/internal/metrics"
	"PopulationSnapshot/internal/ports"
	"PopulationSnapshot/internal/reconcile"
	"PopulationSnapshot/internal/sink"
	"PopulationSnapshot/internal/usecase"
)

// Options adjusts a single invocation.
type Options struct {
	// DryRun builds the snapshot without invoking any sink.
	DryRun bool
	// HTTPClient replaces the default client, mostly for tests.
	HTTPClient *http.Client
}

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	pipeline *usecase.Pipeline
	metrics  *metrics.Metrics
	db       *sql.DB
}

// New builds a runnable application instance. Sinks that need a connection are opened here.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger, opts Options) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}
	logger, _ := logging.WithRun(baseLogger)

	m := metrics.New()
	fetcher := fetch.NewClient(fetch.Options{
		HTTPClient: opts.HTTPClient,
		Timeout:    cfg.HTTP.Timeout,
		UserAgent:  cfg.HTTP.UserAgent,
		Logger:     logger.With("component", "fetch"),
		Recorder:   m,
	})

	a := &Application{cfg: cfg, logger: logger, metrics: m}

	var sinks []ports.SnapshotSink
	if !opts.DryRun {
		var err error
		if sinks, err = a.resolveSinks(ctx); err != nil {
			_ = a.Close()
			return nil, err
		}
	}

	wb := worldbank.NewClient(fetcher, cfg.Sources.CountriesURL, cfg.Sources.PopulationURL,
		logger.With("component", "source.worldbank"), m)

	a.pipeline = usecase.NewPipeline(usecase.PipelineDeps{
		Countries:  wb,
		Population: wb,
		Crosswalk:  countrycodes.NewClient(fetcher, cfg.Sources.CountryCodesURL),
		Flags:      flags.NewClient(fetcher, cfg.Sources.FlagsURL, logger.With("component", "source.flags"), m),
		Capitals:   restcountries.NewClient(fetcher, cfg.Sources.CapitalsURL, logger.With("component", "source.restcountries"), m),
		Leadership: wikidata.NewClient(fetcher, cfg.Sources.SPARQLEndpoint, logger.With("component", "source.wikidata")),
		Engine: reconcile.New(reconcile.Options{
			Logger:   logger.With("component", "reconcile"),
			Observer: m,
			Images: reconcile.ImagePolicy{
				AllowedHosts: cfg.Leaders.AllowedImageHosts,
				Width:        cfg.Leaders.ImageWidth,
			},
		}),
		Sinks:    sinks,
		Recorder: m,
		Logger:   logger.With("component", "pipeline"),
	})

	logger.Debug("application wired", "sinks", len(sinks), "dry_run", opts.DryRun)
	return a, nil
}

// resolveSinks registers every sink the configuration can build and resolves the enabled ones in order.
func (a *Application) resolveSinks(ctx context.Context) ([]ports.SnapshotSink, error) {
	registry := sink.NewRegistry()
	registry.Register(sink.NewFileSink(a.cfg.Output.Path))

	for _, name := range a.cfg.Output.Sinks {
		switch name {
		case storage.NameSQL:
			db, err := storage.Open(ctx, a.cfg.Database.Driver, a.cfg.Database.DSN)
			if err != nil {
				return nil, fmt.Errorf("open database: %w", err)
			}
			a.db = db
			repo, err := storage.NewSQLRepository(db, a.cfg.Database.Driver, a.cfg.Database.Table)
			if err != nil {
				return nil, err
			}
			registry.Register(repo)
		case objectstore.NameS3:
			s3Sink, err := objectstore.NewS3Sink(ctx, objectstore.Config{
				Bucket:          a.cfg.S3.Bucket,
				Key:             a.cfg.S3.Key,
				Region:          a.cfg.S3.Region,
				Endpoint:        a.cfg.S3.Endpoint,
				PathStyle:       a.cfg.S3.PathStyle,
				AccessKeyID:     a.cfg.S3.AccessKeyID,
				SecretAccessKey: a.cfg.S3.SecretAccessKey,
			})
			if err != nil {
				return nil, fmt.Errorf("configure s3 sink: %w", err)
			}
			registry.Register(s3Sink)
		}
	}

	return registry.ResolveAll(a.cfg.Output.Sinks)
}

// Run performs one build and publishes it. The metrics textfile is written whatever the outcome.
func (a *Application) Run(ctx context.Context) (domain.Snapshot, error) {
	snapshot, err := a.pipeline.Run(ctx)

	if mErr := a.metrics.WriteTextfile(a.cfg.Metrics.TextfilePath); mErr != nil {
		a.logger.Warn("metrics textfile not written", "path", a.cfg.Metrics.TextfilePath, "error", mErr)
	}

	if err != nil {
		return domain.Snapshot{}, err
	}
	return snapshot, nil
}

// Close releases connections opened for sinks.
func (a *Application) Close() error {
	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db = nil
	return err
}
