package main

import (
	"fmt"
	"io"

	"github.com/urfave/cli/v2"

	"PopulationSnapshot/internal/app"
	"PopulationSnapshot/internal/config"
	"PopulationSnapshot/internal/infrastructure/objectstore"
	"PopulationSnapshot/internal/infrastructure/storage"
	"PopulationSnapshot/internal/logging"
	"PopulationSnapshot/internal/sink"
)

// Version is stamped at build time.
var Version = "dev"

// newCLIApp creates the command line application. Human-readable results go to out; logs go to stderr.
func newCLIApp(out io.Writer) *cli.App {
	cliApp := &cli.App{
		Name:    "snapshotbuilder",
		Usage:   "Build the country population snapshot used by the map renderer",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, EnvVars: []string{config.PathEnv}, Usage: "YAML configuration file"},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output path for the file sink"},
			&cli.StringFlag{Name: "log-level", Usage: "Log level: debug|info|warn|error"},
			&cli.StringSliceFlag{Name: "sink", Usage: "Sink to publish to (file, sql, s3); repeatable"},
			&cli.StringFlag{Name: "metrics-textfile", Usage: "Write build metrics in Prometheus text format to this path"},
			&cli.BoolFlag{Name: "dry-run", Usage: "Build the snapshot without writing it anywhere"},
		},
		Action: build(out),
	}
	// Errors are returned to main, which owns the exit code.
	cliApp.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return cliApp
}

func build(out io.Writer) cli.ActionFunc {
	return func(c *cli.Context) error {
		cfg, err := config.Load(c.String("config"))
		if err != nil {
			return err
		}
		if v := c.String("output"); v != "" {
			cfg.Output.Path = v
		}
		if v := c.String("log-level"); v != "" {
			cfg.Logging.Level = v
		}
		if v := c.StringSlice("sink"); len(v) > 0 {
			cfg.Output.Sinks = v
		}
		if v := c.String("metrics-textfile"); v != "" {
			cfg.Metrics.TextfilePath = v
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		logger := logging.New(cfg.Logging.Level)
		dryRun := c.Bool("dry-run")

		application, err := app.New(c.Context, cfg, logger, app.Options{DryRun: dryRun})
		if err != nil {
			return err
		}
		defer func() { _ = application.Close() }()

		snapshot, err := application.Run(c.Context)
		if err != nil {
			logger.Error("build failed", "error", err)
			return err
		}

		if dryRun {
			_, err = fmt.Fprintf(out, "built %d entries (dry run, nothing written)\n", snapshot.Len())
			return err
		}
		for _, dest := range destinations(cfg) {
			if _, err := fmt.Fprintf(out, "wrote %d entries to %s\n", snapshot.Len(), dest); err != nil {
				return err
			}
		}
		return nil
	}
}

func destinations(cfg config.Config) []string {
	dests := make([]string, 0, len(cfg.Output.Sinks))
	for _, name := range cfg.Output.Sinks {
		switch name {
		case sink.NameFile:
			dests = append(dests, cfg.Output.Path)
		case storage.NameSQL:
			dests = append(dests, fmt.Sprintf("%s table %s", cfg.Database.Driver, cfg.Database.Table))
		case objectstore.NameS3:
			dests = append(dests, fmt.Sprintf("s3://%s/%s", cfg.S3.Bucket, cfg.S3.Key))
		default:
			dests = append(dests, name)
		}
	}
	return dests
}
