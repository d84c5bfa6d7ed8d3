package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"PopulationSnapshot/internal/infrastructure/countrycodes"
	"PopulationSnapshot/internal/infrastructure/fetch"
	"PopulationSnapshot/internal/infrastructure/flags"
	"PopulationSnapshot/internal/infrastructure/objectstore"
	"PopulationSnapshot/internal/infrastructure/restcountries"
	"PopulationSnapshot/internal/infrastructure/storage"
	"PopulationSnapshot/internal/infrastructure/wikidata"
	"PopulationSnapshot/internal/infrastructure/worldbank"
	"PopulationSnapshot/internal/reconcile"
	"PopulationSnapshot/internal/sink"
)

const (
	// PathEnv names the YAML file loaded when no explicit path is given.
	PathEnv = "SNAPSHOT_BUILDER_CONFIG"

	outputPathEnv  = "SNAPSHOT_OUTPUT_PATH"
	logLevelEnv    = "SNAPSHOT_LOG_LEVEL"
	databaseDSNEnv = "SNAPSHOT_DATABASE_DSN"
	s3BucketEnv    = "SNAPSHOT_S3_BUCKET"
	metricsFileEnv = "SNAPSHOT_METRICS_TEXTFILE"

	// DefaultOutputPath is where the file sink writes when nothing else is configured.
	DefaultOutputPath = "data/country-population.json"
)

// Config holds every setting the builder reads.
type Config struct {
	Logging  LoggingConfig  `yaml:"logging"`
	HTTP     HTTPConfig     `yaml:"http"`
	Sources  SourcesConfig  `yaml:"sources"`
	Leaders  LeadersConfig  `yaml:"leaders"`
	Output   OutputConfig   `yaml:"output"`
	Database DatabaseConfig `yaml:"database"`
	S3       S3Config       `yaml:"s3"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// LoggingConfig selects the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// HTTPConfig tunes the shared upstream client.
type HTTPConfig struct {
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"userAgent"`
}

// SourcesConfig lists the upstream endpoints.
type SourcesConfig struct {
	CountriesURL    string `yaml:"countriesUrl"`
	PopulationURL   string `yaml:"populationUrl"`
	CountryCodesURL string `yaml:"countryCodesUrl"`
	FlagsURL        string `yaml:"flagsUrl"`
	CapitalsURL     string `yaml:"capitalsUrl"`
	SPARQLEndpoint  string `yaml:"sparqlEndpoint"`
}

// LeadersConfig controls portrait sanitizing.
type LeadersConfig struct {
	ImageWidth        int      `yaml:"imageWidth"`
	AllowedImageHosts []string `yaml:"allowedImageHosts"`
}

// OutputConfig names the artifact path and the sinks that receive a finished snapshot.
type OutputConfig struct {
	Path  string   `yaml:"path"`
	Sinks []string `yaml:"sinks"`
}

// DatabaseConfig describes the sql sink connection.
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
	Table  string `yaml:"table"`
}

// S3Config describes the s3 sink bucket.
type S3Config struct {
	Bucket          string `yaml:"bucket"`
	Key             string `yaml:"key"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	PathStyle       bool   `yaml:"pathStyle"`
	AccessKeyID     string `yaml:"accessKeyId"`
	SecretAccessKey string `yaml:"secretAccessKey"`
}

// MetricsConfig points at an optional node-exporter textfile.
type MetricsConfig struct {
	TextfilePath string `yaml:"textfilePath"`
}

// Load reads YAML configuration from path, or from PathEnv when path is empty, then applies
// environment overrides. Without any file the defaults are used.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(PathEnv)
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		var fileCfg Config
		if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
		cfg = mergeConfig(cfg, fileCfg)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the builder cannot run with.
func (c Config) Validate() error {
	if c.HTTP.Timeout <= 0 {
		return fmt.Errorf("config: http.timeout must be positive")
	}
	if c.Leaders.ImageWidth <= 0 {
		return fmt.Errorf("config: leaders.imageWidth must be positive")
	}
	if len(c.Output.Sinks) == 0 {
		return fmt.Errorf("config: output.sinks is empty")
	}
	for _, name := range c.Output.Sinks {
		switch name {
		case sink.NameFile:
			if c.Output.Path == "" {
				return fmt.Errorf("config: output.path is required by the file sink")
			}
		case storage.NameSQL:
			if c.Database.DSN == "" {
				return fmt.Errorf("config: database.dsn is required by the sql sink")
			}
		case objectstore.NameS3:
			if c.S3.Bucket == "" {
				return fmt.Errorf("config: s3.bucket is required by the s3 sink")
			}
		default:
			return fmt.Errorf("config: unknown sink %q", name)
		}
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(outputPathEnv); v != "" {
		c.Output.Path = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(s3BucketEnv); v != "" {
		c.S3.Bucket = v
	}

	if v := os.Getenv(metricsFileEnv); v != "" {
		c.Metrics.TextfilePath = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	if override.HTTP.Timeout != 0 {
		base.HTTP.Timeout = override.HTTP.Timeout
	}
	if override.HTTP.UserAgent != "" {
		base.HTTP.UserAgent = override.HTTP.UserAgent
	}

	base.Sources.CountriesURL = pick(base.Sources.CountriesURL, override.Sources.CountriesURL)
	base.Sources.PopulationURL = pick(base.Sources.PopulationURL, override.Sources.PopulationURL)
	base.Sources.CountryCodesURL = pick(base.Sources.CountryCodesURL, override.Sources.CountryCodesURL)
	base.Sources.FlagsURL = pick(base.Sources.FlagsURL, override.Sources.FlagsURL)
	base.Sources.CapitalsURL = pick(base.Sources.CapitalsURL, override.Sources.CapitalsURL)
	base.Sources.SPARQLEndpoint = pick(base.Sources.SPARQLEndpoint, override.Sources.SPARQLEndpoint)

	if override.Leaders.ImageWidth != 0 {
		base.Leaders.ImageWidth = override.Leaders.ImageWidth
	}
	if len(override.Leaders.AllowedImageHosts) > 0 {
		base.Leaders.AllowedImageHosts = override.Leaders.AllowedImageHosts
	}

	if override.Output.Path != "" {
		base.Output.Path = override.Output.Path
	}
	if len(override.Output.Sinks) > 0 {
		base.Output.Sinks = override.Output.Sinks
	}

	if override.Database.DSN != "" {
		base.Database = override.Database
		if base.Database.Driver == "" {
			base.Database.Driver = storage.DriverPostgres
		}
	}
	if override.Database.Table != "" {
		base.Database.Table = override.Database.Table
	}

	if override.S3.Bucket != "" {
		base.S3.Bucket = override.S3.Bucket
	}
	base.S3.Key = pick(base.S3.Key, override.S3.Key)
	base.S3.Region = pick(base.S3.Region, override.S3.Region)
	base.S3.Endpoint = pick(base.S3.Endpoint, override.S3.Endpoint)
	base.S3.AccessKeyID = pick(base.S3.AccessKeyID, override.S3.AccessKeyID)
	base.S3.SecretAccessKey = pick(base.S3.SecretAccessKey, override.S3.SecretAccessKey)
	if override.S3.PathStyle {
		base.S3.PathStyle = true
	}

	if override.Metrics.TextfilePath != "" {
		base.Metrics.TextfilePath = override.Metrics.TextfilePath
	}

	return base
}

func pick(base, override string) string {
	if strings.TrimSpace(override) != "" {
		return override
	}
	return base
}

// Default returns the settings used when no file or environment override is present.
func Default() Config {
	return Config{
		Logging: LoggingConfig{Level: "info"},
		HTTP:    HTTPConfig{Timeout: fetch.DefaultTimeout, UserAgent: fetch.DefaultUserAgent},
		Sources: SourcesConfig{
			CountriesURL:    worldbank.DefaultCountriesURL,
			PopulationURL:   worldbank.DefaultPopulationURL,
			CountryCodesURL: countrycodes.DefaultURL,
			FlagsURL:        flags.DefaultURL,
			CapitalsURL:     restcountries.DefaultURL,
			SPARQLEndpoint:  wikidata.DefaultEndpoint,
		},
		Leaders: LeadersConfig{
			ImageWidth:        reconcile.DefaultImageWidth,
			AllowedImageHosts: reconcile.DefaultImagePolicy().AllowedHosts,
		},
		Output:   OutputConfig{Path: DefaultOutputPath, Sinks: []string{sink.NameFile}},
		Database: DatabaseConfig{Driver: storage.DriverSQLite, Table: storage.DefaultTable},
		S3:       S3Config{Key: objectstore.DefaultKey, Region: objectstore.DefaultRegion},
	}
}
