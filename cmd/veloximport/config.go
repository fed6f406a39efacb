package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/syssam/veloximport/compiler/gen"
)

// Defaults of the command line surface.
const (
	defaultConfigFile = "veloximport.yaml"
	defaultOut        = "./velox/schema"
	defaultSlowQuery  = 200 * time.Millisecond
	envPrefix         = "VELOXIMPORT_"
)

// Config represents the veloximport.yaml configuration file. Every field can
// be overridden by a VELOXIMPORT_ prefixed environment variable.
type Config struct {
	DatabaseURL string        `yaml:"database_url" env:"DATABASE_URL"`
	Out         string        `yaml:"out"          env:"OUT"`
	Package     string        `yaml:"package"      env:"PACKAGE"`
	Header      string        `yaml:"header"       env:"HEADER"`
	VeloxPath   string        `yaml:"velox_path"   env:"VELOX_PATH"`
	Exclude     []string      `yaml:"exclude"      env:"EXCLUDE"  envSeparator:","`
	Acronyms    []string      `yaml:"acronyms"     env:"ACRONYMS" envSeparator:","`
	Workers     int           `yaml:"workers"      env:"WORKERS"`
	Debug       bool          `yaml:"debug"        env:"DEBUG"`
	DryRun      bool          `yaml:"dry_run"      env:"DRY_RUN"`
	SlowQuery   time.Duration `yaml:"slow_query"   env:"SLOW_QUERY"`
}

// defaults returns the configuration used when nothing else is set.
func defaults() *Config {
	return &Config{
		Out:       defaultOut,
		SlowQuery: defaultSlowQuery,
	}
}

// loadConfig loads configuration from the config file and the environment.
// Precedence: environment > config file > defaults. A missing file is only an
// error when the path was given explicitly.
func loadConfig(path string, explicit bool, environ map[string]string) (*Config, error) {
	cfg := defaults()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := env.ParseWithOptions(cfg, env.Options{
		Prefix:      envPrefix,
		Environment: environ,
	}); err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}
	// DATABASE_URL is honored as a fallback, as most tooling exports it.
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = environ["DATABASE_URL"]
	}
	return cfg, nil
}

// mergeFlags overrides cfg with the flags set on the command line.
func mergeFlags(cfg *Config, flags *pflag.FlagSet, f *Config) {
	if flags.Changed("database-url") {
		cfg.DatabaseURL = f.DatabaseURL
	}
	if flags.Changed("out") {
		cfg.Out = f.Out
	}
	if flags.Changed("package") {
		cfg.Package = f.Package
	}
	if flags.Changed("exclude") {
		cfg.Exclude = f.Exclude
	}
	if flags.Changed("acronym") {
		cfg.Acronyms = f.Acronyms
	}
	if flags.Changed("velox-path") {
		cfg.VeloxPath = f.VeloxPath
	}
	if flags.Changed("workers") {
		cfg.Workers = f.Workers
	}
	if flags.Changed("debug") {
		cfg.Debug = f.Debug
	}
	if flags.Changed("dry-run") {
		cfg.DryRun = f.DryRun
	}
}

// genConfig translates the configuration into generator options. All option
// errors are reported at once.
func (c *Config) genConfig(logger *slog.Logger) (*gen.Config, error) {
	opts := []gen.Option{
		gen.WithTarget(c.Out),
		gen.WithExclude(c.Exclude...),
		gen.WithAcronyms(c.Acronyms...),
		gen.WithWorkers(c.Workers),
		gen.WithLogger(logger),
		gen.WithDryRun(c.DryRun),
		gen.WithDebug(c.Debug),
		gen.WithHeader(c.Header),
	}
	if c.Package != "" {
		opts = append(opts, gen.WithPackage(c.Package))
	}
	if c.VeloxPath != "" {
		opts = append(opts, gen.WithVeloxPath(c.VeloxPath))
	}
	cfg := &gen.Config{}
	if err := cfg.ApplyAll(opts...); err != nil {
		return nil, err
	}
	return cfg, nil
}
