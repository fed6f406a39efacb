package gen

import (
	"errors"
	"log/slog"
	"time"

	"github.com/syssam/veloximport/compiler/naming"
)

// Option configures code generation.
type Option func(*Config) error

// WithTarget sets the output directory.
// The directory where generated schema files will be written.
func WithTarget(dir string) Option {
	return func(c *Config) error {
		if dir == "" {
			return NewConfigError("Target", nil, "target directory cannot be empty")
		}
		c.Target = dir
		return nil
	}
}

// WithPackage sets the package name of the generated files.
func WithPackage(pkg string) Option {
	return func(c *Config) error {
		if pkg == "" {
			return NewConfigError("Package", nil, "package cannot be empty")
		}
		if !naming.IsIdentifier(pkg) {
			return NewConfigError("Package", pkg, "package name is not a valid Go identifier")
		}
		c.Package = pkg
		return nil
	}
}

// WithHeader sets the file header comment.
// The header replaces the timestamped first line of each generated file.
func WithHeader(header string) Option {
	return func(c *Config) error {
		c.Header = header
		return nil
	}
}

// WithVeloxPath sets the import root of the velox module,
// for example a fork or a vendored copy.
func WithVeloxPath(path string) Option {
	return func(c *Config) error {
		if path == "" {
			return NewConfigError("VeloxPath", nil, "velox import path cannot be empty")
		}
		c.VeloxPath = path
		return nil
	}
}

// WithExclude skips tables matching one of the patterns.
func WithExclude(patterns ...string) Option {
	return func(c *Config) error {
		c.Exclude = append(c.Exclude, patterns...)
		return nil
	}
}

// WithAcronyms adds words that identifiers keep in upper case.
func WithAcronyms(acronyms ...string) Option {
	return func(c *Config) error {
		c.Acronyms = append(c.Acronyms, acronyms...)
		return nil
	}
}

// WithWorkers sets the number of files rendered in parallel.
func WithWorkers(n int) Option {
	return func(c *Config) error {
		if n < 0 {
			return NewConfigError("Workers", n, "workers cannot be negative")
		}
		c.Workers = n
		return nil
	}
}

// WithClock sets the clock used for the generated header.
// Tests use a fixed clock to get byte-identical output.
func WithClock(now func() time.Time) Option {
	return func(c *Config) error {
		if now == nil {
			return NewConfigError("Now", nil, "clock cannot be nil")
		}
		c.Now = now
		return nil
	}
}

// WithLogger sets the logger for progress and warnings.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) error {
		if l == nil {
			return NewConfigError("Logger", nil, "logger cannot be nil")
		}
		c.Logger = l
		return nil
	}
}

// WithDryRun renders files without writing them.
func WithDryRun(dry bool) Option {
	return func(c *Config) error {
		c.DryRun = dry
		return nil
	}
}

// WithDebug keeps the unformatted source of files that fail to format.
func WithDebug(debug bool) Option {
	return func(c *Config) error {
		c.Debug = debug
		return nil
	}
}

// Apply applies options to the config.
// It returns the first error encountered.
func (c *Config) Apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	return nil
}

// ApplyAll applies options and collects all errors.
// Returns a joined error if any options failed.
func (c *Config) ApplyAll(opts ...Option) error {
	var errs []error
	for _, opt := range opts {
		if err := opt(c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewConfig creates a new Config with the given options.
func NewConfig(opts ...Option) (*Config, error) {
	c := &Config{}
	if err := c.Apply(opts...); err != nil {
		return nil, err
	}
	return c, nil
}

// MustNewConfig creates a new Config with the given options.
// It panics if any option fails.
func MustNewConfig(opts ...Option) *Config {
	c, err := NewConfig(opts...)
	if err != nil {
		panic(err)
	}
	return c
}
