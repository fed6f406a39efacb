package gen

import (
	"log/slog"
	"path/filepath"
	"runtime"
	"time"

	"github.com/syssam/veloximport/compiler/naming"
)

// DefaultVeloxPath is the import root of the velox module referenced by the
// generated schema files.
const DefaultVeloxPath = "github.com/syssam/velox"

// Config holds the configuration for schema generation.
type Config struct {
	// Target is the output directory of the generated schema files.
	Target string
	// Package is the Go package name of the generated files.
	// Defaults to the base name of Target.
	Package string
	// Header overrides the first line of every generated file. It must be
	// a valid "Code generated ... DO NOT EDIT." line for tools to honor it.
	Header string
	// VeloxPath is the import root used for velox packages.
	VeloxPath string
	// Exclude holds table name patterns (path.Match syntax) to skip.
	Exclude []string
	// Acronyms are additional words kept in upper case in identifiers.
	Acronyms []string
	// Workers bounds the number of files rendered in parallel.
	Workers int
	// Now stamps the generated header.
	Now func() time.Time
	// Logger receives progress and warnings.
	Logger *slog.Logger
	// DryRun renders every file without writing it.
	DryRun bool
	// Debug keeps the unformatted source of a file that fails to format
	// as <file>.error in the target directory.
	Debug bool
}

// Validate checks the configuration and fills in defaults.
func (c *Config) Validate() error {
	if c.Target == "" {
		return NewConfigError("Target", nil, "target directory cannot be empty")
	}
	if c.Package == "" {
		c.Package = filepath.Base(filepath.Clean(c.Target))
	}
	if !naming.IsIdentifier(c.Package) {
		return NewConfigError("Package", c.Package, "package name is not a valid Go identifier; set it explicitly")
	}
	if c.VeloxPath == "" {
		c.VeloxPath = DefaultVeloxPath
	}
	if c.Workers <= 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return nil
}

// header returns the first comment line of generated files.
func (c *Config) header() string {
	if c.Header != "" {
		return c.Header
	}
	return "Code generated by veloximport at " + c.Now().UTC().Format(time.RFC3339) + ". DO NOT EDIT."
}

func (c *Config) namer() *naming.Namer {
	if len(c.Acronyms) == 0 {
		return naming.Default
	}
	return naming.New(c.Acronyms...)
}

// Import paths of the velox packages referenced by generated code.
func (c *Config) veloxPkg() string     { return c.VeloxPath }
func (c *Config) schemaPkg() string    { return c.VeloxPath + "/schema" }
func (c *Config) fieldPkg() string     { return c.VeloxPath + "/schema/field" }
func (c *Config) edgePkg() string      { return c.VeloxPath + "/schema/edge" }
func (c *Config) dialectPkg() string   { return c.VeloxPath + "/dialect" }
func (c *Config) sqlschemaPkg() string { return c.VeloxPath + "/dialect/sqlschema" }
