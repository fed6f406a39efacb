package gen

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Sentinel errors for common failure cases.
var (
	// ErrInvalidSchema indicates a catalog that cannot be turned into schemas.
	ErrInvalidSchema = errors.New("veloximport: invalid schema")
	// ErrMissingConfig indicates a configuration error.
	ErrMissingConfig = errors.New("veloximport: missing configuration")
	// ErrGenerationFailed indicates a code generation failure.
	ErrGenerationFailed = errors.New("veloximport: code generation failed")
)

// SchemaError reports a catalog that cannot be turned into schemas. Table
// is empty when the catalog as a whole is at fault.
type SchemaError struct {
	Table   string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	subject := "catalog"
	if e.Table != "" {
		subject = "table " + strconv.Quote(e.Table)
	}
	return describe("veloximport: invalid "+subject, e.Message, e.Cause)
}

// Unwrap returns the underlying error.
func (e *SchemaError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for SchemaError.
func (e *SchemaError) Is(target error) bool {
	return target == ErrInvalidSchema
}

// NewSchemaError creates a new SchemaError.
func NewSchemaError(table, message string, cause error) *SchemaError {
	return &SchemaError{
		Table:   table,
		Message: message,
		Cause:   cause,
	}
}

// ConfigError reports an option that was rejected, either by its own
// validation or by a check of the environment it points to.
type ConfigError struct {
	Option  string
	Value   any
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	head := fmt.Sprintf("veloximport: invalid option %q", e.Option)
	if e.Value != nil {
		head += fmt.Sprintf(" (value: %v)", e.Value)
	}
	return describe(head, e.Message, e.Cause)
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for ConfigError.
func (e *ConfigError) Is(target error) bool {
	return target == ErrMissingConfig
}

// NewConfigError creates a new ConfigError.
func NewConfigError(option string, value any, message string) *ConfigError {
	return &ConfigError{
		Option:  option,
		Value:   value,
		Message: message,
	}
}

// GenerationError reports a file that could not be rendered, formatted or
// written.
type GenerationError struct {
	Phase   string // "render", "format", "write"
	File    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *GenerationError) Error() string {
	head := "veloximport: " + e.Phase
	if e.Phase == "" {
		head = "veloximport: generate"
	}
	if e.File != "" {
		head += " " + e.File
	}
	return describe(head, e.Message, e.Cause)
}

// Unwrap returns the underlying error.
func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for GenerationError.
func (e *GenerationError) Is(target error) bool {
	return target == ErrGenerationFailed
}

// NewGenerationError creates a new GenerationError.
func NewGenerationError(phase, file, message string, cause error) *GenerationError {
	return &GenerationError{
		Phase:   phase,
		File:    file,
		Message: message,
		Cause:   cause,
	}
}

// describe appends the message and the cause to head, skipping empty parts.
func describe(head, message string, cause error) string {
	var b strings.Builder
	b.WriteString(head)
	if message != "" {
		b.WriteString(": ")
		b.WriteString(message)
	}
	if cause != nil {
		b.WriteString(": ")
		b.WriteString(cause.Error())
	}
	return b.String()
}

// IsSchemaError reports whether the error is a SchemaError.
func IsSchemaError(err error) bool {
	var schemaErr *SchemaError
	return errors.As(err, &schemaErr)
}

// IsConfigError reports whether the error is a ConfigError.
func IsConfigError(err error) bool {
	var configErr *ConfigError
	return errors.As(err, &configErr)
}

// IsGenerationError reports whether the error is a GenerationError.
func IsGenerationError(err error) bool {
	var genErr *GenerationError
	return errors.As(err, &genErr)
}

// Warning is a non-fatal finding about the catalog. Warnings never stop
// generation; they are collected and reported after the run.
type Warning struct {
	Table   string
	Message string
}

// String implements fmt.Stringer.
func (w Warning) String() string {
	if w.Table == "" {
		return w.Message
	}
	return w.Table + ": " + w.Message
}

func warnf(table, format string, args ...any) Warning {
	return Warning{Table: table, Message: fmt.Sprintf(format, args...)}
}
