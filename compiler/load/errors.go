package load

import (
	"errors"
	"strings"
)

// Sentinel errors for catalog loading.
var (
	// ErrUnsupportedScheme indicates a connection URL for another database.
	ErrUnsupportedScheme = errors.New("veloximport: unsupported database scheme")
	// ErrInvalidURL indicates a malformed connection URL.
	ErrInvalidURL = errors.New("veloximport: invalid connection url")
	// ErrConnect indicates the connection pool could not reach the database.
	ErrConnect = errors.New("veloximport: cannot connect to database")
	// ErrIntrospection indicates a catalog query failed.
	ErrIntrospection = errors.New("veloximport: introspection failed")
)

// URLError describes a connection URL that cannot be used.
type URLError struct {
	URL     string // Redacted URL.
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *URLError) Error() string {
	var b strings.Builder
	b.WriteString("veloximport: connection url")
	if e.URL != "" {
		b.WriteString(" ")
		b.WriteString(e.URL)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *URLError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for URLError.
func (e *URLError) Is(target error) bool {
	return target == ErrInvalidURL
}

// NewURLError creates a new URLError.
func NewURLError(url, message string, cause error) *URLError {
	return &URLError{URL: url, Message: message, Cause: cause}
}

// CatalogError describes a failed connection or catalog query.
type CatalogError struct {
	Op    string // "connect", "list tables", "describe columns", "list foreign keys".
	Table string
	Cause error
}

// Error implements the error interface.
func (e *CatalogError) Error() string {
	var b strings.Builder
	b.WriteString("veloximport: ")
	b.WriteString(e.Op)
	if e.Table != "" {
		b.WriteString(" for table ")
		b.WriteString(e.Table)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *CatalogError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for the operation.
func (e *CatalogError) Is(target error) bool {
	if e.Op == opConnect {
		return target == ErrConnect
	}
	return target == ErrIntrospection
}

// NewCatalogError creates a new CatalogError.
func NewCatalogError(op, table string, cause error) *CatalogError {
	return &CatalogError{Op: op, Table: table, Cause: cause}
}

// IsURLError reports whether the error is a URLError.
func IsURLError(err error) bool {
	var urlErr *URLError
	return errors.As(err, &urlErr)
}

// IsCatalogError reports whether the error is a CatalogError.
func IsCatalogError(err error) bool {
	var catErr *CatalogError
	return errors.As(err, &catErr)
}
