// Package typemap maps MySQL physical column types to the logical types used
// by the schema emitter.
package typemap

import (
	"strconv"
	"strings"

	"github.com/syssam/veloximport/compiler/naming"
)

// Type is a logical value type.
type Type uint8

// Logical types.
const (
	TypeUntyped Type = iota
	TypeBool
	TypeInt8
	TypeUint8
	TypeInt16
	TypeUint16
	TypeInt32
	TypeUint32
	TypeInt64
	TypeUint64
	TypeFloat32
	TypeFloat64
	TypeString
	TypeTime
	TypeBytes
	TypeJSON
	TypeEnum
)

var typeNames = [...]string{
	TypeUntyped: "untyped",
	TypeBool:    "bool",
	TypeInt8:    "int8",
	TypeUint8:   "uint8",
	TypeInt16:   "int16",
	TypeUint16:  "uint16",
	TypeInt32:   "int32",
	TypeUint32:  "uint32",
	TypeInt64:   "int64",
	TypeUint64:  "uint64",
	TypeFloat32: "float32",
	TypeFloat64: "float64",
	TypeString:  "string",
	TypeTime:    "time.Time",
	TypeBytes:   "[]byte",
	TypeJSON:    "json.RawMessage",
	TypeEnum:    "enum",
}

// String returns the Go-facing name of the type.
func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "type(" + strconv.Itoa(int(t)) + ")"
}

// Numeric reports whether the type holds a number.
func (t Type) Numeric() bool {
	return t >= TypeInt8 && t <= TypeFloat64
}

// Named value transforms, applied when a logical type cannot hold the
// physical value directly.
const (
	// BigIntText round-trips 64-bit integers as decimal text.
	BigIntText = "BigIntText"
	// TinyIntBool converts 0/1 to false/true.
	TinyIntBool = "TinyIntBool"
)

// Mapping is the result of mapping one physical column type.
type Mapping struct {
	Type Type
	// Storage is the physical base keyword, or "text" for unknown types.
	Storage   string
	Length    int64
	Unsigned  bool
	Enum      *Enum
	Transform string
}

// Native returns m without its value transform, typed with the Go integer
// that holds the physical value directly. Key columns use it: velox reads
// identifiers and edge fields without a value scanner.
func (m Mapping) Native() Mapping {
	switch m.Transform {
	case BigIntText:
		m.Type = TypeInt64
		if m.Unsigned {
			m.Type = TypeUint64
		}
	case TinyIntBool:
		m.Type = TypeInt8
		if m.Unsigned {
			m.Type = TypeUint8
		}
	}
	m.Transform = ""
	return m
}

// Member is one enum literal.
type Member struct {
	// Value is the literal exactly as declared.
	Value string
	// Name is the identifier suffix derived from Value.
	Name string
}

// Enum holds the members of an inline enumeration, in declaration order.
type Enum struct {
	Members []Member
}

// Values returns the raw member values.
func (e *Enum) Values() []string {
	vs := make([]string, len(e.Members))
	for i, m := range e.Members {
		vs[i] = m.Value
	}
	return vs
}

// family describes how one base keyword maps.
type family struct {
	typ      Type
	unsigned Type
	length   int64
}

var families = map[string]family{
	"bool":       {typ: TypeBool},
	"boolean":    {typ: TypeBool},
	"tinyint":    {typ: TypeInt8, unsigned: TypeUint8},
	"smallint":   {typ: TypeInt16, unsigned: TypeUint16},
	"mediumint":  {typ: TypeInt32, unsigned: TypeUint32},
	"int":        {typ: TypeInt32, unsigned: TypeUint32},
	"integer":    {typ: TypeInt32, unsigned: TypeUint32},
	"bigint":     {typ: TypeString},
	"float":      {typ: TypeFloat32},
	"double":     {typ: TypeFloat64},
	"real":       {typ: TypeFloat64},
	"decimal":    {typ: TypeString},
	"numeric":    {typ: TypeString},
	"char":       {typ: TypeString, length: 1},
	"varchar":    {typ: TypeString, length: 255},
	"tinytext":   {typ: TypeString, length: 255},
	"text":       {typ: TypeString, length: 65535},
	"mediumtext": {typ: TypeString, length: 16777215},
	"longtext":   {typ: TypeString, length: 4294967295},
	"date":       {typ: TypeTime},
	"datetime":   {typ: TypeTime},
	"timestamp":  {typ: TypeTime},
	"time":       {typ: TypeString},
	"year":       {typ: TypeInt16},
	"binary":     {typ: TypeBytes, length: 1},
	"varbinary":  {typ: TypeBytes},
	"tinyblob":   {typ: TypeBytes, length: 255},
	"blob":       {typ: TypeBytes, length: 65535},
	"mediumblob": {typ: TypeBytes, length: 16777215},
	"longblob":   {typ: TypeBytes, length: 4294967295},
	"json":       {typ: TypeJSON},
}

// Map maps a physical column type, as reported by COLUMN_TYPE, to its
// logical type. It never fails: unknown types map to TypeUntyped stored as
// text.
func Map(physical string) Mapping {
	raw := strings.TrimSpace(physical)
	lower := strings.ToLower(raw)
	base, args, rest := splitType(raw)
	base = strings.ToLower(base)
	unsigned := strings.Contains(strings.ToLower(rest), "unsigned")

	if base == "enum" {
		if members, ok := parseEnum(args); ok {
			return Mapping{Type: TypeEnum, Storage: "enum", Enum: newEnum(members)}
		}
		return untyped()
	}
	f, ok := families[base]
	if !ok {
		return untyped()
	}
	m := Mapping{Type: f.typ, Storage: base, Length: f.length, Unsigned: unsigned}
	if unsigned && f.unsigned != TypeUntyped {
		m.Type = f.unsigned
	}
	switch {
	case base == "bool" || base == "boolean" || strings.HasPrefix(lower, "tinyint(1)"):
		m.Type, m.Transform = TypeBool, TinyIntBool
	case base == "bigint":
		m.Transform = BigIntText
	case base == "char" || base == "varchar" || base == "binary" || base == "varbinary":
		if n, err := strconv.ParseInt(strings.TrimSpace(args), 10, 64); err == nil {
			m.Length = n
		}
	}
	return m
}

func untyped() Mapping {
	return Mapping{Type: TypeUntyped, Storage: "text"}
}

// splitType splits "varchar(255) unsigned" into "varchar", "255" and " unsigned".
func splitType(s string) (base, args, rest string) {
	open := strings.IndexByte(s, '(')
	if open < 0 {
		if i := strings.IndexByte(s, ' '); i >= 0 {
			return s[:i], "", s[i:]
		}
		return s, "", ""
	}
	closing := strings.LastIndexByte(s, ')')
	if closing < open {
		return s[:open], "", ""
	}
	return strings.TrimSpace(s[:open]), s[open+1 : closing], s[closing+1:]
}

// parseEnum parses the quoted, comma-separated literals of an enum type.
// Quotes may be escaped by doubling or with a backslash.
func parseEnum(s string) ([]string, bool) {
	var (
		values []string
		r      = []rune(s)
	)
	for i := 0; i < len(r); i++ {
		switch c := r[i]; {
		case c == ' ' || c == ',' || c == '\t' || c == '\n':
			continue
		case c != '\'':
			return nil, false
		}
		var (
			b      strings.Builder
			closed bool
		)
		for i++; i < len(r); i++ {
			c := r[i]
			if c == '\\' && i+1 < len(r) {
				i++
				b.WriteRune(r[i])
				continue
			}
			if c == '\'' {
				if i+1 < len(r) && r[i+1] == '\'' {
					i++
					b.WriteRune('\'')
					continue
				}
				closed = true
				break
			}
			b.WriteRune(c)
		}
		if !closed {
			return nil, false
		}
		values = append(values, b.String())
	}
	return values, len(values) > 0
}

func newEnum(values []string) *Enum {
	e := &Enum{Members: make([]Member, len(values))}
	seen := make(map[string]bool, len(values))
	for i, v := range values {
		name := naming.EnumMember(v)
		for base, k := name, i; seen[name]; k++ {
			name = base + strconv.Itoa(k)
		}
		seen[name] = true
		e.Members[i] = Member{Value: v, Name: name}
	}
	return e
}
