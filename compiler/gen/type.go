package gen

import (
	"slices"
	"strings"

	"github.com/syssam/veloximport/compiler/load"
	"github.com/syssam/veloximport/compiler/naming"
	"github.com/syssam/veloximport/compiler/typemap"
)

// The following types describe one generated schema file. They are built
// once, after relation inference has seen the whole catalog, and are never
// mutated afterwards; renderers share them across goroutines.
type (
	// Type is the schema definition of one table.
	Type struct {
		// Name holds the Go type name.
		Name string
		// Table is the database table name.
		Table string
		// Comment is the table comment.
		Comment string
		// File is the output file name, relative to the target directory.
		File string
		// ID holds the primary key fields, in ordinal order.
		ID []*Field
		// Fields holds one field per column, in ordinal order.
		Fields []*Field
		// Enums holds the inline enum types declared by the file.
		Enums []*Enum
		// Edges holds forward, inverse and many-to-many edges, in that order.
		Edges []*Edge
		// Transforms lists the value transforms used by the fields.
		Transforms []string
		// References lists the other schema types the edges point to.
		References []string
	}

	// Field is a column of a table.
	Field struct {
		// Name is the schema field name.
		Name string
		// Column is the catalog column.
		Column *load.Column
		// Mapping is the logical type of the column.
		Mapping typemap.Mapping
		// Enum is set for enum columns.
		Enum *Enum
		// Primary reports whether the column is part of the primary key.
		Primary bool
		// StorageKey is the column name when it differs from Name.
		StorageKey string
	}

	// Edge is a relation rendered as a velox edge.
	Edge struct {
		*Relation
		// Type is the Go type of the target table.
		Type string
		// ThroughType is the Go type of the junction table.
		ThroughType string
		// Immutable is set when the edge field is part of the primary key.
		Immutable bool
	}

	// Enum is an inline enum type declared for one column.
	Enum struct {
		// Name is the Go type name.
		Name string
		// Column is the column the enum belongs to.
		Column string
		// Members holds the constants in declaration order.
		Members []EnumValue
	}

	// EnumValue is one enum constant.
	EnumValue struct {
		// Const is the Go constant name.
		Const string
		// Value is the raw literal.
		Value string
	}
)

// HasPrimaryKey reports whether the table declares a primary key.
func (t *Type) HasPrimaryKey() bool { return len(t.ID) > 0 }

// HasCompositeID reports whether the primary key spans several columns.
func (t *Type) HasCompositeID() bool { return len(t.ID) > 1 }

// Field returns the field with the given schema name.
func (t *Type) Field(name string) (*Field, bool) {
	i := slices.IndexFunc(t.Fields, func(f *Field) bool { return f.Name == name })
	if i < 0 {
		return nil, false
	}
	return t.Fields[i], true
}

// Edge returns the edge with the given name.
func (t *Type) Edge(name string) (*Edge, bool) {
	i := slices.IndexFunc(t.Edges, func(e *Edge) bool { return e.Name == name })
	if i < 0 {
		return nil, false
	}
	return t.Edges[i], true
}

// fieldOf returns the field stored in the given column.
func (t *Type) fieldOf(column string) (*Field, bool) {
	i := slices.IndexFunc(t.Fields, func(f *Field) bool { return f.Column.Name == column })
	if i < 0 {
		return nil, false
	}
	return t.Fields[i], true
}

// edgeField reports whether an edge of rels is bound to the column.
func edgeField(rels []*Relation, column string) bool {
	return slices.ContainsFunc(rels, func(r *Relation) bool { return r.Rel == O2O && r.Column == column })
}

// Values returns the raw enum literals.
func (e *Enum) Values() []string {
	vs := make([]string, len(e.Members))
	for i, v := range e.Members {
		vs[i] = v.Value
	}
	return vs
}

// StorageName returns the column name of the field.
func (f *Field) StorageName() string {
	if f.StorageKey != "" {
		return f.StorageKey
	}
	return f.Name
}

// Nullable reports whether the column accepts NULL.
func (f *Field) Nullable() bool { return f.Column.Nullable }

// Unique reports whether the column carries a unique key on its own.
func (f *Field) Unique() bool { return f.Column.Unique() }

// typeBuilder assembles the Type of one table from the shared graph state.
type typeBuilder struct {
	namer *naming.Namer
	rels  *Relations
	names map[string]string // table => Go type name
	enums *nameSet
}

// build creates the Type of t. The caller guarantees that the relation graph
// is final.
func (b *typeBuilder) build(t *load.Table, file string) (*Type, []Warning) {
	var warnings []Warning
	typ := &Type{
		Name:    b.names[t.Name],
		Table:   t.Name,
		Comment: t.Comment,
		File:    file,
	}
	alias := idAlias(t)
	rels := b.rels.Of(t.Name)
	for _, c := range t.Columns {
		f := &Field{
			Name:    c.Name,
			Column:  c,
			Mapping: typemap.Map(c.Type),
			Primary: c.Primary(),
		}
		if c == alias {
			f.Name, f.StorageKey = "id", c.Name
		}
		if m := f.Mapping; m.Transform != "" && (f.Name == "id" || edgeField(rels, c.Name)) {
			f.Mapping = m.Native()
			warnings = append(warnings, warnf(t.Name, "key column %s (%s) is read as %s; velox keys cannot use the %s value scanner",
				c.Name, c.Type, f.Mapping.Type, m.Transform))
		}
		if f.Mapping.Type == typemap.TypeUntyped {
			warnings = append(warnings, warnf(t.Name, "column %s has unsupported type %q; mapped to text", c.Name, c.Type))
		}
		if f.Mapping.Enum != nil {
			f.Enum = b.enum(typ.Name, c, f.Mapping.Enum)
			typ.Enums = append(typ.Enums, f.Enum)
		}
		if f.Mapping.Transform != "" && !slices.Contains(typ.Transforms, f.Mapping.Transform) {
			typ.Transforms = append(typ.Transforms, f.Mapping.Transform)
		}
		if f.Primary {
			typ.ID = append(typ.ID, f)
		}
		typ.Fields = append(typ.Fields, f)
	}
	switch pk := t.PrimaryKey(); {
	case len(pk) == 0:
		warnings = append(warnings, warnf(t.Name, "table has no primary key; velox will add an id column"))
	case len(pk) == 1 && alias == nil && !strings.EqualFold(pk[0].Name, "id"):
		warnings = append(warnings, warnf(t.Name, "primary key %s cannot be exposed as id and is kept as a regular field", pk[0].Name))
	}
	slices.Sort(typ.Transforms)
	for _, r := range rels {
		e := &Edge{Relation: r, Type: b.names[r.Target]}
		if r.Rel == O2O {
			if f, ok := typ.fieldOf(r.Column); ok {
				e.Immutable = f.Primary
			}
		}
		if r.Through != "" {
			e.ThroughType = b.names[r.Through]
		}
		typ.Edges = append(typ.Edges, e)
		for _, ref := range []string{e.Type, e.ThroughType} {
			if ref != "" && ref != typ.Name && !slices.Contains(typ.References, ref) {
				typ.References = append(typ.References, ref)
			}
		}
	}
	slices.Sort(typ.References)
	return typ, warnings
}

// enum allocates the Go names of an inline enum type and its constants.
func (b *typeBuilder) enum(typeName string, c *load.Column, e *typemap.Enum) *Enum {
	en := &Enum{
		Name:   b.enums.take(typeName+b.namer.Pascal(c.Name), "Enum"),
		Column: c.Name,
	}
	for _, m := range e.Members {
		en.Members = append(en.Members, EnumValue{Const: en.Name + m.Name, Value: m.Value})
	}
	return en
}
