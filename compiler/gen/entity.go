package gen

import (
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/syssam/veloximport/compiler/typemap"
)

// multi renders a composite literal with one element per line.
var multi = jen.Options{
	Open:      "{",
	Close:     "}",
	Separator: ",",
	Multi:     true,
}

// newFile creates a new Jennifer file with the header comment and the velox
// import names registered, so no import aliases are rendered.
func (g *Generator) newFile() *jen.File {
	f := jen.NewFile(g.graph.Package)
	f.HeaderComment(g.graph.header())
	f.ImportName(g.graph.veloxPkg(), "velox")
	f.ImportName(g.graph.schemaPkg(), "schema")
	f.ImportName(g.graph.fieldPkg(), "field")
	f.ImportName(g.graph.edgePkg(), "edge")
	f.ImportName(g.graph.dialectPkg(), "dialect")
	f.ImportName(g.graph.sqlschemaPkg(), "sqlschema")
	return f
}

// genEntity generates the schema file of one table.
func (g *Generator) genEntity(t *Type) *jen.File {
	f := g.newFile()
	for _, e := range t.Enums {
		g.genEnum(f, e)
	}

	f.Commentf("%s holds the schema definition for the %s table.", t.Name, t.Table)
	if t.Comment != "" {
		f.Comment(comment(t.Comment))
	}
	f.Type().Id(t.Name).Struct(jen.Qual(g.graph.veloxPkg(), "Schema"))

	f.Commentf("Fields of the %s.", t.Name)
	f.Func().Params(jen.Id(t.Name)).Id("Fields").Params().Index().Qual(g.graph.veloxPkg(), "Field").Block(
		jen.Return(jen.Index().Qual(g.graph.veloxPkg(), "Field").CustomFunc(multi, func(grp *jen.Group) {
			for _, fd := range t.Fields {
				code := g.fieldCode(fd)
				if c := fd.Column.Comment; c != "" {
					code = jen.Comment(comment(c)).Line().Add(code)
				}
				grp.Add(code)
			}
		})),
	)

	if len(t.Edges) > 0 {
		f.Commentf("Edges of the %s.", t.Name)
		f.Func().Params(jen.Id(t.Name)).Id("Edges").Params().Index().Qual(g.graph.veloxPkg(), "Edge").Block(
			jen.Return(jen.Index().Qual(g.graph.veloxPkg(), "Edge").CustomFunc(multi, func(grp *jen.Group) {
				for _, e := range t.Edges {
					grp.Add(g.edgeCode(e))
				}
			})),
		)
	}

	f.Commentf("Annotations of the %s.", t.Name)
	f.Func().Params(jen.Id(t.Name)).Id("Annotations").Params().Index().Qual(g.graph.schemaPkg(), "Annotation").Block(
		jen.Return(jen.Index().Qual(g.graph.schemaPkg(), "Annotation").CustomFunc(multi, func(grp *jen.Group) {
			grp.Qual(g.graph.sqlschemaPkg(), "Table").Call(jen.Lit(t.Table))
			if t.HasCompositeID() {
				grp.Qual(g.graph.fieldPkg(), "ID").CallFunc(func(ids *jen.Group) {
					for _, fd := range t.ID {
						ids.Lit(fd.Name)
					}
				})
			}
		})),
	)
	return f
}

// genEnum declares the Go type of an inline enum, its constants and the
// Values method velox uses to read the members.
func (g *Generator) genEnum(f *jen.File, e *Enum) {
	f.Commentf("%s is the type of the %s column.", e.Name, e.Column)
	f.Type().Id(e.Name).String()
	f.Commentf("%s values.", e.Name)
	f.Const().DefsFunc(func(grp *jen.Group) {
		for _, m := range e.Members {
			grp.Id(m.Const).Id(e.Name).Op("=").Lit(m.Value)
		}
	})
	f.Commentf("Values returns the members of %s in declaration order.", e.Name)
	f.Func().Params(jen.Id(e.Name)).Id("Values").Params().Index().String().Block(
		jen.Return(jen.Index().String().CustomFunc(multi, func(grp *jen.Group) {
			for _, m := range e.Members {
				grp.String().Call(jen.Id(m.Const))
			}
		})),
	)
}

// fieldCode renders the field builder chain of one column.
func (g *Generator) fieldCode(fd *Field) *jen.Statement {
	var (
		c    = fd.Column
		m    = fd.Mapping
		code = g.fieldBuilder(fd)
		ann  []jen.Code
	)
	if m.Length > 0 && isSized(m.Storage) {
		code = chain(code, "MaxLen", jen.Lit(int(m.Length)))
	}
	if needsSchemaType(m) {
		code = chain(code, "SchemaType", jen.Map(jen.String()).String().Values(jen.Dict{
			jen.Qual(g.graph.dialectPkg(), "MySQL"): jen.Lit(c.Type),
		}))
	}
	if fd.StorageKey != "" {
		code = chain(code, "StorageKey", jen.Lit(fd.StorageKey))
	}
	if c.Nullable {
		code = chain(code, "Optional")
		code = chain(code, "Nillable")
	}
	if c.Unique() {
		code = chain(code, "Unique")
	}
	if fd.Primary {
		code = chain(code, "Immutable")
		if fd.Name == "id" && !c.AutoIncrement() {
			ann = append(ann, jen.Qual(g.graph.sqlschemaPkg(), "Annotation").Values(jen.Dict{
				jen.Id("Incremental"): jen.New(jen.Bool()),
			}))
		}
	}
	if c.Default != nil {
		if def, ok := g.defaultValue(fd); ok {
			code = chain(code, "Default", def)
		} else {
			ann = append(ann, g.defaultAnnotation(fd))
		}
	}
	if c.OnUpdateNow() && m.Type == typemap.TypeTime {
		code = chain(code, "UpdateDefault", jen.Qual("time", "Now"))
	}
	if m.Transform != "" {
		code = chain(code, "ValueScanner", jen.Id(m.Transform))
	}
	if len(ann) > 0 {
		code = chain(code, "Annotations", ann...)
	}
	if c.Comment != "" {
		code = chain(code, "Comment", jen.Lit(c.Comment))
	}
	return code
}

// fieldBuilder returns the field constructor for the logical type.
func (g *Generator) fieldBuilder(fd *Field) *jen.Statement {
	ctor := func(name string, args ...jen.Code) *jen.Statement {
		return jen.Qual(g.graph.fieldPkg(), name).Call(append([]jen.Code{jen.Lit(fd.Name)}, args...)...)
	}
	m := fd.Mapping
	switch m.Type {
	case typemap.TypeBool:
		return ctor("Bool")
	case typemap.TypeInt8:
		return ctor("Int8")
	case typemap.TypeUint8:
		return ctor("Uint8")
	case typemap.TypeInt16:
		return ctor("Int16")
	case typemap.TypeUint16:
		return ctor("Uint16")
	case typemap.TypeInt32:
		return ctor("Int32")
	case typemap.TypeUint32:
		return ctor("Uint32")
	case typemap.TypeInt64:
		return ctor("Int64")
	case typemap.TypeUint64:
		return ctor("Uint64")
	case typemap.TypeFloat32:
		return ctor("Float32")
	case typemap.TypeFloat64:
		return ctor("Float")
	case typemap.TypeTime:
		return ctor("Time")
	case typemap.TypeBytes:
		return ctor("Bytes")
	case typemap.TypeJSON:
		return ctor("JSON", jen.Qual("encoding/json", "RawMessage").Values())
	case typemap.TypeEnum:
		return chain(ctor("Enum"), "GoType", jen.Id(fd.Enum.Name).Call(jen.Lit("")))
	case typemap.TypeString:
		if isText(m.Storage) {
			return ctor("Text")
		}
	}
	return ctor("String")
}

// edgeCode renders the edge builder chain of one relation.
func (g *Generator) edgeCode(e *Edge) *jen.Statement {
	target := jen.Id(e.Type).Values()
	switch e.Rel {
	case O2O:
		var code *jen.Statement
		if e.Ref != "" {
			code = chain(g.edge("From", e.Name, target), "Ref", jen.Lit(e.Ref))
		} else {
			code = g.edge("To", e.Name, target)
		}
		code = chain(code, "Field", jen.Lit(e.Column))
		code = chain(code, "Unique")
		if e.Required {
			code = chain(code, "Required")
		}
		if e.Immutable {
			code = chain(code, "Immutable")
		}
		return code
	case O2M:
		return g.edge("To", e.Name, target)
	default:
		through := []jen.Code{jen.Lit(e.ThroughName), jen.Id(e.ThroughType).Values()}
		if e.Owner {
			return chain(g.edge("To", e.Name, target), "Through", through...)
		}
		code := chain(g.edge("From", e.Name, target), "Ref", jen.Lit(e.Ref))
		return chain(code, "Through", through...)
	}
}

func (g *Generator) edge(fn, name string, target jen.Code) *jen.Statement {
	return jen.Qual(g.graph.edgePkg(), fn).Call(jen.Lit(name), target)
}

var nowExpr = regexp.MustCompile(`(?i)^(current_timestamp|now|localtime|localtimestamp)(\(\d*\))?$`)

// defaultValue returns the Default argument of a field, if the column default
// can be expressed in Go.
func (g *Generator) defaultValue(fd *Field) (jen.Code, bool) {
	var (
		raw = *fd.Column.Default
		m   = fd.Mapping
	)
	if m.Type == typemap.TypeTime {
		if nowExpr.MatchString(raw) {
			return jen.Qual("time", "Now"), true
		}
		return nil, false
	}
	if fd.Column.DefaultGenerated() {
		return nil, false
	}
	switch m.Type {
	case typemap.TypeBool:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			if b, err := strconv.ParseBool(raw); err == nil {
				return jen.Lit(b), true
			}
			return nil, false
		}
		return jen.Lit(n != 0), true
	case typemap.TypeInt8, typemap.TypeInt16, typemap.TypeInt32:
		n, err := strconv.ParseInt(raw, 10, bitSize(m.Type))
		if err != nil {
			return nil, false
		}
		return jen.Lit(int(n)), true
	case typemap.TypeUint8, typemap.TypeUint16, typemap.TypeUint32:
		n, err := strconv.ParseUint(raw, 10, bitSize(m.Type))
		if err != nil {
			return nil, false
		}
		return jen.Lit(int(n)), true
	case typemap.TypeInt64:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, false
		}
		return jen.Lit(n), true
	case typemap.TypeUint64:
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return nil, false
		}
		return jen.Lit(n), true
	case typemap.TypeFloat32, typemap.TypeFloat64:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, false
		}
		return jen.Lit(n), true
	case typemap.TypeString:
		if m.Transform == typemap.BigIntText {
			if _, err := strconv.ParseInt(raw, 10, 64); err != nil {
				if _, err := strconv.ParseUint(raw, 10, 64); err != nil {
					return nil, false
				}
			}
		}
		return jen.Lit(raw), true
	case typemap.TypeEnum:
		if slices.Contains(fd.Enum.Values(), raw) {
			return jen.Lit(raw), true
		}
	}
	return nil, false
}

// defaultAnnotation keeps a database default that has no Go form.
func (g *Generator) defaultAnnotation(fd *Field) jen.Code {
	raw := *fd.Column.Default
	if fd.Column.DefaultGenerated() {
		return jen.Qual(g.graph.sqlschemaPkg(), "DefaultExpr").Call(jen.Lit(raw))
	}
	return jen.Qual(g.graph.sqlschemaPkg(), "Default").Call(jen.Lit(sqlQuote(raw)))
}

// chain appends .name(args...) on a new line.
func chain(s *jen.Statement, name string, args ...jen.Code) *jen.Statement {
	return s.Op(".").Line().Id(name).Call(args...)
}

// needsSchemaType reports whether the velox default column type would differ
// from the physical one.
func needsSchemaType(m typemap.Mapping) bool {
	switch {
	case m.Type == typemap.TypeUntyped, m.Transform != "", m.Unsigned:
		return true
	}
	switch m.Storage {
	case "bigint", "decimal", "numeric", "time", "year", "char", "binary", "date", "datetime", "mediumint",
		"tinytext", "text", "mediumtext", "longtext", "tinyblob", "mediumblob", "longblob":
		return true
	}
	return false
}

func isSized(storage string) bool {
	switch storage {
	case "char", "varchar", "binary", "varbinary":
		return true
	}
	return false
}

func isText(storage string) bool {
	switch storage {
	case "text", "mediumtext", "longtext":
		return true
	}
	return false
}

func bitSize(t typemap.Type) int {
	switch t {
	case typemap.TypeInt8, typemap.TypeUint8:
		return 8
	case typemap.TypeInt16, typemap.TypeUint16:
		return 16
	default:
		return 32
	}
}

// sqlQuote quotes s as a SQL string literal.
func sqlQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// comment renders a catalog comment as one line comment.
func comment(s string) string {
	return "// " + strings.Join(strings.Fields(s), " ")
}
