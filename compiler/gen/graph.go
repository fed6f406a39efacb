package gen

import (
	"slices"
	"strconv"
	"strings"

	"github.com/syssam/veloximport/compiler/load"
	"github.com/syssam/veloximport/compiler/naming"
	"github.com/syssam/veloximport/compiler/typemap"
)

// Identifiers declared by the entry file.
const (
	schemasVar = "Schemas"
	tablesVar  = "Tables"
)

// reserved holds the package-level names a table type may not take.
var reserved = []string{schemasVar, tablesVar, typemap.BigIntText, typemap.TinyIntBool}

// Graph holds the schema types of a catalog and the relations between them.
type Graph struct {
	*Config
	// Nodes are the types of the graph, in table order.
	Nodes []*Type
	// Relations is the inferred relation graph.
	Relations *Relations
	// Entry is the file name of the aggregate entry file.
	Entry string
	// Warnings collects every non-fatal finding.
	Warnings []Warning
}

// NewGraph builds the graph of the given tables. Relation inference runs once
// over the complete table set before any type is built.
func NewGraph(c *Config, tables []*load.Table) (*Graph, error) {
	if c == nil {
		return nil, NewConfigError("Config", nil, "config cannot be nil")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if len(tables) == 0 {
		return nil, NewSchemaError("", "no tables to generate", nil)
	}
	for _, t := range tables {
		if len(t.Columns) == 0 {
			return nil, NewSchemaError(t.Name, "table has no columns; it may have been dropped while the catalog was read", nil)
		}
	}
	namer := c.namer()
	g := &Graph{Config: c, Relations: Infer(tables, namer)}
	g.Warnings = slices.Clone(g.Relations.Warnings)

	types := newNameSet(reserved...)
	names := make(map[string]string, len(tables))
	for _, t := range tables {
		want := namer.TypeName(t.Name)
		if slices.Contains(reserved, want) {
			want += "Schema"
		}
		name := types.take(want, "")
		if name != want {
			g.Warnings = append(g.Warnings, warnf(t.Name, "type name %s is already taken; using %s", want, name))
		}
		names[t.Name] = name
	}

	files := newNameSet()
	b := &typeBuilder{namer: namer, rels: g.Relations, names: names, enums: types}
	for _, t := range tables {
		typ, warnings := b.build(t, files.take(fileName(names[t.Name]), "_schema")+".go")
		g.Nodes = append(g.Nodes, typ)
		g.Warnings = append(g.Warnings, warnings...)
	}
	g.Entry = files.take("schema", "_entry") + ".go"
	return g, nil
}

// Transforms returns the value transforms used anywhere in the graph.
func (g *Graph) Transforms() []string {
	var ts []string
	for _, n := range g.Nodes {
		for _, t := range n.Transforms {
			if !slices.Contains(ts, t) {
				ts = append(ts, t)
			}
		}
	}
	slices.Sort(ts)
	return ts
}

// Type returns the type generated for a table.
func (g *Graph) Type(table string) (*Type, bool) {
	i := slices.IndexFunc(g.Nodes, func(t *Type) bool { return t.Table == table })
	if i < 0 {
		return nil, false
	}
	return g.Nodes[i], true
}

// nameSet hands out unique names.
type nameSet struct {
	used map[string]bool
}

func newNameSet(taken ...string) *nameSet {
	s := &nameSet{used: make(map[string]bool)}
	for _, n := range taken {
		s.used[strings.ToLower(n)] = true
	}
	return s
}

// take returns name if free, then name+suffix, then name+suffix+N.
// Names are compared case-insensitively, as file systems may do.
func (s *nameSet) take(name, suffix string) string {
	candidate := name
	if s.used[strings.ToLower(candidate)] && suffix != "" {
		candidate = name + suffix
	}
	for i := 2; s.used[strings.ToLower(candidate)]; i++ {
		candidate = name + suffix + strconv.Itoa(i)
	}
	s.used[strings.ToLower(candidate)] = true
	return candidate
}

// fileName returns the base file name of a type. Suffixes the go tool
// treats as build constraints are avoided.
func fileName(typeName string) string {
	name := naming.Snake(typeName)
	if i := strings.LastIndexByte(name, '_'); i > 0 && constrained[name[i+1:]] {
		name += "_schema"
	}
	return name
}

// constrained holds the file name suffixes with a meaning to the go tool.
var constrained = func() map[string]bool {
	m := map[string]bool{"test": true}
	for _, s := range strings.Fields(goosList + " " + goarchList) {
		m[s] = true
	}
	return m
}()

const (
	goosList   = "aix android darwin dragonfly freebsd hurd illumos ios js linux nacl netbsd openbsd plan9 solaris wasip1 windows zos"
	goarchList = "386 amd64 amd64p32 arm armbe arm64 arm64be loong64 mips mipsle mips64 mips64le mips64p32 mips64p32le ppc ppc64 ppc64le riscv riscv64 s390 s390x sparc sparc64 wasm"
)
