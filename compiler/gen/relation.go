package gen

import (
	"slices"
	"strconv"
	"strings"

	"github.com/syssam/veloximport/compiler/load"
	"github.com/syssam/veloximport/compiler/naming"
)

// Rel is a relation kind.
type Rel int

// Relation kinds.
const (
	Unk Rel = iota
	O2O     // forward: the owning table holds the foreign key column
	O2M     // inverse of a forward relation
	M2M     // through a junction table
)

// String returns the relation kind name.
func (r Rel) String() string {
	switch r {
	case O2O:
		return "O2O"
	case O2M:
		return "O2M"
	case M2M:
		return "M2M"
	default:
		return "Unk"
	}
}

// Relation is one relation property emitted on a table's entity.
type Relation struct {
	Rel Rel
	// Name is the snake case property name.
	Name string
	// Table is the table the relation is emitted on.
	Table string
	// Target is the related table.
	Target string
	// Column is the foreign key column. It lives on Table for O2O
	// and on Target for O2M.
	Column string
	// Ref is the name of the counterpart relation on Target, if any.
	Ref string
	// Through is the junction table of an M2M relation.
	Through string
	// ThroughName is the property name of the junction edge.
	ThroughName string
	// Owner reports whether an M2M side holds the association.
	Owner bool
	// Required reports whether the foreign key column is NOT NULL.
	Required bool

	inverse *Relation // O2O: paired inverse
	forward *Relation // O2M: paired forward
	other   *Relation // M2M: the other side
}

// ManyToMany is one junction-backed association, recorded once per schema.
type ManyToMany struct {
	Left, Right string // sorted
	Through     string
}

// Relations is the relation graph of a catalog.
type Relations struct {
	Forward    map[string][]*Relation
	Inverse    map[string][]*Relation
	ManyToMany map[string][]*Relation
	// Pairs lists every junction-backed association once.
	Pairs []ManyToMany
	// Junctions holds the tables detected as pure junctions.
	Junctions map[string]bool
	Warnings  []Warning
}

// Of returns all relations emitted on a table in declaration order:
// forward, inverse, then many-to-many.
func (r *Relations) Of(table string) []*Relation {
	return slices.Concat(r.Forward[table], r.Inverse[table], r.ManyToMany[table])
}

func (r *Relations) warn(table, format string, args ...any) {
	r.Warnings = append(r.Warnings, warnf(table, format, args...))
}

// Infer derives the relation graph of the given tables. It must see every
// table of the catalog at once: inverse and many-to-many relations depend on
// tables other than the one holding the foreign key. A nil namer uses
// naming.Default.
func Infer(tables []*load.Table, namer *naming.Namer) *Relations {
	if namer == nil {
		namer = naming.Default
	}
	inf := &inferrer{
		namer:  namer,
		byName: make(map[string]*load.Table, len(tables)),
		names:  make(map[string]*resolver, len(tables)),
		rels: &Relations{
			Forward:    make(map[string][]*Relation),
			Inverse:    make(map[string][]*Relation),
			ManyToMany: make(map[string][]*Relation),
			Junctions:  make(map[string]bool),
		},
	}
	for _, t := range tables {
		inf.byName[t.Name] = t
		inf.names[t.Name] = newResolver(t, namer)
	}
	junctions := inf.junctions(tables)
	for _, t := range tables {
		inf.forward(t)
	}
	for _, t := range tables {
		if inf.rels.Junctions[t.Name] {
			continue
		}
		inf.inverse(t)
	}
	for _, j := range junctions {
		inf.manyToMany(j)
	}
	inf.link()
	return inf.rels
}

type inferrer struct {
	namer  *naming.Namer
	byName map[string]*load.Table
	names  map[string]*resolver
	rels   *Relations
}

// relName is the relation name derived from a table's type name.
func (inf *inferrer) relName(table string) string {
	return naming.Snake(inf.namer.TypeName(table))
}

// junction is a detected junction table and its two sides.
type junction struct {
	table       string
	left, right *load.ForeignKey
}

// junctions detects pure junction tables: exactly two columns, both part of
// the primary key, each referencing a different table.
func (inf *inferrer) junctions(tables []*load.Table) []junction {
	var (
		found []junction
		pairs = make(map[[2]string]string)
	)
	for _, t := range tables {
		if len(t.Columns) != 2 || !t.Columns[0].Primary() || !t.Columns[1].Primary() {
			continue
		}
		groups := load.Constraints(t.ForeignKeys)
		if len(groups) != 2 || len(groups[0]) != 1 || len(groups[1]) != 1 {
			continue
		}
		a, b := groups[0][0], groups[1][0]
		if a.Column == b.Column || inf.byName[a.RefTable] == nil || inf.byName[b.RefTable] == nil {
			continue
		}
		if a.RefTable == b.RefTable {
			inf.rels.warn(t.Name, "self-referencing junction on %s is not supported as many-to-many; emitted as a regular table", a.RefTable)
			continue
		}
		if b.RefTable < a.RefTable {
			a, b = b, a
		}
		inf.rels.Junctions[t.Name] = true
		key := [2]string{a.RefTable, b.RefTable}
		if prev, ok := pairs[key]; ok {
			inf.rels.warn(t.Name, "junction for %s and %s already provided by %s; ignored", a.RefTable, b.RefTable, prev)
			continue
		}
		pairs[key] = t.Name
		found = append(found, junction{table: t.Name, left: a, right: b})
	}
	return found
}

// forward adds one relation per single-column foreign key of t, in column
// ordinal order.
func (inf *inferrer) forward(t *load.Table) {
	groups := load.Constraints(t.ForeignKeys)
	slices.SortStableFunc(groups, func(a, b []*load.ForeignKey) int {
		return position(t, a[0].Column) - position(t, b[0].Column)
	})
	used := make(map[string]bool)
	for _, g := range groups {
		fk := g[0]
		switch {
		case len(g) > 1:
			inf.rels.warn(t.Name, "multi-column foreign key %s is not supported; skipped", fk.Constraint)
			continue
		case inf.byName[fk.RefTable] == nil:
			inf.rels.warn(t.Name, "foreign key %s references unknown table %s; skipped", fk.Constraint, fk.RefTable)
			continue
		}
		ref := inf.relName(fk.RefTable)
		name := ref
		if fk.RefTable == t.Name {
			name = columnRelName(fk.Column, ref)
		}
		if used[name] {
			name = columnRelName(fk.Column, ref)
		}
		if used[name] {
			name = naming.Snake(fk.Column) + "_" + ref
		}
		for i := 2; used[name]; i++ {
			name = naming.Snake(fk.Column) + "_" + ref + strconv.Itoa(i)
		}
		used[name] = true
		rel := &Relation{
			Rel:    O2O,
			Name:   name,
			Table:  t.Name,
			Target: fk.RefTable,
			Column: fk.Column,
		}
		if c := t.Column(fk.Column); c != nil {
			rel.Required = !c.Nullable
		}
		if !inf.names[t.Name].claim(name, "relation to "+fk.RefTable) {
			inf.rels.warn(t.Name, "relation %q collides with %s; skipped", name, inf.names[t.Name].owner(name))
			continue
		}
		inf.rels.Forward[t.Name] = append(inf.rels.Forward[t.Name], rel)
	}
}

// inverse adds, on every table referenced by t, one relation back to t.
// It pairs with the first surviving forward relation of t to that table.
func (inf *inferrer) inverse(t *load.Table) {
	seen := make(map[string]bool)
	for _, fwd := range inf.rels.Forward[t.Name] {
		if seen[fwd.Target] {
			continue
		}
		seen[fwd.Target] = true
		name := inf.namer.Plural(inf.relName(t.Name))
		if !inf.names[fwd.Target].claim(name, "inverse relation from "+t.Name) {
			inf.rels.warn(fwd.Target, "inverse relation %q from %s collides with %s; skipped", name, t.Name, inf.names[fwd.Target].owner(name))
			continue
		}
		inv := &Relation{
			Rel:     O2M,
			Name:    name,
			Table:   fwd.Target,
			Target:  t.Name,
			Column:  fwd.Column,
			forward: fwd,
		}
		fwd.inverse = inv
		inf.rels.Inverse[fwd.Target] = append(inf.rels.Inverse[fwd.Target], inv)
	}
}

// manyToMany adds both sides of a junction-backed association. Both sides
// survive or neither does.
func (inf *inferrer) manyToMany(j junction) {
	left, right := j.left.RefTable, j.right.RefTable
	through := inf.namer.Plural(inf.relName(j.table))
	ln, rn := inf.namer.Plural(inf.relName(right)), inf.namer.Plural(inf.relName(left))
	lr, rr := inf.names[left], inf.names[right]
	lr.mark()
	rr.mark()
	ok := lr.claim(ln, "many-to-many relation through "+j.table) &&
		lr.claim(through, "junction edge of "+j.table) &&
		rr.claim(rn, "many-to-many relation through "+j.table) &&
		rr.claim(through, "junction edge of "+j.table)
	if !ok {
		lr.rollback()
		rr.rollback()
		inf.rels.warn(j.table, "many-to-many relation between %s and %s collides with existing members; skipped", left, right)
		return
	}
	l := &Relation{Rel: M2M, Name: ln, Table: left, Target: right, Through: j.table, ThroughName: through, Owner: true, Column: j.left.Column}
	r := &Relation{Rel: M2M, Name: rn, Table: right, Target: left, Through: j.table, ThroughName: through, Column: j.right.Column}
	l.other, r.other = r, l
	inf.rels.ManyToMany[left] = append(inf.rels.ManyToMany[left], l)
	inf.rels.ManyToMany[right] = append(inf.rels.ManyToMany[right], r)
	inf.rels.Pairs = append(inf.rels.Pairs, ManyToMany{Left: left, Right: right, Through: j.table})
}

// link fills the Ref names of surviving pairs.
func (inf *inferrer) link() {
	for _, rels := range inf.rels.Inverse {
		for _, inv := range rels {
			inv.Ref = inv.forward.Name
			inv.forward.Ref = inv.Name
		}
	}
	for _, rels := range inf.rels.ManyToMany {
		for _, r := range rels {
			r.Ref = r.other.Name
		}
	}
}

// columnRelName names a relation after its foreign key column:
// parent_id => parent. Columns without an _id suffix get the target appended.
func columnRelName(column, ref string) string {
	s := naming.Snake(column)
	if base, ok := strings.CutSuffix(s, "_id"); ok && base != "" {
		return base
	}
	return s + "_" + ref
}

func position(t *load.Table, column string) int {
	if c := t.Column(column); c != nil {
		return c.Position
	}
	return 0
}
