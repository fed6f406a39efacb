package gen

import (
	"slices"
	"strings"

	"github.com/syssam/veloximport/compiler/load"
	"github.com/syssam/veloximport/compiler/naming"
)

// resolver tracks the member names of one entity. Names are compared by
// their Go form, since that is where generated accessors would clash.
// The first claimant of a name keeps it.
type resolver struct {
	namer  *naming.Namer
	taken  map[string]string // Go name => description of the owner
	order  []string          // claim order, for rollback
	marked int
}

// newResolver seeds the resolver with the columns of t and, when the primary
// key is exposed as "id", with that alias.
func newResolver(t *load.Table, namer *naming.Namer) *resolver {
	r := &resolver{namer: namer, taken: make(map[string]string)}
	for _, c := range t.Columns {
		r.claim(c.Name, "column "+c.Name)
	}
	if c := idAlias(t); c != nil {
		r.claim("id", "primary key "+c.Name)
	}
	return r
}

// claim registers name and reports whether it was free.
func (r *resolver) claim(name, owner string) bool {
	key := r.namer.Pascal(name)
	if _, ok := r.taken[key]; ok {
		return false
	}
	r.taken[key] = owner
	r.order = append(r.order, key)
	return true
}

// owner describes the member holding name.
func (r *resolver) owner(name string) string {
	return r.taken[r.namer.Pascal(name)]
}

// mark records the current state for a later rollback.
func (r *resolver) mark() { r.marked = len(r.order) }

// rollback releases every name claimed since the last mark.
func (r *resolver) rollback() {
	for _, key := range r.order[r.marked:] {
		delete(r.taken, key)
	}
	r.order = r.order[:r.marked]
}

// idAlias returns the primary key column exposed under the name "id", or nil
// when the table keeps its column names. Only a single-column key that is not
// already named id, does not shadow another id column, and is not itself a
// foreign key is aliased.
func idAlias(t *load.Table) *load.Column {
	pk := t.PrimaryKey()
	if len(pk) != 1 || slices.ContainsFunc(t.Columns, func(c *load.Column) bool { return strings.EqualFold(c.Name, "id") }) {
		return nil
	}
	if slices.ContainsFunc(t.ForeignKeys, func(fk *load.ForeignKey) bool { return fk.Column == pk[0].Name }) {
		return nil
	}
	return pk[0]
}
