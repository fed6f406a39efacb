package load

import (
	"path"
	"slices"
	"strings"
)

// Catalog is a read-only snapshot of the tables of one database.
type Catalog struct {
	Database string   `json:"database,omitempty"`
	Tables   []*Table `json:"tables,omitempty"`
}

// Table returns the table with the given name, or nil.
func (c *Catalog) Table(name string) *Table {
	for _, t := range c.Tables {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// Table represents one base table read from information_schema.
type Table struct {
	Name        string        `json:"name"`
	Comment     string        `json:"comment,omitempty"`
	Columns     []*Column     `json:"columns,omitempty"`
	ForeignKeys []*ForeignKey `json:"foreign_keys,omitempty"`
}

// Column returns the column with the given name, or nil.
func (t *Table) Column(name string) *Column {
	for _, c := range t.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// PrimaryKey returns the primary key columns in ordinal order.
func (t *Table) PrimaryKey() []*Column {
	var pk []*Column
	for _, c := range t.Columns {
		if c.Primary() {
			pk = append(pk, c)
		}
	}
	return pk
}

// Column represents a table column as reported by information_schema.COLUMNS.
type Column struct {
	Name string `json:"name"`
	// Type is the raw COLUMN_TYPE, e.g. "varchar(255)" or "enum('a','b')".
	Type     string  `json:"type"`
	Key      string  `json:"key,omitempty"`
	Nullable bool    `json:"nullable,omitempty"`
	Default  *string `json:"default,omitempty"`
	Extra    string  `json:"extra,omitempty"`
	Comment  string  `json:"comment,omitempty"`
	Position int     `json:"position"`
}

// Primary reports whether the column is part of the primary key.
func (c *Column) Primary() bool { return c.Key == "PRI" }

// Unique reports whether the column carries a single-column unique key.
func (c *Column) Unique() bool { return c.Key == "UNI" }

// AutoIncrement reports whether the database generates the column value.
func (c *Column) AutoIncrement() bool { return c.hasExtra("auto_increment") }

// DefaultGenerated reports whether the default is an expression.
func (c *Column) DefaultGenerated() bool { return c.hasExtra("default_generated") }

// OnUpdateNow reports whether the column is refreshed on every update.
func (c *Column) OnUpdateNow() bool { return c.hasExtra("on update current_timestamp") }

func (c *Column) hasExtra(flag string) bool {
	return strings.Contains(strings.ToLower(c.Extra), flag)
}

// ForeignKey is one column of a foreign key constraint. It is directionless:
// Table and Column name the owning side.
type ForeignKey struct {
	Constraint string `json:"constraint"`
	Table      string `json:"table"`
	Column     string `json:"column"`
	RefTable   string `json:"ref_table"`
	RefColumn  string `json:"ref_column"`
}

// Constraints groups the foreign keys of a table by constraint name,
// preserving the order in which constraints first appear.
func Constraints(fks []*ForeignKey) [][]*ForeignKey {
	var (
		groups [][]*ForeignKey
		index  = make(map[string]int)
	)
	for _, fk := range fks {
		i, ok := index[fk.Constraint]
		if !ok {
			i = len(groups)
			index[fk.Constraint] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], fk)
	}
	return groups
}

// Excluded reports whether the table name matches one of the patterns.
// Patterns use path.Match syntax; invalid patterns match literally.
func Excluded(name string, patterns []string) bool {
	return slices.ContainsFunc(patterns, func(p string) bool {
		ok, err := path.Match(p, name)
		return (err == nil && ok) || p == name
	})
}
