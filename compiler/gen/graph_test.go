package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/veloximport/compiler/load"
	"github.com/syssam/veloximport/compiler/typemap"
)

func testConfig(t *testing.T, opts ...Option) *Config {
	t.Helper()
	cfg, err := NewConfig(append([]Option{WithTarget(t.TempDir()), WithPackage("schema"), WithClock(fixedClock)}, opts...)...)
	require.NoError(t, err)
	return cfg
}

func testGraph(t *testing.T, tables []*load.Table, opts ...Option) *Graph {
	t.Helper()
	g, err := NewGraph(testConfig(t, opts...), tables)
	require.NoError(t, err)
	return g
}

func warnings(ws []Warning) []string {
	var ss []string
	for _, w := range ws {
		ss = append(ss, w.String())
	}
	return ss
}

func TestNewGraph_Errors(t *testing.T) {
	_, err := NewGraph(nil, authorBook())
	assert.True(t, IsConfigError(err))

	_, err = NewGraph(&Config{}, authorBook())
	assert.True(t, IsConfigError(err))

	_, err = NewGraph(testConfig(t), nil)
	assert.True(t, IsSchemaError(err))
	assert.ErrorIs(t, err, ErrInvalidSchema)

	tables := authorBook()
	tables[1].Columns = nil
	_, err = NewGraph(testConfig(t), tables)
	var serr *SchemaError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "book", serr.Table)
	assert.Contains(t, err.Error(), "table has no columns")
}

func TestNewGraph_AuthorBook(t *testing.T) {
	g := testGraph(t, authorBook())
	require.Len(t, g.Nodes, 2)
	assert.Empty(t, g.Warnings)
	assert.Equal(t, "schema.go", g.Entry)

	author, ok := g.Type("author")
	require.True(t, ok)
	assert.Equal(t, "Author", author.Name)
	assert.Equal(t, "author.go", author.File)
	assert.True(t, author.HasPrimaryKey())
	assert.False(t, author.HasCompositeID())
	assert.Equal(t, []string{"Book"}, author.References)
	books, ok := author.Edge("books")
	require.True(t, ok)
	assert.Equal(t, "Book", books.Type)
	assert.Equal(t, O2M, books.Rel)

	book, ok := g.Type("book")
	require.True(t, ok)
	fd, ok := book.Field("author_id")
	require.True(t, ok)
	assert.False(t, fd.Nullable())
	assert.Equal(t, "author_id", fd.StorageName())
	e, ok := book.Edge("author")
	require.True(t, ok)
	assert.Equal(t, "Author", e.Type)
	assert.Equal(t, "books", e.Ref)

	_, ok = g.Type("missing")
	assert.False(t, ok)
}

func TestNewGraph_TypeNames(t *testing.T) {
	g := testGraph(t, []*load.Table{
		table("tables", []*load.Column{pk()}),
		table("user", []*load.Column{pk()}),
		table("User", []*load.Column{pk()}),
		table("2fa_codes", []*load.Column{pk()}),
	})
	var got []string
	for _, n := range g.Nodes {
		got = append(got, n.Name)
	}
	assert.Equal(t, []string{"TablesSchema", "User", "User2", "T2faCodes"}, got)
	assert.Contains(t, warnings(g.Warnings), "User: type name User is already taken; using User2")
}

func TestNewGraph_FileNames(t *testing.T) {
	g := testGraph(t, []*load.Table{
		table("schema", []*load.Column{pk()}),
		table("user_test", []*load.Column{pk()}),
		table("build_linux", []*load.Column{pk()}),
		table("linux", []*load.Column{pk()}),
	})
	var got []string
	for _, n := range g.Nodes {
		got = append(got, n.File)
	}
	assert.Equal(t, []string{"schema.go", "user_test_schema.go", "build_linux_schema.go", "linux.go"}, got)
	assert.Equal(t, "schema_entry.go", g.Entry)
}

func TestNewGraph_IDAlias(t *testing.T) {
	g := testGraph(t, []*load.Table{
		table("author", []*load.Column{
			{Name: "author_id", Type: "int unsigned", Key: "PRI", Extra: "auto_increment"},
			column("name", "varchar(100)", ""),
		}),
		table("profile", []*load.Column{
			column("author_id", "int unsigned", "PRI"),
			column("bio", "text", ""),
		}, fk("profile_author_fk", "author_id", "author")),
		table("legacy", []*load.Column{
			column("code", "char(4)", "PRI"),
			column("ID", "int", ""),
		}),
	})

	author, _ := g.Type("author")
	id, ok := author.Field("id")
	require.True(t, ok)
	assert.Equal(t, "author_id", id.StorageName())
	assert.True(t, id.Primary)

	profile, _ := g.Type("profile")
	_, ok = profile.Field("author_id")
	assert.True(t, ok, "a primary key that is also a foreign key keeps its name")

	legacy, _ := g.Type("legacy")
	_, ok = legacy.Field("code")
	assert.True(t, ok)

	ws := warnings(g.Warnings)
	assert.Contains(t, ws, "profile: primary key author_id cannot be exposed as id and is kept as a regular field")
	assert.Contains(t, ws, "legacy: primary key code cannot be exposed as id and is kept as a regular field")
}

func TestNewGraph_Warnings(t *testing.T) {
	g := testGraph(t, []*load.Table{
		table("event_log", []*load.Column{
			column("payload", "json", ""),
			column("location", "point", ""),
		}),
	})
	assert.Equal(t, []string{
		`event_log: column location has unsupported type "point"; mapped to text`,
		"event_log: table has no primary key; velox will add an id column",
	}, warnings(g.Warnings))
}

func TestNewGraph_Enums(t *testing.T) {
	g := testGraph(t, []*load.Table{
		table("book_status", []*load.Column{pk()}),
		table("book", []*load.Column{
			pk(),
			column("status", "enum('draft','in-review','published')", ""),
			column("format", "enum('1','2')", ""),
		}),
	})
	book, _ := g.Type("book")
	require.Len(t, book.Enums, 2)

	status := book.Enums[0]
	assert.Equal(t, "BookStatusEnum", status.Name, "the table type keeps BookStatus")
	assert.Equal(t, "status", status.Column)
	assert.Equal(t, []EnumValue{
		{Const: "BookStatusEnumDraft", Value: "draft"},
		{Const: "BookStatusEnumInReview", Value: "in-review"},
		{Const: "BookStatusEnumPublished", Value: "published"},
	}, status.Members)
	assert.Equal(t, []string{"draft", "in-review", "published"}, status.Values())

	format := book.Enums[1]
	assert.Equal(t, "BookFormat", format.Name)
	assert.Equal(t, "BookFormatV1", format.Members[0].Const)

	fd, _ := book.Field("status")
	assert.Same(t, status, fd.Enum)
}

func TestNewGraph_Transforms(t *testing.T) {
	g := testGraph(t, []*load.Table{
		table("counter", []*load.Column{pk(), column("total", "bigint unsigned", "")}),
		table("flag", []*load.Column{pk(), column("active", "tinyint(1)", ""), column("hits", "bigint", "")}),
	})
	assert.Equal(t, []string{"BigIntText", "TinyIntBool"}, g.Transforms())
	flag, _ := g.Type("flag")
	assert.Equal(t, []string{"BigIntText", "TinyIntBool"}, flag.Transforms)
}

// bigintLibrary uses bigint keys, the default of most MySQL schemas.
func bigintLibrary() []*load.Table {
	id := func(typ string) *load.Column {
		return &load.Column{Name: "id", Type: typ, Key: "PRI", Extra: "auto_increment"}
	}
	return []*load.Table{
		table("author", []*load.Column{id("bigint unsigned"), column("name", "varchar(100)", "")}),
		table("book", []*load.Column{id("bigint"), column("author_id", "bigint unsigned", "MUL"), column("hits", "bigint", "")},
			fk("book_author_fk", "author_id", "author")),
		table("book_tag", []*load.Column{column("book_id", "bigint", "PRI"), column("tag_id", "bigint", "PRI")},
			fk("book_tag_book_fk", "book_id", "book"),
			fk("book_tag_tag_fk", "tag_id", "tag")),
		table("tag", []*load.Column{id("bigint"), column("label", "varchar(64)", "UNI")}),
	}
}

// requireLoadable asserts the rules velox applies to identifiers and edge
// fields when it loads a schema package.
func requireLoadable(t *testing.T, g *Graph) {
	t.Helper()
	for _, typ := range g.Nodes {
		if id, ok := typ.Field("id"); ok {
			assert.Empty(t, id.Mapping.Transform, "%s: id field cannot have a value scanner", typ.Name)
			assert.False(t, id.Nullable(), "%s: id field cannot be optional", typ.Name)
		}
		for _, e := range typ.Edges {
			if e.Rel != O2O {
				continue
			}
			f, ok := typ.fieldOf(e.Column)
			require.True(t, ok, "%s.%s: edge field %s", typ.Name, e.Name, e.Column)
			assert.Empty(t, f.Mapping.Transform, "%s.%s: edge field cannot have a value scanner", typ.Name, e.Name)
			assert.Equal(t, f.Primary, e.Immutable, "%s.%s: edge and edge field immutability differ", typ.Name, e.Name)
			assert.Equal(t, f.Nullable(), !e.Required, "%s.%s: edge and edge field optionality differ", typ.Name, e.Name)
			target, ok := g.Type(e.Target)
			require.True(t, ok)
			if id, ok := target.Field("id"); ok {
				assert.Equal(t, id.Mapping.Type, f.Mapping.Type, "%s.%s: edge field type differs from the %s id", typ.Name, e.Name, target.Name)
			}
		}
	}
}

func TestNewGraph_KeyColumns(t *testing.T) {
	g := testGraph(t, bigintLibrary())
	requireLoadable(t, g)
	requireLoadable(t, testGraph(t, junctionTables()))
	requireLoadable(t, testGraph(t, authorBook()))

	author, _ := g.Type("author")
	id, _ := author.Field("id")
	assert.Equal(t, typemap.TypeUint64, id.Mapping.Type)

	book, _ := g.Type("book")
	authorID, _ := book.Field("author_id")
	assert.Equal(t, typemap.TypeUint64, authorID.Mapping.Type)
	hits, _ := book.Field("hits")
	assert.Equal(t, typemap.BigIntText, hits.Mapping.Transform, "plain columns keep the transform")
	assert.Equal(t, []string{typemap.BigIntText}, book.Transforms)

	junction, _ := g.Type("book_tag")
	assert.Empty(t, junction.Transforms)
	for _, name := range []string{"book", "tag"} {
		e, ok := junction.Edge(name)
		require.True(t, ok)
		assert.True(t, e.Immutable, name)
	}
	fwd, _ := book.Edge("author")
	assert.False(t, fwd.Immutable)

	ws := warnings(g.Warnings)
	assert.Contains(t, ws, "author: key column id (bigint unsigned) is read as uint64; velox keys cannot use the BigIntText value scanner")
	assert.Contains(t, ws, "book: key column author_id (bigint unsigned) is read as uint64; velox keys cannot use the BigIntText value scanner")
	assert.Contains(t, ws, "book_tag: key column tag_id (bigint) is read as int64; velox keys cannot use the BigIntText value scanner")
	for _, w := range ws {
		assert.NotContains(t, w, "column hits")
	}
}

func TestNewGraph_ManyToManyReferences(t *testing.T) {
	g := testGraph(t, junctionTables())
	post, _ := g.Type("post")
	assert.Equal(t, []string{"PostTag", "Tag"}, post.References)
	tags, ok := post.Edge("tags")
	require.True(t, ok)
	assert.Equal(t, "PostTag", tags.ThroughType)
	assert.True(t, tags.Owner)

	junction, _ := g.Type("post_tag")
	assert.True(t, junction.HasCompositeID())
	assert.Equal(t, []string{"Post", "Tag"}, junction.References)
}

func TestNameSet(t *testing.T) {
	s := newNameSet("Tables")
	assert.Equal(t, "user", s.take("user", "_schema"))
	assert.Equal(t, "user_schema", s.take("user", "_schema"))
	assert.Equal(t, "user_schema2", s.take("user", "_schema"))
	assert.Equal(t, "TablesX", s.take("TablesX", ""))
	assert.Equal(t, "tables2", s.take("tables", ""))
}

func TestFileName(t *testing.T) {
	tests := map[string]string{
		"User":        "user",
		"OrderItem":   "order_item",
		"UserTest":    "user_test_schema",
		"DataAmd64":   "data_amd64_schema",
		"Windows":     "windows",
		"HTTPRequest": "http_request",
	}
	for in, want := range tests {
		assert.Equal(t, want, fileName(in), in)
	}
}
