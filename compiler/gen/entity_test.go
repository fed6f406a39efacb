package gen

import (
	"context"
	"strings"
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/veloximport/compiler/load"
)

// compact drops all white space, so assertions do not depend on gofmt
// alignment.
func compact(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

func ptr(s string) *string { return &s }

func render(t *testing.T, tables []*load.Table, opts ...Option) map[string]string {
	t.Helper()
	files, err := NewGenerator(testGraph(t, tables, opts...)).Render(context.Background())
	require.NoError(t, err)
	out := make(map[string]string, len(files))
	for _, f := range files {
		out[f.Name] = string(f.Content)
	}
	return out
}

func richAuthor() []*load.Table {
	tables := authorBook()
	author := tables[0]
	author.Comment = "Book authors"
	author.Columns = []*load.Column{
		pk(),
		{Name: "name", Type: "varchar(100)", Comment: "Pen name"},
		{Name: "email", Type: "varchar(255)", Key: "UNI", Nullable: true},
		{Name: "created_at", Type: "timestamp", Default: ptr("CURRENT_TIMESTAMP"), Extra: "DEFAULT_GENERATED"},
		{Name: "updated_at", Type: "timestamp", Default: ptr("CURRENT_TIMESTAMP"), Extra: "DEFAULT_GENERATED on update CURRENT_TIMESTAMP"},
		{Name: "rating", Type: "decimal(3,1)", Default: ptr("0.0")},
		{Name: "status", Type: "enum('active','banned')", Default: ptr("active")},
		{Name: "hits", Type: "bigint unsigned", Default: ptr("0")},
		{Name: "verified", Type: "tinyint(1)", Default: ptr("0")},
		{Name: "token", Type: "char(36)", Default: ptr("uuid()"), Extra: "DEFAULT_GENERATED"},
		{Name: "born", Type: "date", Nullable: true, Default: ptr("1970-01-01")},
		{Name: "bio", Type: "mediumtext", Nullable: true},
		{Name: "settings", Type: "json", Nullable: true},
	}
	for i, c := range author.Columns {
		c.Position = i + 1
	}
	return tables
}

func TestGenEntity_Fields(t *testing.T) {
	files := render(t, richAuthor())
	src, ok := files["author.go"]
	require.True(t, ok)

	assert.True(t, strings.HasPrefix(src, "// Code generated by veloximport at 2024-05-01T12:00:00Z. DO NOT EDIT.\n"), src)
	assert.Contains(t, src, "package schema\n")
	assert.Contains(t, src, `"github.com/syssam/velox/schema/field"`)
	assert.Contains(t, src, "// Author holds the schema definition for the author table.\n// Book authors\n")

	got := compact(src)
	for _, want := range []string{
		`typeAuthorstruct{velox.Schema}`,
		`func(Author)Fields()[]velox.Field{`,
		`field.Int32("id").Immutable(),`,
		`//Pennamefield.String("name").MaxLen(100).Comment("Pen name"),`,
		`field.String("email").MaxLen(255).Optional().Nillable().Unique(),`,
		`field.Time("created_at").Default(time.Now),`,
		`field.Time("updated_at").Default(time.Now).UpdateDefault(time.Now),`,
		`field.String("rating").SchemaType(map[string]string{dialect.MySQL:"decimal(3,1)"}).Default("0.0"),`,
		`field.Enum("status").GoType(AuthorStatus("")).Default("active"),`,
		`field.String("hits").SchemaType(map[string]string{dialect.MySQL:"bigint unsigned"}).Default("0").ValueScanner(BigIntText),`,
		`field.Bool("verified").SchemaType(map[string]string{dialect.MySQL:"tinyint(1)"}).Default(false).ValueScanner(TinyIntBool),`,
		`field.String("token").MaxLen(36).SchemaType(map[string]string{dialect.MySQL:"char(36)"}).Annotations(sqlschema.DefaultExpr("uuid()")),`,
		`field.Time("born").SchemaType(map[string]string{dialect.MySQL:"date"}).Optional().Nillable().Annotations(sqlschema.Default("'1970-01-01'")),`,
		`field.Text("bio").SchemaType(map[string]string{dialect.MySQL:"mediumtext"}).Optional().Nillable(),`,
		`field.JSON("settings",json.RawMessage{}).Optional().Nillable(),`,
		`func(Author)Edges()[]velox.Edge{return[]velox.Edge{edge.To("books",Book{}),}}`,
		`sqlschema.Table("author"),`,
	} {
		assert.Contains(t, got, compact(want))
	}
}

func TestGenEntity_Enum(t *testing.T) {
	src := compact(render(t, richAuthor())["author.go"])
	for _, want := range []string{
		`//AuthorStatusisthetypeofthestatuscolumn.typeAuthorStatusstring`,
		`const(AuthorStatusActiveAuthorStatus="active"AuthorStatusBannedAuthorStatus="banned")`,
		`func(AuthorStatus)Values()[]string{return[]string{string(AuthorStatusActive),string(AuthorStatusBanned),}}`,
	} {
		assert.Contains(t, src, want)
	}
}

func TestGenEntity_Edges(t *testing.T) {
	files := render(t, authorBook())
	book := compact(files["book.go"])
	assert.Contains(t, book, `field.Int32("author_id"),`)
	assert.Contains(t, book, `edge.From("author",Author{}).Ref("books").Field("author_id").Unique().Required(),`)
	assert.NotContains(t, files["book.go"], `velox/dialect"`)

	author := compact(files["author.go"])
	assert.Contains(t, author, `edge.To("books",Book{}),`)
	assert.NotContains(t, author, "edge.From")
}

func TestGenEntity_UnpairedForward(t *testing.T) {
	tables := authorBook()
	tables[0].Columns = append(tables[0].Columns, column("books", "int", ""))
	tables[1].Columns[2].Nullable = true
	book := compact(render(t, tables)["book.go"])
	assert.Contains(t, book, `edge.To("author",Author{}).Field("author_id").Unique(),`)
	assert.Contains(t, book, `field.Int32("author_id").Optional().Nillable(),`)
}

func TestGenEntity_ManyToMany(t *testing.T) {
	files := render(t, junctionTables())
	post := compact(files["post.go"])
	assert.Contains(t, post, `edge.To("tags",Tag{}).Through("post_tags",PostTag{}),`)
	tag := compact(files["tag.go"])
	assert.Contains(t, tag, `edge.From("posts",Post{}).Ref("tags").Through("post_tags",PostTag{}),`)
	assert.Contains(t, tag, `field.String("label").MaxLen(64).Unique(),`)

	junction := compact(files["post_tag.go"])
	assert.Contains(t, junction, `field.ID("post_id","tag_id"),`)
	assert.Contains(t, junction, `field.Int32("post_id").Immutable(),`)
	assert.Contains(t, junction, `edge.To("post",Post{}).Field("post_id").Unique().Required().Immutable(),`)
}

func TestGenEntity_KeyColumns(t *testing.T) {
	files := render(t, bigintLibrary())

	author := files["author.go"]
	assert.Contains(t, compact(author), compact(`field.Uint64("id").SchemaType(map[string]string{dialect.MySQL: "bigint unsigned"}).Immutable(),`))
	assert.NotContains(t, author, "ValueScanner")

	book := compact(files["book.go"])
	for _, want := range []string{
		`field.Int64("id").SchemaType(map[string]string{dialect.MySQL: "bigint"}).Immutable(),`,
		`field.Uint64("author_id").SchemaType(map[string]string{dialect.MySQL: "bigint unsigned"}),`,
		`field.String("hits").SchemaType(map[string]string{dialect.MySQL: "bigint"}).ValueScanner(BigIntText),`,
		`edge.From("author", Author{}).Ref("books").Field("author_id").Unique().Required(),`,
	} {
		assert.Contains(t, book, compact(want))
	}

	junction := files["book_tag.go"]
	for _, want := range []string{
		`field.Int64("book_id").SchemaType(map[string]string{dialect.MySQL: "bigint"}).Immutable(),`,
		`edge.To("book", Book{}).Field("book_id").Unique().Required().Immutable(),`,
		`edge.To("tag", Tag{}).Field("tag_id").Unique().Required().Immutable(),`,
	} {
		assert.Contains(t, compact(junction), compact(want))
	}
	assert.NotContains(t, junction, "ValueScanner")
}

func TestGenEntity_PrimaryKeys(t *testing.T) {
	files := render(t, []*load.Table{
		table("country", []*load.Column{
			{Name: "code", Type: "char(2)", Key: "PRI"},
			column("name", "varchar(64)", ""),
		}),
		table("event_log", []*load.Column{column("message", "text", "")}),
	})
	country := compact(files["country.go"])
	assert.Contains(t, country,
		`field.String("id").MaxLen(2).SchemaType(map[string]string{dialect.MySQL:"char(2)"}).StorageKey("code").Immutable().Annotations(sqlschema.Annotation{Incremental:new(bool)}),`)

	log := compact(files["event_log.go"])
	assert.Contains(t, log, `field.Text("message").SchemaType(map[string]string{dialect.MySQL:"text"}),`)
	assert.NotContains(t, log, "Immutable")
}

func TestGenEntity_Unsupported(t *testing.T) {
	files := render(t, []*load.Table{
		table("place", []*load.Column{pk(), column("location", "point", "")}),
	})
	assert.Contains(t, compact(files["place.go"]), `field.String("location").SchemaType(map[string]string{dialect.MySQL:"point"}),`)
}

func TestGenEntity_CommentEscaping(t *testing.T) {
	tables := authorBook()
	tables[0].Comment = "*/ multi\nline"
	tables[0].Columns[1].Comment = `say "hi"`
	src := render(t, tables)["author.go"]
	assert.Contains(t, src, "// */ multi line\n")
	assert.Contains(t, src, `Comment("say \"hi\"")`)
}

func TestGenEntry(t *testing.T) {
	files := render(t, richAuthor())
	src, ok := files["schema.go"]
	require.True(t, ok)

	assert.Contains(t, src, "// Package schema holds the velox schemas imported from the database catalog.\n")
	assert.Contains(t, src, `compiler.Generate("./schema", cfg)`)

	got := compact(src)
	assert.Contains(t, got, `varSchemas=[]velox.Interface{Author{},Book{},}`)
	assert.Contains(t, got, `"Author":"author"`)
	assert.Contains(t, got, `"Book":"book"`)
	assert.Contains(t, got, `varBigIntText=field.ValueScannerFunc[string,*sql.NullString]{`)
	assert.Contains(t, got, `big.Int`)
	assert.Contains(t, got, `varTinyIntBool=field.ValueScannerFunc[bool,*sql.NullInt64]{`)
	assert.Contains(t, got, `returnni.Valid&&ni.Int64!=0,nil`)
}

func TestGenEntry_NoTransforms(t *testing.T) {
	src := render(t, authorBook())["schema.go"]
	assert.NotContains(t, src, "ValueScannerFunc")
	assert.NotContains(t, src, `"database/sql"`)
}

func TestGenEntity_Header(t *testing.T) {
	files := render(t, authorBook(), WithHeader("Code generated by hand. DO NOT EDIT."))
	for name, src := range files {
		assert.True(t, strings.HasPrefix(src, "// Code generated by hand. DO NOT EDIT.\n"), name)
	}
}

func TestGenEntity_VeloxPath(t *testing.T) {
	src := render(t, authorBook(), WithVeloxPath("example.com/fork/velox"))["book.go"]
	assert.Contains(t, src, `"example.com/fork/velox/schema/edge"`)
	assert.NotContains(t, src, "github.com/syssam/velox")
}
