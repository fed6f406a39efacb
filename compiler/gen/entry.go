package gen

import (
	"github.com/dave/jennifer/jen"

	"github.com/syssam/veloximport/compiler/typemap"
)

// genEntry generates the aggregate file: the package documentation, the
// list of schemas, the type to table index and the value transforms.
func (g *Generator) genEntry() *jen.File {
	f := g.newFile()
	pkg := g.graph.Package
	for _, line := range []string{
		"Package " + pkg + " holds the velox schemas imported from the database catalog.",
		"//",
		"// Generate the velox client from these schemas with:",
		"//",
		"//\tcfg, err := gen.NewConfig(",
		"//\t\tgen.WithTarget(\"./velox\"),",
		"//\t\tgen.WithPackage(\"<module>/velox\"),",
		"//\t)",
		"//\tif err != nil {",
		"//\t\tlog.Fatal(err)",
		"//\t}",
		"//\tif err := compiler.Generate(\"./" + pkg + "\", cfg); err != nil {",
		"//\t\tlog.Fatal(err)",
		"//\t}",
	} {
		f.PackageComment(line)
	}

	f.Comment(schemasVar + " lists every schema of the package, in table order.")
	f.Var().Id(schemasVar).Op("=").Index().Qual(g.graph.veloxPkg(), "Interface").CustomFunc(multi, func(grp *jen.Group) {
		for _, t := range g.graph.Nodes {
			grp.Id(t.Name).Values()
		}
	})

	f.Comment(tablesVar + " maps every schema type name to its table.")
	f.Var().Id(tablesVar).Op("=").Map(jen.String()).String().Values(jen.DictFunc(func(d jen.Dict) {
		for _, t := range g.graph.Nodes {
			d[jen.Lit(t.Name)] = jen.Lit(t.Table)
		}
	}))

	for _, name := range g.graph.Transforms() {
		switch name {
		case typemap.BigIntText:
			g.genBigIntText(f)
		case typemap.TinyIntBool:
			g.genTinyIntBool(f)
		}
	}
	return f
}

// genBigIntText declares the transform storing 64-bit integers as decimal
// strings, so unsigned values above math.MaxInt64 survive.
func (g *Generator) genBigIntText(f *jen.File) {
	f.Comment(typemap.BigIntText + " keeps BIGINT columns as decimal strings.")
	f.Var().Id(typemap.BigIntText).Op("=").Qual(g.graph.fieldPkg(), "ValueScannerFunc").Types(
		jen.String(), jen.Op("*").Qual("database/sql", "NullString"),
	).Values(jen.Dict{
		jen.Id("V"): jen.Func().Params(jen.Id("s").String()).Params(jen.Qual("database/sql/driver", "Value"), jen.Error()).Block(
			jen.List(jen.Id("n"), jen.Id("ok")).Op(":=").New(jen.Qual("math/big", "Int")).Dot("SetString").Call(jen.Id("s"), jen.Lit(10)),
			jen.If(jen.Op("!").Id("ok")).Block(
				jen.Return(jen.Nil(), jen.Qual("fmt", "Errorf").Call(jen.Lit("invalid integer %q"), jen.Id("s"))),
			),
			jen.Return(jen.Id("n").Dot("String").Call(), jen.Nil()),
		),
		jen.Id("S"): jen.Func().Params(jen.Id("ns").Op("*").Qual("database/sql", "NullString")).Params(jen.String(), jen.Error()).Block(
			jen.Return(jen.Id("ns").Dot("String"), jen.Nil()),
		),
	})
}

// genTinyIntBool declares the transform storing booleans as TINYINT(1).
func (g *Generator) genTinyIntBool(f *jen.File) {
	f.Comment(typemap.TinyIntBool + " keeps TINYINT(1) columns as booleans.")
	f.Var().Id(typemap.TinyIntBool).Op("=").Qual(g.graph.fieldPkg(), "ValueScannerFunc").Types(
		jen.Bool(), jen.Op("*").Qual("database/sql", "NullInt64"),
	).Values(jen.Dict{
		jen.Id("V"): jen.Func().Params(jen.Id("b").Bool()).Params(jen.Qual("database/sql/driver", "Value"), jen.Error()).Block(
			jen.If(jen.Id("b")).Block(
				jen.Return(jen.Int64().Call(jen.Lit(1)), jen.Nil()),
			),
			jen.Return(jen.Int64().Call(jen.Lit(0)), jen.Nil()),
		),
		jen.Id("S"): jen.Func().Params(jen.Id("ni").Op("*").Qual("database/sql", "NullInt64")).Params(jen.Bool(), jen.Error()).Block(
			jen.Return(jen.Id("ni").Dot("Valid").Op("&&").Id("ni").Dot("Int64").Op("!=").Lit(0), jen.Nil()),
		),
	})
}
