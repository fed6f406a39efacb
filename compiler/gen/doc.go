// Package gen turns a loaded MySQL catalog into velox schema source files.
//
// # Architecture
//
// The generation pipeline follows this flow:
//
//	[]*load.Table (catalog snapshot)
//	        ↓
//	   Infer (forward, inverse and many-to-many relations)
//	        ↓
//	   Graph (one immutable Type per table)
//	        ↓
//	   Generator (parallel jennifer rendering, goimports formatting)
//	        ↓
//	   <target>/<table>.go + schema.go
//
// Relation inference runs once, over the complete table set: an inverse
// relation lives on a table other than the one holding the foreign key, so
// no type can be built before every table is known.
//
// # Key Types
//
//   - Relations: the relation graph produced by Infer
//   - Graph: all types, the entry file name and the collected warnings
//   - Type: one schema file, with fields, inline enums and edges
//   - Generator: renders and writes the files
//   - Config: global configuration for generation
//
// # Naming
//
// Type names are the Pascal form of the table name. Relation names are
// snake case; inverse and many-to-many names are plural. Within one type,
// member names are unique in their Go form: a relation that would clash with
// a column or an earlier relation is dropped and reported as a Warning.
//
// # Usage
//
//	cfg, err := gen.NewConfig(
//		gen.WithTarget("./velox/schema"),
//		gen.WithExclude("schema_migrations"),
//	)
//	if err != nil {
//		return err
//	}
//	graph, err := gen.NewGraph(cfg, catalog.Tables)
//	if err != nil {
//		return err
//	}
//	files, err := gen.NewGenerator(graph).Generate(ctx)
package gen
