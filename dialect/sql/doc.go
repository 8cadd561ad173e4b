// Package sql renders join trees as SQL and runs the resulting statements
// over database/sql.
//
// # SourceDB
//
// SourceDB wraps a joinsql.Source and renders its join tree as the body of a
// FROM clause. Identifiers are delimited by a pluggable Formatter:
//
//	src := joinsql.NewSource("car", "car")
//	src.Joins().AddNewJoinTo(joinsql.NewSource("engine", "engine")).AddField("engine_id", "id")
//
//	sql.NewSourceDB(src).CreateSQL()
//	// car JOIN engine ON car.engine_id = engine.id
//
//	f, _ := sql.FormatterFor(dialect.MySQL)
//	sql.NewSourceDB(src).CreateSQLWith(f)
//	// `car` JOIN `engine` ON `car`.`engine_id` = `engine`.`id`
//
// A join without join fields cannot be rendered and fails with a
// joinsql.UnjoinedSourceError.
//
// # Formatters
//
//   - IdentityFormatter: identifiers are left unchanged
//   - DelimitFormatter: identifiers are wrapped in fixed delimiters
//   - FlavorFormatter: identifiers are quoted by a go-sqlbuilder flavor
//
// FormatterFor returns the formatter of a dialect name.
//
// # Statements
//
// Selector assembles a complete SELECT statement around a rendered source
// using go-sqlbuilder, so that predicate values become dialect placeholders:
//
//	b := sql.Dialect(dialect.Postgres)
//	query, args, err := b.Select(b.C("car", "id"), b.C("engine", "power")).
//	    From(sql.NewSourceDB(src)).
//	    Where(sql.EQ(b.C("car", "id"), 1)).
//	    Query()
//
// # Drivers
//
// Driver implements dialect.Driver over database/sql. StatsDriver wraps any
// dialect.Driver and records query statistics and slow queries.
package sql
