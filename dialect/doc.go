// Package dialect provides the database dialect names and driver interfaces
// used by joinsql.
//
// # Supported Dialects
//
// The dialect name selects the identifier quoting used when a join tree is
// rendered and the placeholder format of full statements:
//
//   - MySQL: backticks
//   - Postgres: double quotes
//   - SQLite: double quotes
//   - SQLServer: square brackets
//
// # Driver Interface
//
// The package defines the Driver interface for database operations:
//
//	type Driver interface {
//	    Exec(ctx context.Context, query string, args, v any) error
//	    Query(ctx context.Context, query string, args, v any) error
//	    Tx(ctx context.Context) (Tx, error)
//	    Close() error
//	    Dialect() string
//	}
//
// # Transaction Interface
//
// The Tx interface adds the database/sql/driver.Tx methods to ExecQuerier:
//
//	type Tx interface {
//	    ExecQuerier
//	    Commit() error
//	    Rollback() error
//	}
//
// # ExecQuerier Interface
//
// The ExecQuerier interface is implemented by both Driver and Tx:
//
//	type ExecQuerier interface {
//	    Exec(ctx context.Context, query string, args, v any) error
//	    Query(ctx context.Context, query string, args, v any) error
//	}
//
// # Usage
//
// Opening a database connection:
//
//	import (
//	    "github.com/syssam/joinsql/dialect"
//	    "github.com/syssam/joinsql/dialect/sql"
//	)
//
//	db, err := sql.Open(dialect.Postgres, "postgres://...")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
// Rendering a join tree for a dialect:
//
//	f, err := sql.FormatterFor(dialect.MySQL)
//	if err != nil {
//	    return err
//	}
//	from, err := sql.NewSourceDB(src).CreateSQLWith(f)
//
// # Sub-packages
//
//   - dialect/sql: SourceDB renderer, statement selector and database/sql driver
//   - dialect/sql/schema: Schema inspection with atlas
//   - dialect/sql/sqlgraph: Relationship graph that builds join trees
package dialect
