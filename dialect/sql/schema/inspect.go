// Package schema reads table definitions from a live database and turns them
// into a sqlgraph.Schema, so join paths can be derived from foreign keys.
package schema

import (
	"context"
	"fmt"

	"ariga.io/atlas/sql/migrate"
	"ariga.io/atlas/sql/mysql"
	"ariga.io/atlas/sql/postgres"
	"ariga.io/atlas/sql/schema"
	"ariga.io/atlas/sql/sqlite"

	"github.com/syssam/joinsql/dialect"
)

// InspectOption configures schema inspection.
type InspectOption func(*inspectConfig)

type inspectConfig struct {
	schemaName string
	tables     []string
}

// WithSchemaName sets the database schema to inspect. Defaults to the
// connection's current schema.
func WithSchemaName(name string) InspectOption {
	return func(c *inspectConfig) {
		c.schemaName = name
	}
}

// WithTables limits the inspection to the given tables.
func WithTables(names ...string) InspectOption {
	return func(c *inspectConfig) {
		c.tables = append(c.tables, names...)
	}
}

// Inspect reads the tables, columns and foreign keys of a database schema.
func Inspect(ctx context.Context, db schema.ExecQuerier, dialectName string, opts ...InspectOption) (*schema.Schema, error) {
	cfg := &inspectConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	drv, err := atlasDriver(db, dialectName)
	if err != nil {
		return nil, err
	}
	if cfg.schemaName == "" && dialectName == dialect.SQLite {
		cfg.schemaName = "main"
	}
	s, err := drv.InspectSchema(ctx, cfg.schemaName, &schema.InspectOptions{Tables: cfg.tables})
	if err != nil {
		return nil, fmt.Errorf("dialect/sql/schema: inspect %s schema: %w", dialectName, err)
	}
	return s, nil
}

func atlasDriver(db schema.ExecQuerier, dialectName string) (migrate.Driver, error) {
	var (
		drv migrate.Driver
		err error
	)
	switch dialectName {
	case dialect.MySQL:
		drv, err = mysql.Open(db)
	case dialect.Postgres:
		drv, err = postgres.Open(db)
	case dialect.SQLite:
		drv, err = sqlite.Open(db)
	default:
		return nil, fmt.Errorf("dialect/sql/schema: inspection is not supported for dialect %q", dialectName)
	}
	if err != nil {
		return nil, fmt.Errorf("dialect/sql/schema: open %s driver: %w", dialectName, err)
	}
	return drv, nil
}
