package sql

import (
	"fmt"
	"strings"

	"github.com/huandu/go-sqlbuilder"

	"github.com/syssam/joinsql/dialect"
)

// Formatter delimits table and field identifiers for a SQL dialect.
type Formatter interface {
	DelimitTable(name string) string
	DelimitField(name string) string
}

// IdentityFormatter leaves identifiers unchanged.
type IdentityFormatter struct{}

// DelimitTable implements Formatter.
func (IdentityFormatter) DelimitTable(name string) string { return name }

// DelimitField implements Formatter.
func (IdentityFormatter) DelimitField(name string) string { return name }

// DelimitFormatter wraps identifiers between a left and a right delimiter,
// for example "[" and "]". A right delimiter inside an identifier is doubled.
type DelimitFormatter struct {
	Left, Right string
}

// DelimitTable implements Formatter.
func (f DelimitFormatter) DelimitTable(name string) string { return f.delimit(name) }

// DelimitField implements Formatter.
func (f DelimitFormatter) DelimitField(name string) string { return f.delimit(name) }

func (f DelimitFormatter) delimit(name string) string {
	if f.Right != "" {
		name = strings.ReplaceAll(name, f.Right, f.Right+f.Right)
	}
	return f.Left + name + f.Right
}

// FlavorFormatter quotes identifiers the way the go-sqlbuilder flavor does.
// Flavor.Quote does not escape, so a quote character inside an identifier is
// doubled first.
type FlavorFormatter struct {
	Flavor sqlbuilder.Flavor
}

// DelimitTable implements Formatter.
func (f FlavorFormatter) DelimitTable(name string) string { return f.quote(name) }

// DelimitField implements Formatter.
func (f FlavorFormatter) DelimitField(name string) string { return f.quote(name) }

func (f FlavorFormatter) quote(name string) string {
	if q := f.Flavor.Quote(""); q != "" {
		d := q[len(q)-1:]
		name = strings.ReplaceAll(name, d, d+d)
	}
	return f.Flavor.Quote(name)
}

// FormatterFor returns the Formatter of the given dialect.
func FormatterFor(name string) (Formatter, error) {
	switch name {
	case dialect.MySQL:
		return FlavorFormatter{Flavor: sqlbuilder.MySQL}, nil
	case dialect.Postgres:
		return FlavorFormatter{Flavor: sqlbuilder.PostgreSQL}, nil
	case dialect.SQLite:
		return FlavorFormatter{Flavor: sqlbuilder.SQLite}, nil
	case dialect.SQLServer:
		return DelimitFormatter{Left: "[", Right: "]"}, nil
	default:
		return nil, fmt.Errorf("dialect/sql: unsupported dialect %q", name)
	}
}

// flavorOf returns the go-sqlbuilder flavor used to assemble statements.
func flavorOf(name string) (sqlbuilder.Flavor, error) {
	switch name {
	case dialect.MySQL:
		return sqlbuilder.MySQL, nil
	case dialect.Postgres:
		return sqlbuilder.PostgreSQL, nil
	case dialect.SQLite:
		return sqlbuilder.SQLite, nil
	case dialect.SQLServer:
		return sqlbuilder.SQLServer, nil
	default:
		return 0, fmt.Errorf("dialect/sql: unsupported dialect %q", name)
	}
}

var (
	_ Formatter = IdentityFormatter{}
	_ Formatter = DelimitFormatter{}
	_ Formatter = FlavorFormatter{}
)
