package sql

import (
	"context"
	"errors"

	"github.com/huandu/go-sqlbuilder"

	"github.com/syssam/joinsql"
	"github.com/syssam/joinsql/dialect"
)

// Builder creates statements for a dialect.
type Builder struct {
	dialect string
	flavor  sqlbuilder.Flavor
	format  Formatter
	err     error
}

// Dialect returns a Builder for the given dialect. An unsupported dialect is
// reported when the statement is built.
func Dialect(name string) *Builder {
	b := &Builder{dialect: name}
	if b.format, b.err = FormatterFor(name); b.err == nil {
		b.flavor, b.err = flavorOf(name)
	}
	return b
}

// Select starts a SELECT statement with the given, already delimited, columns.
// No columns selects "*".
func (b *Builder) Select(columns ...string) *Selector {
	return &Selector{Builder: b, columns: columns}
}

// C returns the delimited column "table"."field" of the builder's dialect.
func (b *Builder) C(table, field string) string {
	if b.format == nil {
		return table + "." + field
	}
	return b.format.DelimitTable(table) + "." + b.format.DelimitField(field)
}

// Predicate is a condition of the WHERE clause.
type Predicate struct {
	op     string
	column string
	values []any
}

// EQ returns a "column = value" predicate.
func EQ(column string, v any) *Predicate { return &Predicate{op: "=", column: column, values: []any{v}} }

// NEQ returns a "column <> value" predicate.
func NEQ(column string, v any) *Predicate {
	return &Predicate{op: "<>", column: column, values: []any{v}}
}

// In returns a "column IN (values...)" predicate.
func In(column string, vs ...any) *Predicate { return &Predicate{op: "IN", column: column, values: vs} }

// IsNull returns a "column IS NULL" predicate.
func IsNull(column string) *Predicate { return &Predicate{op: "IS NULL", column: column} }

// NotNull returns a "column IS NOT NULL" predicate.
func NotNull(column string) *Predicate { return &Predicate{op: "IS NOT NULL", column: column} }

func (p *Predicate) expr(sb *sqlbuilder.SelectBuilder) string {
	switch p.op {
	case "=":
		return sb.Equal(p.column, p.values[0])
	case "<>":
		return sb.NotEqual(p.column, p.values[0])
	case "IN":
		return sb.In(p.column, p.values...)
	case "IS NULL":
		return sb.IsNull(p.column)
	default:
		return sb.IsNotNull(p.column)
	}
}

// Selector is a SELECT statement whose FROM clause is a rendered join tree.
type Selector struct {
	*Builder
	from    *SourceDB
	columns []string
	where   []*Predicate
	order   []string
	desc    bool
	limit   *int
}

// From sets the source of the statement.
func (s *Selector) From(src *SourceDB) *Selector {
	s.from = src
	return s
}

// Where appends predicates joined with AND.
func (s *Selector) Where(ps ...*Predicate) *Selector {
	s.where = append(s.where, ps...)
	return s
}

// OrderBy appends ordering columns.
func (s *Selector) OrderBy(columns ...string) *Selector {
	s.order = append(s.order, columns...)
	return s
}

// Desc orders descending.
func (s *Selector) Desc() *Selector {
	s.desc = true
	return s
}

// Limit limits the number of returned rows.
func (s *Selector) Limit(n int) *Selector {
	s.limit = &n
	return s
}

// Query returns the statement and its arguments.
func (s *Selector) Query() (string, []any, error) {
	if s.err != nil {
		return "", nil, s.err
	}
	if s.from == nil || s.from.Source == nil {
		return "", nil, errors.New("dialect/sql: selector has no source")
	}
	from, err := s.from.CreateSQLWith(s.format)
	if err != nil {
		return "", nil, joinsql.NewQueryError(s.from.Name, "render", err)
	}
	sb := s.flavor.NewSelectBuilder()
	columns := s.columns
	if len(columns) == 0 {
		columns = []string{"*"}
	}
	sb.Select(columns...).From(from)
	if len(s.where) > 0 {
		exprs := make([]string, len(s.where))
		for i, p := range s.where {
			exprs[i] = p.expr(sb)
		}
		sb.Where(exprs...)
	}
	if len(s.order) > 0 {
		sb.OrderBy(s.order...)
		if s.desc {
			sb.Desc()
		}
	}
	if s.limit != nil {
		sb.Limit(*s.limit)
	}
	query, args := sb.Build()
	return query, args, nil
}

// Run executes the statement and returns its rows. The caller must close them.
func (s *Selector) Run(ctx context.Context, drv dialect.ExecQuerier) (*Rows, error) {
	query, args, err := s.Query()
	if err != nil {
		return nil, err
	}
	rows := &Rows{}
	if err := drv.Query(ctx, query, args, rows); err != nil {
		return nil, joinsql.NewQueryError(s.from.Name, "query", err)
	}
	return rows, nil
}
