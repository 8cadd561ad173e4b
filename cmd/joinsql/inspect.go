package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/syssam/joinsql/contrib/graphql"
	"github.com/syssam/joinsql/dialect/sql"
	"github.com/syssam/joinsql/dialect/sql/schema"
	"github.com/syssam/joinsql/dialect/sql/sqlgraph"
)

type inspectOptions struct {
	root    string
	paths   []string
	graphql string
	tables  []string
	run     bool
	limit   int
}

func (a *app) inspectCmd() *cobra.Command {
	opts := &inspectOptions{}
	cmd := &cobra.Command{
		Use:   "inspect --root TABLE [--path EDGE.EDGE]... [--graphql FILE]",
		Short: "Derive a join tree from the foreign keys of a live database",
		Long: `Inspect reads the schema of the database given by --dsn, builds a graph
with one node per table and two edges per foreign key, and prints the SELECT
statement joining the root table along the given edge paths. With --graphql
the paths and columns are taken from the selection of a GraphQL query.

Joins are qualified by table name, so each table may be joined once. Paths
through a self-referencing foreign key, or two edges to the same table, are
rejected.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.inspect(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&opts.root, "root", "", "root table of the join tree")
	flags.StringArrayVar(&opts.paths, "path", nil, "dotted edge path to join, may be repeated")
	flags.StringVar(&opts.graphql, "graphql", "", "file holding a GraphQL query selecting the joins and columns")
	flags.StringSliceVar(&opts.tables, "tables", nil, "limit the inspection to these tables")
	flags.BoolVar(&opts.run, "run", false, "execute the statement and print its rows")
	flags.IntVar(&opts.limit, "limit", 0, "maximum number of rows, 0 for no limit")
	_ = cmd.MarkFlagRequired("root")
	return cmd
}

func (a *app) inspect(ctx context.Context, w io.Writer, opts *inspectOptions) error {
	if a.cfg.Dialect == "" {
		return errors.New("inspect requires a dialect, set --dialect or JOINSQL_DIALECT")
	}
	if a.cfg.DSN == "" {
		return errors.New("inspect requires a data source, set --dsn or JOINSQL_DSN")
	}
	drv, err := sql.Open(a.cfg.driverName(), a.cfg.DSN)
	if err != nil {
		return err
	}
	defer drv.Close()

	var inspectOpts []schema.InspectOption
	if len(opts.tables) > 0 {
		inspectOpts = append(inspectOpts, schema.WithTables(opts.tables...))
	}
	s, err := schema.Inspect(ctx, drv.DB(), a.cfg.Dialect, inspectOpts...)
	if err != nil {
		return err
	}
	g, err := schema.FromAtlas(s)
	if err != nil {
		return err
	}
	res := schema.Validate(g, s)
	for _, warn := range res.Warnings {
		a.log.Warn("schema", zap.String("table", warn.Table), zap.String("issue", warn.Message))
	}
	if res.HasErrors() {
		return fmt.Errorf("schema is not usable:\n%s", res)
	}
	a.log.Info("inspected schema", zap.String("schema", s.Name), zap.Int("tables", len(s.Tables)))

	sel, err := a.selector(g, opts)
	if err != nil {
		return err
	}
	query, args, err := sel.Query()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s;\n", query)
	if !opts.run {
		return nil
	}

	stats := sql.NewStatsDriver(drv,
		sql.WithSlowThreshold(a.cfg.SlowThreshold),
		sql.WithSlowQueryHook(a.slowQuery),
	)
	rows, err := sel.Run(ctx, stats)
	if err != nil {
		if sqlgraph.IsReferenceError(err) {
			a.log.Error("statement references an unknown table or column", zap.String("query", query), zap.Error(err))
		}
		return err
	}
	columns, err := rows.Columns()
	if err != nil {
		rows.Close()
		return err
	}
	records, err := sql.ScanMaps(rows)
	if err != nil {
		return err
	}
	if err := printRows(w, columns, records); err != nil {
		return err
	}
	a.log.Info("query stats", zap.Int("rows", len(records)), zap.Int("args", len(args)), zap.Stringer("stats", stats.QueryStats().Stats()))
	return nil
}

// selector builds the statement from either the GraphQL selection or the
// edge paths.
func (a *app) selector(g *sqlgraph.Schema, opts *inspectOptions) (*sql.Selector, error) {
	b := sql.Dialect(a.cfg.Dialect)
	var sel *sql.Selector
	if opts.graphql != "" {
		q, err := os.ReadFile(opts.graphql)
		if err != nil {
			return nil, err
		}
		gs, err := graphql.FromQuery(g, opts.root, string(q))
		if err != nil {
			return nil, err
		}
		columns := make([]string, len(gs.Columns))
		for i, c := range gs.Columns {
			columns[i] = b.C(c.Table, c.Name)
		}
		sel = b.Select(columns...).From(sql.NewSourceDB(gs.Source))
	} else {
		src, err := g.Source(opts.root, opts.paths...)
		if err != nil {
			return nil, err
		}
		sel = b.Select().From(sql.NewSourceDB(src))
	}
	if opts.limit > 0 {
		sel.Limit(opts.limit)
	}
	return sel, nil
}

func printRows(w io.Writer, columns []string, records []map[string]any) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(columns, "\t"))
	for _, r := range records {
		values := make([]string, len(columns))
		for i, c := range columns {
			switch v := r[c].(type) {
			case nil:
				values[i] = "NULL"
			case []byte:
				values[i] = string(v)
			default:
				values[i] = fmt.Sprint(v)
			}
		}
		fmt.Fprintln(tw, strings.Join(values, "\t"))
	}
	return tw.Flush()
}
