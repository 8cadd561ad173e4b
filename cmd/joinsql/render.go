package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/syssam/joinsql"
	"github.com/syssam/joinsql/dialect/sql"
	"github.com/syssam/joinsql/querydef"
)

func (a *app) renderCmd() *cobra.Command {
	var fromOnly bool
	cmd := &cobra.Command{
		Use:   "render FILE...",
		Short: "Render query documents to SQL",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.renderFiles(cmd.Context(), cmd.OutOrStdout(), args, fromOnly)
		},
	}
	cmd.Flags().BoolVar(&fromOnly, "from", false, "print only the FROM clause of each document")
	return cmd
}

// rendered is the output of one document.
type rendered struct {
	path   string
	sql    string
	args   []any
	cached bool
}

// renderFiles renders the documents concurrently and prints them in the
// given order. A failing document does not stop the others; all failures
// are returned together.
func (a *app) renderFiles(ctx context.Context, w io.Writer, paths []string, fromOnly bool) error {
	results := make([]rendered, len(paths))
	errs := make([]error, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.Workers)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			r, err := a.renderFile(ctx, path, fromOnly)
			if err != nil {
				errs[i] = fmt.Errorf("%s: %w", path, err)
				return nil
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for i, r := range results {
		if errs[i] != nil {
			a.log.Error("render failed", zap.String("file", paths[i]), zap.Error(errs[i]))
			continue
		}
		if len(r.args) > 0 {
			fmt.Fprintf(w, "-- %s %v\n%s;\n", r.path, r.args, r.sql)
		} else {
			fmt.Fprintf(w, "-- %s\n%s;\n", r.path, r.sql)
		}
	}
	return joinsql.NewAggregateError(errs...)
}

func (a *app) renderFile(ctx context.Context, path string, fromOnly bool) (rendered, error) {
	doc, err := querydef.Load(path)
	if err != nil {
		return rendered{}, err
	}
	dialectName := a.cfg.Dialect
	if dialectName == "" {
		dialectName = doc.Dialect
	}
	if dialectName == "" {
		return rendered{}, fmt.Errorf("no dialect for %q, set it in the document or with --dialect", doc.Name)
	}
	if !fromOnly {
		query, args, err := doc.Query(dialectName)
		if err != nil {
			return rendered{}, err
		}
		a.log.Debug("rendered", zap.String("file", path), zap.String("dialect", dialectName))
		return rendered{path: path, sql: query, args: args}, nil
	}
	src, err := doc.Build()
	if err != nil {
		return rendered{}, err
	}
	frag, hit, err := sql.RenderCached(ctx, a.cache, src, dialectName, a.cfg.CacheTTL)
	if err != nil {
		return rendered{}, err
	}
	a.log.Debug("rendered",
		zap.String("file", path),
		zap.String("dialect", dialectName),
		zap.Bool("cache_hit", hit),
		zap.Time("rendered_at", frag.RenderedAt),
	)
	return rendered{path: path, sql: frag.SQL, cached: hit}, nil
}
