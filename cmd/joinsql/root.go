package main

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/syssam/joinsql"
)

// app carries the state shared by the commands of one invocation.
type app struct {
	cfg   *config
	log   *zap.Logger
	cache joinsql.Cache
}

func newRootCmd() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:          "joinsql",
		Short:        "Compose SQL join trees from query documents and database schemas",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			log, err := newLogger(cfg)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.log = log.With(zap.String("run_id", uuid.NewString()), zap.String("command", cmd.Name()))
			a.cache = joinsql.NewMemoryCache()
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}
	flags := cmd.PersistentFlags()
	flags.String("env-file", ".env", "environment file to load")
	flags.String("dialect", "", "SQL dialect: mysql, postgres, sqlite or sqlserver")
	flags.String("driver", "", "database/sql driver name, defaults to the dialect")
	flags.String("dsn", "", "data source name of the database to inspect")
	flags.String("log-level", "info", "log level")
	flags.Int("workers", 0, "number of files rendered concurrently")
	flags.Bool("dev", false, "human readable development logging")

	cmd.AddCommand(
		a.renderCmd(),
		a.watchCmd(),
		a.convertCmd(),
		a.inspectCmd(),
	)
	return cmd
}

// slowQuery logs statements running longer than the configured threshold.
func (a *app) slowQuery(_ context.Context, query string, args []any, d time.Duration) {
	a.log.Warn("slow query",
		zap.String("query", query),
		zap.Int("args", len(args)),
		zap.Duration("duration", d),
		zap.Duration("threshold", a.cfg.SlowThreshold),
	)
}
