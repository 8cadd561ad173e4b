package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (a *app) watchCmd() *cobra.Command {
	var fromOnly bool
	cmd := &cobra.Command{
		Use:   "watch FILE...",
		Short: "Render query documents and re-render them when they change",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.watch(cmd.Context(), cmd.OutOrStdout(), args, fromOnly)
		},
	}
	cmd.Flags().BoolVar(&fromOnly, "from", false, "print only the FROM clause of each document")
	return cmd
}

// watch renders the files once and then again on every write until ctx is
// done. The parent directories are watched so that editors replacing files
// by rename are noticed.
func (a *app) watch(ctx context.Context, w io.Writer, paths []string, fromOnly bool) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	files := make(map[string]bool, len(paths))
	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return err
		}
		files[abs] = true
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		dirs[dir] = true
	}
	if err := a.renderFiles(ctx, w, paths, fromOnly); err != nil {
		a.log.Warn("initial render failed", zap.Error(err))
	}
	a.log.Info("watching", zap.Int("files", len(files)))
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !files[ev.Name] || !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			a.log.Info("file changed", zap.String("file", ev.Name), zap.Stringer("op", ev.Op))
			if err := a.renderFiles(ctx, w, []string{ev.Name}, fromOnly); err != nil {
				a.log.Error("render failed", zap.Error(err))
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			a.log.Error("watch error", zap.Error(err))
		}
	}
}
