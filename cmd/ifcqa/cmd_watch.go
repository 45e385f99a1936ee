package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"ifcqa/internal/ifcmodel"
)

const defaultDebounce = 500 * time.Millisecond

func (a *app) watchCommand() *cobra.Command {
	var opts checkOptions
	var debounce time.Duration
	cmd := &cobra.Command{
		Use:   "watch [flags] MODEL...",
		Short: "Re-run check whenever the ruleset or a model changes",
		Args:  minArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			threshold, err := opts.parseThreshold()
			if err != nil {
				return err
			}
			models, err := expandModels(args)
			if err != nil {
				return err
			}
			for _, m := range models {
				if strings.HasPrefix(m, ifcmodel.BlobScheme) {
					return usageErrorf("watch needs local files, got %s", m)
				}
			}
			svc, closeAll, err := a.newService(cmd.Context(), models)
			if err != nil {
				return err
			}
			defer func() { _ = closeAll() }()

			watcher, err := fsnotify.NewWatcher()
			if err != nil {
				return fmt.Errorf("create watcher: %w", err)
			}
			defer func() { _ = watcher.Close() }()
			targets, err := watchTargets(watcher, append([]string{opts.ruleset}, models...))
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			rerun := func() {
				code := a.runBatch(ctx, svc, opts, threshold, models)
				a.logger.Info("check complete", "exit", code)
			}
			rerun()
			watchLoop(ctx, watcher.Events, watcher.Errors, targets, debounce, rerun, a.logger)
			return nil
		},
	}
	opts.bind(cmd)
	cmd.Flags().DurationVar(&debounce, "debounce", defaultDebounce, "quiet period before re-running after a change")
	return cmd
}

// watchTargets watches the parent directory of every file, since editors
// often replace files rather than write them in place, and returns the set
// of absolute file paths to react to.
func watchTargets(w *fsnotify.Watcher, files []string) (map[string]bool, error) {
	targets := make(map[string]bool, len(files))
	dirs := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", f, err)
		}
		targets[abs] = true
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := w.Add(dir); err != nil {
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
		dirs[dir] = true
	}
	return targets, nil
}

// watchLoop calls rerun once per burst of changes to targets, after
// debounce has passed without further changes. It returns when ctx is done
// or the event stream closes.
func watchLoop(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error, targets map[string]bool, debounce time.Duration, rerun func(), logger *slog.Logger) {
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			abs, err := filepath.Abs(ev.Name)
			if err != nil || !targets[abs] {
				continue
			}
			logger.Debug("change detected", "path", abs, "op", ev.Op.String())
			timer.Reset(debounce)
		case err, ok := <-errs:
			if !ok {
				return
			}
			logger.Warn("watch error", "error", err)
		case <-timer.C:
			rerun()
		}
	}
}
