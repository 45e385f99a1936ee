package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"ifcqa/internal/core"
	"ifcqa/internal/ifcmodel"
	"ifcqa/internal/report"
	"ifcqa/pkg/domain"
)

// checkOptions are the flags shared by check and watch.
type checkOptions struct {
	ruleset   string
	threshold string
	outDir    string
}

func (o *checkOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.ruleset, "ruleset", "r", "", "ruleset file (.json, .yaml, .yml)")
	cmd.Flags().StringVarP(&o.threshold, "threshold", "t", string(domain.ThresholdError), "minimum severity that fails: Error, Warning, Info, None")
	cmd.Flags().StringVarP(&o.outDir, "out", "o", "", "write report artifacts into this directory")
}

func (o *checkOptions) parseThreshold() (domain.Threshold, error) {
	threshold, ok := domain.ParseThreshold(o.threshold)
	if !ok {
		return "", usageErrorf("invalid --threshold %q", o.threshold)
	}
	if strings.TrimSpace(o.ruleset) == "" {
		return "", usageErrorf("--ruleset is required")
	}
	return threshold, nil
}

func (a *app) checkCommand() *cobra.Command {
	var opts checkOptions
	cmd := &cobra.Command{
		Use:   "check [flags] MODEL...",
		Short: "Evaluate a ruleset against one or more models",
		Long: "Evaluate a ruleset against one or more model snapshots. Model arguments may be\n" +
			"doublestar globs (models/**/*.json) or blob:// keys. The exit code is the worst\n" +
			"outcome across models: 0 pass, 1 threshold failed, 2 configuration error, 3 other.",
		Args: minArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			threshold, err := opts.parseThreshold()
			if err != nil {
				return err
			}
			models, err := expandModels(args)
			if err != nil {
				return err
			}
			svc, closeAll, err := a.newService(cmd.Context(), models)
			if err != nil {
				return err
			}
			code := a.runBatch(cmd.Context(), svc, opts, threshold, models)
			if err := closeAll(); err != nil {
				a.logger.Error("flush outputs", "error", err)
				code = max(code, exitError)
			}
			if code == exitPass {
				return nil
			}
			return &exitCodeError{code: code}
		},
	}
	opts.bind(cmd)
	return cmd
}

// runBatch checks every model against a ruleset loaded once per batch and
// returns the worst exit code. A ruleset error aborts before any model is
// opened.
func (a *app) runBatch(ctx context.Context, svc *core.Service, opts checkOptions, threshold domain.Threshold, models []string) int {
	rs, err := svc.LoadRuleset(ctx, opts.ruleset)
	if err != nil {
		_, _ = fmt.Fprintf(a.stderr, "error: %v\n", err)
		if domain.IsConfigurationError(err) {
			return exitConfig
		}
		return exitError
	}
	outDirs := outputDirs(opts.outDir, models)
	worst := exitPass
	for i, model := range models {
		result, err := svc.Check(ctx, core.CheckRequest{ModelPath: model, Ruleset: &rs, Threshold: threshold})
		if err != nil {
			_, _ = fmt.Fprintf(a.stdout, "ERROR %s: %v\n", model, err)
			worst = max(worst, exitError)
			continue
		}
		s := result.Summary()
		status := "PASS"
		if !s.Pass {
			status = "FAIL"
			worst = max(worst, exitFailed)
		}
		_, _ = fmt.Fprintf(a.stdout, "%s %s: %d issues (%d errors, %d warnings, %d info) run=%s\n",
			status, model, s.Counts.Total, s.Counts.Errors, s.Counts.Warnings, s.Counts.Info, result.Run.ID)
		if outDirs != nil {
			if _, err := report.WriteDir(outDirs[i], result.Artifacts); err != nil {
				_, _ = fmt.Fprintf(a.stderr, "error: %v\n", err)
				worst = max(worst, exitError)
			}
		}
	}
	return worst
}

func hasGlobMeta(p string) bool {
	return strings.ContainsAny(p, "*?[{")
}

// expandModels resolves glob arguments to files, keeping literal paths and
// blob keys as given. Duplicates are dropped.
func expandModels(args []string) ([]string, error) {
	var out []string
	seen := make(map[string]bool)
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	for _, arg := range args {
		if strings.HasPrefix(arg, ifcmodel.BlobScheme) || !hasGlobMeta(arg) {
			add(arg)
			continue
		}
		matches, err := doublestar.FilepathGlob(arg, doublestar.WithFilesOnly())
		if err != nil {
			return nil, usageErrorf("bad model pattern %q: %v", arg, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("%w: no files match %s", domain.ErrModelNotFound, arg)
		}
		slices.Sort(matches)
		for _, m := range matches {
			add(m)
		}
	}
	if len(out) == 0 {
		return nil, errors.New("no models given")
	}
	return out, nil
}

// outputDirs maps each model to its artifact directory. A single model
// writes straight into root; batches get one subdirectory per model.
func outputDirs(root string, models []string) []string {
	if root == "" {
		return nil
	}
	dirs := make([]string, len(models))
	if len(models) == 1 {
		dirs[0] = root
		return dirs
	}
	used := make(map[string]int)
	for i, m := range models {
		base := filepath.Base(strings.TrimPrefix(m, ifcmodel.BlobScheme))
		base = strings.TrimSuffix(base, filepath.Ext(base))
		used[base]++
		if n := used[base]; n > 1 {
			base = fmt.Sprintf("%s-%d", base, n)
		}
		dirs[i] = filepath.Join(root, base)
	}
	return dirs
}
