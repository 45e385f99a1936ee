// Command ifcqa checks building model snapshots against data-quality
// rulesets and keeps a history of the results.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"ifcqa/internal/blob"
	"ifcqa/internal/core"
	"ifcqa/internal/ifcmodel"
	"ifcqa/pkg/domain"
)

// Process exit codes.
const (
	exitPass   = 0
	exitFailed = 1
	exitConfig = 2
	exitError  = 3
)

var exitFunc = os.Exit

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	exitFunc(code)
}

// exitCodeError carries an explicit exit code out of a command. A nil err
// means the outcome was already reported.
type exitCodeError struct {
	code int
	err  error
}

func (e *exitCodeError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit %d", e.code)
	}
	return e.err.Error()
}

func (e *exitCodeError) Unwrap() error { return e.err }

func usageErrorf(format string, args ...any) error {
	return &exitCodeError{code: exitConfig, err: fmt.Errorf(format, args...)}
}

func cli(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{stdout: stdout, stderr: stderr}
	root := a.rootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	err := root.ExecuteContext(ctx)
	return a.exitCode(err)
}

func (a *app) exitCode(err error) int {
	if err == nil {
		return exitPass
	}
	var coded *exitCodeError
	if errors.As(err, &coded) {
		if coded.err != nil {
			_, _ = fmt.Fprintf(a.stderr, "error: %v\n", coded.err)
		}
		return coded.code
	}
	_, _ = fmt.Fprintf(a.stderr, "error: %v\n", err)
	if domain.IsConfigurationError(err) || strings.HasPrefix(err.Error(), "unknown command") {
		return exitConfig
	}
	return exitError
}

// app holds the global flags shared by every command.
type app struct {
	stdout, stderr io.Writer

	logLevel   string
	metricsOut string
	traceOut   string
	history    bool
	publish    bool

	logger *slog.Logger
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "ifcqa",
		Short:         "Rule-based data-quality checks for IFC building models",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			level, ok := parseLevel(a.logLevel)
			if !ok {
				return usageErrorf("invalid --log-level %q", a.logLevel)
			}
			a.logger = slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level}))
			return nil
		},
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &exitCodeError{code: exitConfig, err: err}
	})
	flags := root.PersistentFlags()
	flags.StringVar(&a.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	flags.StringVar(&a.metricsOut, "metrics-out", "", "write Prometheus metrics in text format to this file")
	flags.StringVar(&a.traceOut, "trace-out", "", "write operation spans as JSON lines to this file")
	flags.BoolVar(&a.history, "history", false, "record runs in the run store selected by IFCQA_STORAGE_DRIVER")
	flags.BoolVar(&a.publish, "publish", false, "publish run artifacts to the blob store selected by IFCQA_BLOB_DRIVER")

	root.AddCommand(
		a.checkCommand(),
		a.watchCommand(),
		a.summaryCommand(),
		a.catalogCommand(),
		a.runsCommand(),
	)
	return root
}

func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return 0, false
	}
}

func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return &exitCodeError{code: exitConfig, err: err}
		}
		return nil
	}
}

func minArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.MinimumNArgs(n)(cmd, args); err != nil {
			return &exitCodeError{code: exitConfig, err: err}
		}
		return nil
	}
}

// newService assembles a service from the global flags. The returned
// closer flushes metrics and traces and releases stores.
func (a *app) newService(ctx context.Context, modelPaths []string) (*core.Service, func() error, error) {
	opts := []core.Option{core.WithLogger(a.logger)}
	var closers []func() error
	closeAll := func() error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = append(errs, closers[i]())
		}
		return errors.Join(errs...)
	}

	if a.traceOut != "" {
		f, err := os.Create(a.traceOut)
		if err != nil {
			return nil, nil, fmt.Errorf("create trace file: %w", err)
		}
		closers = append(closers, f.Close)
		opts = append(opts, core.WithTracer(core.NewJSONTracer(f)))
	}
	if a.metricsOut != "" {
		recorder := core.NewPrometheusMetricsRecorder(nil)
		path := a.metricsOut
		closers = append(closers, func() error { return recorder.WriteTextfile(path) })
		opts = append(opts, core.WithMetricsRecorder(recorder))
	}

	needBlob := a.publish
	for _, p := range modelPaths {
		if strings.HasPrefix(p, ifcmodel.BlobScheme) {
			needBlob = true
		}
	}
	if needBlob {
		store, err := blob.Open(ctx)
		if err != nil {
			_ = closeAll()
			return nil, nil, fmt.Errorf("open blob store: %w", err)
		}
		if a.publish {
			opts = append(opts, core.WithArtifactStore(store))
		} else {
			opts = append(opts, core.WithModelOpener(ifcmodel.Opener(store)))
		}
	}

	if a.history {
		runs, closeRuns, err := openRunStore(ctx)
		if err != nil {
			_ = closeAll()
			return nil, nil, err
		}
		closers = append(closers, closeRuns)
		opts = append(opts, core.WithRunStore(runs))
	}
	return core.NewService(opts...), closeAll, nil
}

func openRunStore(ctx context.Context) (domain.RunStore, func() error, error) {
	runs, err := core.OpenRunStore(ctx, core.StorageConfigFromEnv())
	if err != nil {
		return nil, nil, fmt.Errorf("open run store: %w", err)
	}
	closeRuns := func() error { return nil }
	if c, ok := runs.(io.Closer); ok {
		closeRuns = c.Close
	}
	return runs, closeRuns, nil
}
