package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"ifcqa/internal/core"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) summaryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "summary MODEL",
		Short: "Print per-class population statistics and common set names",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			svc, closeAll, err := a.newService(cmd.Context(), args)
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, closeAll()) }()
			summary, err := svc.Analyze(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeJSON(a.stdout, summary)
		},
	}
}

func (a *app) catalogCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog MODEL",
		Short: "Inventory the property and quantity sets used by a model",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			svc, closeAll, err := a.newService(cmd.Context(), args)
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, closeAll()) }()
			catalog, err := svc.Catalog(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeJSON(a.stdout, catalog)
		},
	}
}

func (a *app) runsCommand() *cobra.Command {
	runs := &cobra.Command{
		Use:   "runs",
		Short: "Inspect recorded run history",
	}
	runs.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List recorded runs, newest first",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			store, closeRuns, err := openRunStore(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, closeRuns()) }()
			svc := core.NewService(core.WithLogger(a.logger), core.WithRunStore(store))
			records, err := svc.Runs(cmd.Context())
			if err != nil {
				return err
			}
			for _, r := range records {
				status := "PASS"
				if !r.Summary.Pass {
					status = "FAIL"
				}
				_, _ = fmt.Fprintf(a.stdout, "%s\t%s\t%s\t%s\t%s@%s\t%d issues\n",
					r.ID, r.StartedAt.Format(time.RFC3339), status, r.Summary.ModelPath,
					r.Summary.Ruleset.Name, r.Summary.Ruleset.Version, r.Summary.Counts.Total)
			}
			return nil
		},
	})
	runs.AddCommand(&cobra.Command{
		Use:   "show RUN_ID",
		Short: "Print one recorded run as JSON",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			store, closeRuns, err := openRunStore(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, closeRuns()) }()
			svc := core.NewService(core.WithLogger(a.logger), core.WithRunStore(store))
			record, ok, err := svc.Run(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("run %s not found", args[0])
			}
			return writeJSON(a.stdout, record)
		},
	})
	return runs
}
