package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/civictriage/ticketsynth/internal/schema"
	"github.com/civictriage/ticketsynth/internal/ticketnumber"
)

// errValidation is returned when the corpus was read but broke rules.
var errValidation = errors.New("corpus failed validation")

func newValidateCmd(a *app) *cobra.Command {
	var (
		expect    int64
		maxIssues int
	)
	cmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "Check a JSONL corpus against the ticket schema and labelling rules",
		Long: `Validate reads a JSONL corpus (optionally .gz or .zst) and reports
schema violations, duplicate or out-of-order ticket ids and labels that
break the escalation rules. The file defaults to the configured output path.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.cfg.Output.Path
			if len(args) == 1 {
				path = args[0]
			}
			ids, err := ticketnumber.Resolve(a.cfg.Generator.IDScheme, ticketnumber.Config{
				Prefix:         a.cfg.Generator.IDPrefix,
				YearTag:        a.cfg.Generator.YearTag,
				MinCounterSize: a.cfg.Generator.IDWidth,
			})
			if err != nil {
				return err
			}
			v, err := schema.New(ids, schema.WithMaxIssues(maxIssues))
			if err != nil {
				return err
			}

			rep, err := v.ValidateFile(cmd.Context(), path, expect)
			if err != nil {
				return fmt.Errorf("failed to validate %s: %w", path, err)
			}
			if err := rep.Print(a.out); err != nil {
				return err
			}
			if !rep.OK() {
				return fmt.Errorf("%w: %d issues in %s", errValidation, rep.IssueCount, path)
			}
			a.log.Info("corpus valid", "path", path, "lines", rep.Lines)
			return nil
		},
	}
	cmd.Flags().Int64Var(&expect, "expect", 0, "expected number of lines; 0 skips the check")
	cmd.Flags().IntVar(&maxIssues, "max-issues", 100, "maximum issues to list")
	return cmd
}
