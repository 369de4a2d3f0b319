package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/civictriage/ticketsynth/internal/dataset"
)

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats [file]",
		Short: "Print distribution statistics for a JSONL corpus",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.cfg.Output.Path
			if len(args) == 1 {
				path = args[0]
			}
			s, err := dataset.Collect(cmd.Context(), path)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}
			_, err = s.WriteTo(a.out)
			return err
		},
	}
}
