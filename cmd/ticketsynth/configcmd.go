package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const redacted = "********"

func newConfigCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Long: `Config prints the configuration after defaults, the config file, .env,
TICKETSYNTH_* environment variables and flags have been applied.
The output can be used as a starting config file. Secrets are masked.`,
		Args: cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			cfg := *a.cfg
			if cfg.Output.Redis.Password != "" {
				cfg.Output.Redis.Password = redacted
			}
			out, err := yaml.Marshal(&cfg)
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			_, err = a.out.Write(out)
			return err
		},
	}
}
