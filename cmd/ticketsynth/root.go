package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/civictriage/ticketsynth/internal/config"
	"github.com/civictriage/ticketsynth/internal/logger"
	"github.com/civictriage/ticketsynth/internal/version"
)

// app carries what every subcommand needs once configuration is loaded.
type app struct {
	v       *viper.Viper
	cfgFile string
	out     io.Writer
	errOut  io.Writer

	cfg *config.Config
	log *slog.Logger
}

// flagKeys maps persistent flag names to their configuration keys.
var flagKeys = map[string]string{
	"count":            "generator.count",
	"seed":             "generator.seed",
	"year-tag":         "generator.year_tag",
	"id-scheme":        "generator.id_scheme",
	"output":           "output.path",
	"format":           "output.format",
	"compression":      "output.compression",
	"log-level":        "logging.level",
	"log-format":       "logging.format",
	"metrics-textfile": "metrics.textfile",
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{v: viper.New(), out: out, errOut: errOut}
	d := config.Default()

	root := &cobra.Command{
		Use:   "ticketsynth",
		Short: "Generate synthetic civic grievance tickets",
		Long: `ticketsynth produces a labelled corpus of synthetic municipal grievance
tickets for training escalation and triage models.

Running it without a subcommand is the same as "ticketsynth generate".`,
		Version:           version.String(),
		SilenceUsage:      true,
		SilenceErrors:     true,
		Args:              cobra.NoArgs,
		PersistentPreRunE: a.load,
		RunE:              a.runGenerate,
	}
	root.SetOut(out)
	root.SetErr(errOut)

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default ./configs/ticketsynth.yaml if present)")
	pf.Int64("count", d.Generator.Count, "number of tickets to generate")
	pf.Int64("seed", d.Generator.Seed, "random seed; 0 picks one and logs it")
	pf.String("year-tag", d.Generator.YearTag, "year segment of ticket ids")
	pf.String("id-scheme", d.Generator.IDScheme, "ticket id scheme: yearly or sequential")
	pf.StringP("output", "o", d.Output.Path, "output path (sqlite database for --format sql)")
	pf.StringP("format", "f", d.Output.Format, "output format: jsonl, sql, xlsx or redis")
	pf.String("compression", d.Output.Compression, "jsonl compression: auto, none, gzip or zstd")
	pf.String("log-level", d.Logging.Level, "log level: debug, info, warn or error")
	pf.String("log-format", d.Logging.Format, "log format: text or json")
	pf.String("metrics-textfile", d.Metrics.Textfile, "write Prometheus metrics to this file after a run")

	if err := bindFlags(a.v, pf, flagKeys); err != nil {
		panic(err)
	}

	root.AddCommand(
		newGenerateCmd(a),
		newValidateCmd(a),
		newStatsCmd(a),
		newConfigCmd(a),
		newScheduleCmd(a),
		newVersionCmd(a),
	)
	return root
}

func bindFlags(v *viper.Viper, fs *pflag.FlagSet, keys map[string]string) error {
	for name, key := range keys {
		f := fs.Lookup(name)
		if f == nil {
			return fmt.Errorf("flag --%s is not defined", name)
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("failed to bind --%s: %w", name, err)
		}
	}
	return nil
}

func (a *app) load(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = logger.New(cfg.Logging, a.errOut)
	slog.SetDefault(a.log)
	a.log.Debug("configuration loaded", "command", cmd.Name(), "file", a.v.ConfigFileUsed())
	return nil
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		// no configuration needed
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(*cobra.Command, []string) error {
			_, err := fmt.Fprint(a.out, version.Full())
			return err
		},
	}
}
