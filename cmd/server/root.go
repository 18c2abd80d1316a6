package main

import (
	"github.com/spf13/cobra"
	"github.com/vinodismyname/sheetaudit/config"
	"github.com/vinodismyname/sheetaudit/pkg/version"
)

type rootOptions struct {
	configFile string
	logLevel   string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "sheetaudit",
		Short: "Spreadsheet structure analysis over JSON-RPC",
		Long: `sheetaudit opens .xlsx workbooks and reports their comments, question/answer
pairs and hidden rows, columns and worksheets.

With no subcommand it serves tools/list and tools/call requests on stdio, the
same as "sheetaudit serve". Run "sheetaudit analyze" to inspect a single file
from the shell.`,
		Version:       version.Version(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var (
				cfg *config.Config
				err error
			)
			if opts.configFile != "" {
				cfg, err = config.Load(opts.configFile)
			} else {
				cfg, err = config.LoadOrDefault()
			}
			if err != nil {
				return err
			}
			if opts.logLevel != "" {
				cfg.Log.Level = opts.logLevel
			}
			opts.cfg = cfg
			return nil
		},
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts, "")
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "Path to config file (TOML, YAML, or JSON)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Override log.level (debug, info, warn, error)")

	cmd.AddCommand(
		newServeCmd(opts),
		newAnalyzeCmd(opts),
		newToolsCmd(opts),
	)
	return cmd
}
