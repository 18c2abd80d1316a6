package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/vinodismyname/sheetaudit/internal/output"
	"github.com/vinodismyname/sheetaudit/internal/registry"
)

func newAnalyzeCmd(opts *rootOptions) *cobra.Command {
	var (
		tool    string
		format  string
		noColor bool
	)

	cmd := &cobra.Command{
		Use:   "analyze <file.xlsx>",
		Short: "Run one analysis tool against a local workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := output.ParseFormat(format)
			if err != nil {
				return err
			}
			a, err := newApp(opts.cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			report, err := a.analyzeFile(cmd.Context(), tool, args[0])
			if err != nil {
				return err
			}

			colored := f == output.FormatTable && !noColor && !color.NoColor
			return output.Write(cmd.OutOrStdout(), f, report, colored)
		},
	}

	cmd.Flags().StringVar(&tool, "tool", registry.ToolComprehensiveAnalysis, "Tool to run")
	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format: json, toon or table")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored table titles")
	return cmd
}

// analyzeFile runs tool on a local file through the same dispatch path as a
// tools/call request.
func (a *app) analyzeFile(ctx context.Context, tool, path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	args := registry.Arguments{
		Filename:    filepath.Base(path),
		FileContent: base64.StdEncoding.EncodeToString(data),
	}

	var report any
	err = a.mw.Guard(ctx, func(ctx context.Context) error {
		var cerr error
		report, cerr = a.registry.Call(ctx, tool, args)
		return cerr
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}
