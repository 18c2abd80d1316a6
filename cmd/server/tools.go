package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vinodismyname/sheetaudit/internal/registry"
)

func newToolsCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List the tools a client would discover via tools/list",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts.cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			tools, err := a.registry.Tools(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				text, err := registry.Render(map[string]any{"tools": tools})
				if err != nil {
					return err
				}
				fmt.Fprintln(out, text)
				return nil
			}
			for _, t := range tools {
				fmt.Fprintf(out, "%-24s %s\n", t.Name, t.Description)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the tools/list result as JSON")
	return cmd
}
