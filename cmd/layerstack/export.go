package main

import (
	"github.com/spf13/cobra"

	"github.com/brunoga/layerstack/export"
)

func newExportCmd(a *app) *cobra.Command {
	f := &stackFlags{}
	var delimiter string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print the compiled settings as INI",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.loadStack(f, nil)
			if err != nil {
				return err
			}
			if delimiter == "" {
				delimiter = a.cfg.Export.ArrayDelimiter
			}
			return export.INI(cmd.OutOrStdout(), s.Compiled().FinalData, export.WithArrayDelimiter(delimiter))
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&delimiter, "delimiter", "", "array delimiter (overrides the config)")
	return cmd
}
