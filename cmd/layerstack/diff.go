package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/brunoga/layerstack/document"
	"github.com/brunoga/layerstack/layer"
	"github.com/brunoga/layerstack/patch"
)

func newDiffCmd(a *app) *cobra.Command {
	var from, to, name, format string
	var ignore []string
	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Print a layer that turns one base document into another",
		RunE: func(cmd *cobra.Command, args []string) error {
			a.logger.WithField("from", from).WithField("to", to).Debug("diffing documents")
			src, err := document.LoadFile(from)
			if err != nil {
				return err
			}
			dst, err := document.LoadFile(to)
			if err != nil {
				return err
			}

			var opts []patch.DiffOption
			for _, path := range ignore {
				opts = append(opts, patch.DiffIgnorePath(path))
			}
			p := patch.Diff(src.Sections, dst.Sections, opts...)
			if len(p) == 0 {
				return fmt.Errorf("no changes from %s to %s: %w", src.ID, dst.ID, patch.ErrEmptyPatch)
			}
			if name == "" {
				name = dst.Name
			}
			l := layer.New(name, p, layer.WithDescription("Changes from "+src.ID+" to "+dst.ID))
			return write(cmd.OutOrStdout(), format, l)
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "base document to start from")
	cmd.Flags().StringVar(&to, "to", "", "base document to reach")
	cmd.Flags().StringVar(&name, "name", "", "layer name (defaults to the target document name)")
	cmd.Flags().StringVar(&format, "format", "yaml", "output format: yaml or json")
	cmd.Flags().StringSliceVar(&ignore, "ignore", nil, "paths to leave out of the diff")
	cmd.MarkFlagRequired("from")
	cmd.MarkFlagRequired("to")
	return cmd
}
