package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/brunoga/layerstack/document"
	"github.com/brunoga/layerstack/project"
	"github.com/brunoga/layerstack/share"
)

func newShareCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "share",
		Short: "Encode and decode shareable project links",
	}

	encode := &cobra.Command{
		Use:   "encode PROJECT",
		Short: "Print the share link of a project file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := project.LoadFile(args[0])
			if err != nil {
				return err
			}
			link, err := share.Encode(p)
			if err != nil {
				return err
			}
			a.logger.WithField("bytes", len(link)).Debug("encoded share link")
			fmt.Fprintln(cmd.OutOrStdout(), link)
			return nil
		},
	}

	var out, format string
	decode := &cobra.Command{
		Use:   "decode LINK",
		Short: "Decode a share link into a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := share.Decode(args[0])
			if err != nil {
				return err
			}
			if out != "" {
				return p.SaveFile(out)
			}
			return p.Save(cmd.OutOrStdout(), document.Format(format))
		},
	}
	decode.Flags().StringVarP(&out, "out", "o", "", "write the project to this file instead of stdout")
	decode.Flags().StringVar(&format, "format", "yaml", "output format when printing: yaml or json")

	cmd.AddCommand(encode, decode)
	return cmd
}
