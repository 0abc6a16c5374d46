package main

import (
	"github.com/spf13/cobra"

	"github.com/brunoga/layerstack/preview"
)

type layerPreview struct {
	ID      string                  `json:"id" yaml:"id"`
	Name    string                  `json:"name" yaml:"name"`
	Enabled bool                    `json:"enabled" yaml:"enabled"`
	Changes []preview.SettingChange `json:"changes" yaml:"changes"`
}

func newPreviewCmd(a *app) *cobra.Command {
	f := &stackFlags{}
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Print what every layer changes relative to the base document",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.loadStack(f, nil)
			if err != nil {
				return err
			}

			var out []layerPreview
			for _, l := range s.Layers() {
				out = append(out, layerPreview{
					ID:      l.ID,
					Name:    l.Name,
					Enabled: l.Enabled,
					Changes: l.Preview,
				})
			}
			return write(cmd.OutOrStdout(), f.format, out)
		},
	}
	f.register(cmd)
	return cmd
}
