package main

import (
	"github.com/spf13/cobra"

	"github.com/brunoga/layerstack/compiler"
	"github.com/brunoga/layerstack/conflict"
	"github.com/brunoga/layerstack/document"
)

// compileReport is the printed form of a compilation. Applied layers are
// listed by ID; the full layers live in the project file.
type compileReport struct {
	BaseDocumentID string                  `json:"baseDocumentId" yaml:"baseDocumentId"`
	AppliedLayers  []string                `json:"appliedLayers" yaml:"appliedLayers"`
	Skipped        []compiler.SkippedLayer `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Conflicts      conflict.Map            `json:"conflicts,omitempty" yaml:"conflicts,omitempty"`
	LayerCount     int                     `json:"layerCount" yaml:"layerCount"`
	ConflictCount  int                     `json:"conflictCount" yaml:"conflictCount"`
	FinalData      document.Sections       `json:"finalData" yaml:"finalData"`
}

func newReport(c *compiler.CompiledDocument) compileReport {
	ids := make([]string, len(c.AppliedLayers))
	for i, l := range c.AppliedLayers {
		ids[i] = l.ID
	}
	return compileReport{
		BaseDocumentID: c.BaseDocument.ID,
		AppliedLayers:  ids,
		Skipped:        c.Skipped,
		Conflicts:      c.Conflicts,
		LayerCount:     c.LayerCount,
		ConflictCount:  c.ConflictCount,
		FinalData:      c.FinalData,
	}
}

func newCompileCmd(a *app) *cobra.Command {
	f := &stackFlags{}
	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile a project and print the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.loadStack(f, nil)
			if err != nil {
				return err
			}
			return write(cmd.OutOrStdout(), f.format, newReport(s.Compiled()))
		},
	}
	f.register(cmd)
	return cmd
}
