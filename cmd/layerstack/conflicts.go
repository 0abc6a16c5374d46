package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newConflictsCmd(a *app) *cobra.Command {
	f := &stackFlags{}
	var brief bool
	cmd := &cobra.Command{
		Use:   "conflicts",
		Short: "Print the fields written by more than one layer",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.loadStack(f, nil)
			if err != nil {
				return err
			}
			conflicts := s.Compiled().Conflicts
			if !brief {
				return write(cmd.OutOrStdout(), f.format, conflicts)
			}
			for _, path := range conflicts.Paths() {
				fmt.Fprintln(cmd.OutOrStdout(), conflicts[path].String())
			}
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().BoolVar(&brief, "brief", false, "print one line per conflict")
	return cmd
}
