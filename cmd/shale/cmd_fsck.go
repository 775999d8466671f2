package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newFsckCmd(a *app) *cobra.Command {
	var unreachable bool
	cmd := &cobra.Command{
		Use:   "fsck",
		Short: "Verify that every object reachable from the refs is present",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.open()
			if err != nil {
				return err
			}
			report, err := r.Fsck()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, ref := range report.Dangling {
				fmt.Fprintf(out, "dangling ref %s\n", ref)
			}
			for _, h := range report.Missing {
				fmt.Fprintf(out, "missing %s\n", h)
			}
			for _, h := range report.Corrupt {
				fmt.Fprintf(out, "corrupt %s\n", h)
			}
			if unreachable {
				for _, h := range report.Unreachable {
					fmt.Fprintf(out, "unreachable %s\n", h)
				}
			}
			fmt.Fprintf(out, "checked %d refs, %d reachable objects\n", len(report.Refs), report.Reachable)
			if !report.OK() {
				return fmt.Errorf("fsck: %d missing, %d corrupt objects", len(report.Missing), len(report.Corrupt))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&unreachable, "unreachable", false, "list objects no ref reaches")
	return cmd
}
