package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odvcencio/shale/pkg/object"
)

func newBranchCmd(a *app) *cobra.Command {
	var deleteBranch string
	cmd := &cobra.Command{
		Use:   "branch [name [start]]",
		Short: "List, create or delete branches",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.open()
			if err != nil {
				return err
			}

			if deleteBranch != "" {
				current, err := r.CurrentBranch()
				if err != nil {
					return err
				}
				if current == deleteBranch {
					return fmt.Errorf("cannot delete the current branch %q", deleteBranch)
				}
				return r.DeleteRef("refs/heads/" + deleteBranch)
			}

			if len(args) == 0 {
				current, err := r.CurrentBranch()
				if err != nil {
					return err
				}
				branches, err := r.ListBranches()
				if err != nil {
					return err
				}
				for _, b := range branches {
					marker := "  "
					if b.Path == current {
						marker = "* "
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s%s\n", marker, b.Path)
				}
				return nil
			}

			start := "HEAD"
			if len(args) == 2 {
				start = args[1]
			}
			target, err := r.FindObject(start, object.TypeCommit, true)
			if err != nil {
				return err
			}
			return r.CreateBranch(args[0], target)
		},
	}
	cmd.Flags().StringVarP(&deleteBranch, "delete", "d", "", "delete the named branch")
	return cmd
}
