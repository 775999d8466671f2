package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/odvcencio/shale/pkg/object"
	"github.com/odvcencio/shale/pkg/repo"
)

func newLsTreeCmd(a *app) *cobra.Command {
	var recursive bool
	cmd := &cobra.Command{
		Use:   "ls-tree [-r] <tree-ish>",
		Short: "List the contents of a tree object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.open()
			if err != nil {
				return err
			}
			h, err := r.FindObject(args[0], object.TypeTree, true)
			if err != nil {
				return err
			}
			entries, err := r.LsTree(h, recursive)
			if err != nil {
				return err
			}
			printTreeEntries(cmd.OutOrStdout(), entries)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "recurse into subtrees")
	return cmd
}

// printTreeEntries writes entries as "mode type hash\tpath".
func printTreeEntries(w io.Writer, entries []repo.TreeListEntry) {
	for _, e := range entries {
		fmt.Fprintf(w, "%s %s %s\t%s\n", object.NormalizeMode(e.Mode), e.Type, e.Hash, e.Path)
	}
}
