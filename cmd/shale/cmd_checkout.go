package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

func newCheckoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "checkout <tree-ish> <empty-dir>",
		Short: "Materialize a tree into an empty directory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.open()
			if err != nil {
				return err
			}
			dest := args[1]
			if !filepath.IsAbs(dest) {
				dest = filepath.Join(a.dir, dest)
			}
			res, err := r.Checkout(args[0], dest)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, sm := range res.Submodules {
				fmt.Fprintf(out, "skipped submodule %s at %s\n", sm.Path, sm.Commit)
			}
			fmt.Fprintf(out, "checked out %d files, %d directories, %d symlinks into %s\n",
				res.Files, res.Dirs, res.Symlinks, dest)
			return nil
		},
	}
}
