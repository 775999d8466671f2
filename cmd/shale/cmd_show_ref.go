package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/odvcencio/shale/pkg/repo"
)

func newShowRefCmd(a *app) *cobra.Command {
	var tree bool
	cmd := &cobra.Command{
		Use:   "show-ref [namespace]",
		Short: "List references with the objects they resolve to",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.open()
			if err != nil {
				return err
			}
			ns := ""
			if len(args) == 1 {
				ns = args[0]
			}
			dir, err := r.ListRefs(ns)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if tree {
				printRefDir(out, dir, 0)
				return nil
			}
			for _, ref := range dir.Flatten() {
				fmt.Fprintf(out, "%s %s\n", ref.Hash, ref.Path)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&tree, "tree", false, "print the nested directory structure")
	return cmd
}

func printRefDir(w io.Writer, d *repo.RefDir, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, n := range d.Entries {
		switch {
		case n.Dir != nil:
			fmt.Fprintf(w, "%s%s/\n", indent, n.Name)
			printRefDir(w, n.Dir, depth+1)
		case n.Present:
			fmt.Fprintf(w, "%s%s %s\n", indent, n.Name, n.Hash)
		default:
			fmt.Fprintf(w, "%s%s (dangling)\n", indent, n.Name)
		}
	}
}
