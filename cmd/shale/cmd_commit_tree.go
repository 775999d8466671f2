package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odvcencio/shale/pkg/object"
	"github.com/odvcencio/shale/pkg/repo"
)

func newCommitTreeCmd(a *app) *cobra.Command {
	var (
		parents []string
		message string
		author  string
		email   string
	)
	cmd := &cobra.Command{
		Use:   "commit-tree <tree> [-p parent]... -m message",
		Short: "Create a commit object for a tree without moving any ref",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.open()
			if err != nil {
				return err
			}
			tree, err := r.FindObject(args[0], object.TypeTree, true)
			if err != nil {
				return err
			}
			opts := repo.CommitOptions{
				Tree:    tree,
				Author:  resolveSignature(r, author, email),
				Message: message,
			}
			for _, p := range parents {
				ph, err := r.FindObject(p, object.TypeCommit, true)
				if err != nil {
					return err
				}
				opts.Parents = append(opts.Parents, ph)
			}
			h, err := r.CommitTree(opts)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), h)
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&parents, "parent", "p", nil, "parent commit (repeatable)")
	cmd.Flags().StringVarP(&message, "message", "m", "", "commit message")
	cmd.Flags().StringVar(&author, "author", "", "author name")
	cmd.Flags().StringVar(&email, "email", "", "author email")
	_ = cmd.MarkFlagRequired("message")
	return cmd
}
