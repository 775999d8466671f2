package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odvcencio/shale/pkg/object"
)

func newRevParseCmd(a *app) *cobra.Command {
	var (
		want     string
		noFollow bool
	)
	cmd := &cobra.Command{
		Use:   "rev-parse [--type kind] <revision>...",
		Short: "Resolve revisions to object identifiers",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.open()
			if err != nil {
				return err
			}
			var kind object.ObjectType
			if want != "" {
				if kind, err = object.ParseType(want); err != nil {
					return err
				}
			}
			for _, name := range args {
				h, err := r.FindObject(name, kind, !noFollow)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), h)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&want, "type", "", "peel to an object of this kind")
	cmd.Flags().BoolVar(&noFollow, "no-follow", false, "fail instead of dereferencing to --type")
	return cmd
}
