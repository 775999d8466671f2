package main

import (
	"github.com/spf13/cobra"

	"github.com/odvcencio/shale/pkg/object"
)

func newUpdateRefCmd(a *app) *cobra.Command {
	var (
		del      bool
		symbolic bool
	)
	cmd := &cobra.Command{
		Use:   "update-ref [-d] <ref> [<new> [<old>]]",
		Short: "Safely update, point or delete a reference",
		Args:  cobra.RangeArgs(1, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.open()
			if err != nil {
				return err
			}
			name := args[0]
			switch {
			case del:
				if len(args) != 1 {
					return cmd.Usage()
				}
				return r.DeleteRef(name)
			case symbolic:
				if len(args) != 2 {
					return cmd.Usage()
				}
				return r.UpdateSymbolicRef(name, args[1])
			}
			if len(args) < 2 {
				return cmd.Usage()
			}
			h, err := r.FindObject(args[1], "", false)
			if err != nil {
				return err
			}
			if len(args) == 3 {
				// An empty old value requires the ref to be absent.
				old := object.Hash("")
				switch {
				case object.IsHash(args[2]):
					// The current value may name an object that is gone.
					old = object.Hash(args[2])
				case args[2] != "":
					if old, err = r.FindObject(args[2], "", false); err != nil {
						return err
					}
				}
				return r.UpdateRef(name, h, old)
			}
			return r.UpdateRef(name, h)
		},
	}
	cmd.Flags().BoolVarP(&del, "delete", "d", false, "delete the reference")
	cmd.Flags().BoolVar(&symbolic, "symbolic", false, "make <ref> point at the ref named by <new>")
	cmd.MarkFlagsMutuallyExclusive("delete", "symbolic")
	return cmd
}
