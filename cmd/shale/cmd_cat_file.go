package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odvcencio/shale/pkg/object"
)

func newCatFileCmd(a *app) *cobra.Command {
	var (
		showType bool
		showSize bool
		pretty   bool
	)
	cmd := &cobra.Command{
		Use:   "cat-file (-t | -s | -p | <type>) <object>",
		Short: "Print an object's type, size or content",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.open()
			if err != nil {
				return err
			}

			var want object.ObjectType
			name := args[0]
			if len(args) == 2 {
				if want, err = object.ParseType(args[0]); err != nil {
					return err
				}
				name = args[1]
			}

			h, err := r.FindObject(name, want, true)
			if err != nil {
				return err
			}
			typ, data, err := r.Store.ReadRaw(h)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch {
			case showType:
				fmt.Fprintln(out, typ)
			case showSize:
				fmt.Fprintln(out, len(data))
			case pretty && typ == object.TypeTree:
				entries, err := r.LsTree(h, false)
				if err != nil {
					return err
				}
				printTreeEntries(out, entries)
			default:
				_, err = out.Write(data)
				return err
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&showType, "type", "t", false, "print the object type")
	cmd.Flags().BoolVarP(&showSize, "size", "s", false, "print the payload size")
	cmd.Flags().BoolVarP(&pretty, "pretty", "p", false, "pretty-print the object")
	cmd.MarkFlagsMutuallyExclusive("type", "size", "pretty")
	return cmd
}
