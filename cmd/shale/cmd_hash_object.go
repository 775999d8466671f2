package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/odvcencio/shale/pkg/object"
)

func newHashObjectCmd(a *app) *cobra.Command {
	var (
		write  bool
		typ    string
		fromIn bool
	)
	cmd := &cobra.Command{
		Use:   "hash-object [-w] [-t type] (--stdin | file)",
		Short: "Compute an object identifier and optionally store the object",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			objType, err := object.ParseType(typ)
			if err != nil {
				return err
			}

			var data []byte
			switch {
			case fromIn && len(args) == 0:
				data, err = io.ReadAll(cmd.InOrStdin())
			case !fromIn && len(args) == 1:
				p := args[0]
				if !filepath.IsAbs(p) {
					p = filepath.Join(a.dir, p)
				}
				data, err = os.ReadFile(p)
			default:
				return fmt.Errorf("hash-object: exactly one of --stdin or a file is required")
			}
			if err != nil {
				return fmt.Errorf("hash-object: %w", err)
			}

			// Reject payloads that would not decode as the claimed kind.
			if _, err := object.Unmarshal(objType, data); err != nil {
				return fmt.Errorf("hash-object: %w", err)
			}

			h := object.HashObject(objType, data)
			if write {
				r, err := a.open()
				if err != nil {
					return err
				}
				if h, err = r.Store.WriteRaw(objType, data); err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), h)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&write, "write", "w", false, "write the object into the store")
	cmd.Flags().StringVarP(&typ, "type", "t", string(object.TypeBlob), "object type")
	cmd.Flags().BoolVar(&fromIn, "stdin", false, "read the object from standard input")
	return cmd
}
