package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/odvcencio/shale/pkg/repo"
)

func newTagCmd(a *app) *cobra.Command {
	var (
		deleteTag string
		annotate  bool
		message   string
		force     bool
		showHash  bool
	)
	cmd := &cobra.Command{
		Use:   "tag [name [object]]",
		Short: "List, create or delete tags",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.open()
			if err != nil {
				return err
			}

			if strings.TrimSpace(deleteTag) != "" {
				if len(args) > 0 {
					return fmt.Errorf("tag --delete does not accept positional args")
				}
				return r.DeleteTag(deleteTag)
			}

			if len(args) == 0 {
				tags, err := r.ListTags()
				if err != nil {
					return err
				}
				for _, t := range tags {
					if showHash {
						fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", t.Hash, t.Path)
					} else {
						fmt.Fprintln(cmd.OutOrStdout(), t.Path)
					}
				}
				return nil
			}

			rev := "HEAD"
			if len(args) == 2 {
				rev = args[1]
			}
			target, err := r.FindObject(rev, "", false)
			if err != nil {
				return err
			}
			_, err = r.CreateTag(args[0], target, repo.TagOptions{
				Annotated: annotate || message != "",
				Tagger:    resolveSignature(r, "", ""),
				Message:   message,
				Force:     force,
			})
			return err
		},
	}
	cmd.Flags().StringVarP(&deleteTag, "delete", "d", "", "delete the named tag")
	cmd.Flags().BoolVarP(&annotate, "annotate", "a", false, "write an annotated tag object")
	cmd.Flags().StringVarP(&message, "message", "m", "", "tag message (implies -a)")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "replace an existing tag")
	cmd.Flags().BoolVar(&showHash, "show-hash", false, "show tag target hashes when listing")
	return cmd
}
