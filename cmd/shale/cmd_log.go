package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/odvcencio/shale/pkg/object"
	"github.com/odvcencio/shale/pkg/repo"
)

func newLogCmd(a *app) *cobra.Command {
	var (
		oneline bool
		limit   int
	)
	cmd := &cobra.Command{
		Use:   "log [revision]",
		Short: "Show commit history",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.open()
			if err != nil {
				return err
			}
			rev := "HEAD"
			if len(args) == 1 {
				rev = args[0]
			}
			start, err := r.FindObject(rev, object.TypeCommit, true)
			if err != nil {
				return fmt.Errorf("cannot resolve %s: %w", rev, err)
			}
			entries, err := r.Log(start, limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, e := range entries {
				if oneline {
					fmt.Fprintf(out, "%s %s\n", e.Hash.Short(), firstLine(string(e.Commit.Message())))
					continue
				}
				printLogEntry(out, e)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&oneline, "oneline", false, "one line per commit")
	cmd.Flags().IntVarP(&limit, "max-count", "n", 0, "limit the number of commits (0 for all)")
	return cmd
}

func printLogEntry(w io.Writer, e repo.LogEntry) {
	fmt.Fprintf(w, "commit %s\n", e.Hash)
	if parents := e.Commit.Parents(); len(parents) > 1 {
		short := make([]string, len(parents))
		for i, p := range parents {
			short[i] = p.Short()
		}
		fmt.Fprintf(w, "Merge: %s\n", strings.Join(short, " "))
	}
	author, when := splitSignature(e.Commit.Author())
	fmt.Fprintf(w, "Author: %s\n", author)
	if when != "" {
		fmt.Fprintf(w, "Date:   %s\n", when)
	}
	fmt.Fprintln(w)
	for _, line := range strings.Split(strings.TrimRight(string(e.Commit.Message()), "\n"), "\n") {
		fmt.Fprintf(w, "    %s\n", line)
	}
	fmt.Fprintln(w)
}

// splitSignature separates "Name <email> 1527025023 +0200" into the
// identity and a formatted date. Unparseable timestamps leave date empty.
func splitSignature(sig string) (who, date string) {
	fields := strings.Fields(sig)
	if len(fields) < 3 {
		return sig, ""
	}
	secs, err := strconv.ParseInt(fields[len(fields)-2], 10, 64)
	if err != nil {
		return sig, ""
	}
	when := time.Unix(secs, 0).UTC()
	if tz, err := time.Parse("-0700", fields[len(fields)-1]); err == nil {
		when = when.In(tz.Location())
	}
	return strings.Join(fields[:len(fields)-2], " "), when.Format("Mon Jan 2 15:04:05 2006 -0700")
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return line
}
