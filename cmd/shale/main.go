package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/odvcencio/shale/pkg/repo"
	"github.com/odvcencio/shale/pkg/settings"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app carries state shared by every subcommand.
type app struct {
	dir      string
	verbose  bool
	settings settings.Settings
	logger   *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{logger: zap.NewNop()}
	root := &cobra.Command{
		Use:           "shale",
		Short:         "Content-addressed object store with git-compatible plumbing",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			s, err := settings.Load()
			if err != nil {
				return err
			}
			logger, err := s.NewLogger(cmd.ErrOrStderr(), a.verbose)
			if err != nil {
				return err
			}
			a.settings = s
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}
	root.PersistentFlags().StringVarP(&a.dir, "dir", "C", ".", "run as if started in this directory")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newVersionCmd(),
		newInitCmd(a),
		newHashObjectCmd(a),
		newCatFileCmd(a),
		newLsTreeCmd(a),
		newWriteTreeCmd(a),
		newCommitTreeCmd(a),
		newCommitCmd(a),
		newShowRefCmd(a),
		newRevParseCmd(a),
		newUpdateRefCmd(a),
		newTagCmd(a),
		newBranchCmd(a),
		newLogCmd(a),
		newCheckoutCmd(a),
		newFsckCmd(a),
		newPruneCmd(a),
		newReflogCmd(a),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "shale 0.1.0-dev")
		},
	}
}

func (a *app) repoOptions() []repo.Option {
	return []repo.Option{
		repo.WithLogger(a.logger),
		repo.WithCacheSize(a.settings.ObjectCacheSize),
		repo.WithCompressionLevel(a.settings.CompressionLevel),
	}
}

func (a *app) open() (*repo.Repo, error) {
	return repo.Open(a.dir, a.repoOptions()...)
}
