package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "repostctl",
		Short:         "Cross-post content from a main account to its alt accounts",
		Long:          "repostctl keeps authenticated sessions for one main account and any number of alt accounts, detects content the alts already carry, and reposts the rest.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.AddCommand(newVersionCmd())

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		rootCmd.AddCommand(newConfigCmd())
		return rootCmd
	}

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, _ []string) {
		app.verifier.bind(cmd.InOrStdin(), cmd.ErrOrStderr())
	}
	rootCmd.PersistentPostRun = func(*cobra.Command, []string) {
		app.close()
	}

	rootCmd.AddCommand(
		newConfigCmd(),
		newAccountCmd(app),
		newSessionCmd(app),
		newMediaCmd(app),
		newRepostCmd(app),
		newRepostURLCmd(app),
		newRepostFileCmd(app),
		newDownloadURLCmd(app),
		newStatusCmd(app),
		newWatchCmd(app),
	)

	return rootCmd
}
