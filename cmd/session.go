package cmd

import (
	"context"
	"fmt"

	"github.com/bnema/repostctl/internal/domain"
	"github.com/spf13/cobra"
)

func newSessionCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage authenticated sessions",
	}

	cmd.AddCommand(
		newSessionConnectCmd(app),
		newSessionConnectAllCmd(app),
		newSessionReconnectCmd(app),
		newSessionDisconnectCmd(app),
	)

	return cmd
}

func newSessionConnectCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "connect <username>",
		Short: "Restore or create the session of one account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			username := domain.NormalizeUsername(args[0])
			err := runWithSpinner(cmd.Context(), cmd.ErrOrStderr(), app.verifier, fmt.Sprintf("Connecting @%s...", username), func(ctx context.Context) error {
				_, err := app.sessions.Connect(ctx, username)
				return err
			})
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "@%s connected\n", username)
			return nil
		},
	}
}

func newSessionConnectAllCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "connect-all",
		Short: "Connect the main account and every alt",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var result domain.BatchResult
			err := runWithSpinner(cmd.Context(), cmd.ErrOrStderr(), app.verifier, "Connecting accounts...", func(ctx context.Context) error {
				var err error
				result, err = app.sessions.ConnectAll(ctx)
				return err
			})
			if err != nil {
				return err
			}

			return writeBatchResult(cmd, result)
		},
	}
}

func newSessionReconnectCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reconnect <username>",
		Short: "Discard the saved session and log in again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			username := domain.NormalizeUsername(args[0])
			err := runWithSpinner(cmd.Context(), cmd.ErrOrStderr(), app.verifier, fmt.Sprintf("Logging in @%s...", username), func(ctx context.Context) error {
				_, err := app.sessions.Reconnect(ctx, username)
				return err
			})
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "@%s reconnected\n", username)
			return nil
		},
	}
}

func newSessionDisconnectCmd(app *app) *cobra.Command {
	var forget bool

	cmd := &cobra.Command{
		Use:   "disconnect <username>",
		Short: "Drop the live session of an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			username := domain.NormalizeUsername(args[0])
			app.sessions.Disconnect(username)

			if forget {
				if err := app.sessionStore.Delete(cmd.Context(), username); err != nil {
					return fmt.Errorf("delete saved session: %w", err)
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "@%s disconnected, saved session deleted\n", username)
				return nil
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "@%s disconnected\n", username)
			return nil
		},
	}

	cmd.Flags().BoolVar(&forget, "forget", false, "Also delete the saved session")
	return cmd
}
