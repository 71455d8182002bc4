package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	statusadapter "github.com/bnema/repostctl/internal/adapters/render/status"
	"github.com/bnema/repostctl/internal/domain"
	"github.com/spf13/cobra"
)

func newStatusCmd(app *app) *cobra.Command {
	var (
		asJSON  bool
		connect bool
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show accounts, sessions and repost cache freshness",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if connect {
				err := runWithSpinner(cmd.Context(), cmd.ErrOrStderr(), app.verifier, "Connecting accounts...", func(ctx context.Context) error {
					_, err := app.sessions.ConnectAll(ctx)
					return err
				})
				if err != nil {
					return err
				}
			}

			statuses, err := app.accounts.Statuses(cmd.Context())
			if err != nil {
				return err
			}

			return writeStatusesOutput(cmd, app, statuses, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&connect, "connect", false, "Connect every account before reporting")
	return cmd
}

func writeStatusesOutput(cmd *cobra.Command, app *app, statuses []domain.AccountStatus, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(statuses)
	}

	rendered, err := app.statusRenderer(statuses, statusadapter.RenderOptions{
		Now:      app.now(),
		CacheTTL: app.settings.Cache.TTL,
	})
	if err != nil {
		return fmt.Errorf("render status: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return err
}
