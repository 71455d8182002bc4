package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bnema/repostctl/internal/application"
	"github.com/bnema/repostctl/internal/domain"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

const captionPreviewLen = 40

func newMediaCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "media",
		Short: "Browse the main account's content",
	}

	cmd.AddCommand(newMediaListCmd(app))
	return cmd
}

func newMediaListCmd(app *app) *cobra.Command {
	var (
		count   int
		refresh bool
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent items of the main account and where they were reposted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var statuses []domain.MediaStatus
			err := runWithSpinner(cmd.Context(), cmd.ErrOrStderr(), app.verifier, "Loading recent media...", func(ctx context.Context) error {
				var err error
				statuses, err = app.library.Recent(ctx, count, refresh)
				return err
			})
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(statuses)
			}

			return writeMediaTable(cmd, statuses)
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", application.DefaultRecentCount, "Number of items to list")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Bypass the local content cache")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func writeMediaTable(cmd *cobra.Command, statuses []domain.MediaStatus) error {
	if len(statuses) == 0 {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), "No media found")
		return err
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "CODE", "TYPE", "CAPTION", "REPOSTED TO")
	for _, status := range statuses {
		reposted := "-"
		if len(status.RepostedTo) > 0 {
			reposted = strings.Join(status.RepostedTo, ", ")
		}
		t.Row(
			status.Item.ID,
			status.Item.Code,
			status.Item.MediaType.String(),
			previewCaption(status.Item.Caption()),
			reposted,
		)
	}

	_, err := fmt.Fprintln(cmd.OutOrStdout(), t.Render())
	return err
}

func previewCaption(caption string) string {
	caption = strings.Join(strings.Fields(caption), " ")
	runes := []rune(caption)
	if len(runes) <= captionPreviewLen {
		return caption
	}
	return string(runes[:captionPreviewLen-3]) + "..."
}
