package cmd

import (
	"context"
	"fmt"

	"github.com/bnema/repostctl/internal/application"
	"github.com/bnema/repostctl/internal/domain"
	"github.com/spf13/cobra"
)

func newRepostCmd(app *app) *cobra.Command {
	var (
		caption string
		targets []string
	)

	cmd := &cobra.Command{
		Use:   "repost <media-id>",
		Short: "Repost an item of the main account to its alts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result domain.BatchResult
			err := runWithSpinner(cmd.Context(), cmd.ErrOrStderr(), app.verifier, "Reposting...", func(ctx context.Context) error {
				var err error
				result, err = app.pipeline.Repost(ctx, args[0], application.RepostOptions{
					Caption: caption,
					Targets: targets,
				})
				return err
			})
			if err != nil {
				return err
			}

			return writeBatchResult(cmd, result)
		},
	}

	cmd.Flags().StringVar(&caption, "caption", "", "Caption to use instead of the original")
	cmd.Flags().StringSliceVar(&targets, "to", nil, "Alt accounts to post to (default: every alt)")
	return cmd
}

func newRepostURLCmd(app *app) *cobra.Command {
	var caption string

	cmd := &cobra.Command{
		Use:   "repost-url <url>",
		Short: "Repost the item a post or reel URL points to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result domain.RepostResult
			err := runWithSpinner(cmd.Context(), cmd.ErrOrStderr(), app.verifier, "Reposting from URL...", func(ctx context.Context) error {
				var err error
				result, err = app.pipeline.RepostByReference(ctx, args[0], caption)
				return err
			})
			if err != nil {
				return err
			}

			if result.Unavailable != nil {
				return writeUnavailable(cmd, result.Unavailable)
			}
			return writeBatchResult(cmd, result.Batch)
		},
	}

	cmd.Flags().StringVar(&caption, "caption", "", "Caption to use instead of the original")
	return cmd
}

func newRepostFileCmd(app *app) *cobra.Command {
	var (
		caption   string
		mediaType string
	)

	cmd := &cobra.Command{
		Use:   "repost-file <path>",
		Short: "Post a local file to every alt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := domain.ParseMediaType(mediaType)
			if err != nil {
				return err
			}

			var result domain.BatchResult
			err = runWithSpinner(cmd.Context(), cmd.ErrOrStderr(), app.verifier, "Uploading...", func(ctx context.Context) error {
				var err error
				result, err = app.pipeline.RepostLocalFile(ctx, args[0], caption, kind)
				return err
			})
			if err != nil {
				return err
			}

			return writeBatchResult(cmd, result)
		},
	}

	cmd.Flags().StringVar(&caption, "caption", "", "Caption of the post")
	cmd.Flags().StringVar(&mediaType, "type", "photo", "Media type: photo or video")
	return cmd
}

func newDownloadURLCmd(app *app) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "download-url <url>",
		Short: "Download the item a post or reel URL points to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				dir = app.settings.Workspace.DownloadDir
			}

			var result domain.DownloadResult
			err := runWithSpinner(cmd.Context(), cmd.ErrOrStderr(), app.verifier, "Downloading...", func(ctx context.Context) error {
				var err error
				result, err = app.pipeline.DownloadByReference(ctx, args[0], dir)
				return err
			})
			if err != nil {
				return err
			}

			if result.Unavailable != nil {
				return writeUnavailable(cmd, result.Unavailable)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%s %s)\n", result.Path, result.Item.MediaType, result.Item.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Target directory (default: the configured download dir)")
	return cmd
}

func writeBatchResult(cmd *cobra.Command, result domain.BatchResult) error {
	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintln(out, result.Summary())
	for _, username := range result.Succeeded {
		_, _ = fmt.Fprintf(out, "  ok      @%s\n", username)
	}
	for _, username := range result.Skipped {
		_, _ = fmt.Fprintf(out, "  skipped @%s\n", username)
	}
	for _, username := range result.FailedUsernames() {
		_, _ = fmt.Fprintf(out, "  failed  @%s: %v\n", username, result.Failed[username])
	}

	if len(result.Failed) > 0 {
		return fmt.Errorf("%d account(s) failed", len(result.Failed))
	}
	return nil
}

func writeUnavailable(cmd *cobra.Command, unavailable *domain.Unavailable) error {
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "Not available: %s (%s)\n", unavailable.Reason, unavailable.Reference)
	return err
}
