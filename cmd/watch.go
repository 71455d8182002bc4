package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/bnema/repostctl/internal/application"
	"github.com/bnema/repostctl/internal/domain"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newWatchCmd(app *app) *cobra.Command {
	var (
		schedule    string
		count       int
		metricsAddr string
		autoRepost  bool
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep sessions alive and report items the alts are missing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			cycle := func() {
				if err := watchTick(ctx, app, cmd.OutOrStdout(), count, autoRepost); err != nil {
					app.logger.Warn("watch cycle failed", zap.Error(err))
					_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
				}
			}

			scheduler := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
			if _, err := scheduler.AddFunc(schedule, cycle); err != nil {
				return fmt.Errorf("parse schedule %q: %w", schedule, err)
			}

			serveErr := make(chan error, 1)
			if metricsAddr != "" {
				go func() {
					serveErr <- app.metrics.Serve(ctx, metricsAddr)
				}()
				app.logger.Info("serving metrics", zap.String("addr", metricsAddr))
			}

			result, err := app.sessions.ConnectAll(ctx)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "connect: %s\n", result.Summary())

			cycle()
			scheduler.Start()
			defer func() {
				<-scheduler.Stop().Done()
				app.cache.Wait()
			}()

			select {
			case <-ctx.Done():
				return nil
			case err := <-serveErr:
				return err
			}
		},
	}

	cmd.Flags().StringVar(&schedule, "schedule", "@every 10m", "Refresh schedule (cron expression or @every <duration>)")
	cmd.Flags().IntVarP(&count, "count", "n", application.DefaultRecentCount, "Recent items to inspect per cycle")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", app.settings.Metrics.Addr, "Serve Prometheus metrics on this address (empty disables)")
	cmd.Flags().BoolVar(&autoRepost, "repost", false, "Repost items missing on some alts")
	return cmd
}

func watchTick(ctx context.Context, app *app, out io.Writer, count int, autoRepost bool) error {
	accounts, err := app.accounts.List(ctx)
	if err != nil {
		return err
	}

	statuses, err := app.library.Recent(ctx, count, true)
	if err != nil {
		return err
	}

	alts := len(accounts.Alts)
	var pending []domain.ContentItem
	for _, status := range statuses {
		if len(status.RepostedTo) < alts {
			pending = append(pending, status.Item)
		}
	}

	_, _ = fmt.Fprintf(out, "[%s] %d items, %d missing on some alts\n", app.now().Format("15:04:05"), len(statuses), len(pending))
	if !autoRepost {
		return nil
	}

	var errs []error
	for _, item := range pending {
		result, err := app.pipeline.Repost(ctx, item.ID, application.RepostOptions{})
		if err != nil {
			errs = append(errs, fmt.Errorf("repost %s: %w", item.ID, err))
			continue
		}
		_, _ = fmt.Fprintf(out, "  %s: %s\n", item.ID, result.Summary())
	}

	return errors.Join(errs...)
}
