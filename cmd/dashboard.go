package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ecofuelconnect/efc/internal/adapters/render/dashboard"
	"github.com/ecofuelconnect/efc/internal/domain"
	"github.com/ecofuelconnect/efc/internal/poll"
	"github.com/spf13/cobra"
)

func newDashboardCmd(app *app) *cobra.Command {
	var watch bool
	var interval time.Duration
	var activity int

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show platform statistics and recent activity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if interval <= 0 {
				interval = app.cfg.DashboardInterval
			}
			fetch := fetchBoard(app, activity)

			if watch {
				view := func(board dashboard.Board, fetchedAt time.Time) string {
					board.FetchedAt = fetchedAt
					return dashboard.BoardView(board, dashboard.RenderOptions{Now: app.now(), StaleAfter: 2 * interval})
				}
				return runWatch(cmd, app, "dashboard", "Live dashboard", interval, fetch, view)
			}

			var board dashboard.Board
			err := app.fetchWithSpinner(cmd, "Loading dashboard...", func(ctx context.Context) error {
				var err error
				board, err = fetch(ctx)
				return err
			})
			if err != nil {
				return err
			}

			if app.asJSON {
				return writeJSON(cmd.OutOrStdout(), board)
			}

			rendered, err := app.renderBoard(board, dashboard.RenderOptions{Now: app.now()})
			if err != nil {
				return fmt.Errorf("render dashboard: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "Keep the dashboard open and refresh it periodically")
	cmd.Flags().DurationVar(&interval, "interval", 0, "Refresh interval for --watch (default from config, 30s)")
	cmd.Flags().IntVar(&activity, "activity", 5, "Number of recent activities to show")

	return cmd
}

// fetchBoard loads stats and recent activity together. Deployments without an
// activity feed answer 404 there; the board is still shown.
func fetchBoard(app *app, activityLimit int) poll.Fetch[dashboard.Board] {
	return func(ctx context.Context) (dashboard.Board, error) {
		stats, err := app.api.Dashboard.Stats(ctx)
		if err != nil {
			return dashboard.Board{}, err
		}

		board := dashboard.Board{Stats: stats, FetchedAt: app.now()}
		if activityLimit <= 0 {
			return board, nil
		}

		activity, err := app.api.Dashboard.RecentActivity(ctx, activityLimit)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return dashboard.Board{}, err
		}
		board.Activity = activity

		return board, nil
	}
}
