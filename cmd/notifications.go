package cmd

import (
	"context"
	"io"
	"time"

	"github.com/ecofuelconnect/efc/internal/adapters/render/dashboard"
	"github.com/ecofuelconnect/efc/internal/domain"
	"github.com/spf13/cobra"
)

func newNotificationsCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "notifications",
		Aliases: []string{"notif"},
		Short:   "Read and manage notifications",
	}

	cmd.AddCommand(
		newNotificationsListCmd(app),
		newNotificationsReadCmd(app),
		newNotificationsReadAllCmd(app),
		newNotificationsDeleteCmd(app),
		newNotificationsWatchCmd(app),
	)

	return cmd
}

func newNotificationsListCmd(app *app) *cobra.Command {
	var unreadOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notifications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			notifications, err := app.api.Notifications.List(cmd.Context(), unreadOnly)
			if err != nil {
				return err
			}

			return app.emit(cmd, notifications, func(w io.Writer) error {
				_, err := io.WriteString(w, dashboard.NotificationsView(notifications, dashboard.RenderOptions{Now: app.now()})+"\n")
				return err
			})
		},
	}

	cmd.Flags().BoolVar(&unreadOnly, "unread", false, "Only unread notifications")

	return cmd
}

func newNotificationsReadCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "read <id>",
		Short: "Mark a notification as read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.api.Notifications.MarkRead(cmd.Context(), args[0]); err != nil {
				return err
			}

			return app.done(cmd, "Marked %s as read", args[0])
		},
	}
}

func newNotificationsReadAllCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "read-all",
		Short: "Mark every notification as read",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.api.Notifications.MarkAllRead(cmd.Context()); err != nil {
				return err
			}

			return app.done(cmd, "Marked all notifications as read")
		},
	}
}

func newNotificationsDeleteCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a notification",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.api.Notifications.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}

			return app.done(cmd, "Deleted notification %s", args[0])
		},
	}
}

func newNotificationsWatchCmd(app *app) *cobra.Command {
	var interval time.Duration
	var unreadOnly bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow notifications live",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if interval <= 0 {
				interval = app.cfg.NotificationInterval
			}

			fetch := func(ctx context.Context) ([]domain.Notification, error) {
				return app.api.Notifications.List(ctx, unreadOnly)
			}
			view := func(notifications []domain.Notification, _ time.Time) string {
				return dashboard.NotificationsView(notifications, dashboard.RenderOptions{Now: app.now()})
			}

			return runWatch(cmd, app, "notifications", "Live notifications", interval, fetch, view)
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 0, "Refresh interval (default from config, 5s)")
	cmd.Flags().BoolVar(&unreadOnly, "unread", false, "Only unread notifications")

	return cmd
}
