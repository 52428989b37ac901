package cmd

import (
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ecofuelconnect/efc/internal/adapters/render/dashboard"
	"github.com/ecofuelconnect/efc/internal/poll"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// runWatch drives a live view from a poller until the user quits or the
// command context ends. The poller is stopped before returning.
func runWatch[T any](
	cmd *cobra.Command,
	app *app,
	name string,
	title string,
	interval time.Duration,
	fetch poll.Fetch[T],
	view dashboard.ViewFunc[T],
) error {
	ctx := cmd.Context()

	poller := poll.New(fetch, interval,
		poll.WithLogger(app.logger),
		poll.WithName(name),
		poll.WithClock(app.now),
	)
	if err := poller.Start(ctx); err != nil {
		return err
	}
	defer poller.Stop()

	updates, unsubscribe := poller.Subscribe()
	defer unsubscribe()

	app.logger.Debug("watch started", zap.String("poller", name), zap.Duration("interval", interval))

	program := tea.NewProgram(
		dashboard.NewWatch(ctx, title, updates, poller.Refresh, view),
		tea.WithContext(ctx),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
		tea.WithAltScreen(),
	)

	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}

	return err
}
