package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ecofuelconnect/efc/internal/application"
	"github.com/ecofuelconnect/efc/internal/domain"
	"github.com/spf13/cobra"
)

func newLoginCmd(app *app) *cobra.Command {
	var email string
	var password string
	var passwordStdin bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and keep the session for the current profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if passwordStdin {
				read, err := readPassword(cmd.InOrStdin())
				if err != nil {
					return err
				}
				password = read
			}
			if password == "" {
				return errors.New("a password is required: pass --password or --password-stdin")
			}

			session, err := app.sessions.Login(cmd.Context(), application.LoginCommand{
				Profile:  app.cfg.Profile,
				Email:    email,
				Password: password,
			})
			if err != nil {
				return err
			}

			return app.emit(cmd, session, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "✓ Logged in as %s (%s) on profile %s\n", session.DisplayName(), session.Role, session.Profile)
				if err == nil && !session.ExpiresAt.IsZero() {
					_, err = fmt.Fprintf(w, "  session expires %s\n", session.ExpiresAt.Local().Format(time.RFC1123))
				}
				return err
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password from the first line of stdin")
	_ = cmd.MarkFlagRequired("email")
	cmd.MarkFlagsMutuallyExclusive("password", "password-stdin")

	return cmd
}

func readPassword(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password from stdin: %w", err)
	}

	return strings.TrimRight(line, "\r\n"), nil
}

func newLogoutCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the session for the current profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.sessions.Logout(cmd.Context(), app.cfg.Profile); err != nil {
				return err
			}

			return app.done(cmd, "Logged out of profile %s", app.cfg.Profile)
		},
	}
}

func newWhoAmICmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the account behind the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			session, err := app.sessions.Current(cmd.Context(), app.cfg.Profile)
			if err != nil {
				return err
			}

			user, err := app.api.Auth.Me(cmd.Context())
			if err != nil {
				return err
			}

			return app.emit(cmd, user, func(w io.Writer) error {
				return writeFields(w, []field{
					{"profile", string(session.Profile)},
					{"id", user.ID},
					{"name", user.Name},
					{"email", user.Email},
					{"role", string(user.Role)},
					{"organization", user.Organization},
					{"coins", formatCoins(user.Coins)},
					{"expires", formatExpiry(session.ExpiresAt)},
				})
			})
		},
	}
}

func newSessionsCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "List saved sessions across profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			statuses, err := app.sessions.List(cmd.Context())
			if err != nil {
				return err
			}

			return app.emit(cmd, statuses, func(w io.Writer) error {
				rows := make([][]string, 0, len(statuses))
				for _, status := range statuses {
					rows = append(rows, []string{
						string(status.Session.Profile),
						status.Session.DisplayName(),
						string(status.Session.Role),
						sessionState(status),
					})
				}
				return writeTable(w, "No saved sessions.", []string{"PROFILE", "USER", "ROLE", "STATE"}, rows)
			})
		},
	}
}

func sessionState(status application.SessionStatus) string {
	switch {
	case status.Expired:
		return "expired"
	case status.ExpiresIn > 0:
		return "expires in " + status.ExpiresIn.Round(time.Minute).String()
	default:
		return "active"
	}
}

func formatExpiry(at time.Time) string {
	if at.IsZero() {
		return ""
	}

	return at.Local().Format(time.RFC1123)
}

func formatCoins(coins int64) string {
	if coins == 0 {
		return ""
	}

	return domain.CompactNumber(coins)
}
