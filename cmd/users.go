package cmd

import (
	"io"

	"github.com/ecofuelconnect/efc/internal/domain"
	"github.com/spf13/cobra"
)

func newUsersCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Look up platform users",
	}

	cmd.AddCommand(
		newUsersListCmd(app),
		newUsersProducersCmd(app),
		newUsersGetCmd(app),
	)

	return cmd
}

func newUsersListCmd(app *app) *cobra.Command {
	var role string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			users, err := app.api.Users.List(cmd.Context(), domain.Role(role))
			if err != nil {
				return err
			}

			return app.emit(cmd, users, func(w io.Writer) error {
				return writeUsers(w, users)
			})
		},
	}

	cmd.Flags().StringVar(&role, "role", "", "admin, supplier, producer or school")

	return cmd
}

func newUsersProducersCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "producers",
		Short: "List producers that fuel requests can be assigned to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			users, err := app.api.Users.Producers(cmd.Context())
			if err != nil {
				return err
			}

			return app.emit(cmd, users, func(w io.Writer) error {
				return writeUsers(w, users)
			})
		},
	}
}

func newUsersGetCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := app.api.Users.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return app.emit(cmd, user, func(w io.Writer) error {
				return writeFields(w, []field{
					{"id", user.ID},
					{"name", user.Name},
					{"email", user.Email},
					{"role", string(user.Role)},
					{"organization", user.Organization},
					{"phone", user.Phone},
					{"location", user.Location},
					{"coins", formatCoins(user.Coins)},
					{"verified", formatBool(user.Verified, "yes", "no")},
					{"joined", formatDate(user.CreatedAt)},
				})
			})
		},
	}
}

func writeUsers(w io.Writer, users []domain.User) error {
	rows := make([][]string, 0, len(users))
	for _, u := range users {
		rows = append(rows, []string{u.ID, u.Name, u.Email, string(u.Role), u.Organization})
	}

	return writeTable(w, "No users.", []string{"ID", "NAME", "EMAIL", "ROLE", "ORGANIZATION"}, rows)
}
