package cmd

import (
	"github.com/ecofuelconnect/efc/internal/domain"
	"github.com/spf13/cobra"
)

func newContactCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contact",
		Short: "Reach the EcoFuelConnect team",
	}

	cmd.AddCommand(newContactSendCmd(app))

	return cmd
}

func newContactSendCmd(app *app) *cobra.Command {
	var message domain.ContactMessage

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send a message through the contact form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.api.Contact.Send(cmd.Context(), message); err != nil {
				return err
			}

			return app.done(cmd, "Message sent, we'll get back to %s", message.Email)
		},
	}

	cmd.Flags().StringVar(&message.Name, "name", "", "Your name")
	cmd.Flags().StringVar(&message.Email, "email", "", "Reply address")
	cmd.Flags().StringVar(&message.Subject, "subject", "", "Subject")
	cmd.Flags().StringVar(&message.Message, "message", "", "Message body")

	return cmd
}
