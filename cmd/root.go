package cmd

import (
	"github.com/ecofuelconnect/efc/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func Execute() error {
	return execute(newRootCmd())
}

// execute runs root and turns a failure into a single alert line on stderr.
func execute(root *cobra.Command) error {
	err := root.Execute()
	if err != nil {
		writeAlert(root.ErrOrStderr(), err)
	}

	return err
}

func newRootCmd() *cobra.Command {
	app := newApp(viper.New())

	rootCmd := &cobra.Command{
		Use:           "efc",
		Short:         "EcoFuelConnect CLI (efc): fuel requests, waste entries and rewards from the terminal",
		Long:          "efc talks to the EcoFuelConnect backend on behalf of schools, suppliers, producers and admins. It keeps a session per profile, retries transient failures, and can watch the dashboard or notifications live.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.wire(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			app.close()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("profile", "", "Session profile (default \"default\")")
	flags.String("mode", "", "Backend mode: local or production")
	flags.String("api-url", "", "Backend base URL, overrides --mode")
	flags.String("log-level", "", "Log level: debug, info, warn or error")
	flags.BoolVar(&app.asJSON, "json", false, "Print results as JSON")

	for key, flag := range map[string]string{
		config.KeyProfile:  "profile",
		config.KeyMode:     "mode",
		config.KeyAPIURL:   "api-url",
		config.KeyLogLevel: "log-level",
	} {
		_ = app.viper.BindPFlag(key, flags.Lookup(flag))
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newLoginCmd(app),
		newLogoutCmd(app),
		newWhoAmICmd(app),
		newSessionsCmd(app),
		newFuelCmd(app),
		newRewardsCmd(app),
		newNotificationsCmd(app),
		newWasteCmd(app),
		newUsersCmd(app),
		newContentCmd(app),
		newDashboardCmd(app),
		newContactCmd(app),
		newDiagCmd(app),
	)

	return rootCmd
}
