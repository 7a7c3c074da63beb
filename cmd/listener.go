package cmd

import "github.com/spf13/cobra"

func newListenerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "listener",
		Short: "Open the listener dashboard",
		Long:  "Opens the listener dashboard: join a session by code, follow the live transcript and ask questions. Redirects to sign-in first when not authenticated.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := wireApp()
			if err != nil {
				return err
			}
			defer app.close()
			return runTUI(app, "/listener")
		},
	}
}
