package cmd

import "github.com/spf13/cobra"

func newSpeakerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "speaker",
		Short: "Open the speaker dashboard",
		Long:  "Opens the speaker dashboard: create a session, toggle recording, upload resources and generate tasks. Redirects to sign-in first when not authenticated.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := wireApp()
			if err != nil {
				return err
			}
			defer app.close()
			return runTUI(app, "/speaker")
		},
	}
}
