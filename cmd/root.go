// Package cmd defines the panda command surface.
package cmd

import "github.com/spf13/cobra"

// Execute runs the root command
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "panda",
		Short:         "panda: live-session collaboration from the terminal",
		Long:          "panda is a terminal client for PANDA live sessions. Speakers broadcast a session with a streaming transcript, shared resources and generated tasks; listeners join by code and ask questions. Without backend configuration it runs against a built-in demo backend.",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := wireApp()
			if err != nil {
				return err
			}
			defer app.close()
			return runTUI(app, "/")
		},
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newSpeakerCmd(),
		newListenerCmd(),
		newJoinCmd(),
	)
	return rootCmd
}
