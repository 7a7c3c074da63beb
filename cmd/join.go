package cmd

import (
	"strings"

	"github.com/spf13/cobra"
)

func newJoinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "join <code>",
		Short: "Preview and join a session by its join code",
		Long:  "Resolves a join code into a session preview without signing in. Joining requires authentication; after sign-in the flow resumes at the same session.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := wireApp()
			if err != nil {
				return err
			}
			defer app.close()
			return runTUI(app, "/join/"+strings.ToUpper(strings.TrimSpace(args[0])))
		},
	}
}
