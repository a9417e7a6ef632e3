package main

import (
	"github.com/spf13/cobra"

	"github.com/yungbote/tutorbot-backend/internal/app"
)

var rootCmd = &cobra.Command{
	Use:           "seed",
	Short:         "Load tutorial content and the question bank",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().String("tutorial", "", "Tutorial config file (overrides TUTORIAL_CONFIG)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(checkCmd)
}

func openTooling(cmd *cobra.Command, withBucket bool) (*app.Tooling, error) {
	path, _ := cmd.Flags().GetString("tutorial")
	return app.NewTooling(app.ToolingOptions{
		TutorialConfigPath: path,
		WithBucket:         withBucket,
	})
}
