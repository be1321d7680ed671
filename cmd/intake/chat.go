package main

import (
	"github.com/aretw0/intake/internal/cli"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Take the survey in the terminal",
	Long: `Starts an interactive survey. With --session the named session is resumed,
or started under that name when it does not exist. Type /exit to leave; the
session is kept and can be resumed later.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonMode, _ := cmd.Flags().GetBool("json")
		sessionID, _ := cmd.Flags().GetString("session")

		app, err := loadApp(cmd, !jsonMode)
		if err != nil {
			return err
		}
		defer closeApp(cmd, app)

		return cli.RunChat(cmd.Context(), app, cli.ChatOptions{
			SessionID: sessionID,
			JSON:      jsonMode,
			In:        cmd.InOrStdin(),
			Out:       cmd.OutOrStdout(),
		})
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().StringP("session", "s", "", "Session ID to resume or start")
	chatCmd.Flags().Bool("json", false, "Run in JSON mode (NDJSON input/output)")

	rootCmd.RunE = chatCmd.RunE
	rootCmd.Flags().AddFlagSet(chatCmd.Flags())
}
