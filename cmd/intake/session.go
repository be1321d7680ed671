package main

import (
	"github.com/aretw0/intake/internal/cli"
	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage stored sessions",
	Long:  `List, inspect and remove the sessions kept by the configured store.`,
}

var sessionLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all sessions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd, true)
		if err != nil {
			return err
		}
		defer closeApp(cmd, app)
		return cli.ListSessions(cmd.Context(), app, cmd.OutOrStdout())
	},
}

var sessionInspectCmd = &cobra.Command{
	Use:   "inspect <session-id>",
	Short: "Print the state and compiled data of a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd, true)
		if err != nil {
			return err
		}
		defer closeApp(cmd, app)
		return cli.InspectSession(cmd.Context(), app, cmd.OutOrStdout(), args[0])
	},
}

var sessionRmCmd = &cobra.Command{
	Use:   "rm <session-id>...",
	Short: "Remove one or more sessions",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd, true)
		if err != nil {
			return err
		}
		defer closeApp(cmd, app)
		return cli.RemoveSessions(cmd.Context(), app, cmd.OutOrStdout(), args)
	},
}

var sessionTranscriptCmd = &cobra.Command{
	Use:   "transcript [session-id]",
	Short: "Show a recorded conversation, or list recorded sessions",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd, true)
		if err != nil {
			return err
		}
		defer closeApp(cmd, app)

		var sessionID string
		if len(args) == 1 {
			sessionID = args[0]
		}
		return cli.ShowTranscript(cmd.Context(), app, cmd.OutOrStdout(), sessionID)
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionLsCmd)
	sessionCmd.AddCommand(sessionInspectCmd)
	sessionCmd.AddCommand(sessionRmCmd)
	sessionCmd.AddCommand(sessionTranscriptCmd)
}
