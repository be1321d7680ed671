package main

import (
	"fmt"
	"io"
	"os"

	"github.com/aretw0/intake/pkg/runner"
	"github.com/spf13/cobra"
)

var replayCmd = &cobra.Command{
	Use:   "replay [FILE]",
	Short: "Feed answers from a file, one per line",
	Long: `Replays a scripted conversation: every line of FILE (or Stdin when FILE is
"-" or missing) is submitted as one answer and every prompt and reply is written
to Stdout as a JSON line.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var in io.Reader = cmd.InOrStdin()
		if len(args) == 1 && args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open script: %w", err)
			}
			defer f.Close()
			in = f
		}

		app, err := loadApp(cmd, false)
		if err != nil {
			return err
		}
		defer closeApp(cmd, app)

		sessionID, _ := cmd.Flags().GetString("session")
		return runner.Replay(cmd.Context(), app.Driver, in, cmd.OutOrStdout(),
			runner.WithSessionID(sessionID),
			runner.WithLogger(app.Logger),
		)
	},
}

func init() {
	rootCmd.AddCommand(replayCmd)
	replayCmd.Flags().StringP("session", "s", "", "Session ID to resume or start")
}
