package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/intake/internal/cli"
	"github.com/aretw0/intake/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "intake",
	Short: "intake runs conversational insurance surveys",
	Long: `intake asks the questions of an insurance survey one at a time, validates
every answer and compiles what it collected into a structured document.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Config file (default intake.yaml when present)")
	rootCmd.PersistentFlags().String("log-level", "", "Override log.level (debug, info, warn, error)")
}

// loadApp reads the configuration named by the persistent flags and builds the driver.
// The caller must Close the returned App.
func loadApp(cmd *cobra.Command, quiet bool) (*cli.App, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Log.Level = level
	}
	return cli.Build(cmd.Context(), cfg, cli.BuildOptions{LogWriter: os.Stderr, Quiet: quiet})
}

func closeApp(cmd *cobra.Command, app *cli.App) {
	if err := app.Close(context.WithoutCancel(cmd.Context())); err != nil {
		app.Logger.Warn("shutdown incomplete", "err", err)
	}
}
