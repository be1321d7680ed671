package main

import (
	"github.com/aretw0/intake/internal/cli"
	"github.com/spf13/cobra"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect question catalogs",
}

var catalogValidateCmd = &cobra.Command{
	Use:   "validate [FILE]",
	Short: "Check a catalog file for consistency",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.ValidateCatalog(cmd.OutOrStdout(), fileArg(args))
	},
}

var catalogShowCmd = &cobra.Command{
	Use:   "show [FILE]",
	Short: "Print a catalog, the default one without FILE",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := cli.LoadCatalog(fileArg(args))
		if err != nil {
			return err
		}
		asTable, _ := cmd.Flags().GetBool("table")
		return cli.ShowCatalog(cmd.OutOrStdout(), c, asTable)
	},
}

var catalogGraphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the flow as a Mermaid diagram",
	Long: `Outputs a Mermaid diagram (graph TD) of the configured catalog. With
--session the questions that session answered and the one it waits on are highlighted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd, true)
		if err != nil {
			return err
		}
		defer closeApp(cmd, app)

		sessionID, _ := cmd.Flags().GetString("session")
		return cli.GraphCatalog(cmd.Context(), cmd.OutOrStdout(), app.Catalog, app, sessionID)
	},
}

func fileArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogValidateCmd)
	catalogCmd.AddCommand(catalogShowCmd)
	catalogCmd.AddCommand(catalogGraphCmd)

	catalogShowCmd.Flags().Bool("table", false, "Print a summary table instead of YAML")
	catalogGraphCmd.Flags().StringP("session", "s", "", "Session to overlay on the diagram")
}
