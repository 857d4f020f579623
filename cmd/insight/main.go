package main

import (
	"fmt"
	"os"

	"github.com/fermentlab/insightd/internal/cli"
	"github.com/fermentlab/insightd/internal/cli/client"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "insight",
		Short: "Insight CLI - Personal knowledge retrieval",
		Long: `Insight CLI queries your saved knowledge library.

Environment variables:
  INSIGHT_API_URL        API base URL (default: http://localhost:8080)
  INSIGHT_OWNER_ID       Owner ID for scoped queries
  INSIGHT_SESSION_TOKEN  Session token for scoped queries`,
		Version: version,
	}

	rootCmd.PersistentFlags().Bool("output", false, "Output as JSON")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides env and config)")
	rootCmd.PersistentFlags().String("owner", "", "Owner ID (overrides env and config)")
	rootCmd.PersistentFlags().String("session", "", "Session token (overrides env and config)")
	cli.AddHelpJSONFlag(rootCmd)

	rootCmd.AddCommand(client.InitCmd())
	rootCmd.AddCommand(client.QueryCmd())
	rootCmd.AddCommand(client.SearchCmd())
	rootCmd.AddCommand(client.TopicCmd())
	rootCmd.AddCommand(client.DailyCmd())
	rootCmd.AddCommand(client.ListCmd())
	rootCmd.AddCommand(client.GetCmd())
	rootCmd.AddCommand(client.StatsCmd())

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
