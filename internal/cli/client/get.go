package client

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// GetCmd creates the get command.
func GetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show a single insight",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runGet(cmd, args[0], outputJSON)
		},
	}

	return cmd
}

func runGet(cmd *cobra.Command, id string, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Get("/insights/" + id)
	if err != nil {
		return fmt.Errorf("get failed: %w", err)
	}

	var insight InsightResult
	if err := json.Unmarshal(resp.Data, &insight); err != nil {
		return fmt.Errorf("failed to parse insight: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(insight, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Printf("ID:       %s\n", insight.ID)
	fmt.Printf("Category: %s\n", insight.Category)
	fmt.Printf("Quality:  %d\n", insight.QualityScore)
	fmt.Printf("Saved:    %s\n", insight.SavedAt)
	if insight.SourceURL != "" {
		fmt.Printf("Source:   %s\n", insight.SourceURL)
	}
	if len(insight.Tags) > 0 {
		fmt.Printf("Tags:     %s\n", strings.Join(insight.Tags, ", "))
	}
	fmt.Println()
	fmt.Println(insight.Content)
	if insight.Note != "" {
		fmt.Printf("\nNote: %s\n", insight.Note)
	}

	return nil
}
