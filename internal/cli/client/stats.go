package client

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

// StatsResult represents the library stats API response.
type StatsResult struct {
	Total      int            `json:"total"`
	ByCategory map[string]int `json:"by_category"`
	TopTags    []string       `json:"top_tags"`
}

// StatsCmd creates the stats command.
func StatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show library statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runStats(cmd, outputJSON)
		},
	}
}

func runStats(cmd *cobra.Command, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Get("/stats")
	if err != nil {
		return fmt.Errorf("stats fetch failed: %w", err)
	}

	var stats StatsResult
	if err := json.Unmarshal(resp.Data, &stats); err != nil {
		return fmt.Errorf("failed to parse stats: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(stats, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	printStats(&stats)
	return nil
}

func printStats(stats *StatsResult) {
	fmt.Printf("Eligible insights: %d\n", stats.Total)

	if len(stats.ByCategory) > 0 {
		categories := make([]string, 0, len(stats.ByCategory))
		for category := range stats.ByCategory {
			categories = append(categories, category)
		}
		sort.Strings(categories)
		for _, category := range categories {
			fmt.Printf("  %-12s %d\n", category, stats.ByCategory[category])
		}
	}

	if len(stats.TopTags) > 0 {
		fmt.Printf("Top tags: %s\n", strings.Join(stats.TopTags, ", "))
	}
}
