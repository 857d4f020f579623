package client

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// DailyResponse represents the daily review API response.
type DailyResponse struct {
	SessionDate string           `json:"session_date"`
	Insights    []*InsightResult `json:"insights"`
}

// DailyCmd creates the daily command.
func DailyCmd() *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "daily",
		Short: "Show today's review set",
		Long:  "Fetches the day's review selection. The set is fixed for the calendar day.",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runDaily(cmd, count, outputJSON)
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 0, "Number of insights (server default when omitted)")

	return cmd
}

func runDaily(cmd *cobra.Command, count int, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	path := "/daily"
	if count > 0 {
		path = fmt.Sprintf("/daily?count=%d", count)
	}

	resp, err := api.Get(path)
	if err != nil {
		return fmt.Errorf("daily fetch failed: %w", err)
	}

	var dailyResp DailyResponse
	if err := json.Unmarshal(resp.Data, &dailyResp); err != nil {
		return fmt.Errorf("failed to parse daily response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(dailyResp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(dailyResp.Insights) == 0 {
		fmt.Println("Nothing to review today.")
		return nil
	}

	fmt.Printf("Review for %s (%d insights):\n\n", dailyResp.SessionDate, len(dailyResp.Insights))
	for i, insight := range dailyResp.Insights {
		fmt.Printf("%d. [%s] %s\n", i+1, insight.Category, summarize(insight))
		if insight.SourceURL != "" {
			fmt.Printf("   %s\n", insight.SourceURL)
		}
		if i < len(dailyResp.Insights)-1 {
			fmt.Println(strings.Repeat("-", 40))
		}
	}

	return nil
}
