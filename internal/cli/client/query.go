package client

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// QueryRequest represents the query API request.
type QueryRequest struct {
	Query string `json:"query"`
}

// InsightResult represents an insight in API responses.
type InsightResult struct {
	ID           string   `json:"id"`
	Content      string   `json:"content"`
	Note         string   `json:"note,omitempty"`
	SourceURL    string   `json:"source_url,omitempty"`
	Category     string   `json:"category"`
	Tags         []string `json:"tags"`
	QualityScore int      `json:"quality_score"`
	SavedAt      string   `json:"saved_at"`
}

// ScoredInsightResult represents an insight with its similarity score.
type ScoredInsightResult struct {
	Insight    *InsightResult `json:"insight"`
	Similarity float64        `json:"similarity"`
}

// QueryResponse represents the query API response.
type QueryResponse struct {
	Type        string                 `json:"type"`
	Query       string                 `json:"query"`
	Response    string                 `json:"response,omitempty"`
	Insights    []*ScoredInsightResult `json:"insights"`
	SynthesisID string                 `json:"synthesis_id,omitempty"`
	Redirect    string                 `json:"redirect,omitempty"`
	Topic       string                 `json:"topic,omitempty"`
	Stats       *StatsResult           `json:"stats,omitempty"`
}

// QueryCmd creates the query command.
func QueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <text>",
		Short: "Ask your library a question",
		Long:  "Classifies the question and routes it to recall, synthesis, pattern, decision, generate, or explore handling.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runQuery(cmd, strings.Join(args, " "), outputJSON)
		},
	}

	return cmd
}

func runQuery(cmd *cobra.Command, query string, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Post("/query", QueryRequest{Query: query})
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	var queryResp QueryResponse
	if err := json.Unmarshal(resp.Data, &queryResp); err != nil {
		return fmt.Errorf("failed to parse query response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(queryResp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Printf("[%s]\n\n", queryResp.Type)

	if queryResp.Response != "" {
		fmt.Println(queryResp.Response)
		fmt.Println()
	}

	if queryResp.Topic != "" {
		fmt.Printf("Topic: %s\n", queryResp.Topic)
	}
	if queryResp.SynthesisID != "" {
		fmt.Printf("Saved as synthesis %s\n", queryResp.SynthesisID)
	}
	if queryResp.Stats != nil {
		printStats(queryResp.Stats)
	}

	printScoredInsights(queryResp.Insights)
	return nil
}

func printScoredInsights(results []*ScoredInsightResult) {
	if len(results) == 0 {
		return
	}

	fmt.Printf("Sources (%d):\n", len(results))
	for i, result := range results {
		fmt.Printf("%d. %s (%.2f)\n", i+1, summarize(result.Insight), result.Similarity)
		fmt.Printf("   ID: %s\n", result.Insight.ID)
	}
}

// summarize returns a one-line preview of an insight for terminal output.
func summarize(insight *InsightResult) string {
	text := insight.Note
	if text == "" {
		text = insight.Content
	}
	text = strings.ReplaceAll(text, "\n", " ")
	if len(text) > 80 {
		text = text[:77] + "..."
	}
	return text
}
