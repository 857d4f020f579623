package client

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"
)

// SearchRequest represents the semantic search API request.
type SearchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

// SearchResponse represents the semantic search API response.
type SearchResponse struct {
	Query   string                 `json:"query"`
	Results []*ScoredInsightResult `json:"results"`
}

// TopicResult represents a lexically ranked insight.
type TopicResult struct {
	Insight        *InsightResult `json:"insight"`
	RelevanceScore float64        `json:"relevance_score"`
}

// TopicResponse represents the topic search API response.
type TopicResponse struct {
	Topic   string         `json:"topic"`
	Results []*TopicResult `json:"results"`
}

// SearchCmd creates the search command.
func SearchCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search insights by meaning",
		Long:  "Searches the library using embedding similarity.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runSearch(cmd, strings.Join(args, " "), limit, outputJSON)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum number of results")

	return cmd
}

func runSearch(cmd *cobra.Command, query string, limit int, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Post("/search", SearchRequest{Query: query, Limit: limit})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	var searchResp SearchResponse
	if err := json.Unmarshal(resp.Data, &searchResp); err != nil {
		return fmt.Errorf("failed to parse search results: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(searchResp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(searchResp.Results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Printf("Found %d results:\n\n", len(searchResp.Results))
	for i, result := range searchResp.Results {
		fmt.Printf("%d. %s (%.2f)\n", i+1, summarize(result.Insight), result.Similarity)
		if result.Insight.SourceURL != "" {
			fmt.Printf("   %s\n", result.Insight.SourceURL)
		}
		fmt.Printf("   ID: %s\n", result.Insight.ID)
		if i < len(searchResp.Results)-1 {
			fmt.Println(strings.Repeat("-", 40))
		}
	}

	return nil
}

// TopicCmd creates the topic command.
func TopicCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "topic <topic>",
		Short: "Find insights relevant to a topic",
		Long:  "Ranks the library lexically against a topic and returns a diversified set.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runTopic(cmd, strings.Join(args, " "), limit, outputJSON)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 5, "Maximum number of results")

	return cmd
}

func runTopic(cmd *cobra.Command, topic string, limit int, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	path := fmt.Sprintf("/search/topic?q=%s&limit=%d", url.QueryEscape(topic), limit)
	resp, err := api.Get(path)
	if err != nil {
		return fmt.Errorf("topic search failed: %w", err)
	}

	var topicResp TopicResponse
	if err := json.Unmarshal(resp.Data, &topicResp); err != nil {
		return fmt.Errorf("failed to parse topic results: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(topicResp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(topicResp.Results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Printf("Found %d results for %q:\n\n", len(topicResp.Results), topicResp.Topic)
	for i, result := range topicResp.Results {
		fmt.Printf("%d. %s (%.1f)\n", i+1, summarize(result.Insight), result.RelevanceScore)
		if len(result.Insight.Tags) > 0 {
			fmt.Printf("   Tags: %s\n", strings.Join(result.Insight.Tags, ", "))
		}
		fmt.Printf("   ID: %s\n", result.Insight.ID)
	}

	return nil
}
