package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fermentlab/insightd/internal/domain"
)

// classifierMaxTokens bounds the classification completion.
const classifierMaxTokens = 500

// CompletionClient defines the interface for the external completion
// service. The boolean reports availability; a false result must degrade
// to deterministic output, never block or fail.
type CompletionClient interface {
	Complete(ctx context.Context, prompt string, maxTokens int) (string, bool)
}

// Classifier labels a free-text query with a routable type and extracted
// intent. When no completion service is configured, or its answer cannot
// be parsed, classification falls back to "recall" with the raw query as
// intent, so the router always receives a valid classification.
type Classifier struct {
	completion CompletionClient
}

// NewClassifier creates a new Classifier instance. completion may be nil.
func NewClassifier(completion CompletionClient) *Classifier {
	return &Classifier{completion: completion}
}

// Classify determines the query type and intent.
func (c *Classifier) Classify(ctx context.Context, query string) domain.Classification {
	if c.completion == nil {
		return domain.FallbackClassification(query)
	}

	answer, ok := c.completion.Complete(ctx, classificationPrompt(query), classifierMaxTokens)
	if !ok {
		return domain.FallbackClassification(query)
	}

	classification, ok := parseClassification(answer)
	if !ok {
		return domain.FallbackClassification(query)
	}

	if classification.Intent == "" {
		classification.Intent = query
	}
	return classification
}

func classificationPrompt(query string) string {
	return fmt.Sprintf(`Classify this query and extract the intent:

Query: %q

Classify as ONE of these types:
1. recall - find or remember specific saved information
2. synthesis - connect ideas or synthesize knowledge across sources
3. pattern - identify patterns or recurring themes
4. decision - the user is making a decision and needs relevant context
5. generate - the user wants to create content (post, article, etc.)
6. explore - browse or discover what the library contains

Return JSON only, no other text:
{
    "type": "recall|synthesis|pattern|decision|generate|explore",
    "intent": "brief description of what the user wants",
    "key_concepts": ["concept1", "concept2"],
    "timeframe": "recent|all_time|specific_date",
    "output_format": "text|list|framework|content"
}
`, query)
}

// parseClassification extracts the first well-formed JSON object from a
// completion that may be wrapped in prose or fenced formatting.
func parseClassification(answer string) (domain.Classification, bool) {
	var classification domain.Classification

	block, ok := extractJSONObject(answer)
	if !ok {
		return classification, false
	}
	if err := json.Unmarshal([]byte(block), &classification); err != nil {
		return classification, false
	}

	classification.Type = domain.QueryType(strings.ToLower(strings.TrimSpace(string(classification.Type))))
	if !domain.IsValidQueryType(classification.Type) {
		return classification, false
	}
	return classification, true
}

func extractJSONObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}
