package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/fermentlab/insightd/internal/domain"
	"github.com/fermentlab/insightd/internal/telemetry"
)

const (
	// routerCandidateLimit is how many semantic results the router pulls
	// before each handler takes its own slice
	routerCandidateLimit = 20

	recallTopN    = 5
	synthesisTopN = 15
	patternTopN   = 20
	decisionTopN  = 15
	generateTopN  = 10
	exploreSample = 10
	// explorePerCategory caps the diversity-sampled preview
	explorePerCategory = 2

	contextItemMaxChars   = 1500
	contextTagLimit       = 5
	recallFallbackChars   = 2000
	synthesisFallbackChars = 3000
)

// SemanticSearcher defines the interface the router uses for retrieval
type SemanticSearcher interface {
	Search(ctx context.Context, query string, scope domain.Scope, limit int) ([]*SemanticResult, error)
}

// QueryClassifier defines the interface for query classification
type QueryClassifier interface {
	Classify(ctx context.Context, query string) domain.Classification
}

// SynthesisRepositoryInterface defines the repository interface for synthesis persistence
type SynthesisRepositoryInterface interface {
	Create(ctx context.Context, s *domain.Synthesis) error
}

// LibraryStatsRepository defines the repository interface for library statistics
type LibraryStatsRepository interface {
	CountEligible(ctx context.Context) (int, error)
	CountByCategory(ctx context.Context) (map[domain.Category]int, error)
	TopTags(ctx context.Context, limit int) ([]string, error)
}

// SynthesisArchiver archives persisted syntheses to object storage.
// Archival is best-effort and never fails the request.
type SynthesisArchiver interface {
	ArchiveSynthesis(ctx context.Context, s *domain.Synthesis) error
}

// LibraryStats summarizes the eligible library for the explore handler.
type LibraryStats struct {
	Total      int
	ByCategory map[domain.Category]int
	TopTags    []string
}

// RouteInput represents the input for routing a query
type RouteInput struct {
	Query string
	Scope domain.Scope
}

// QueryResponse is the structured result of routing a query. The fields
// present depend on Type: generate carries Redirect and Topic, synthesis
// carries SynthesisID, explore carries Stats.
type QueryResponse struct {
	Type        domain.QueryType
	Query       string
	Response    string
	Insights    []*SemanticResult
	SynthesisID string
	Redirect    string
	Topic       string
	Stats       *LibraryStats
}

// QueryService classifies a query and dispatches it to one of six
// handlers. Every handler degrades to a useful non-AI response when the
// completion service is absent; only store failures propagate as errors.
type QueryService struct {
	classifier QueryClassifier
	search     SemanticSearcher
	synthRepo  SynthesisRepositoryInterface
	statsRepo  LibraryStatsRepository
	completion CompletionClient
	archiver   SynthesisArchiver
	uuidGen    UUIDGenerator
}

// NewQueryService creates a new QueryService instance. completion and
// archiver may be nil.
func NewQueryService(
	classifier QueryClassifier,
	search SemanticSearcher,
	synthRepo SynthesisRepositoryInterface,
	statsRepo LibraryStatsRepository,
	completion CompletionClient,
	archiver SynthesisArchiver,
) *QueryService {
	return &QueryService{
		classifier: classifier,
		search:     search,
		synthRepo:  synthRepo,
		statsRepo:  statsRepo,
		completion: completion,
		archiver:   archiver,
		uuidGen:    &DefaultUUIDGenerator{},
	}
}

// NewQueryServiceWithUUIDGen creates a QueryService with a custom UUID generator (for testing)
func NewQueryServiceWithUUIDGen(
	classifier QueryClassifier,
	search SemanticSearcher,
	synthRepo SynthesisRepositoryInterface,
	statsRepo LibraryStatsRepository,
	completion CompletionClient,
	archiver SynthesisArchiver,
	uuidGen UUIDGenerator,
) *QueryService {
	svc := NewQueryService(classifier, search, synthRepo, statsRepo, completion, archiver)
	svc.uuidGen = uuidGen
	return svc
}

// Route classifies the query, retrieves semantic candidates, and
// dispatches to the handler for the classified type. Unknown types fall
// through to recall.
func (s *QueryService) Route(ctx context.Context, input RouteInput) (*QueryResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "QueryService.Route", telemetry.SpanAttributes{
		Operation: "route_query",
		OwnerID:   input.Scope.OwnerID,
	})
	defer span.End()

	query := strings.TrimSpace(input.Query)
	if query == "" {
		return nil, domain.ErrEmptyQuery
	}

	classification := s.classifier.Classify(ctx, query)

	results, err := s.search.Search(ctx, query, input.Scope, routerCandidateLimit)
	if err != nil {
		return nil, err
	}

	switch classification.Type {
	case domain.QueryTypeSynthesis:
		return s.handleSynthesis(ctx, query, input.Scope, results)
	case domain.QueryTypePattern:
		return s.handlePattern(ctx, query, results)
	case domain.QueryTypeDecision:
		return s.handleDecision(ctx, query, results)
	case domain.QueryTypeGenerate:
		return s.handleGenerate(query, classification, results), nil
	case domain.QueryTypeExplore:
		return s.handleExplore(ctx, query, results)
	default:
		return s.handleRecall(ctx, query, results), nil
	}
}

func (s *QueryService) handleRecall(ctx context.Context, query string, results []*SemanticResult) *QueryResponse {
	top := topResults(results, recallTopN)
	context := buildContext(top)

	response := &QueryResponse{
		Type:     domain.QueryTypeRecall,
		Query:    query,
		Insights: top,
	}

	prompt := fmt.Sprintf(`The user is trying to recall information from their knowledge library.

Query: %q

Here is what they have saved that is relevant:

%s

Help them recall by:
1. Directly answering their question if possible
2. Showing the most relevant saved items
3. Providing context (when they saved it, any notes they added)
4. Suggesting related items they might also want

Be conversational and helpful. Reference specific items by their source or content preview.
`, query, context)

	if text, ok := s.complete(ctx, prompt, 1500); ok {
		response.Response = text
		return response
	}

	response.Response = "No assistant is configured. Here are the most relevant items from your library.\n\n" + truncate(context, recallFallbackChars)
	return response
}

func (s *QueryService) handleSynthesis(ctx context.Context, query string, scope domain.Scope, results []*SemanticResult) (*QueryResponse, error) {
	top := topResults(results, synthesisTopN)
	context := buildContext(top)

	prompt := fmt.Sprintf(`The user wants to synthesize knowledge from their library.

Query: %q

Their saved knowledge on this topic:

%s

Create a comprehensive synthesis that:
1. Identifies key themes and patterns
2. Connects ideas across sources
3. Highlights unique insights or contradictions
4. Shows how their thinking has evolved, if temporal patterns exist
5. Suggests new connections or implications

This should be THEIR knowledge synthesized, not generic information.
Reference specific sources by number or title.
`, query, context)

	body, ok := s.complete(ctx, prompt, 3000)
	if !ok {
		body = "No assistant is configured. Your relevant items:\n\n" + truncate(context, synthesisFallbackChars)
	}

	// The Synthesis record is persisted whether or not the completion
	// service produced the body.
	synthesis := domain.NewSynthesis(
		s.uuidGen.NewString(),
		scope.OwnerID,
		query,
		body,
		resultIDs(top),
		time.Now().UTC(),
	)
	if err := s.synthRepo.Create(ctx, synthesis); err != nil {
		return nil, err
	}

	if s.archiver != nil {
		if err := s.archiver.ArchiveSynthesis(ctx, synthesis); err != nil {
			log.Printf("synthesis archive failed for %s: %v", synthesis.ID, err)
		}
	}

	return &QueryResponse{
		Type:        domain.QueryTypeSynthesis,
		Query:       query,
		Response:    body,
		Insights:    top,
		SynthesisID: synthesis.ID,
	}, nil
}

func (s *QueryService) handlePattern(ctx context.Context, query string, results []*SemanticResult) (*QueryResponse, error) {
	top := topResults(results, patternTopN)
	context := buildContext(top)

	response := &QueryResponse{
		Type:     domain.QueryTypePattern,
		Query:    query,
		Insights: top,
	}

	prompt := fmt.Sprintf(`The user wants to identify patterns in their knowledge.

Query: %q

Their relevant saved content:

%s

Analyze for patterns:
1. Recurring themes or topics
2. Common frameworks or mental models
3. Evolution of thinking over time
4. Contradictions or tensions
5. Gaps in knowledge
6. Unique combinations of ideas

Present patterns clearly with specific examples from their saved content.
`, query, context)

	if text, ok := s.complete(ctx, prompt, 2500); ok {
		response.Response = text
	} else {
		response.Response = fmt.Sprintf("No assistant is configured. Review the %d relevant items for recurring themes.", len(top))
	}
	return response, nil
}

func (s *QueryService) handleDecision(ctx context.Context, query string, results []*SemanticResult) (*QueryResponse, error) {
	top := topResults(results, decisionTopN)
	context := buildContext(top)

	response := &QueryResponse{
		Type:     domain.QueryTypeDecision,
		Query:    query,
		Insights: top,
	}

	prompt := fmt.Sprintf(`The user is making a decision and needs context from their knowledge.

Query: %q

Relevant knowledge from their library:

%s

Help them decide by:
1. Presenting relevant frameworks or mental models they have saved
2. Showing lessons from similar situations they have noted
3. Highlighting both supporting and contradicting viewpoints
4. Identifying what they do NOT know (gaps)
5. Suggesting what additional information might help

Frame this as decision support, not making the decision for them.
`, query, context)

	if text, ok := s.complete(ctx, prompt, 2500); ok {
		response.Response = text
	} else {
		response.Response = "No assistant is configured. Here are relevant items from your library for this decision."
	}
	return response, nil
}

// handleGenerate never calls the completion service: it hands the topic
// and supporting insights off to the content-generation component.
func (s *QueryService) handleGenerate(query string, classification domain.Classification, results []*SemanticResult) *QueryResponse {
	topic := strings.TrimSpace(classification.Intent)
	if topic == "" {
		topic = query
	}
	if len(topic) > 200 {
		topic = topic[:200]
	}

	return &QueryResponse{
		Type:     domain.QueryTypeGenerate,
		Query:    query,
		Redirect: "/generate",
		Topic:    topic,
		Insights: topResults(results, generateTopN),
	}
}

func (s *QueryService) handleExplore(ctx context.Context, query string, results []*SemanticResult) (*QueryResponse, error) {
	stats, err := s.libraryStats(ctx)
	if err != nil {
		return nil, err
	}

	sample := sampleByCategory(results, explorePerCategory, exploreSample)
	context := buildContext(sample)

	response := &QueryResponse{
		Type:     domain.QueryTypeExplore,
		Query:    query,
		Insights: sample,
		Stats:    stats,
	}

	prompt := fmt.Sprintf(`The user wants to explore their knowledge library.

Query: %q

Library statistics:
- Total items: %d
- Articles: %d
- Notes: %d
- Top topics: %s

Sample of their saved content:
%s

Help them explore by:
1. Highlighting interesting patterns or clusters
2. Suggesting topics they might want to dive into
3. Pointing out unique combinations
4. Showing their learning journey over time
5. Identifying gaps or opportunities

Be enthusiastic and help them rediscover their own knowledge.
`, query, stats.Total, stats.ByCategory[domain.CategoryArticle], stats.ByCategory[domain.CategoryNote],
		strings.Join(topN(stats.TopTags, 5), ", "), context)

	if text, ok := s.complete(ctx, prompt, 2000); ok {
		response.Response = text
	} else {
		response.Response = fmt.Sprintf("Your library has %d items. Top topics: %s.",
			stats.Total, strings.Join(topN(stats.TopTags, 5), ", "))
	}
	return response, nil
}

func (s *QueryService) libraryStats(ctx context.Context) (*LibraryStats, error) {
	total, err := s.statsRepo.CountEligible(ctx)
	if err != nil {
		return nil, err
	}
	byCategory, err := s.statsRepo.CountByCategory(ctx)
	if err != nil {
		return nil, err
	}
	topTags, err := s.statsRepo.TopTags(ctx, 10)
	if err != nil {
		return nil, err
	}
	return &LibraryStats{Total: total, ByCategory: byCategory, TopTags: topTags}, nil
}

// Stats exposes library statistics outside the explore handler.
func (s *QueryService) Stats(ctx context.Context) (*LibraryStats, error) {
	return s.libraryStats(ctx)
}

func (s *QueryService) complete(ctx context.Context, prompt string, maxTokens int) (string, bool) {
	if s.completion == nil {
		return "", false
	}
	return s.completion.Complete(ctx, prompt, maxTokens)
}

// buildContext renders results into the numbered item blocks the prompts
// reference by position.
func buildContext(results []*SemanticResult) string {
	var b strings.Builder
	for i, r := range results {
		insight := r.Insight
		fmt.Fprintf(&b, "\n--- Item %d ---\n", i+1)
		fmt.Fprintf(&b, "Type: %s\n", insight.Category)
		if !insight.SavedAt.IsZero() {
			fmt.Fprintf(&b, "Saved: %s\n", insight.SavedAt.Format("2006-01-02"))
		}
		if insight.SourceURL != "" {
			fmt.Fprintf(&b, "Source: %s\n", insight.SourceURL)
		}
		if tags := insight.NormalizedTags(); len(tags) > 0 {
			fmt.Fprintf(&b, "Tags: %s\n", strings.Join(topN(tags, contextTagLimit), ", "))
		}
		b.WriteString("\nContent:\n")
		b.WriteString(truncate(insight.BestText(), contextItemMaxChars))
		b.WriteString("\n")
	}
	return b.String()
}

// sampleByCategory takes up to perCategory results from each category, in
// input order, capped at max overall.
func sampleByCategory(results []*SemanticResult, perCategory, max int) []*SemanticResult {
	counts := make(map[domain.Category]int)
	sample := make([]*SemanticResult, 0, max)
	for _, r := range results {
		if len(sample) >= max {
			break
		}
		if counts[r.Insight.Category] >= perCategory {
			continue
		}
		counts[r.Insight.Category]++
		sample = append(sample, r)
	}
	return sample
}

func topResults(results []*SemanticResult, n int) []*SemanticResult {
	if len(results) > n {
		return results[:n]
	}
	return results
}

func resultIDs(results []*SemanticResult) []string {
	ids := make([]string, 0, len(results))
	for _, r := range results {
		ids = append(ids, r.Insight.ID)
	}
	return ids
}

func topN(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func truncate(text string, max int) string {
	if len(text) <= max {
		return text
	}
	return text[:max] + "..."
}
