package service

import (
	"context"
	"sort"
	"strings"

	"github.com/fermentlab/insightd/internal/domain"
	"github.com/fermentlab/insightd/internal/telemetry"
)

// DefaultTopicLimit caps topic search results when the caller passes none.
const DefaultTopicLimit = 10

// TopicSearchRepository defines the repository interface for topic search
type TopicSearchRepository interface {
	ListEligible(ctx context.Context) ([]*domain.Insight, error)
}

// TopicResult is an insight annotated with its lexical relevance score.
type TopicResult struct {
	Insight        *domain.Insight
	RelevanceScore float64
}

// TopicSearchService ranks the library lexically against a topic and
// diversifies the result set. It backs content-generation topic matching
// and has no external service dependency.
type TopicSearchService struct {
	repo TopicSearchRepository
}

// NewTopicSearchService creates a new TopicSearchService instance
func NewTopicSearchService(repo TopicSearchRepository) *TopicSearchService {
	return &TopicSearchService{repo: repo}
}

// Search finds the most relevant insights for a topic. Deterministic given
// stable input: scores via RelevanceScore, ranks by relevance times
// quality, then applies diversity selection. Insights scoring zero are
// excluded; an empty result is a valid answer, not an error.
func (s *TopicSearchService) Search(ctx context.Context, topic string, limit int) ([]*TopicResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "TopicSearchService.Search", telemetry.SpanAttributes{
		Operation: "topic_search",
	})
	defer span.End()

	if limit <= 0 {
		limit = DefaultTopicLimit
	}

	topic = strings.TrimSpace(topic)
	if topic == "" {
		return []*TopicResult{}, nil
	}

	keywords := ExtractKeywords(topic)

	insights, err := s.repo.ListEligible(ctx)
	if err != nil {
		return nil, err
	}

	scored := make([]*TopicResult, 0, len(insights))
	for _, insight := range insights {
		score := RelevanceScore(insight, topic, keywords)
		if score <= 0 {
			continue
		}
		insight.Tags = insight.NormalizedTags()
		scored = append(scored, &TopicResult{Insight: insight, RelevanceScore: score})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return RankingKey(scored[i].RelevanceScore, scored[i].Insight.QualityScore) >
			RankingKey(scored[j].RelevanceScore, scored[j].Insight.QualityScore)
	})

	return SelectDiverse(scored, limit, func(r *TopicResult) DiversityKey {
		return InsightDiversityKey(r.Insight)
	}), nil
}
