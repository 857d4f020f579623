package service

import (
	"context"
	"hash/fnv"
	"math/rand"
	"sort"
	"time"

	"github.com/fermentlab/insightd/internal/domain"
	"github.com/fermentlab/insightd/internal/telemetry"
)

const (
	// DefaultDailyCount is how many insights a daily session serves.
	DefaultDailyCount = 3
	// dailyCandidateLimit bounds how many top-quality insights compete
	// for a day's selection.
	dailyCandidateLimit = 50
)

// DailyRepository defines the repository interface for daily selection.
type DailyRepository interface {
	// GetSession returns the session for the day, or nil when none exists.
	GetSession(ctx context.Context, sessionDate string) (*domain.DailySession, error)
	// GetByIDs returns insights in the order of the given IDs, omitting
	// any that no longer exist.
	GetByIDs(ctx context.Context, ids []string) ([]*domain.Insight, error)
	// ListDailyCandidates returns eligible insights not shown on the given
	// day, ordered by quality score descending.
	ListDailyCandidates(ctx context.Context, sessionDate string, limit int) ([]*domain.Insight, error)
	// SaveSelection persists the day's selection and stamps the selected
	// insights as shown. When another session for the same day already
	// exists, the existing session is returned instead.
	SaveSelection(ctx context.Context, session *domain.DailySession) (*domain.DailySession, error)
}

// DailyService selects the day's review set. Selection is idempotent per
// calendar day: the first selection wins and repeat calls replay it.
type DailyService struct {
	repo    DailyRepository
	uuidGen UUIDGenerator
	now     func() time.Time
}

// NewDailyService creates a new DailyService instance
func NewDailyService(repo DailyRepository) *DailyService {
	return &DailyService{
		repo:    repo,
		uuidGen: &DefaultUUIDGenerator{},
		now:     time.Now,
	}
}

// NewDailyServiceWithClock creates a DailyService with custom UUID generation and clock (for testing)
func NewDailyServiceWithClock(repo DailyRepository, uuidGen UUIDGenerator, now func() time.Time) *DailyService {
	return &DailyService{repo: repo, uuidGen: uuidGen, now: now}
}

// DailySelection is a day's session together with its resolved insights.
type DailySelection struct {
	SessionDate string
	Insights    []*domain.Insight
}

// Today returns the selection for the current day, creating it if needed.
func (s *DailyService) Today(ctx context.Context, count int) (*DailySelection, error) {
	return s.ForDay(ctx, s.now().UTC().Format("2006-01-02"), count)
}

// ForDay returns the selection for the given day (YYYY-MM-DD), creating
// it if this is the first request of the day.
func (s *DailyService) ForDay(ctx context.Context, sessionDate string, count int) (*DailySelection, error) {
	ctx, span := telemetry.StartSpan(ctx, "DailyService.ForDay", telemetry.SpanAttributes{
		Operation: "daily_selection",
	})
	defer span.End()

	if count <= 0 {
		count = DefaultDailyCount
	}

	existing, err := s.repo.GetSession(ctx, sessionDate)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return s.replay(ctx, existing)
	}

	candidates, err := s.repo.ListDailyCandidates(ctx, sessionDate, dailyCandidateLimit)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return &DailySelection{SessionDate: sessionDate}, nil
	}

	shuffleQualityTies(candidates, daySeed(sessionDate))
	selected := SelectDiverse(candidates, count, InsightDiversityKey)

	session := domain.NewDailySession(
		s.uuidGen.NewString(),
		sessionDate,
		insightIDs(selected),
		s.now().UTC(),
	)

	// A concurrent request may have committed a session for the same day
	// first; SaveSelection then returns the winning row and we replay it.
	winner, err := s.repo.SaveSelection(ctx, session)
	if err != nil {
		return nil, err
	}
	if winner.ID != session.ID {
		return s.replay(ctx, winner)
	}

	return &DailySelection{SessionDate: sessionDate, Insights: selected}, nil
}

func (s *DailyService) replay(ctx context.Context, session *domain.DailySession) (*DailySelection, error) {
	insights, err := s.repo.GetByIDs(ctx, session.InsightIDs)
	if err != nil {
		return nil, err
	}
	return &DailySelection{SessionDate: session.SessionDate, Insights: insights}, nil
}

// shuffleQualityTies shuffles the whole slice with the day's seed and then
// restores the quality ordering with a stable sort, so insights sharing a
// quality score land in a per-day random order while the ordering across
// scores is unchanged.
func shuffleQualityTies(insights []*domain.Insight, seed int64) {
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(insights), func(i, j int) {
		insights[i], insights[j] = insights[j], insights[i]
	})
	sort.SliceStable(insights, func(i, j int) bool {
		return insights[i].QualityScore > insights[j].QualityScore
	})
}

// daySeed derives a deterministic seed from the session date so repeated
// selections within a day agree even before a session row exists.
func daySeed(sessionDate string) int64 {
	h := fnv.New64a()
	h.Write([]byte(sessionDate))
	return int64(h.Sum64())
}

func insightIDs(insights []*domain.Insight) []string {
	ids := make([]string, 0, len(insights))
	for _, insight := range insights {
		ids = append(ids, insight.ID)
	}
	return ids
}
