package service

import (
	"context"
	"log"

	"github.com/fermentlab/insightd/internal/domain"
	"github.com/fermentlab/insightd/internal/telemetry"
)

const (
	// DefaultEmbeddingBatchSize is how many unembedded insights one
	// worker tick claims.
	DefaultEmbeddingBatchSize = 10
	// backfillLogInterval controls checkpoint logging during a backfill.
	backfillLogInterval = 10
)

// EmbeddingRepository defines the repository interface for embedding maintenance.
type EmbeddingRepository interface {
	// ListUnembedded returns eligible insights with enough text to embed
	// that have no stored embedding yet.
	ListUnembedded(ctx context.Context, limit int) ([]*domain.Insight, error)
	UpdateEmbedding(ctx context.Context, id string, embedding []float32) error
}

// EmbeddingService computes and stores embeddings for insights that lack
// them. Insights whose text cannot be embedded are skipped, not failed;
// they are retried on a later pass.
type EmbeddingService struct {
	repo     EmbeddingRepository
	embedder Embedder
}

// NewEmbeddingService creates a new EmbeddingService instance
func NewEmbeddingService(repo EmbeddingRepository, embedder Embedder) *EmbeddingService {
	return &EmbeddingService{repo: repo, embedder: embedder}
}

// ProcessBatch embeds up to batchSize pending insights and reports how
// many were processed. A zero return with nil error means nothing is
// pending.
func (s *EmbeddingService) ProcessBatch(ctx context.Context, batchSize int) (int, error) {
	ctx, span := telemetry.StartSpan(ctx, "EmbeddingService.ProcessBatch", telemetry.SpanAttributes{
		Operation: "embed_batch",
	})
	defer span.End()

	if batchSize <= 0 {
		batchSize = DefaultEmbeddingBatchSize
	}
	if s.embedder == nil {
		return 0, nil
	}

	insights, err := s.repo.ListUnembedded(ctx, batchSize)
	if err != nil {
		return 0, err
	}

	processed := 0
	for _, insight := range insights {
		if ctx.Err() != nil {
			return processed, ctx.Err()
		}

		embedding, ok := s.embedder.Embed(ctx, insight.BestText())
		if !ok {
			continue
		}

		if err := s.repo.UpdateEmbedding(ctx, insight.ID, embedding); err != nil {
			return processed, err
		}
		processed++
	}

	return processed, nil
}

// BackfillAll embeds every pending insight in batches until none remain,
// logging a checkpoint as it goes. Used by the one-shot embed command.
func (s *EmbeddingService) BackfillAll(ctx context.Context, batchSize int) (int, error) {
	total := 0
	lastLogged := 0
	for {
		processed, err := s.ProcessBatch(ctx, batchSize)
		total += processed
		if err != nil {
			return total, err
		}
		if processed == 0 {
			break
		}
		if total-lastLogged >= backfillLogInterval {
			log.Printf("embedding backfill: %d insights embedded", total)
			lastLogged = total
		}
	}
	return total, nil
}
