package jobs

import (
	"context"
	"fmt"
	"log"
)

// BatchEmbedder defines the interface for embedding pending insights
type BatchEmbedder interface {
	ProcessBatch(ctx context.Context, batchSize int) (int, error)
}

// EmbeddingWorker embeds insights that were saved without an embedding
type EmbeddingWorker struct {
	embedder  BatchEmbedder
	batchSize int
}

// NewEmbeddingWorker creates a new EmbeddingWorker instance
func NewEmbeddingWorker(embedder BatchEmbedder, batchSize int) *EmbeddingWorker {
	return &EmbeddingWorker{
		embedder:  embedder,
		batchSize: batchSize,
	}
}

// ProcessJobs implements the JobProcessor interface
func (w *EmbeddingWorker) ProcessJobs(ctx context.Context) error {
	processed, err := w.embedder.ProcessBatch(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("failed to process embedding batch: %w", err)
	}

	if processed > 0 {
		log.Printf("Embedded %d insights", processed)
	}

	return nil
}
