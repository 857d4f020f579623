package admin

import (
	"context"
	"fmt"
	"log"

	"github.com/fermentlab/insightd/internal/config"
	"github.com/fermentlab/insightd/internal/database"
	"github.com/fermentlab/insightd/internal/openai"
	"github.com/fermentlab/insightd/internal/repository"
	"github.com/fermentlab/insightd/internal/service"
	"github.com/spf13/cobra"
)

// EmbedCmd returns the embed command
func EmbedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "embed",
		Short: "Backfill embeddings for insights that lack them",
		RunE:  runEmbed,
	}

	cmd.Flags().Int("batch-size", service.DefaultEmbeddingBatchSize, "Insights to embed per batch")

	return cmd
}

func runEmbed(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if !cfg.HasOpenAI() {
		return fmt.Errorf("INSIGHT_OPENAI_API_KEY is required for embedding")
	}

	pool, err := database.NewPoolFromURL(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	batchSize, _ := cmd.Flags().GetInt("batch-size")

	client := openai.NewClientWithConfig(openai.Config{
		APIKey:          cfg.OpenAIAPIKey,
		CompletionModel: cfg.CompletionModel,
	})
	embeddingSvc := service.NewEmbeddingService(repository.NewInsightRepository(pool), client)

	total, err := embeddingSvc.BackfillAll(ctx, batchSize)
	if err != nil {
		return fmt.Errorf("backfill stopped after %d insights: %w", total, err)
	}

	log.Printf("backfill complete: %d insights embedded", total)
	return nil
}
