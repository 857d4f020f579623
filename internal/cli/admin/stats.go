package admin

import (
	"context"
	"fmt"
	"sort"

	"github.com/fermentlab/insightd/internal/config"
	"github.com/fermentlab/insightd/internal/database"
	"github.com/fermentlab/insightd/internal/domain"
	"github.com/fermentlab/insightd/internal/repository"
	"github.com/spf13/cobra"
)

// StatsCmd returns the stats command
func StatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print library statistics",
		RunE:  runStats,
	}
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	pool, err := database.NewPoolFromURL(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	repo := repository.NewInsightRepository(pool)

	total, err := repo.CountEligible(ctx)
	if err != nil {
		return fmt.Errorf("failed to count insights: %w", err)
	}

	byCategory, err := repo.CountByCategory(ctx)
	if err != nil {
		return fmt.Errorf("failed to count categories: %w", err)
	}

	topTags, err := repo.TopTags(ctx, 10)
	if err != nil {
		return fmt.Errorf("failed to fetch top tags: %w", err)
	}

	fmt.Printf("eligible insights: %d\n", total)

	categories := make([]domain.Category, 0, len(byCategory))
	for category := range byCategory {
		categories = append(categories, category)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i] < categories[j] })
	for _, category := range categories {
		fmt.Printf("  %-12s %d\n", category, byCategory[category])
	}

	if len(topTags) > 0 {
		fmt.Println("top tags:")
		for _, tag := range topTags {
			fmt.Printf("  %s\n", tag)
		}
	}

	return nil
}
