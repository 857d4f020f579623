package service

import (
	"net/url"
	"strings"

	"github.com/fermentlab/insightd/internal/domain"
)

// DiversityKey identifies an item for diversity selection. Membership is
// tracked by ID, never by value, so duplicate content cannot confuse the
// fill pass.
type DiversityKey struct {
	ID       string
	Category string
	Domain   string
}

// InsightDiversityKey builds the DiversityKey for an insight.
func InsightDiversityKey(i *domain.Insight) DiversityKey {
	return DiversityKey{
		ID:       i.ID,
		Category: string(i.Category),
		Domain:   SourceDomain(i.SourceURL),
	}
}

// SelectDiverse picks up to limit items from a sequence already sorted by
// ranking key descending, maximizing category and source-domain variety.
// First pass accepts an item when its category or its domain is new; a
// second pass fills remaining slots in original order. Input order is
// preserved within each pass, so ties stay stable. When the pool fits the
// limit, selection is skipped entirely.
func SelectDiverse[T any](items []T, limit int, keyOf func(T) DiversityKey) []T {
	if limit <= 0 {
		return nil
	}
	if len(items) <= limit {
		return items
	}

	selected := make([]T, 0, limit)
	chosen := make(map[string]struct{}, limit)
	usedCategories := make(map[string]struct{})
	usedDomains := make(map[string]struct{})

	for _, item := range items {
		if len(selected) >= limit {
			break
		}
		key := keyOf(item)
		_, categorySeen := usedCategories[key.Category]
		_, domainSeen := usedDomains[key.Domain]
		if categorySeen && domainSeen {
			continue
		}
		selected = append(selected, item)
		chosen[key.ID] = struct{}{}
		usedCategories[key.Category] = struct{}{}
		usedDomains[key.Domain] = struct{}{}
	}

	for _, item := range items {
		if len(selected) >= limit {
			break
		}
		if _, ok := chosen[keyOf(item).ID]; ok {
			continue
		}
		selected = append(selected, item)
		chosen[keyOf(item).ID] = struct{}{}
	}

	return selected
}

// SourceDomain extracts the host of a source URL with any www. prefix
// stripped. Items without a parseable URL share the "none" domain so they
// compete with each other, not with every URL-bearing item.
func SourceDomain(rawURL string) string {
	if rawURL == "" {
		return "none"
	}
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return "none"
	}
	return strings.TrimPrefix(strings.ToLower(parsed.Host), "www.")
}
