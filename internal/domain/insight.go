package domain

import (
	"fmt"
	"strings"
	"time"
)

// Category represents the content category of an insight
type Category string

const (
	CategoryArticle         Category = "article"
	CategoryNote            Category = "note"
	CategorySocialReference Category = "social_reference"
	CategoryVideo           Category = "video"
	CategoryCode            Category = "code"
	CategoryDiscussion      Category = "discussion"
	CategoryOther           Category = "other"

	// CategoryJunk and CategoryPersonal exist so ingestion can park items
	// that must never surface in search or daily selection.
	CategoryJunk     Category = "junk"
	CategoryPersonal Category = "personal"
)

// DefaultQualityScore is the mid-range score assigned until heuristics
// outside this core revise it.
const DefaultQualityScore = 5

// Insight is one saved knowledge item. The search and routing core treats
// insights as read-only; only the daily scheduler stamps LastShown.
type Insight struct {
	ID            string
	Content       string
	ExtractedText string
	Note          string
	SourceURL     string
	Category      Category
	Tags          []string
	QualityScore  int
	Eligible      bool
	OwnerID       string
	SessionToken  string
	Embedding     []float32
	LastShown     *time.Time
	SavedAt       time.Time
}

// NewInsight creates an Insight with the defaults ingestion relies on.
func NewInsight(id, content string, category Category, savedAt time.Time) *Insight {
	return &Insight{
		ID:           id,
		Content:      content,
		Category:     category,
		QualityScore: DefaultQualityScore,
		Eligible:     true,
		SavedAt:      savedAt,
	}
}

// SearchableText builds the combined text the lexical scorer matches
// against: raw content, extracted article text, the save-time note, and
// tags, lowercased.
func (i *Insight) SearchableText() string {
	parts := make([]string, 0, 4)
	if i.Content != "" {
		parts = append(parts, i.Content)
	}
	if i.ExtractedText != "" {
		parts = append(parts, i.ExtractedText)
	}
	if i.Note != "" {
		parts = append(parts, i.Note)
	}
	if len(i.Tags) > 0 {
		parts = append(parts, strings.Join(i.Tags, " "))
	}
	return strings.ToLower(strings.Join(parts, " "))
}

// BestText returns the richest text available for an insight, preferring
// the extracted full article over the raw capture.
func (i *Insight) BestText() string {
	if strings.TrimSpace(i.ExtractedText) != "" {
		return i.ExtractedText
	}
	return i.Content
}

// NormalizedTags returns the tag set lowercased and trimmed. Tag matching
// is case-insensitive everywhere.
func (i *Insight) NormalizedTags() []string {
	if len(i.Tags) == 0 {
		return nil
	}
	out := make([]string, 0, len(i.Tags))
	for _, t := range i.Tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// ValidateInsight validates an Insight instance
func ValidateInsight(i *Insight) error {
	if i == nil {
		return fmt.Errorf("insight cannot be nil")
	}

	if i.ID == "" {
		return fmt.Errorf("insight ID is required")
	}

	if i.Content == "" && i.ExtractedText == "" {
		return fmt.Errorf("insight must have content or extracted text")
	}

	if !isValidCategory(i.Category) {
		return fmt.Errorf("insight Category is invalid: %s", i.Category)
	}

	if i.QualityScore < 0 {
		return fmt.Errorf("insight QualityScore must not be negative")
	}

	return nil
}

// isValidCategory checks if a Category is valid
func isValidCategory(c Category) bool {
	switch c {
	case CategoryArticle, CategoryNote, CategorySocialReference, CategoryVideo,
		CategoryCode, CategoryDiscussion, CategoryOther, CategoryJunk, CategoryPersonal:
		return true
	}
	return false
}
