package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewInsight(t *testing.T) {
	savedAt := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	i := NewInsight("insight-1", "pricing power compounds", CategoryArticle, savedAt)

	assert.Equal(t, "insight-1", i.ID)
	assert.Equal(t, CategoryArticle, i.Category)
	assert.Equal(t, DefaultQualityScore, i.QualityScore)
	assert.True(t, i.Eligible)
	assert.Equal(t, savedAt, i.SavedAt)
}

func TestValidateInsight(t *testing.T) {
	savedAt := time.Now().UTC()

	tests := []struct {
		name    string
		insight *Insight
		wantErr string
	}{
		{
			name:    "valid insight",
			insight: NewInsight("id-1", "some content", CategoryNote, savedAt),
		},
		{
			name:    "nil insight",
			insight: nil,
			wantErr: "insight cannot be nil",
		},
		{
			name:    "missing id",
			insight: &Insight{Content: "content", Category: CategoryNote},
			wantErr: "insight ID is required",
		},
		{
			name:    "no content at all",
			insight: &Insight{ID: "id-1", Category: CategoryNote},
			wantErr: "insight must have content or extracted text",
		},
		{
			name: "extracted text alone is enough",
			insight: &Insight{
				ID:            "id-1",
				ExtractedText: "full article body",
				Category:      CategoryArticle,
			},
		},
		{
			name:    "invalid category",
			insight: &Insight{ID: "id-1", Content: "content", Category: "meme"},
			wantErr: "insight Category is invalid",
		},
		{
			name: "negative quality score",
			insight: &Insight{
				ID:           "id-1",
				Content:      "content",
				Category:     CategoryOther,
				QualityScore: -1,
			},
			wantErr: "QualityScore must not be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateInsight(tt.insight)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

func TestInsight_SearchableText(t *testing.T) {
	i := &Insight{
		Content:       "Great THREAD on pricing",
		ExtractedText: "Full article about SaaS pricing",
		Note:          "save for the newsletter",
		Tags:          []string{"Pricing", "saas"},
	}

	text := i.SearchableText()
	assert.Contains(t, text, "great thread on pricing")
	assert.Contains(t, text, "full article about saas pricing")
	assert.Contains(t, text, "save for the newsletter")
	assert.Contains(t, text, "pricing saas")
}

func TestInsight_BestText(t *testing.T) {
	i := &Insight{Content: "bare link", ExtractedText: "extracted body"}
	assert.Equal(t, "extracted body", i.BestText())

	i.ExtractedText = "   "
	assert.Equal(t, "bare link", i.BestText())
}

func TestInsight_NormalizedTags(t *testing.T) {
	i := &Insight{Tags: []string{" Startups ", "WRITING", "", "ai"}}
	assert.Equal(t, []string{"startups", "writing", "ai"}, i.NormalizedTags())

	empty := &Insight{}
	assert.Nil(t, empty.NormalizedTags())
}
