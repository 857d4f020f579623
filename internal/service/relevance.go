package service

import (
	"strings"

	"github.com/fermentlab/insightd/internal/domain"
)

const (
	// exactPhraseBonus rewards a verbatim topic match anywhere in the text
	exactPhraseBonus = 5.0
	// keywordBonus is added per keyword found in the combined text
	keywordBonus = 0.5
	// tagKeywordBonus is added per keyword found in the tag set; tags are
	// the strongest relevance signal
	tagKeywordBonus = 2.0
	// fullTextBonus prefers fully-fetched articles over bare links
	fullTextBonus    = 1.0
	fullTextMinChars = 500
	// qualityDivisor folds the quality score into the relevance score
	qualityDivisor = 10.0
	// ownNoteBonus weights the user's own writing above re-shared material
	ownNoteBonus = 1.5
)

// RelevanceScore computes the lexical relevance of an insight for a topic.
// Zero means the insight is not eligible for inclusion. Callers must rank
// by RankingKey, not by this score alone.
func RelevanceScore(insight *domain.Insight, topic string, keywords []string) float64 {
	score := 0.0
	searchable := insight.SearchableText()

	if topic != "" && strings.Contains(searchable, strings.ToLower(topic)) {
		score += exactPhraseBonus
	}

	tags := strings.Join(insight.NormalizedTags(), " ")
	for _, kw := range keywords {
		if strings.Contains(searchable, kw) {
			score += keywordBonus
		}
		if strings.Contains(tags, kw) {
			score += tagKeywordBonus
		}
	}

	if len(insight.ExtractedText) > fullTextMinChars {
		score += fullTextBonus
	}

	if insight.QualityScore > 0 {
		score += float64(insight.QualityScore) / qualityDivisor
	}

	if insight.Category == domain.CategoryNote {
		score += ownNoteBonus
	}

	return score
}

// RankingKey combines relevance with quality multiplicatively so a highly
// relevant low-quality item and a marginally relevant high-quality item
// both have a path to the top.
func RankingKey(relevance float64, quality int) float64 {
	if quality < 1 {
		quality = 1
	}
	return relevance * float64(quality)
}
