package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFallbackClassification(t *testing.T) {
	c := FallbackClassification("what did I save about pricing?")

	assert.Equal(t, QueryTypeRecall, c.Type)
	assert.Equal(t, "what did I save about pricing?", c.Intent)
	assert.Empty(t, c.KeyConcepts)
	assert.Equal(t, "all_time", c.Timeframe)
	assert.Equal(t, "text", c.OutputFormat)
}

func TestIsValidQueryType(t *testing.T) {
	valid := []QueryType{
		QueryTypeRecall, QueryTypeSynthesis, QueryTypePattern,
		QueryTypeDecision, QueryTypeGenerate, QueryTypeExplore,
	}
	for _, qt := range valid {
		assert.True(t, IsValidQueryType(qt), string(qt))
	}

	assert.False(t, IsValidQueryType("summarize"))
	assert.False(t, IsValidQueryType(""))
}

func TestScope_IsGlobal(t *testing.T) {
	assert.True(t, Scope{}.IsGlobal())
	assert.False(t, Scope{OwnerID: "owner-1"}.IsGlobal())
	assert.False(t, Scope{SessionToken: "tok"}.IsGlobal())
}
