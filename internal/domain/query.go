package domain

// QueryType labels the response strategy a query is routed to.
type QueryType string

const (
	QueryTypeRecall    QueryType = "recall"
	QueryTypeSynthesis QueryType = "synthesis"
	QueryTypePattern   QueryType = "pattern"
	QueryTypeDecision  QueryType = "decision"
	QueryTypeGenerate  QueryType = "generate"
	QueryTypeExplore   QueryType = "explore"
)

// Classification is the ephemeral result of classifying a free-text query.
// It is never persisted.
type Classification struct {
	Type         QueryType `json:"type"`
	Intent       string    `json:"intent"`
	KeyConcepts  []string  `json:"key_concepts"`
	Timeframe    string    `json:"timeframe"`
	OutputFormat string    `json:"output_format"`
}

// FallbackClassification is the deterministic classification used when no
// completion service is configured or its answer cannot be parsed. The
// router must always receive a valid classification.
func FallbackClassification(query string) Classification {
	return Classification{
		Type:         QueryTypeRecall,
		Intent:       query,
		KeyConcepts:  nil,
		Timeframe:    "all_time",
		OutputFormat: "text",
	}
}

// IsValidQueryType checks if a QueryType is one of the six routable types
func IsValidQueryType(t QueryType) bool {
	switch t {
	case QueryTypeRecall, QueryTypeSynthesis, QueryTypePattern,
		QueryTypeDecision, QueryTypeGenerate, QueryTypeExplore:
		return true
	}
	return false
}

// Scope narrows search and synthesis reads to an owner or an anonymous
// session. The session token takes precedence when both are present; the
// zero value means the global anonymous scope.
type Scope struct {
	OwnerID      string
	SessionToken string
}

// IsGlobal reports whether the scope covers the whole library.
func (s Scope) IsGlobal() bool {
	return s.OwnerID == "" && s.SessionToken == ""
}
