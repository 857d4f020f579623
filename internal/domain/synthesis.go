package domain

import (
	"fmt"
	"time"
)

// Synthesis is a durable record of a cross-source answer. It is created by
// the synthesis query handler and never updated by this core; EditedBody
// is reserved for a future editing surface.
type Synthesis struct {
	ID         string
	OwnerID    string
	Query      string
	Body       string
	SourceIDs  []string
	EditedBody string
	CreatedAt  time.Time
}

// NewSynthesis creates a Synthesis referencing the ordered source insights.
func NewSynthesis(id, ownerID, query, body string, sourceIDs []string, createdAt time.Time) *Synthesis {
	return &Synthesis{
		ID:        id,
		OwnerID:   ownerID,
		Query:     query,
		Body:      body,
		SourceIDs: sourceIDs,
		CreatedAt: createdAt,
	}
}

// ValidateSynthesis validates a Synthesis instance
func ValidateSynthesis(s *Synthesis) error {
	if s == nil {
		return fmt.Errorf("synthesis cannot be nil")
	}

	if s.ID == "" {
		return fmt.Errorf("synthesis ID is required")
	}

	if s.Query == "" {
		return fmt.Errorf("synthesis Query is required")
	}

	if s.Body == "" {
		return fmt.Errorf("synthesis Body is required")
	}

	return nil
}
