package entity

import (
	"time"

	"github.com/joseph-ayodele/contract-sentinel/constants"
)

// LetterRequest asks the drafting service for a dispute letter.
type LetterRequest struct {
	DisputeType constants.DisputeType `json:"dispute_type"`
	Context     string                `json:"context"`
}

// LetterDraft is the latest generated letter. A new draft replaces the old one.
type LetterDraft struct {
	Content     string                `json:"content"`
	DisputeType constants.DisputeType `json:"dispute_type"`
	GeneratedAt time.Time             `json:"generated_at"`
}
