package entity

import (
	"github.com/joseph-ayodele/contract-sentinel/constants"
)

// RiskClause is one flagged clause from the review service.
type RiskClause struct {
	OriginalText string              `json:"original_text"`
	RiskLevel    constants.RiskLevel `json:"risk_level"`
	RawLevel     string              `json:"raw_level,omitempty"` // label as returned by the service
	RiskReason   string              `json:"risk_reason"`
	Suggestion   string              `json:"suggestion"`
}

// AnalysisResult preserves the clause order returned by the service.
type AnalysisResult struct {
	RiskClauses  []RiskClause `json:"risk_clauses"`
	ActionAdvice string       `json:"action_advice"`
}

// Clone returns a deep copy so callers cannot mutate stored results.
func (r AnalysisResult) Clone() AnalysisResult {
	out := AnalysisResult{ActionAdvice: r.ActionAdvice}
	if r.RiskClauses != nil {
		out.RiskClauses = make([]RiskClause, len(r.RiskClauses))
		copy(out.RiskClauses, r.RiskClauses)
	}
	return out
}

// CountByLevel tallies clauses per risk level.
func (r AnalysisResult) CountByLevel() map[constants.RiskLevel]int {
	counts := make(map[constants.RiskLevel]int, 3)
	for _, c := range r.RiskClauses {
		counts[c.RiskLevel]++
	}
	return counts
}
