package constants

import (
	"strings"
)

// RiskLevel is the closed set of clause risk levels used for display.
type RiskLevel string

const (
	RiskHigh   RiskLevel = "high"
	RiskMedium RiskLevel = "medium"
	RiskLow    RiskLevel = "low"
)

// Wire labels returned by the review service.
const (
	LabelHigh   = "高风险"
	LabelMedium = "中风险"
	LabelLow    = "低风险"
)

var allRiskLevels = []RiskLevel{
	RiskHigh,
	RiskMedium,
	RiskLow,
}

// RiskLevels returns the levels in severity order, most severe first.
func RiskLevels() []RiskLevel {
	out := make([]RiskLevel, len(allRiskLevels))
	copy(out, allRiskLevels)
	return out
}

// Severity ranks a level; higher is more severe.
func (r RiskLevel) Severity() int {
	switch r {
	case RiskHigh:
		return 3
	case RiskMedium:
		return 2
	default:
		return 1
	}
}

// Label returns the wire label for the level.
func (r RiskLevel) Label() string {
	switch r {
	case RiskHigh:
		return LabelHigh
	case RiskMedium:
		return LabelMedium
	default:
		return LabelLow
	}
}

// CanonicalizeRisk maps a wire label (or an English synonym) onto a RiskLevel.
// Unknown or empty input falls back to RiskLow and reports false.
func CanonicalizeRisk(input string) (RiskLevel, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return RiskLow, false
	}

	synonyms := map[string]RiskLevel{
		LabelHigh:     RiskHigh,
		LabelMedium:   RiskMedium,
		LabelLow:      RiskLow,
		"高":           RiskHigh,
		"中":           RiskMedium,
		"低":           RiskLow,
		"high risk":   RiskHigh,
		"medium risk": RiskMedium,
		"moderate":    RiskMedium,
		"low risk":    RiskLow,
	}
	if lvl, ok := synonyms[normalized]; ok {
		return lvl, true
	}

	for _, lvl := range allRiskLevels {
		if normalized == string(lvl) {
			return lvl, true
		}
	}

	return RiskLow, false
}
