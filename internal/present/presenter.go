// Package present maps analysis state onto a display model. Nothing here
// performs I/O; Render only formats strings.
package present

import (
	"fmt"
	"sort"

	"github.com/joseph-ayodele/contract-sentinel/constants"
	"github.com/joseph-ayodele/contract-sentinel/internal/analysis"
	"github.com/joseph-ayodele/contract-sentinel/internal/entity"
)

type Mode string

const (
	ModeLoading     Mode = "loading"
	ModePlaceholder Mode = "placeholder"
	ModeReport      Mode = "report"
)

// Badge is the visual severity attached to a clause.
type Badge string

const (
	BadgeError   Badge = "error"
	BadgeWarning Badge = "warning"
	BadgeSuccess Badge = "success"
)

// Affirmation is shown when the review found no risk clauses.
const Affirmation = "No material risk found; the contract looks safe."

// Disclaimer goes under every report.
const Disclaimer = "This review is generated automatically and is not legal advice. Consult a qualified lawyer before signing."

type Input struct {
	Pending bool
	Result  *entity.AnalysisResult
}

// FromSnapshot derives presenter input from the analysis orchestrator.
func FromSnapshot(s analysis.Snapshot) Input {
	return Input{Pending: s.Status == constants.StagePending, Result: s.Result}
}

type Item struct {
	Index        int // position in the reply, 0-based
	OriginalText string
	Level        constants.RiskLevel
	LevelLabel   string
	Badge        Badge
	Reason       string
	Suggestion   string
}

type Group struct {
	Level constants.RiskLevel
	Label string
	Items []Item
}

type View struct {
	Mode         Mode
	Title        string
	Total        int
	Items        []Item // reply order
	Groups       []Group
	NoRiskFound  bool
	Affirmation  string
	ActionAdvice string
}

// Build is pure: the same input always yields the same view.
func Build(in Input) View {
	if in.Pending {
		return View{Mode: ModeLoading}
	}
	if in.Result == nil {
		return View{Mode: ModePlaceholder}
	}

	r := in.Result
	v := View{
		Mode:         ModeReport,
		Total:        len(r.RiskClauses),
		Title:        fmt.Sprintf("Found %d risk clauses", len(r.RiskClauses)),
		ActionAdvice: r.ActionAdvice,
		Items:        make([]Item, 0, len(r.RiskClauses)),
	}
	for i, c := range r.RiskClauses {
		v.Items = append(v.Items, Item{
			Index:        i,
			OriginalText: c.OriginalText,
			Level:        c.RiskLevel,
			LevelLabel:   c.RiskLevel.Label(),
			Badge:        BadgeFor(c.RiskLevel),
			Reason:       c.RiskReason,
			Suggestion:   c.Suggestion,
		})
	}
	if v.Total == 0 {
		v.NoRiskFound = true
		v.Affirmation = Affirmation
		return v
	}

	for _, lvl := range constants.RiskLevels() {
		var g []Item
		for _, it := range v.Items {
			if it.Level == lvl {
				g = append(g, it)
			}
		}
		if len(g) > 0 {
			v.Groups = append(v.Groups, Group{Level: lvl, Label: lvl.Label(), Items: g})
		}
	}
	return v
}

// BadgeFor maps a level onto its badge. Anything not high or medium is success.
func BadgeFor(l constants.RiskLevel) Badge {
	switch l {
	case constants.RiskHigh:
		return BadgeError
	case constants.RiskMedium:
		return BadgeWarning
	default:
		return BadgeSuccess
	}
}

// BySeverity returns the items most severe first, keeping reply order within a level.
func (v View) BySeverity() []Item {
	out := make([]Item, len(v.Items))
	copy(out, v.Items)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Level.Severity() > out[j].Level.Severity()
	})
	return out
}
