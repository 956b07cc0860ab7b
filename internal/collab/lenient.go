package collab

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
)

// NormalizeReviewJSON reshapes a loosely-formed review reply before schema
// validation:
//   - missing or null risk_clauses becomes []
//   - missing or null action_advice becomes ""
//   - clause string fields that are null are dropped to "", numbers are stringified
//   - non-object clauses are removed
//   - risk_level and original_text are trimmed
func NormalizeReviewJSON(raw []byte, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, nil, fmt.Errorf("%w: decode: %w", ErrResponseInvalid, err)
	}
	if m == nil {
		return nil, nil, fmt.Errorf("%w: reply is not an object", ErrResponseInvalid)
	}

	changed := make([]string, 0, 4)

	switch v := m["action_advice"].(type) {
	case string:
		m["action_advice"] = strings.TrimSpace(v)
	case nil:
		m["action_advice"] = ""
		changed = append(changed, "action_advice(null)")
	default:
		m["action_advice"] = fmt.Sprint(v)
		changed = append(changed, "action_advice(type)")
	}

	var clauses []any
	switch v := m["risk_clauses"].(type) {
	case []any:
		clauses = v
	case nil:
		changed = append(changed, "risk_clauses(null)")
	default:
		return nil, changed, fmt.Errorf("%w: risk_clauses is %T", ErrResponseInvalid, v)
	}

	kept := make([]any, 0, len(clauses))
	for i, c := range clauses {
		obj, ok := c.(map[string]any)
		if !ok {
			changed = append(changed, fmt.Sprintf("risk_clauses[%d](type)", i))
			continue
		}
		for _, k := range []string{"original_text", "risk_level", "risk_reason", "suggestion"} {
			switch t := obj[k].(type) {
			case string:
				if k == "risk_level" || k == "original_text" {
					obj[k] = strings.TrimSpace(t)
				}
			case nil:
				if _, present := obj[k]; present {
					changed = append(changed, fmt.Sprintf("risk_clauses[%d].%s(null)", i, k))
				}
				obj[k] = ""
			case float64, bool:
				obj[k] = fmt.Sprint(t)
				changed = append(changed, fmt.Sprintf("risk_clauses[%d].%s(type)", i, k))
			}
		}
		kept = append(kept, obj)
	}
	m["risk_clauses"] = kept

	out, err := json.Marshal(m)
	if err != nil {
		return nil, changed, fmt.Errorf("normalize: encode: %w", err)
	}
	if len(changed) > 0 {
		logger.Warn("collab.review.normalize", "changed", changed)
	}
	return out, changed, nil
}
