package collab

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestNormalizeReviewJSON(t *testing.T) {
	raw := []byte(`{"risk_clauses":[{"original_text":"  x ","risk_level":" 高风险 ","risk_reason":null},"junk",7],"action_advice":null}`)
	out, changed, err := NormalizeReviewJSON(raw, quietLogger())
	if err != nil {
		t.Fatalf("NormalizeReviewJSON: %v", err)
	}
	if len(changed) == 0 {
		t.Fatalf("expected changes to be reported")
	}

	var got reviewResponse
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got.RiskClauses) != 1 {
		t.Fatalf("clauses = %d, want 1", len(got.RiskClauses))
	}
	c := got.RiskClauses[0]
	if c.OriginalText != "x" || c.RiskLevel != "高风险" || c.RiskReason != "" || c.Suggestion != "" {
		t.Fatalf("clause = %+v", c)
	}
	if got.ActionAdvice != "" {
		t.Fatalf("action_advice = %q", got.ActionAdvice)
	}
}

func TestNormalizeReviewJSON_Rejects(t *testing.T) {
	for _, raw := range []string{`[]`, `null`, `{"risk_clauses":"nope"}`, `{`} {
		if _, _, err := NormalizeReviewJSON([]byte(raw), quietLogger()); !errors.Is(err, ErrResponseInvalid) {
			t.Errorf("%s: err = %v, want ErrResponseInvalid", raw, err)
		}
	}
}
