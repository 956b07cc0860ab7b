package collab

// Response schemas (draft 2020-12 subset) for the three collaborators. They
// are checked after lenient normalization, so they only pin down types.

func ocrResponseSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"text":    map[string]any{"type": "string"},
			"is_mock": map[string]any{"type": "boolean"},
		},
		"required": []string{"text"},
	}
}

func reviewResponseSchema() map[string]any {
	clause := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"original_text": map[string]any{"type": "string"},
			"risk_level":    map[string]any{"type": "string"},
			"risk_reason":   map[string]any{"type": "string"},
			"suggestion":    map[string]any{"type": "string"},
		},
		"required": []string{"original_text", "risk_level"},
	}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"risk_clauses":  map[string]any{"type": "array", "items": clause},
			"action_advice": map[string]any{"type": "string"},
		},
		"required": []string{"risk_clauses", "action_advice"},
	}
}

func letterResponseSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"letter_content": map[string]any{"type": "string"},
		},
		"required": []string{"letter_content"},
	}
}
