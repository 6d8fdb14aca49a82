package course

// courseJSONSchema is the JSON Schema the model response is validated against
// before decoding. Kept in sync with the Course struct tags.
const courseJSONSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["title", "outline", "lessons", "lessonSummaries", "summary", "quiz"],
	"properties": {
		"title": {"type": "string", "minLength": 1},
		"outline": {
			"type": "array",
			"minItems": 1,
			"items": {"type": "string"}
		},
		"lessons": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["title", "content"],
				"properties": {
					"title": {"type": "string"},
					"content": {"type": "string"}
				}
			}
		},
		"lessonSummaries": {
			"type": "array",
			"items": {"type": "string"}
		},
		"summary": {"type": "string"},
		"quiz": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["question", "type", "options", "correctAnswer"],
				"properties": {
					"question": {"type": "string"},
					"type": {"type": "string", "enum": ["multiple-choice", "true-false"]},
					"options": {
						"type": "array",
						"minItems": 1,
						"items": {"type": "string"}
					},
					"correctAnswer": {"type": "string"}
				}
			}
		}
	}
}`

// geminiResponseSchema is the same shape in the Gemini structured-output
// dialect (uppercase type names), sent as generationConfig.responseSchema.
func geminiResponseSchema() map[string]any {
	lesson := map[string]any{
		"type":     "OBJECT",
		"required": []string{"title", "content"},
		"properties": map[string]any{
			"title":   map[string]any{"type": "STRING"},
			"content": map[string]any{"type": "STRING"},
		},
	}
	quizItem := map[string]any{
		"type":     "OBJECT",
		"required": []string{"question", "type", "options", "correctAnswer"},
		"properties": map[string]any{
			"question":      map[string]any{"type": "STRING"},
			"type":          map[string]any{"type": "STRING", "enum": []string{TypeMultipleChoice, TypeTrueFalse}},
			"options":       map[string]any{"type": "ARRAY", "items": map[string]any{"type": "STRING"}},
			"correctAnswer": map[string]any{"type": "STRING"},
		},
	}
	return map[string]any{
		"type":     "OBJECT",
		"required": []string{"title", "outline", "lessons", "lessonSummaries", "summary", "quiz"},
		"properties": map[string]any{
			"title":           map[string]any{"type": "STRING"},
			"outline":         map[string]any{"type": "ARRAY", "items": map[string]any{"type": "STRING"}},
			"lessons":         map[string]any{"type": "ARRAY", "items": lesson},
			"lessonSummaries": map[string]any{"type": "ARRAY", "items": map[string]any{"type": "STRING"}},
			"summary":         map[string]any{"type": "STRING"},
			"quiz":            map[string]any{"type": "ARRAY", "items": quizItem},
		},
	}
}
