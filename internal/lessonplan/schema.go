package lessonplan

// planSchemaName keys the compiled-schema cache.
const planSchemaName = "lesson-plan"

var stringList = map[string]any{
	"type":  "array",
	"items": map[string]any{"type": "string"},
}

// planSchema is the JSON schema a lesson plan document must satisfy.
var planSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"topic": map[string]any{
			"type":      "string",
			"minLength": 1,
		},
		"difficulty": map[string]any{"type": "string"},
		"concepts": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"title":          map[string]any{"type": "string", "minLength": 1},
					"explanation":    map[string]any{"type": "string"},
					"examples":       stringList,
					"checkQuestions": stringList,
				},
				"required":             []any{"title"},
				"additionalProperties": false,
			},
		},
		"exercises": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"question": map[string]any{"type": "string", "minLength": 1},
					"type": map[string]any{
						"type": "string",
						"enum": []any{"multiple-choice", "open-ended", "code", "problem-solving"},
					},
					"options":       stringList,
					"correctAnswer": map[string]any{"type": "string"},
					"hints":         stringList,
				},
				"required":             []any{"question", "type"},
				"additionalProperties": false,
				// Multiple choice needs something to choose from.
				"if": map[string]any{
					"properties": map[string]any{"type": map[string]any{"const": "multiple-choice"}},
				},
				"then": map[string]any{
					"properties": map[string]any{
						"options": map[string]any{"minItems": 2},
					},
					"required": []any{"options", "correctAnswer"},
				},
			},
		},
		"quiz": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"question":      map[string]any{"type": "string", "minLength": 1},
					"options":       stringList,
					"correctAnswer": map[string]any{"type": "string", "minLength": 1},
					"explanation":   map[string]any{"type": "string"},
				},
				"required":             []any{"question", "correctAnswer"},
				"additionalProperties": false,
			},
		},
	},
	"required":             []any{"topic"},
	"additionalProperties": false,
}
