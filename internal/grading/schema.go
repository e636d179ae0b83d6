package grading

import "github.com/abhisek/adaptiq/internal/llm"

// VerdictSchema is the JSON schema the judge reply must satisfy.
var VerdictSchema = &llm.Schema{
	Name:        "judge-verdict",
	Description: "Evaluation of a learner's free-form answer against the key concepts of the question",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"correcto": map[string]any{
				"type":        []any{"boolean", "null"},
				"description": "Whether the answer is correct, or null when it cannot be decided",
			},
			"puntaje": map[string]any{
				"type":        "number",
				"description": "Score between 0.0 and 1.0",
			},
			"comentario": map[string]any{
				"type":        "string",
				"description": "Two or three sentences of feedback in Spanish",
			},
			"repregunta": map[string]any{
				"type":        "string",
				"description": "A Socratic follow-up question in Spanish",
			},
			"conceptos_faltantes": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Key concepts missing from the answer",
			},
		},
		"required":             []any{"correcto", "puntaje", "comentario", "repregunta", "conceptos_faltantes"},
		"additionalProperties": false,
	},
}
