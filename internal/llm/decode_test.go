package llm

import (
	"encoding/json"
	"errors"
	"testing"
)

func fullVerdictSchema() *Schema {
	return &Schema{
		Name: "test-verdict-full",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"correcto":   map[string]any{"type": []any{"boolean", "null"}},
				"puntaje":    map[string]any{"type": "number", "minimum": 0},
				"comentario": map[string]any{"type": "string"},
				"nivel":      map[string]any{"type": "string", "enum": []any{"bajo", "medio", "alto"}},
				"conceptos_faltantes": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "string"},
				},
			},
			"required":             []any{"correcto", "puntaje"},
			"additionalProperties": false,
		},
	}
}

func TestDecodeReply(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"correcto":true,"puntaje":1}`, `{"correcto":true,"puntaje":1}`},
		{"null verdict", `{"correcto":null,"puntaje":0.5}`, `{"correcto":null,"puntaje":0.5}`},
		{"json fence", "```json\n{\"correcto\":false,\"puntaje\":0.2}\n```", `{"correcto":false,"puntaje":0.2}`},
		{"prose around object", "Aquí va:\n{\"correcto\":true,\"puntaje\":1}\nSaludos.", `{"correcto":true,"puntaje":1}`},
		{"omitted nullable filled", `{"puntaje":0.4}`, `{"correcto":null,"puntaje":0.4}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeReply(fullVerdictSchema(), tt.in)
			if err != nil {
				t.Fatalf("DecodeReply: %v", err)
			}
			if !sameJSON(t, got, tt.want) {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDecodeReplyRejects(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"missing non-nullable", `{"correcto":true}`},
		{"wrong type", `{"correcto":"sí","puntaje":1}`},
		{"below minimum", `{"correcto":true,"puntaje":-1}`},
		{"outside enum", `{"correcto":true,"puntaje":1,"nivel":"extremo"}`},
		{"wrong item type", `{"correcto":true,"puntaje":1,"conceptos_faltantes":[1,2]}`},
		{"extra field", `{"correcto":true,"puntaje":1,"nota":20}`},
		{"malformed", `{not json}`},
		{"empty", ``},
		{"only prose", `No puedo evaluar esto.`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeReply(fullVerdictSchema(), tt.in)
			var inv *ErrInvalidResponse
			if !errors.As(err, &inv) {
				t.Fatalf("expected ErrInvalidResponse, got %T (%v)", err, err)
			}
		})
	}
}

func TestDecodeReplyWithoutSchema(t *testing.T) {
	got, err := DecodeReply(nil, "```\n{\"anything\":\"goes\"}\n```")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != `{"anything":"goes"}` {
		t.Fatalf("got %s", got)
	}
}

func TestStripFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"whitespace", "  {\"a\":1}\n", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"upper info", "```JSON\n{\"a\":1}\n```", `{"a":1}`},
		{"one line", "```json{\"a\":1}```", `{"a":1}`},
		{"object on fence line", "```{\"a\":1}\n```", `{"a":1}`},
		{"unterminated", "```json\n{\"a\":1}", `{"a":1}`},
		{"text after fence", "```json\n{\"a\":1}\n```\nEspero que ayude.", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripFence(tt.in); got != tt.want {
				t.Errorf("stripFence(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTypeNames(t *testing.T) {
	names, nullable := typeNames(map[string]any{"type": []any{"null", "boolean"}})
	if !nullable || len(names) != 1 || names[0] != "boolean" {
		t.Fatalf("got %v nullable=%v", names, nullable)
	}
	names, nullable = typeNames(map[string]any{"type": "string"})
	if nullable || len(names) != 1 || names[0] != "string" {
		t.Fatalf("got %v nullable=%v", names, nullable)
	}
	if names, _ := typeNames(map[string]any{}); len(names) != 0 {
		t.Fatalf("expected no names for a typeless schema, got %v", names)
	}
}

func sameJSON(t *testing.T, got json.RawMessage, want string) bool {
	t.Helper()
	var a, b any
	if err := json.Unmarshal(got, &a); err != nil {
		t.Fatalf("decode %s: %v", got, err)
	}
	if err := json.Unmarshal([]byte(want), &b); err != nil {
		t.Fatalf("decode %s: %v", want, err)
	}
	ja, _ := json.Marshal(a)
	jb, _ := json.Marshal(b)
	return string(ja) == string(jb)
}
