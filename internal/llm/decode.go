package llm

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// DecodeReply turns model text into JSON that satisfies schema. Models wrap
// JSON in Markdown fences or add a sentence around it even when told not
// to, and some leave out a field whose value would be null. Both are
// tolerated here; anything else that breaks the schema is an
// *ErrInvalidResponse.
func DecodeReply(schema *Schema, text string) (json.RawMessage, error) {
	body := isolateObject(stripFence(text))
	if schema == nil {
		return json.RawMessage(body), nil
	}
	if body == "" {
		return nil, &ErrInvalidResponse{Err: fmt.Errorf("empty reply")}
	}

	var doc any
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return nil, &ErrInvalidResponse{Content: json.RawMessage(body), Err: fmt.Errorf("not JSON: %w", err)}
	}

	out := json.RawMessage(body)
	if obj, ok := doc.(map[string]any); ok && fillNulls(schema.Definition, obj) {
		filled, err := json.Marshal(obj)
		if err != nil {
			return nil, &ErrInvalidResponse{Content: out, Err: err}
		}
		out = filled
	}

	sch, err := compile(schema)
	if err != nil {
		return nil, &ErrInvalidResponse{Content: out, Err: fmt.Errorf("schema %q: %w", schema.Name, err)}
	}
	if err := sch.Validate(doc); err != nil {
		return nil, &ErrInvalidResponse{Content: out, Err: err}
	}
	return out, nil
}

// stripFence drops a ``` or ```json fence around s.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	rest, ok := strings.CutPrefix(s, "```")
	if !ok {
		return s
	}
	first, body, multiline := strings.Cut(rest, "\n")
	switch {
	case !multiline:
		body = strings.TrimPrefix(first, "json")
	case strings.ContainsAny(first, "{["):
		body = rest
	}
	if i := strings.LastIndex(body, "```"); i >= 0 {
		body = body[:i]
	}
	return strings.TrimSpace(body)
}

// isolateObject trims prose before the first '{' and after the last '}'.
func isolateObject(s string) string {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end < start {
		return s
	}
	return s[start : end+1]
}

// fillNulls sets required-but-absent nullable properties to null and
// reports whether obj changed.
func fillNulls(def map[string]any, obj map[string]any) bool {
	props, _ := def["properties"].(map[string]any)
	required, _ := def["required"].([]any)
	changed := false
	for _, r := range required {
		name, _ := r.(string)
		if _, present := obj[name]; present {
			continue
		}
		prop, _ := props[name].(map[string]any)
		if _, nullable := typeNames(prop); nullable {
			obj[name] = nil
			changed = true
		}
	}
	return changed
}

// typeNames splits a "type" keyword into its non-null names and whether
// null is allowed.
func typeNames(def map[string]any) (names []string, nullable bool) {
	switch t := def["type"].(type) {
	case string:
		names = []string{t}
	case []any:
		for _, v := range t {
			if s, ok := v.(string); ok {
				names = append(names, s)
			}
		}
	}
	if i := slices.Index(names, "null"); i >= 0 {
		return slices.Delete(names, i, i+1), true
	}
	return names, false
}

var schemaCache sync.Map // schema name -> *jsonschema.Schema

func compile(s *Schema) (*jsonschema.Schema, error) {
	if c, ok := schemaCache.Load(s.Name); ok {
		return c.(*jsonschema.Schema), nil
	}
	// The compiler wants plain decoded JSON, not Go-typed maps.
	raw, err := json.Marshal(s.Definition)
	if err != nil {
		return nil, err
	}
	def, err := jsonschema.UnmarshalJSON(strings.NewReader(string(raw)))
	if err != nil {
		return nil, err
	}
	url := "mem://" + s.Name + ".json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, def); err != nil {
		return nil, err
	}
	sch, err := c.Compile(url)
	if err != nil {
		return nil, err
	}
	schemaCache.Store(s.Name, sch)
	return sch, nil
}
