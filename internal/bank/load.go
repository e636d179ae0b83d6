package bank

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

// ErrEmptyBank is returned when a bank file holds no questions.
var ErrEmptyBank = errors.New("question bank is empty")

// Format is the encoding of a bank file.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// SupportedMajor is the bank file major version this build understands.
const SupportedMajor = "v1"

// FormatFromPath picks the decoder from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unsupported bank file extension %q (want .json, .yaml or .yml)", filepath.Ext(path))
}

// Load reads, decodes and validates the bank file at path.
// A missing file, a decode failure, an invalid record or an empty bank are
// all errors.
func Load(path string) ([]Question, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read question bank: %w", err)
	}
	qs, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(qs) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyBank)
	}
	if err := Validate(qs); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return qs, nil
}

// envelope is the versioned bank file layout. A bare list of records is
// also accepted.
type envelope struct {
	Version   string   `json:"version" yaml:"version"`
	Questions []record `json:"questions" yaml:"questions"`
}

type record struct {
	ID          string    `json:"id" yaml:"id"`
	Topic       string    `json:"tema" yaml:"tema"`
	Level       int       `json:"nivel" yaml:"nivel"`
	Type        string    `json:"tipo" yaml:"tipo"`
	Prompt      string    `json:"enunciado" yaml:"enunciado"`
	Options     optionMap `json:"opciones" yaml:"opciones"`
	Correct     string    `json:"correcta" yaml:"correcta"`
	KeyConcepts []string  `json:"clave" yaml:"clave"`
	Explanation string    `json:"explicacion" yaml:"explicacion"`
	Analogy     string    `json:"analogia" yaml:"analogia"`
}

// Parse decodes bank records without validating them.
func Parse(data []byte, format Format) ([]Question, error) {
	var (
		env envelope
		err error
	)
	switch format {
	case FormatJSON:
		env, err = decodeJSON(data)
	case FormatYAML:
		env, err = decodeYAML(data)
	default:
		return nil, fmt.Errorf("unknown bank format %q", format)
	}
	if err != nil {
		return nil, err
	}
	if err := checkVersion(env.Version); err != nil {
		return nil, err
	}

	qs := make([]Question, 0, len(env.Questions))
	for _, r := range env.Questions {
		qs = append(qs, r.question())
	}
	return qs, nil
}

func decodeJSON(data []byte) (envelope, error) {
	var env envelope
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return env, fmt.Errorf("decode json: %w", err)
		}
		return env, nil
	}
	if err := json.Unmarshal(trimmed, &env.Questions); err != nil {
		return env, fmt.Errorf("decode json: %w", err)
	}
	return env, nil
}

func decodeYAML(data []byte) (envelope, error) {
	var env envelope
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return env, fmt.Errorf("decode yaml: %w", err)
	}
	if len(root.Content) == 0 {
		return env, nil
	}
	doc := root.Content[0]
	var err error
	if doc.Kind == yaml.MappingNode {
		err = doc.Decode(&env)
	} else {
		err = doc.Decode(&env.Questions)
	}
	if err != nil {
		return env, fmt.Errorf("decode yaml: %w", err)
	}
	return env, nil
}

func checkVersion(v string) error {
	if v == "" {
		return nil
	}
	if !semver.IsValid(v) {
		return fmt.Errorf("bank version %q is not a valid semantic version", v)
	}
	if semver.Major(v) != SupportedMajor {
		return fmt.Errorf("bank version %s is not supported (want %s.x.y)", v, SupportedMajor)
	}
	return nil
}

func parseKind(tipo string) Kind {
	switch strings.ToLower(strings.TrimSpace(tipo)) {
	case "mc":
		return KindChoice
	case "tf":
		return KindTrueFalse
	case "analogy", "analogia", "analogía":
		return KindAnalogy
	default:
		return KindOpen
	}
}

func (r record) question() Question {
	q := Question{
		ID:          strings.TrimSpace(r.ID),
		Topic:       strings.TrimSpace(r.Topic),
		Level:       r.Level,
		Kind:        parseKind(r.Type),
		Prompt:      r.Prompt,
		Explanation: r.Explanation,
		Analogy:     r.Analogy,
	}
	switch q.Kind {
	case KindChoice:
		opts := []Option(r.Options)
		q.Choice = &Choice{Options: opts, Correct: canonicalLabel(opts, r.Correct)}
	case KindTrueFalse:
		if len(r.Options) > 0 {
			opts := []Option(r.Options)
			q.TrueFalse = &TrueFalse{Pair: opts, Correct: canonicalLabel(opts, r.Correct)}
		} else {
			q.TrueFalse = &TrueFalse{Correct: trueFalseLabel(r.Correct)}
		}
	case KindOpen, KindAnalogy:
		q.Essay = &Essay{KeyConcepts: r.KeyConcepts}
	}
	return q
}

// canonicalLabel returns the option label matching correct regardless of
// case, or correct unchanged when none matches.
func canonicalLabel(opts []Option, correct string) string {
	if l, ok := findLabel(opts, correct); ok {
		return l
	}
	return strings.TrimSpace(correct)
}

// trueFalseLabel maps the spellings banks use for true and false to V and F.
func trueFalseLabel(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "v", "verdadero", "cierto", "true", "t":
		return "V"
	case "f", "falso", "false":
		return "F"
	}
	return strings.ToUpper(strings.TrimSpace(s))
}

// listLabel is the label given to the i-th option of a list.
func listLabel(i int) string {
	return string(rune('a' + i))
}

// optionMap decodes a label→text mapping while keeping the file order.
type optionMap []Option

func (m *optionMap) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		return nil
	}
	d, ok := tok.(json.Delim)
	if !ok || (d != '{' && d != '[') {
		return fmt.Errorf("opciones: expected object or list, got %v", tok)
	}
	var out []Option
	if d == '[' {
		for i := 0; dec.More(); i++ {
			var text string
			if err := dec.Decode(&text); err != nil {
				return fmt.Errorf("opciones[%d]: %w", i, err)
			}
			out = append(out, Option{Label: listLabel(i), Text: text})
		}
		if _, err := dec.Token(); err != nil {
			return err
		}
		*m = out
		return nil
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("opciones: unexpected key %v", keyTok)
		}
		var text string
		if err := dec.Decode(&text); err != nil {
			return fmt.Errorf("opciones[%s]: %w", key, err)
		}
		out = append(out, Option{Label: key, Text: text})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*m = out
	return nil
}

func (m *optionMap) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.SequenceNode {
		out := make([]Option, 0, len(node.Content))
		for i, item := range node.Content {
			out = append(out, Option{Label: listLabel(i), Text: item.Value})
		}
		*m = out
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("opciones: expected mapping or list at line %d", node.Line)
	}
	out := make([]Option, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		out = append(out, Option{Label: node.Content[i].Value, Text: node.Content[i+1].Value})
	}
	*m = out
	return nil
}
