// Package bank holds the question bank: the immutable question records, the
// loader for the on-disk bank file, and the topic/level index the session
// draws questions from.
package bank

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// Kind identifies the question variant.
type Kind string

const (
	KindChoice    Kind = "mc"
	KindTrueFalse Kind = "tf"
	KindOpen      Kind = "open"
	KindAnalogy   Kind = "analogy"
)

// AllKinds lists every question kind in display order.
var AllKinds = []Kind{KindChoice, KindTrueFalse, KindOpen, KindAnalogy}

// IsFixed reports whether answers to this kind are graded by exact match.
func (k Kind) IsFixed() bool {
	switch k {
	case KindChoice, KindTrueFalse:
		return true
	case KindOpen, KindAnalogy:
		return false
	}
	return false
}

// DisplayName returns the learner-facing name of the kind.
func (k Kind) DisplayName() string {
	switch k {
	case KindChoice:
		return "Opción múltiple"
	case KindTrueFalse:
		return "Verdadero / Falso"
	case KindOpen:
		return "Respuesta abierta"
	case KindAnalogy:
		return "Analogía"
	}
	return string(k)
}

// Level bounds.
const (
	MinLevel = 1
	MaxLevel = 3
)

// Option is one labelled answer of a fixed-choice question.
type Option struct {
	Label string
	Text  string
}

// Choice is the payload of a multiple-choice question.
type Choice struct {
	Options []Option
	Correct string
}

// HasLabel reports whether label is one of the options, ignoring case.
func (c *Choice) HasLabel(label string) bool {
	_, ok := findLabel(c.Options, label)
	return ok
}

// TrueFalse is the payload of a true/false question. Correct is "V" or "F"
// unless the bank supplies its own Pair of options.
type TrueFalse struct {
	Pair    []Option
	Correct string
}

// Options returns the two options shown for a true/false question.
func (tf *TrueFalse) Options() []Option {
	if len(tf.Pair) > 0 {
		return tf.Pair
	}
	return []Option{
		{Label: "V", Text: "Verdadero"},
		{Label: "F", Text: "Falso"},
	}
}

// findLabel returns the option label matching label under case folding.
func findLabel(opts []Option, label string) (string, bool) {
	fold := cases.Fold()
	want := fold.String(strings.TrimSpace(label))
	if want == "" {
		return "", false
	}
	for _, o := range opts {
		if fold.String(strings.TrimSpace(o.Label)) == want {
			return o.Label, true
		}
	}
	return "", false
}

// Essay is the payload of free-form and analogy questions.
type Essay struct {
	KeyConcepts []string
}

// Question is an immutable bank record. Exactly one of Choice, TrueFalse and
// Essay is set, matching Kind.
type Question struct {
	ID     string
	Topic  string
	Level  int
	Kind   Kind
	Prompt string

	// Explanation is the model answer shown after grading.
	Explanation string

	// Analogy is an optional reference scenario shown with the prompt.
	Analogy string

	Choice    *Choice
	TrueFalse *TrueFalse
	Essay     *Essay
}

// CorrectLabel returns the expected label for fixed-form questions and ""
// for free-form ones.
func (q Question) CorrectLabel() string {
	switch q.Kind {
	case KindChoice:
		if q.Choice != nil {
			return q.Choice.Correct
		}
	case KindTrueFalse:
		if q.TrueFalse != nil {
			if len(q.TrueFalse.Pair) > 0 {
				return q.TrueFalse.Correct
			}
			return trueFalseLabel(q.TrueFalse.Correct)
		}
	case KindOpen, KindAnalogy:
	}
	return ""
}

// Options returns the selectable options for fixed-form questions.
func (q Question) Options() []Option {
	switch q.Kind {
	case KindChoice:
		if q.Choice != nil {
			return q.Choice.Options
		}
	case KindTrueFalse:
		if q.TrueFalse != nil {
			return q.TrueFalse.Options()
		}
	case KindOpen, KindAnalogy:
	}
	return nil
}

// KeyConcepts returns the expected key concepts of a free-form question.
func (q Question) KeyConcepts() []string {
	if q.Essay == nil {
		return nil
	}
	return q.Essay.KeyConcepts
}

func (q Question) String() string {
	return fmt.Sprintf("%s [%s L%d %s]", q.ID, q.Topic, q.Level, q.Kind)
}

// LevelName returns the badge text for a difficulty level.
func LevelName(level int) string {
	switch level {
	case 1:
		return "FÁCIL"
	case 2:
		return "MEDIO"
	case 3:
		return "DIFÍCIL"
	}
	return fmt.Sprintf("NIVEL %d", level)
}
