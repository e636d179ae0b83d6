package bank

import (
	"fmt"
	"strings"
)

// Validate performs all structural checks on the given questions.
// Returns a combined error describing all problems found, or nil if valid.
func Validate(qs []Question) error {
	var errs []string

	ids := make(map[string]bool, len(qs))
	for i, q := range qs {
		ref := q.ID
		if ref == "" {
			ref = fmt.Sprintf("#%d", i+1)
			errs = append(errs, fmt.Sprintf("question %s has no id", ref))
		} else if ids[q.ID] {
			errs = append(errs, fmt.Sprintf("duplicate question ID: %q", q.ID))
		}
		ids[q.ID] = true

		if q.Topic == "" {
			errs = append(errs, fmt.Sprintf("question %s has no topic", ref))
		}
		if q.Level < MinLevel || q.Level > MaxLevel {
			errs = append(errs, fmt.Sprintf("question %s has level %d, want %d-%d", ref, q.Level, MinLevel, MaxLevel))
		}
		if strings.TrimSpace(q.Prompt) == "" {
			errs = append(errs, fmt.Sprintf("question %s has an empty prompt", ref))
		}

		switch q.Kind {
		case KindChoice:
			switch {
			case q.Choice == nil || len(q.Choice.Options) == 0:
				errs = append(errs, fmt.Sprintf("question %s is multiple choice but has no options", ref))
			case q.Choice.Correct == "":
				errs = append(errs, fmt.Sprintf("question %s has no correct option", ref))
			case !q.Choice.HasLabel(q.Choice.Correct):
				errs = append(errs, fmt.Sprintf("question %s: correct option %q is not among its options", ref, q.Choice.Correct))
			}
		case KindTrueFalse:
			switch {
			case q.TrueFalse == nil:
				errs = append(errs, fmt.Sprintf("question %s is true/false but has no answer", ref))
			case len(q.TrueFalse.Pair) > 0 && len(q.TrueFalse.Pair) != 2:
				errs = append(errs, fmt.Sprintf("question %s is true/false but lists %d options", ref, len(q.TrueFalse.Pair)))
			case len(q.TrueFalse.Pair) == 0 && trueFalseLabel(q.TrueFalse.Correct) != "V" && trueFalseLabel(q.TrueFalse.Correct) != "F":
				errs = append(errs, fmt.Sprintf("question %s is true/false but its answer %q is neither true nor false", ref, q.TrueFalse.Correct))
			case len(q.TrueFalse.Pair) == 2:
				if _, ok := findLabel(q.TrueFalse.Pair, q.TrueFalse.Correct); !ok {
					errs = append(errs, fmt.Sprintf("question %s: correct option %q is not among its options", ref, q.TrueFalse.Correct))
				}
			}
		case KindOpen, KindAnalogy:
			if q.Essay == nil || len(q.Essay.KeyConcepts) == 0 {
				errs = append(errs, fmt.Sprintf("question %s is free-form but lists no key concepts", ref))
			}
		default:
			errs = append(errs, fmt.Sprintf("question %s has unknown kind %q", ref, q.Kind))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("question bank validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}
