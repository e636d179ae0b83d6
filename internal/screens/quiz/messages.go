package quiz

import (
	"github.com/abhisek/adaptiq/internal/grading"
)

// gradedMsg is sent when the grader has scored the submitted answer.
type gradedMsg struct {
	Verdict grading.Verdict
	Answer  string
	Err     error
}
