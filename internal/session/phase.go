package session

// Phase is the adaptive state of the active topic.
type Phase int

const (
	PhaseNew                 Phase = iota // origin question on screen
	PhaseRaised                           // promoted question on screen
	PhaseAnchor                           // remedial question on screen
	PhaseRetry                            // origin question offered again
	PhaseAwaitingPromotion                // harder question ready
	PhaseAwaitingRemediation              // easier question ready
	PhaseAwaitingRetry                    // origin question ready again
	PhaseTopicDone
)

var phaseNames = [...]string{
	PhaseNew:                 "NEW",
	PhaseRaised:              "RAISED",
	PhaseAnchor:              "ANCHOR",
	PhaseRetry:               "RETRY",
	PhaseAwaitingPromotion:   "AWAITING_PROMOTION",
	PhaseAwaitingRemediation: "AWAITING_REMEDIATION",
	PhaseAwaitingRetry:       "AWAITING_RETRY",
	PhaseTopicDone:           "TOPIC_DONE",
}

func (p Phase) String() string {
	if p >= 0 && int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return "UNKNOWN"
}

// Answering reports whether a question is waiting for the learner.
func (p Phase) Answering() bool {
	switch p {
	case PhaseNew, PhaseRaised, PhaseAnchor, PhaseRetry:
		return true
	}
	return false
}

// Label is the step caption shown above the question.
func (p Phase) Label() string {
	switch p {
	case PhaseRaised:
		return "⬆ NIVEL SUPERIOR"
	case PhaseAnchor:
		return "🔽 APOYO"
	case PhaseRetry:
		return "🔄 SEGUNDA OPORTUNIDAD"
	}
	return ""
}

// Action is the side effect a transition asks the orchestrator to perform.
type Action int

const (
	ActionNone Action = iota
	ActionPromote
	ActionRemediate
	ActionRetryOrigin
)

func (a Action) String() string {
	switch a {
	case ActionPromote:
		return "promote"
	case ActionRemediate:
		return "remediate"
	case ActionRetryOrigin:
		return "retry-origin"
	}
	return "none"
}

// Transition returns the phase following an answer graded correct or not
// in phase p. A topic gets at most one promotion and one remediation
// detour. Phases that do not take answers are returned unchanged.
func Transition(p Phase, correct bool) (Phase, Action) {
	switch p {
	case PhaseNew:
		if correct {
			return PhaseAwaitingPromotion, ActionPromote
		}
		return PhaseAwaitingRemediation, ActionRemediate
	case PhaseAnchor:
		if correct {
			return PhaseAwaitingRetry, ActionRetryOrigin
		}
		return PhaseTopicDone, ActionNone
	case PhaseRetry:
		if correct {
			return PhaseAwaitingPromotion, ActionPromote
		}
		return PhaseTopicDone, ActionNone
	case PhaseRaised:
		return PhaseTopicDone, ActionNone
	}
	return p, ActionNone
}

// Step is what the next Continue call will do.
type Step int

const (
	StepNone Step = iota // a question is waiting for an answer
	StepPromote
	StepRemediate
	StepRetry
	StepNextTopic
	StepFinish
)

// Label is the learner-facing caption of the continue action.
func (s Step) Label() string {
	switch s {
	case StepPromote:
		return "🔼 Subir dificultad"
	case StepRemediate:
		return "🔽 Pregunta de apoyo"
	case StepRetry:
		return "🔄 Retomar pregunta original"
	case StepNextTopic:
		return "➡️ Siguiente tema"
	case StepFinish:
		return "🏁 Ver resultados"
	}
	return ""
}
