package grading

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/abhisek/adaptiq/internal/bank"
	"github.com/abhisek/adaptiq/internal/llm"
)

// JudgeConfig holds configuration for the language-model judge.
type JudgeConfig struct {
	// Subject names the course in the grading rubric.
	Subject string

	MaxTokens   int
	Temperature float64

	// Timeout bounds one evaluation, retries included.
	Timeout time.Duration
}

// DefaultJudgeConfig returns sensible defaults.
func DefaultJudgeConfig() JudgeConfig {
	return JudgeConfig{
		Subject:     "Sistemas Operativos",
		MaxTokens:   500,
		Temperature: 0,
		Timeout:     20 * time.Second,
	}
}

// Judge grades free-form answers with a language model.
type Judge struct {
	provider llm.Provider
	cfg      JudgeConfig
}

// NewJudge creates a judge backed by provider. Zero config fields take
// their defaults.
func NewJudge(provider llm.Provider, cfg JudgeConfig) *Judge {
	def := DefaultJudgeConfig()
	if cfg.Subject == "" {
		cfg.Subject = def.Subject
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = def.MaxTokens
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	return &Judge{provider: provider, cfg: cfg}
}

// judgeOutput is the raw judge reply.
type judgeOutput struct {
	Correct         *bool    `json:"correcto"`
	Score           *float64 `json:"puntaje"`
	Comment         *string  `json:"comentario"`
	FollowUp        *string  `json:"repregunta"`
	MissingConcepts []string `json:"conceptos_faltantes"`
}

// Evaluate asks the judge to grade answer. Any failure, including the
// timeout, is returned as an error; the caller decides on the fallback.
func (j *Judge) Evaluate(ctx context.Context, q bank.Question, answer string) (Verdict, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeGrading)
	ctx, cancel := context.WithTimeout(ctx, j.cfg.Timeout)
	defer cancel()

	userMsg, err := buildJudgeMessage(q, answer)
	if err != nil {
		return Verdict{}, fmt.Errorf("build judge prompt: %w", err)
	}
	system, err := buildJudgeSystem(j.cfg.Subject)
	if err != nil {
		return Verdict{}, fmt.Errorf("build judge system prompt: %w", err)
	}

	resp, err := j.provider.Generate(ctx, llm.Request{
		System: system,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: userMsg},
		},
		Schema:      VerdictSchema,
		MaxTokens:   j.cfg.MaxTokens,
		Temperature: j.cfg.Temperature,
	})
	if err != nil {
		return Verdict{}, fmt.Errorf("judge request failed: %w", err)
	}

	return parseVerdict(resp.Content)
}

// parseVerdict strictly decodes a judge reply. Providers already decode
// with the schema; the mock hands replies through untouched, so it is done
// again here.
func parseVerdict(raw json.RawMessage) (Verdict, error) {
	content, err := llm.DecodeReply(VerdictSchema, string(raw))
	if err != nil {
		return Verdict{}, err
	}

	var out judgeOutput
	dec := json.NewDecoder(bytes.NewReader(content))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		return Verdict{}, fmt.Errorf("decode judge verdict: %w", err)
	}
	if out.Score == nil || out.Comment == nil || out.FollowUp == nil || out.MissingConcepts == nil {
		return Verdict{}, errors.New("judge verdict is missing a required field")
	}

	return Verdict{
		Correct:         out.Correct,
		Score:           clamp(*out.Score),
		Feedback:        *out.Comment,
		FollowUp:        *out.FollowUp,
		MissingConcepts: out.MissingConcepts,
	}, nil
}

var judgeSystemTemplate = template.Must(template.New("judge-system").Parse(
	`Eres profesor experto en {{.}}. Responde SOLO con JSON válido, sin backticks.`))

func buildJudgeSystem(subject string) (string, error) {
	var buf bytes.Buffer
	if err := judgeSystemTemplate.Execute(&buf, subject); err != nil {
		return "", err
	}
	return buf.String(), nil
}

var judgeUserTemplate = template.Must(template.New("judge").Parse(`Evalúa esta respuesta.
PREGUNTA: {{.Prompt}}
{{- if .Analogy}}
ANALOGÍA DE REFERENCIA: {{.Analogy}}
{{- end}}
RESPUESTA: {{.Answer}}
CONCEPTOS CLAVE: {{.KeyConcepts}}
{{- if .ModelAnswer}}
RESPUESTA MODELO: {{.ModelAnswer}}
{{- end}}
Retorna SOLO este JSON:
{"correcto":true/false,"puntaje":0.0-1.0,"comentario":"2-3 oraciones en español","repregunta":"pregunta socrática de seguimiento","conceptos_faltantes":["lista"]}`))

type judgeInput struct {
	Prompt      string
	Analogy     string
	Answer      string
	KeyConcepts string
	ModelAnswer string
}

func buildJudgeMessage(q bank.Question, answer string) (string, error) {
	in := judgeInput{
		Prompt:      q.Prompt,
		Answer:      answer,
		KeyConcepts: strings.Join(q.KeyConcepts(), ", "),
	}
	switch q.Kind {
	case bank.KindAnalogy:
		// Analogy prompts omit the model answer.
		in.Analogy = q.Analogy
	case bank.KindOpen, bank.KindChoice, bank.KindTrueFalse:
		in.ModelAnswer = q.Explanation
	}

	var buf bytes.Buffer
	if err := judgeUserTemplate.Execute(&buf, in); err != nil {
		return "", err
	}
	return buf.String(), nil
}
