package grading

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/adaptiq/internal/bank"
	"github.com/abhisek/adaptiq/internal/llm"
)

func choiceQuestion() bank.Question {
	return bank.Question{
		ID: "PRO-2", Topic: "Procesos", Level: 2, Kind: bank.KindChoice,
		Prompt:      "¿Qué estructura guarda el estado de un proceso?",
		Explanation: "El PCB guarda el contexto.",
		Choice: &bank.Choice{
			Options: []bank.Option{{Label: "A", Text: "La TLB"}, {Label: "B", Text: "El PCB"}},
			Correct: "B",
		},
	}
}

func openQuestion() bank.Question {
	return bank.Question{
		ID: "PRO-3", Topic: "Procesos", Level: 3, Kind: bank.KindOpen,
		Prompt:      "Explica qué ocurre durante un cambio de contexto.",
		Explanation: "El núcleo guarda los registros en el PCB.",
		Essay:       &bank.Essay{KeyConcepts: []string{"registros", "PCB", "planificador"}},
	}
}

func analogyQuestion() bank.Question {
	return bank.Question{
		ID: "MEM-2", Topic: "Memoria", Level: 2, Kind: bank.KindAnalogy,
		Prompt:      "Relaciona la memoria virtual con una biblioteca.",
		Analogy:     "Una biblioteca con pocos escritorios y un gran depósito.",
		Explanation: "Las páginas se traen del disco bajo demanda.",
		Essay:       &bank.Essay{KeyConcepts: []string{"paginación", "swap"}},
	}
}

const goodVerdict = `{"correcto":true,"puntaje":0.9,"comentario":"Bien explicado.","repregunta":"¿Y el TLB?","conceptos_faltantes":["planificador"]}`

func TestScoreFixedChoice(t *testing.T) {
	g := NewGrader(nil, 0)
	q := choiceQuestion()

	tests := []struct {
		answer string
		want   bool
	}{
		{"B", true},
		{"b", true},
		{"  b \n", true},
		{"A", false},
		{"", false},
		{"El PCB", false},
	}
	for _, tt := range tests {
		v := g.Score(context.Background(), q, tt.answer)
		require.NotNil(t, v.Correct, tt.answer)
		assert.Equal(t, tt.want, *v.Correct, "answer %q", tt.answer)
		if tt.want {
			assert.Equal(t, 1.0, v.Score)
		} else {
			assert.Equal(t, 0.0, v.Score)
		}
		assert.False(t, v.Degraded)
		assert.Equal(t, q.Explanation, v.Feedback)
	}
}

func TestScoreTrueFalse(t *testing.T) {
	g := NewGrader(nil, 0)
	q := bank.Question{ID: "t", Topic: "T", Level: 1, Kind: bank.KindTrueFalse,
		Prompt: "p", TrueFalse: &bank.TrueFalse{Correct: "F"}}

	v := g.Score(context.Background(), q, "f")
	assert.True(t, g.Effective(v))

	v = g.Score(context.Background(), q, "V")
	assert.False(t, g.Effective(v))
}

func TestEffective(t *testing.T) {
	yes, no := true, false
	tests := []struct {
		name string
		v    Verdict
		want bool
	}{
		{"explicit true beats low score", Verdict{Correct: &yes, Score: 0.1}, true},
		{"explicit false beats high score", Verdict{Correct: &no, Score: 0.9}, false},
		{"undetermined at threshold", Verdict{Score: 0.6}, true},
		{"undetermined below threshold", Verdict{Score: 0.59}, false},
		{"fallback is below threshold", Verdict{Score: FallbackScore}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Effective(tt.v, DefaultPassThreshold))
		})
	}
}

func TestNewGraderThreshold(t *testing.T) {
	assert.Equal(t, DefaultPassThreshold, NewGrader(nil, 0).Threshold())
	assert.Equal(t, DefaultPassThreshold, NewGrader(nil, 1.5).Threshold())
	assert.Equal(t, 0.4, NewGrader(nil, 0.4).Threshold())
	assert.True(t, NewGrader(nil, 0.4).Effective(Verdict{Score: FallbackScore}))
}

func TestJudgeWellFormed(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(goodVerdict)})
	g := NewGrader(NewJudge(mock, DefaultJudgeConfig()), 0)

	v := g.Score(context.Background(), openQuestion(), "Se guardan los registros en el PCB")
	require.NotNil(t, v.Correct)
	assert.True(t, *v.Correct)
	assert.Equal(t, 0.9, v.Score)
	assert.Equal(t, "Bien explicado.", v.Feedback)
	assert.Equal(t, "¿Y el TLB?", v.FollowUp)
	assert.Equal(t, []string{"planificador"}, v.MissingConcepts)
	assert.False(t, v.Degraded)

	require.Equal(t, 1, mock.CallCount())
	req := mock.Calls[0]
	assert.Equal(t, VerdictSchema, req.Schema)
	assert.Contains(t, req.System, "JSON")
	require.Len(t, req.Messages, 1)
	msg := req.Messages[0].Content
	assert.Contains(t, msg, "PREGUNTA: Explica qué ocurre durante un cambio de contexto.")
	assert.Contains(t, msg, "RESPUESTA: Se guardan los registros en el PCB")
	assert.Contains(t, msg, "CONCEPTOS CLAVE: registros, PCB, planificador")
	assert.Contains(t, msg, "RESPUESTA MODELO: El núcleo guarda los registros en el PCB.")
}

func TestJudgeFencedReply(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage("```json\n" + goodVerdict + "\n```")})
	j := NewJudge(mock, DefaultJudgeConfig())

	v, err := j.Evaluate(context.Background(), openQuestion(), "respuesta")
	require.NoError(t, err)
	assert.Equal(t, 0.9, v.Score)
}

func TestJudgeNullCorrectUsesThreshold(t *testing.T) {
	reply := `{"correcto":null,"puntaje":0.7,"comentario":"Parcial.","repregunta":"¿Por qué?","conceptos_faltantes":[]}`
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(reply)})
	g := NewGrader(NewJudge(mock, DefaultJudgeConfig()), 0)

	v := g.Score(context.Background(), openQuestion(), "respuesta")
	assert.Nil(t, v.Correct)
	assert.False(t, v.Degraded)
	assert.Empty(t, v.MissingConcepts)
	assert.True(t, g.Effective(v))
}

func TestJudgeToleratesFenceAndOmittedVerdict(t *testing.T) {
	reply := "Claro:\n```json\n" + `{"puntaje":0.4,"comentario":"Incompleta.","repregunta":"¿Y el PCB?","conceptos_faltantes":["PCB"]}` + "\n```"
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(reply)})
	g := NewGrader(NewJudge(mock, DefaultJudgeConfig()), 0)

	v := g.Score(context.Background(), openQuestion(), "respuesta")
	assert.False(t, v.Degraded)
	assert.Nil(t, v.Correct)
	assert.Equal(t, 0.4, v.Score)
	assert.Equal(t, []string{"PCB"}, v.MissingConcepts)
}

func TestJudgeClampsScore(t *testing.T) {
	for _, tt := range []struct {
		score string
		want  float64
	}{
		{"1.7", 1},
		{"-0.3", 0},
	} {
		reply := `{"correcto":true,"puntaje":` + tt.score + `,"comentario":"c","repregunta":"r","conceptos_faltantes":[]}`
		mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(reply)})
		v, err := NewJudge(mock, DefaultJudgeConfig()).Evaluate(context.Background(), openQuestion(), "x")
		require.NoError(t, err)
		assert.Equal(t, tt.want, v.Score, tt.score)
	}
}

func TestJudgeAnalogyOmitsModelAnswer(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(goodVerdict)})
	_, err := NewJudge(mock, DefaultJudgeConfig()).Evaluate(context.Background(), analogyQuestion(), "x")
	require.NoError(t, err)

	msg := mock.Calls[0].Messages[0].Content
	assert.NotContains(t, msg, "RESPUESTA MODELO")
	assert.Contains(t, msg, "ANALOGÍA DE REFERENCIA: Una biblioteca")
}

func TestJudgeFailuresFallBack(t *testing.T) {
	tests := []struct {
		name string
		resp llm.MockResponse
	}{
		{"transport error", llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("connection refused")}}},
		{"not json", llm.MockResponse{Content: json.RawMessage(`La respuesta es correcta.`)}},
		{"missing field", llm.MockResponse{Content: json.RawMessage(`{"correcto":true,"puntaje":0.9,"comentario":"c","repregunta":"r"}`)}},
		{"wrong type", llm.MockResponse{Content: json.RawMessage(`{"correcto":"si","puntaje":0.9,"comentario":"c","repregunta":"r","conceptos_faltantes":[]}`)}},
		{"score as string", llm.MockResponse{Content: json.RawMessage(`{"correcto":true,"puntaje":"0.9","comentario":"c","repregunta":"r","conceptos_faltantes":[]}`)}},
		{"extra field", llm.MockResponse{Content: json.RawMessage(`{"correcto":true,"puntaje":0.9,"comentario":"c","repregunta":"r","conceptos_faltantes":[],"nota":20}`)}},
		{"empty", llm.MockResponse{Content: json.RawMessage(``)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := openQuestion()
			mock := llm.NewMockProvider(tt.resp)
			j := NewJudge(mock, DefaultJudgeConfig())

			_, err := j.Evaluate(context.Background(), q, "respuesta")
			require.Error(t, err)

			mock.AddResponse(tt.resp)
			v := NewGrader(j, 0).Score(context.Background(), q, "respuesta")
			assert.Equal(t, Fallback(q), v)
			assert.Nil(t, v.Correct)
			assert.Equal(t, 0.5, v.Score)
			assert.True(t, v.Degraded)
			assert.Equal(t, "Revisa: "+q.Explanation, v.Feedback)
			assert.Equal(t, q.KeyConcepts(), v.MissingConcepts)
		})
	}
}

func TestJudgeTimeoutFallsBack(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(goodVerdict), Delay: time.Second})
	cfg := DefaultJudgeConfig()
	cfg.Timeout = 20 * time.Millisecond
	j := NewJudge(mock, cfg)

	start := time.Now()
	_, err := j.Evaluate(context.Background(), openQuestion(), "x")
	require.Error(t, err)
	assert.True(t, llm.IsTimeout(err))
	assert.Less(t, time.Since(start), 500*time.Millisecond)

	mock.AddResponse(llm.MockResponse{Content: json.RawMessage(goodVerdict), Delay: time.Second})
	v := NewGrader(j, 0).Score(context.Background(), openQuestion(), "x")
	assert.True(t, v.Degraded)
}

func TestGraderWithoutJudge(t *testing.T) {
	v := NewGrader(nil, 0).Score(context.Background(), analogyQuestion(), "x")
	assert.True(t, v.Degraded)
	assert.False(t, Effective(v, DefaultPassThreshold))
}

func TestFallbackDoesNotAliasConcepts(t *testing.T) {
	q := openQuestion()
	v := Fallback(q)
	v.MissingConcepts[0] = "changed"
	assert.Equal(t, "registros", q.KeyConcepts()[0])
}

func TestBuildJudgeSystem(t *testing.T) {
	s, err := buildJudgeSystem("Redes")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(s, "Eres profesor experto en Redes."))
}
