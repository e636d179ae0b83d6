package bank

import (
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func q(id, topic string, level int) Question {
	return Question{
		ID: id, Topic: topic, Level: level, Kind: KindTrueFalse,
		Prompt: "p", TrueFalse: &TrueFalse{Correct: "V"},
	}
}

func TestLoadJSONEnvelope(t *testing.T) {
	qs, err := Load("testdata/sample.json")
	require.NoError(t, err)
	require.Len(t, qs, 5)

	byID := make(map[string]Question)
	for _, q := range qs {
		byID[q.ID] = q
	}

	mc := byID["PRO-2"]
	assert.Equal(t, KindChoice, mc.Kind)
	require.NotNil(t, mc.Choice)
	assert.Equal(t, "B", mc.Choice.Correct)
	assert.Equal(t, []Option{{"A", "La TLB"}, {"B", "El PCB"}, {"C", "La FAT"}}, mc.Choice.Options)
	assert.Nil(t, mc.Essay)

	open := byID["PRO-3"]
	assert.Equal(t, KindOpen, open.Kind, "unknown tipo falls back to free-form")
	assert.Equal(t, []string{"guardar registros", "PCB", "planificador"}, open.KeyConcepts())

	analogy := byID["MEM-2"]
	assert.Equal(t, KindAnalogy, analogy.Kind)
	assert.NotEmpty(t, analogy.Analogy)
}

func TestLoadYAMLKeepsOptionOrder(t *testing.T) {
	qs, err := Load("testdata/sample.yaml")
	require.NoError(t, err)
	require.Len(t, qs, 2)

	labels := []string{}
	for _, o := range qs[0].Options() {
		labels = append(labels, o.Label)
	}
	assert.Equal(t, []string{"C", "A", "B"}, labels)
	assert.Equal(t, "F", qs[1].CorrectLabel(), "true/false answers are upper-cased")
}

func TestLoadEmptyBank(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	require.NoError(t, os.WriteFile(path, []byte(`[]`), 0o644))

	_, err := Load(path)
	require.ErrorIs(t, err, ErrEmptyBank)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}

func TestLoadRejectsUnknownExtension(t *testing.T) {
	_, err := Load("bank.csv")
	require.Error(t, err)
}

func TestParseVersionCheck(t *testing.T) {
	tests := []struct {
		version string
		wantErr bool
	}{
		{"v1.0.0", false},
		{"v1.4.2", false},
		{"v2.0.0", true},
		{"1.0.0", true},
		{"latest", true},
	}
	for _, tt := range tests {
		data := []byte(`{"version":"` + tt.version + `","questions":[]}`)
		_, err := Parse(data, FormatJSON)
		if tt.wantErr {
			assert.Error(t, err, tt.version)
		} else {
			assert.NoError(t, err, tt.version)
		}
	}
}

func TestValidate(t *testing.T) {
	good := []Question{
		q("a", "T", 1),
		{ID: "b", Topic: "T", Level: 2, Kind: KindChoice, Prompt: "p",
			Choice: &Choice{Options: []Option{{"A", "x"}, {"B", "y"}}, Correct: "B"}},
		{ID: "c", Topic: "T", Level: 3, Kind: KindOpen, Prompt: "p",
			Essay: &Essay{KeyConcepts: []string{"k"}}},
		{ID: "d", Topic: "T", Level: 1, Kind: KindTrueFalse, Prompt: "p",
			TrueFalse: &TrueFalse{Correct: "Verdadero"}},
		{ID: "e", Topic: "T", Level: 1, Kind: KindChoice, Prompt: "p",
			Choice: &Choice{Options: []Option{{"a", "x"}, {"b", "y"}}, Correct: "A"}},
		{ID: "f", Topic: "T", Level: 1, Kind: KindTrueFalse, Prompt: "p",
			TrueFalse: &TrueFalse{Pair: []Option{{"Sí", "Sí"}, {"No", "No"}}, Correct: "no"}},
	}
	require.NoError(t, Validate(good))
	assert.Equal(t, "V", good[3].CorrectLabel())

	tests := []struct {
		name string
		qs   []Question
	}{
		{"duplicate id", []Question{q("a", "T", 1), q("a", "T", 2)}},
		{"level too low", []Question{q("a", "T", 0)}},
		{"level too high", []Question{q("a", "T", 4)}},
		{"missing topic", []Question{q("a", "", 1)}},
		{"correct label not an option", []Question{{ID: "b", Topic: "T", Level: 2, Kind: KindChoice, Prompt: "p",
			Choice: &Choice{Options: []Option{{"A", "x"}}, Correct: "Z"}}}},
		{"choice without options", []Question{{ID: "b", Topic: "T", Level: 2, Kind: KindChoice, Prompt: "p",
			Choice: &Choice{Correct: "A"}}}},
		{"free-form without concepts", []Question{{ID: "c", Topic: "T", Level: 1, Kind: KindOpen, Prompt: "p",
			Essay: &Essay{}}}},
		{"bad true/false answer", []Question{{ID: "d", Topic: "T", Level: 1, Kind: KindTrueFalse, Prompt: "p",
			TrueFalse: &TrueFalse{Correct: "X"}}}},
		{"true/false with three options", []Question{{ID: "d", Topic: "T", Level: 1, Kind: KindTrueFalse, Prompt: "p",
			TrueFalse: &TrueFalse{Pair: []Option{{"A", "x"}, {"B", "y"}, {"C", "z"}}, Correct: "A"}}}},
		{"true/false answer outside its pair", []Question{{ID: "d", Topic: "T", Level: 1, Kind: KindTrueFalse, Prompt: "p",
			TrueFalse: &TrueFalse{Pair: []Option{{"Sí", "Sí"}, {"No", "No"}}, Correct: "Quizá"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, Validate(tt.qs))
		})
	}
}

func TestParseLenientLabels(t *testing.T) {
	data := []byte(`[
		{"id":"p1","tema":"T","nivel":1,"tipo":"tf","enunciado":"p","correcta":"Verdadero"},
		{"id":"p2","tema":"T","nivel":1,"tipo":"mc","enunciado":"p","opciones":{"a":"x","b":"y"},"correcta":"A"},
		{"id":"p3","tema":"T","nivel":1,"tipo":"mc","enunciado":"p","opciones":["x","y","z"],"correcta":"c"}
	]`)
	qs, err := Parse(data, FormatJSON)
	require.NoError(t, err)
	require.NoError(t, Validate(qs))

	assert.Equal(t, "V", qs[0].CorrectLabel())
	assert.Equal(t, "a", qs[1].CorrectLabel(), "correct label takes the option's spelling")
	assert.Equal(t, []Option{{"a", "x"}, {"b", "y"}, {"c", "z"}}, qs[2].Options())
	assert.Equal(t, "c", qs[2].CorrectLabel())
}

func TestParseYAMLListOptions(t *testing.T) {
	data := []byte(`
- id: y1
  tema: T
  nivel: 2
  tipo: mc
  enunciado: p
  opciones: [uno, dos]
  correcta: B
`)
	qs, err := Parse(data, FormatYAML)
	require.NoError(t, err)
	require.Len(t, qs, 1)
	assert.Equal(t, []Option{{"a", "uno"}, {"b", "dos"}}, qs[0].Options())
	assert.Equal(t, "b", qs[0].CorrectLabel())
}

func TestBuildPartitionsExactly(t *testing.T) {
	qs := []Question{
		q("1", "Procesos", 2), q("2", "Memoria", 1), q("3", "Procesos", 1),
		q("4", "Procesos", 2), q("5", "Archivos", 3), q("6", "Memoria", 3),
	}
	idx := Build(qs)

	seen := map[string]int{}
	for _, topic := range idx.TopicOrder() {
		for _, level := range idx.Levels(topic) {
			for _, q := range idx.Bucket(topic, level) {
				seen[q.ID]++
				assert.Equal(t, topic, q.Topic)
				assert.Equal(t, level, q.Level)
			}
		}
	}
	require.Len(t, seen, len(qs))
	for id, n := range seen {
		assert.Equal(t, 1, n, "question %s indexed more than once", id)
	}
	assert.Equal(t, len(qs), idx.Len())
}

func TestBuildEmpty(t *testing.T) {
	idx := Build(nil)
	assert.Empty(t, idx.TopicOrder())
	assert.Equal(t, 0, idx.Len())
	_, ok := idx.NextUnused("x", 1, nil)
	assert.False(t, ok)
}

func TestTopicOrderFirstSeen(t *testing.T) {
	idx := Build([]Question{
		q("1", "Memoria", 2), q("2", "Procesos", 1), q("3", "Memoria", 1), q("4", "Archivos", 2),
	})
	assert.Equal(t, []string{"Memoria", "Procesos", "Archivos"}, idx.TopicOrder())
}

func TestStartLevel(t *testing.T) {
	idx := Build([]Question{
		q("1", "A", 1), q("2", "A", 2), q("3", "A", 3),
		q("4", "B", 3), q("5", "B", 1),
		q("6", "C", 3),
	})

	tests := []struct {
		topic string
		want  int
	}{
		{"A", 2},
		{"B", 1},
		{"C", 3},
	}
	for _, tt := range tests {
		got, ok := idx.StartLevel(tt.topic)
		require.True(t, ok)
		assert.Equal(t, tt.want, got, tt.topic)
	}

	_, ok := idx.StartLevel("missing")
	assert.False(t, ok)
}

func TestNextUnusedSkipsUsedAndDoesNotMutate(t *testing.T) {
	idx := Build([]Question{q("1", "A", 2), q("2", "A", 2), q("3", "A", 2)},
		WithRand(rand.New(rand.NewPCG(1, 2))))

	used := map[string]bool{"1": true, "3": true}
	for range 20 {
		got, ok := idx.NextUnused("A", 2, used)
		require.True(t, ok)
		assert.Equal(t, "2", got.ID)
	}
	assert.Len(t, used, 2)

	used["2"] = true
	_, ok := idx.NextUnused("A", 2, used)
	assert.False(t, ok, "exhausted bucket")

	_, ok = idx.NextUnused("A", 3, nil)
	assert.False(t, ok, "missing level")
}

func TestNextUnusedCoversBucket(t *testing.T) {
	idx := Build([]Question{q("1", "A", 1), q("2", "A", 1), q("3", "A", 1)},
		WithRand(rand.New(rand.NewPCG(7, 7))))

	seen := map[string]bool{}
	for range 200 {
		got, ok := idx.NextUnused("A", 1, nil)
		require.True(t, ok)
		seen[got.ID] = true
	}
	assert.Len(t, seen, 3)
}

func TestNeedsJudge(t *testing.T) {
	assert.False(t, Build([]Question{q("1", "A", 1)}).NeedsJudge())
	assert.True(t, Build([]Question{{ID: "2", Topic: "A", Level: 1, Kind: KindOpen,
		Essay: &Essay{KeyConcepts: []string{"k"}}}}).NeedsJudge())
}
