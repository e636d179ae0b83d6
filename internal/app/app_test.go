package app

import (
	"context"
	"math/rand/v2"
	"path/filepath"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/adaptiq/internal/bank"
	"github.com/abhisek/adaptiq/internal/grading"
	"github.com/abhisek/adaptiq/internal/router"
	"github.com/abhisek/adaptiq/internal/screen"
	"github.com/abhisek/adaptiq/internal/session"
	"github.com/abhisek/adaptiq/internal/store"
)

type stubScreen struct {
	title   string
	escapes bool
}

func (s *stubScreen) Init() tea.Cmd                           { return nil }
func (s *stubScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }
func (s *stubScreen) View(int, int) string                    { return s.title }
func (s *stubScreen) Title() string                           { return s.title }
func (s *stubScreen) HandlesEscape() bool                     { return s.escapes }

func testIndex() *bank.Index {
	return bank.Build([]bank.Question{{
		ID: "P2", Topic: "Procesos", Level: 2, Kind: bank.KindTrueFalse,
		Prompt: "¿P2?", TrueFalse: &bank.TrueFalse{Correct: "V"},
	}})
}

func testOptions(t *testing.T) (Options, *store.Store) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "app.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return Options{
		Index:    testIndex(),
		Grader:   grading.NewGrader(nil, 0),
		Sessions: st.SessionRepo(),
		SessionOptions: []session.Option{
			session.WithID("flow-1"),
			session.WithRand(rand.New(rand.NewPCG(1, 1))),
		},
	}, st
}

func TestRunRejectsIncompleteOptions(t *testing.T) {
	assert.Error(t, Run(Options{}))
	assert.Error(t, Run(Options{Index: testIndex()}))
}

func TestFlowRecordsSessionLifecycle(t *testing.T) {
	opts, st := testOptions(t)
	f := newFlow(opts)
	finishedAt := time.Date(2026, 10, 1, 10, 0, 0, 0, time.UTC)
	f.now = func() time.Time { return finishedAt }

	ana := session.Student{Code: "A1", Name: "Ana"}
	scr, err := f.start(ana, []string{"Procesos"})
	require.NoError(t, err)
	assert.Equal(t, "Cuestionario", scr.Title())

	ctx := context.Background()
	recs, err := st.SessionRepo().RecentSessions(ctx, "A1", 0)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "flow-1", recs[0].ID)
	assert.Equal(t, []string{"Procesos"}, recs[0].Topics)
	assert.True(t, recs[0].FinishedAt.IsZero())

	// A second handle on the same session ID plays the answers.
	s, err := session.New(opts.Index, opts.Grader, nil, ana, []string{"Procesos"}, opts.SessionOptions...)
	require.NoError(t, err)
	_, err = s.Submit(ctx, "V")
	require.NoError(t, err)

	sum := f.finish(s)
	assert.Equal(t, "Resultados", sum.Title())

	recs, err = st.SessionRepo().RecentSessions(ctx, "A1", 0)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, 1, recs[0].Total)
	assert.Equal(t, 1, recs[0].Correct)
	assert.InDelta(t, 100.0, recs[0].Percentage, 1e-9)
	assert.True(t, recs[0].FinishedAt.Equal(finishedAt))
}

func TestFlowStartRejectsUnknownTopics(t *testing.T) {
	opts, _ := testOptions(t)
	f := newFlow(opts)
	_, err := f.start(session.Student{Code: "A1", Name: "Ana"}, []string{"Redes"})
	assert.ErrorIs(t, err, session.ErrNoTopics)
}

func TestFlowStartsAtLogin(t *testing.T) {
	opts, _ := testOptions(t)
	m := newAppModel(opts)
	assert.Equal(t, "Ingreso", m.router.Active().Title())
}

func TestEscPopsUnlessScreenHandlesIt(t *testing.T) {
	opts, _ := testOptions(t)
	m := newAppModel(opts)
	m.router.Push(&stubScreen{title: "plain"})

	_, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	require.NotNil(t, cmd)
	assert.IsType(t, router.PopScreenMsg{}, cmd())

	m.router.Push(&stubScreen{title: "modal", escapes: true})
	_, cmd = m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	assert.Nil(t, cmd, "screens handling Esc get the key instead of a pop")
}

func TestEscAtRootIsNoop(t *testing.T) {
	opts, _ := testOptions(t)
	m := newAppModel(opts)
	_, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	assert.Nil(t, cmd)
	assert.Equal(t, 1, m.router.Depth())
}
