package history

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/adaptiq/internal/router"
	"github.com/abhisek/adaptiq/internal/store"
)

func seedStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	ctx := context.Background()
	start := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	if err := st.SessionRepo().StartSession(ctx, store.SessionRecord{
		ID: "s1", StudentCode: "A1", StudentName: "Ana", Topics: []string{"Procesos"}, StartedAt: start,
	}); err != nil {
		t.Fatal(err)
	}
	if err := st.AttemptRepo().AppendAttempt(ctx, start.Add(time.Minute), store.AttemptData{
		SessionID: "s1", StudentCode: "A1", StudentName: "Ana", Topic: "Procesos",
		QuestionID: "PRO-03", Level: 2, Phase: "NEW", Correct: true, Score: 1,
	}); err != nil {
		t.Fatal(err)
	}
	if err := st.SessionRepo().FinishSession(ctx, store.SessionRecord{
		ID: "s1", FinishedAt: start.Add(5 * time.Minute), Total: 1, Correct: 1, ScoreSum: 1, Percentage: 100,
	}); err != nil {
		t.Fatal(err)
	}
	return st
}

func load(t *testing.T, s *Screen) {
	t.Helper()
	msg := s.Init()()
	s.Update(msg)
}

func TestHistoryLoadsSessions(t *testing.T) {
	st := seedStore(t)
	s := New("A1", st.SessionRepo(), st.AttemptRepo())
	if !strings.Contains(s.View(100, 30), "Cargando") {
		t.Error("expected loading view before data arrives")
	}
	load(t, s)

	view := s.View(100, 30)
	if !strings.Contains(view, "1/1 correctas") || !strings.Contains(view, "Procesos") {
		t.Errorf("history view missing session line:\n%s", view)
	}

	s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if !strings.Contains(s.View(100, 30), "PRO-03") {
		t.Error("expanded session should list its answers")
	}
}

func TestHistoryEmpty(t *testing.T) {
	st := seedStore(t)
	s := New("B2", st.SessionRepo(), nil)
	load(t, s)
	if !strings.Contains(s.View(100, 30), "Aún no hay sesiones") {
		t.Error("expected empty-state message")
	}
}

func TestHistoryEscPops(t *testing.T) {
	st := seedStore(t)
	s := New("A1", st.SessionRepo(), st.AttemptRepo())
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if cmd == nil {
		t.Fatal("expected pop command")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("expected PopScreenMsg")
	}
}
