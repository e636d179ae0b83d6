package resultlog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/abhisek/adaptiq/internal/store"
)

func entry(code, qid string, correct bool, score float64) Entry {
	return Entry{
		Time:        time.Date(2026, 10, 1, 9, 30, 0, 0, time.Local),
		StudentCode: code,
		StudentName: "Ana Pérez",
		Topic:       "Procesos",
		QuestionID:  qid,
		Level:       2,
		Correct:     correct,
		Score:       score,
	}
}

func TestCSVSinkWritesHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "resultados.csv")
	sink, err := NewCSVSink(path)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, sink.Append(ctx, entry("A1", "PRO-1", true, 1)))
	require.NoError(t, sink.Append(ctx, entry("A1", "PRO-2", false, 0.456)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Timestamp,StudentCode,StudentName,Topic,QuestionID,Level,Correct,Score", lines[0])
	assert.Equal(t, "2026-10-01 09:30:00,A1,Ana Pérez,Procesos,PRO-1,2,Sí,1.00", lines[1])
	assert.Equal(t, "2026-10-01 09:30:00,A1,Ana Pérez,Procesos,PRO-2,2,No,0.46", lines[2])
}

func TestCSVSinkHeaderForEmptyExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resultados.csv")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	sink, err := NewCSVSink(path)
	require.NoError(t, err)
	require.NoError(t, sink.Append(context.Background(), entry("A1", "PRO-1", true, 1)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Timestamp,"))
}

func TestCSVSinkConcurrentAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resultados.csv")

	// Two sinks on the same file behave like two processes.
	a, err := NewCSVSink(path)
	require.NoError(t, err)
	b, err := NewCSVSink(path)
	require.NoError(t, err)

	const perSink = 50
	var wg sync.WaitGroup
	for i, sink := range []*CSVSink{a, b} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range perSink {
				e := entry(fmt.Sprintf("S%d", i), fmt.Sprintf("Q-%d-%d", i, j), j%2 == 0, 0.5)
				e.StudentName = strings.Repeat("x", 200)
				assert.NoError(t, sink.Append(context.Background(), e))
			}
		}()
	}
	wg.Wait()

	entries, err := ReadCSVFile(path)
	require.NoError(t, err)
	require.Len(t, entries, 2*perSink)
	assert.Len(t, Filter(entries, "S0"), perSink)
	assert.Len(t, Filter(entries, "S1"), perSink)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "Timestamp,"))
}

func TestReadCSVRoundTrip(t *testing.T) {
	in := []Entry{entry("A1", "PRO-1", true, 1), entry("B2", "MEM-2", false, 0.25)}
	in[1].StudentName = "Beto, el \"rápido\""

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, in))

	out, err := ReadCSV(&buf)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.True(t, out[0].Time.Equal(in[0].Time))
	assert.Equal(t, in[1].StudentName, out[1].StudentName)
	assert.True(t, out[0].Correct)
	assert.False(t, out[1].Correct)
	assert.Equal(t, 0.25, out[1].Score)
}

func TestReadCSVMalformed(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("2026-10-01 09:30:00,A1,Ana,T,Q,dos,Sí,1.00\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedRow))
}

func TestReadCSVReportsFileLine(t *testing.T) {
	log := strings.Join([]string{
		strings.Join(Header, ","),
		`2026-10-01 09:30:00,A1,"Ana` + "\n" + `Pérez",T,Q,2,Sí,1.00`,
		`2026-10-01 09:31:00,A1,Ana,T,Q,dos,Sí,1.00`,
	}, "\n") + "\n"

	_, err := ReadCSV(strings.NewReader(log))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedRow))
	assert.Contains(t, err.Error(), "line 4:")
}

func TestReadCSVFileMissing(t *testing.T) {
	entries, err := ReadCSVFile(filepath.Join(t.TempDir(), "none.csv"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFilter(t *testing.T) {
	entries := []Entry{entry("A1", "1", true, 1), entry("B2", "2", true, 1), entry("A1", "3", false, 0)}
	got := Filter(entries, "A1")
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].QuestionID)
	assert.Equal(t, "3", got[1].QuestionID)
	assert.Empty(t, Filter(entries, "Z9"))
}

func TestRedisSink(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	sink, err := NewRedisSink(ctx, "redis://"+mr.Addr(), "")
	require.NoError(t, err)
	defer sink.Close()

	require.NoError(t, sink.Append(ctx, entry("A1", "PRO-1", true, 1)))
	require.NoError(t, sink.Append(ctx, entry("A1", "PRO-2", false, 0)))

	rows, err := mr.List(DefaultRedisKey)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "2026-10-01 09:30:00,A1,Ana Pérez,Procesos,PRO-1,2,Sí,1.00", rows[0])

	entries, err := sink.Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "PRO-2", entries[1].QuestionID)
}

func TestRedisSinkBadURL(t *testing.T) {
	_, err := NewRedisSink(context.Background(), "", "")
	require.Error(t, err)
	_, err = NewRedisSink(context.Background(), "http://nope", "")
	require.Error(t, err)
}

type failingSink struct{ calls int }

func (f *failingSink) Append(context.Context, Entry) error {
	f.calls++
	return errors.New("down")
}

type memorySink struct{ entries []Entry }

func (m *memorySink) Append(_ context.Context, e Entry) error {
	m.entries = append(m.entries, e)
	return nil
}

func TestMulti(t *testing.T) {
	ctx := context.Background()

	primary := &memorySink{}
	mirror := &failingSink{}
	require.NoError(t, Multi(primary, mirror, nil).Append(ctx, entry("A1", "1", true, 1)),
		"mirror failures are not returned")
	assert.Len(t, primary.entries, 1)
	assert.Equal(t, 1, mirror.calls)

	failing := &failingSink{}
	second := &memorySink{}
	require.Error(t, Multi(failing, second).Append(ctx, entry("A1", "1", true, 1)))
	assert.Len(t, second.entries, 1, "mirrors still receive the entry")

	only := &memorySink{}
	assert.Same(t, only, Multi(only).(*memorySink))
}

func TestStoreSink(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "adaptiq.db"))
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	sink := NewStoreSink(st.AttemptRepo())
	e := entry("A1", "PRO-1", true, 0.75)
	e.SessionID, e.Phase, e.Degraded = "s1", "RETRY", true
	require.NoError(t, sink.Append(ctx, e))

	attempts, err := st.AttemptRepo().AttemptsByStudent(ctx, "A1", store.QueryOpts{})
	require.NoError(t, err)
	got := FromAttempts(attempts)
	require.Len(t, got, 1)
	assert.Equal(t, "RETRY", got[0].Phase)
	assert.True(t, got[0].Degraded)
	assert.Equal(t, 0.75, got[0].Score)
	assert.True(t, got[0].Time.Equal(e.Time))
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, []Entry{entry("A1", "PRO-1", true, 1), entry("A1", "PRO-2", false, 0.5)}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Header, rows[0])
	assert.Equal(t, "PRO-2", rows[2][4])
	assert.Equal(t, "No", rows[2][6])
	assert.Equal(t, "0.5", rows[2][7])
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(" XLSX ")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	_, err = ParseFormat("pdf")
	assert.Error(t, err)
}

func TestExportName(t *testing.T) {
	assert.Equal(t, "resultados_A1.csv", ExportName("A1", FormatCSV))
	assert.Equal(t, "resultados_2024_01.xlsx", ExportName("2024/01", FormatXLSX))
	assert.Equal(t, "resultados_todos.csv", ExportName("  ", FormatCSV))
}

func TestExportFileFiltersByStudent(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "resultados.csv")
	sink, err := NewCSVSink(logPath)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, sink.Append(ctx, entry("A1", "PRO-1", true, 1)))
	require.NoError(t, sink.Append(ctx, entry("B2", "PRO-1", false, 0)))
	require.NoError(t, sink.Append(ctx, entry("A1", "PRO-2", false, 0.3)))

	out := filepath.Join(dir, "out", ExportName("A1", FormatCSV))
	n, err := ExportFile(logPath, "A1", FormatCSV, out)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := ReadCSVFile(out)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, e := range got {
		assert.Equal(t, "A1", e.StudentCode)
	}

	all := filepath.Join(dir, "all.xlsx")
	n, err = ExportFile(logPath, "", FormatXLSX, all)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestExportFileMissingLog(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "vacio.csv")
	n, err := ExportFile(filepath.Join(dir, "nope.csv"), "A1", FormatCSV, out)
	require.NoError(t, err)
	assert.Zero(t, n)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, strings.Join(Header, ",")+"\n", string(data))
}
