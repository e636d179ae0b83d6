package resultlog

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

// TimeLayout is the timestamp format of the CSV log.
const TimeLayout = "2006-01-02 15:04:05"

// Header is the first row of a CSV log.
var Header = []string{"Timestamp", "StudentCode", "StudentName", "Topic", "QuestionID", "Level", "Correct", "Score"}

const (
	correctYes = "Sí"
	correctNo  = "No"
)

// lockRetry is the polling interval while waiting for another process to
// release the log lock.
const lockRetry = 20 * time.Millisecond

// CSVSink appends entries to a CSV file. Each row is written with one
// O_APPEND write while holding an exclusive advisory lock on a sibling
// ".lock" file, so processes sharing the file never interleave rows.
type CSVSink struct {
	path string
	mu   sync.Mutex
	lock *flock.Flock
}

// NewCSVSink creates a sink for path, creating its directory if needed.
func NewCSVSink(path string) (*CSVSink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create result log dir: %w", err)
	}
	return &CSVSink{path: path, lock: flock.New(path + ".lock")}, nil
}

// Path returns the log file path.
func (s *CSVSink) Path() string { return s.path }

// Append writes e as one row. The header is written first when the file is
// new or empty.
func (s *CSVSink) Append(ctx context.Context, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	locked, err := s.lock.TryLockContext(ctx, lockRetry)
	if err != nil {
		return fmt.Errorf("lock result log: %w", err)
	}
	if !locked {
		return fmt.Errorf("lock result log: %s is busy", s.path)
	}
	defer s.lock.Unlock()

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open result log: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat result log: %w", err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if info.Size() == 0 {
		w.Write(Header)
	}
	w.Write(encodeEntry(e))
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("encode result row: %w", err)
	}

	if _, err := f.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write result log: %w", err)
	}
	return nil
}

func encodeEntry(e Entry) []string {
	correct := correctNo
	if e.Correct {
		correct = correctYes
	}
	return []string{
		e.Time.Format(TimeLayout),
		e.StudentCode,
		e.StudentName,
		e.Topic,
		e.QuestionID,
		strconv.Itoa(e.Level),
		correct,
		strconv.FormatFloat(e.Score, 'f', 2, 64),
	}
}

// EncodeRow renders e as a single CSV line without the trailing newline.
func EncodeRow(e Entry) string {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Write(encodeEntry(e))
	w.Flush()
	return string(bytes.TrimRight(buf.Bytes(), "\r\n"))
}

func decodeEntry(rec []string) (Entry, error) {
	if len(rec) != len(Header) {
		return Entry{}, fmt.Errorf("%w: %d fields, want %d", ErrMalformedRow, len(rec), len(Header))
	}
	ts, err := time.ParseInLocation(TimeLayout, rec[0], time.Local)
	if err != nil {
		return Entry{}, fmt.Errorf("%w: timestamp %q", ErrMalformedRow, rec[0])
	}
	level, err := strconv.Atoi(rec[5])
	if err != nil {
		return Entry{}, fmt.Errorf("%w: level %q", ErrMalformedRow, rec[5])
	}
	score, err := strconv.ParseFloat(rec[7], 64)
	if err != nil {
		return Entry{}, fmt.Errorf("%w: score %q", ErrMalformedRow, rec[7])
	}
	return Entry{
		Time:        ts,
		StudentCode: rec[1],
		StudentName: rec[2],
		Topic:       rec[3],
		QuestionID:  rec[4],
		Level:       level,
		Correct:     rec[6] == correctYes || rec[6] == "Si",
		Score:       score,
	}, nil
}

// ReadCSV decodes a CSV log. A leading header row is skipped.
func ReadCSV(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	var out []Entry
	for first := true; ; first = false {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read result log: %w", err)
		}
		if first && len(rec) > 0 && rec[0] == Header[0] {
			continue
		}
		// Quoted fields may span lines, so ask the reader where the row began.
		line, _ := cr.FieldPos(0)
		e, err := decodeEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, e)
	}
}

// ReadCSVFile decodes the CSV log at path. A missing file yields no entries.
func ReadCSVFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open result log: %w", err)
	}
	defer f.Close()
	return ReadCSV(f)
}

// WriteCSV writes entries with a header row.
func WriteCSV(w io.Writer, entries []Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, e := range entries {
		if err := cw.Write(encodeEntry(e)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
