package resultlog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat accepts "csv" and "xlsx", case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatXLSX:
		return f, nil
	}
	return "", fmt.Errorf("unknown export format %q (want csv or xlsx)", s)
}

// Write encodes entries in the given format.
func Write(w io.Writer, entries []Entry, f Format) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, entries)
	case FormatXLSX:
		return WriteXLSX(w, entries)
	}
	return fmt.Errorf("unknown export format %q", f)
}

// ExportName returns the default export file name for a learner.
func ExportName(studentCode string, f Format) string {
	return fmt.Sprintf("resultados_%s.%s", sanitize(studentCode), f)
}

// sanitize keeps a learner code usable as part of a file name.
func sanitize(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return "todos"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ':
			return '_'
		}
		return r
	}, code)
}

// ExportFile reads the CSV log at logPath, keeps the rows of studentCode
// (all rows when empty) and writes them to outPath. It returns the number
// of rows written.
func ExportFile(logPath, studentCode string, f Format, outPath string) (int, error) {
	entries, err := ReadCSVFile(logPath)
	if err != nil {
		return 0, err
	}
	if studentCode != "" {
		entries = Filter(entries, studentCode)
	}

	if dir := filepath.Dir(outPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, fmt.Errorf("create export directory: %w", err)
		}
	}
	out, err := os.Create(outPath)
	if err != nil {
		return 0, fmt.Errorf("create export file: %w", err)
	}
	if err := Write(out, entries, f); err != nil {
		out.Close()
		return 0, err
	}
	if err := out.Close(); err != nil {
		return 0, fmt.Errorf("close export file: %w", err)
	}
	return len(entries), nil
}
