package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Timestamps are stored as Unix milliseconds so both backends share the
// same column types and scanning code.

var schemaSQLite = []string{
	`CREATE TABLE IF NOT EXISTS llm_requests (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sequence INTEGER NOT NULL,
		created_at INTEGER NOT NULL,
		provider TEXT NOT NULL,
		model TEXT NOT NULL,
		purpose TEXT NOT NULL,
		input_tokens INTEGER NOT NULL DEFAULT 0,
		output_tokens INTEGER NOT NULL DEFAULT 0,
		latency_ms INTEGER NOT NULL DEFAULT 0,
		success BOOLEAN NOT NULL,
		error_message TEXT NOT NULL DEFAULT '',
		request_body TEXT NOT NULL DEFAULT '',
		response_body TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		student_code TEXT NOT NULL,
		student_name TEXT NOT NULL,
		topics TEXT NOT NULL,
		started_at INTEGER NOT NULL,
		finished_at INTEGER,
		total INTEGER NOT NULL DEFAULT 0,
		correct INTEGER NOT NULL DEFAULT 0,
		score_sum REAL NOT NULL DEFAULT 0,
		percentage REAL NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS attempts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sequence INTEGER NOT NULL,
		created_at INTEGER NOT NULL,
		session_id TEXT NOT NULL,
		student_code TEXT NOT NULL,
		student_name TEXT NOT NULL,
		topic TEXT NOT NULL,
		question_id TEXT NOT NULL,
		level INTEGER NOT NULL,
		phase TEXT NOT NULL,
		correct BOOLEAN NOT NULL,
		score REAL NOT NULL,
		degraded BOOLEAN NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS attempts_student ON attempts (student_code, sequence)`,
}

var schemaPostgres = []string{
	`CREATE TABLE IF NOT EXISTS llm_requests (
		id BIGSERIAL PRIMARY KEY,
		sequence BIGINT NOT NULL,
		created_at BIGINT NOT NULL,
		provider TEXT NOT NULL,
		model TEXT NOT NULL,
		purpose TEXT NOT NULL,
		input_tokens INTEGER NOT NULL DEFAULT 0,
		output_tokens INTEGER NOT NULL DEFAULT 0,
		latency_ms INTEGER NOT NULL DEFAULT 0,
		success BOOLEAN NOT NULL,
		error_message TEXT NOT NULL DEFAULT '',
		request_body TEXT NOT NULL DEFAULT '',
		response_body TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		student_code TEXT NOT NULL,
		student_name TEXT NOT NULL,
		topics TEXT NOT NULL,
		started_at BIGINT NOT NULL,
		finished_at BIGINT,
		total INTEGER NOT NULL DEFAULT 0,
		correct INTEGER NOT NULL DEFAULT 0,
		score_sum DOUBLE PRECISION NOT NULL DEFAULT 0,
		percentage DOUBLE PRECISION NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS attempts (
		id BIGSERIAL PRIMARY KEY,
		sequence BIGINT NOT NULL,
		created_at BIGINT NOT NULL,
		session_id TEXT NOT NULL,
		student_code TEXT NOT NULL,
		student_name TEXT NOT NULL,
		topic TEXT NOT NULL,
		question_id TEXT NOT NULL,
		level INTEGER NOT NULL,
		phase TEXT NOT NULL,
		correct BOOLEAN NOT NULL,
		score DOUBLE PRECISION NOT NULL,
		degraded BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE INDEX IF NOT EXISTS attempts_student ON attempts (student_code, sequence)`,
}

// migrate applies the idempotent schema for the driver, one statement at a
// time.
func migrate(ctx context.Context, db *sql.DB, driver Driver) error {
	var stmts []string
	switch driver {
	case DriverSQLite:
		stmts = schemaSQLite
	case DriverPostgres:
		stmts = schemaPostgres
	default:
		return fmt.Errorf("unsupported driver %q", driver)
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration failed at: %s\nerror: %w", firstLine(stmt), err)
		}
	}
	return nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
