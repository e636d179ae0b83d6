package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
)

// sequence hands out the ordering number shared by llm_requests and
// attempts rows, so a mixed timeline can be rebuilt by sorting on seq.
// The row lock lives in SQL; mu only keeps one process from racing itself.
type sequence struct {
	mu sync.Mutex
	db *sql.DB
}

const (
	sequenceDDL  = `CREATE TABLE IF NOT EXISTS global_sequence (id INTEGER PRIMARY KEY CHECK (id = 1), next_val BIGINT NOT NULL DEFAULT 1)`
	sequenceSeed = `INSERT INTO global_sequence (id, next_val) VALUES (1, 1) ON CONFLICT (id) DO NOTHING`
	sequenceBump = `UPDATE global_sequence SET next_val = next_val + 1 WHERE id = 1 RETURNING next_val - 1`
)

func openSequence(ctx context.Context, db *sql.DB) (*sequence, error) {
	for _, stmt := range []string{sequenceDDL, sequenceSeed} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("prepare global_sequence: %w", err)
		}
	}
	return &sequence{db: db}, nil
}

// Next returns the current value and advances the counter by one.
func (s *sequence) Next(ctx context.Context) (n int64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err = s.db.QueryRowContext(ctx, sequenceBump).Scan(&n); err != nil {
		return 0, fmt.Errorf("advance global_sequence: %w", err)
	}
	return n, nil
}
