package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// sessionRepo implements SessionRepo backed by the sessions table.
type sessionRepo struct {
	db *sql.DB
}

// topicSep joins topic names in the topics column. Topic names never
// contain a newline.
const topicSep = "\n"

func (r *sessionRepo) StartSession(ctx context.Context, rec SessionRecord) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO sessions
		(id, student_code, student_name, topics, started_at)
		VALUES ($1,$2,$3,$4,$5)`,
		rec.ID, rec.StudentCode, rec.StudentName,
		strings.Join(rec.Topics, topicSep), toMillis(rec.StartedAt),
	)
	if err != nil {
		return fmt.Errorf("save session start: %w", err)
	}
	return nil
}

func (r *sessionRepo) FinishSession(ctx context.Context, rec SessionRecord) error {
	res, err := r.db.ExecContext(ctx, `UPDATE sessions
		SET finished_at = $2, total = $3, correct = $4, score_sum = $5, percentage = $6
		WHERE id = $1`,
		rec.ID, toMillis(rec.FinishedAt), rec.Total, rec.Correct, rec.ScoreSum, rec.Percentage,
	)
	if err != nil {
		return fmt.Errorf("save session finish: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("session %s not found", rec.ID)
	}
	return nil
}

func (r *sessionRepo) RecentSessions(ctx context.Context, studentCode string, limit int) ([]SessionRecord, error) {
	var (
		conds []string
		args  []any
	)
	if studentCode != "" {
		args = append(args, studentCode)
		conds = append(conds, "student_code = $1")
	}
	query := `SELECT id, student_code, student_name, topics, started_at,
		COALESCE(finished_at, 0), total, correct, score_sum, percentage
		FROM sessions` + where(conds) + ` ORDER BY started_at DESC`
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionRecord
	for rows.Next() {
		var (
			rec               SessionRecord
			topics            string
			started, finished int64
		)
		if err := rows.Scan(&rec.ID, &rec.StudentCode, &rec.StudentName, &topics,
			&started, &finished, &rec.Total, &rec.Correct, &rec.ScoreSum, &rec.Percentage); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		if topics != "" {
			rec.Topics = strings.Split(topics, topicSep)
		}
		rec.StartedAt = fromMillis(started)
		rec.FinishedAt = fromMillis(finished)
		out = append(out, rec)
	}
	return out, rows.Err()
}
