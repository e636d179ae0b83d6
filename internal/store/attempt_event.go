package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// attemptRepo implements AttemptRepo backed by the attempts table.
type attemptRepo struct {
	db  *sql.DB
	seq *sequence
}

func (r *attemptRepo) AppendAttempt(ctx context.Context, at time.Time, data AttemptData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `INSERT INTO attempts
		(sequence, created_at, session_id, student_code, student_name, topic,
		 question_id, level, phase, correct, score, degraded)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		seqNum, toMillis(at), data.SessionID, data.StudentCode, data.StudentName,
		data.Topic, data.QuestionID, data.Level, data.Phase, data.Correct,
		data.Score, data.Degraded,
	)
	if err != nil {
		return fmt.Errorf("save attempt: %w", err)
	}
	return nil
}

func (r *attemptRepo) AttemptsByStudent(ctx context.Context, studentCode string, opts QueryOpts) ([]Attempt, error) {
	conds, args := opts.conditions([]any{studentCode})
	conds = append([]string{"student_code = $1"}, conds...)

	query := `SELECT id, sequence, created_at, session_id, student_code, student_name,
		topic, question_id, level, phase, correct, score, degraded
		FROM attempts` + where(conds) + ` ORDER BY sequence`
	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer rows.Close()

	var out []Attempt
	for rows.Next() {
		var (
			a  Attempt
			ts int64
		)
		if err := rows.Scan(&a.ID, &a.Sequence, &ts, &a.SessionID, &a.StudentCode,
			&a.StudentName, &a.Topic, &a.QuestionID, &a.Level, &a.Phase,
			&a.Correct, &a.Score, &a.Degraded); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		a.Timestamp = fromMillis(ts)
		out = append(out, a)
	}
	return out, rows.Err()
}
