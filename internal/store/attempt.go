package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AttemptData is the boundary payload handed to the store: the final
// score plus the comparison's diff summary.
type AttemptData struct {
	QuestionID      string
	Score           int
	StructuralEqual bool
	DiffCount       int
	VisualRatio     float64
}

// Attempt is one recorded grading attempt.
type Attempt struct {
	ID              string
	QuestionID      string
	Score           int
	StructuralEqual bool
	DiffCount       int
	VisualRatio     float64
	CreatedAt       time.Time
}

// AttemptRepo is the append-and-query surface over the attempt log.
type AttemptRepo interface {
	Append(ctx context.Context, data AttemptData) error
	Recent(ctx context.Context, limit int) ([]Attempt, error)
	BestScore(ctx context.Context, questionID string) (int, error)
}

type attemptRepo struct {
	db *sql.DB
}

func (r *attemptRepo) Append(ctx context.Context, data AttemptData) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO attempts (id, question_id, score, structural_equal, diff_count, visual_ratio)
		VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.NewString(),
		data.QuestionID,
		data.Score,
		data.StructuralEqual,
		data.DiffCount,
		data.VisualRatio,
	)
	if err != nil {
		return fmt.Errorf("append attempt: %w", err)
	}
	return nil
}

func (r *attemptRepo) Recent(ctx context.Context, limit int) ([]Attempt, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, question_id, score, structural_equal, diff_count, visual_ratio, created_at
		FROM attempts ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer rows.Close()

	var out []Attempt
	for rows.Next() {
		var a Attempt
		if err := rows.Scan(&a.ID, &a.QuestionID, &a.Score, &a.StructuralEqual,
			&a.DiffCount, &a.VisualRatio, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *attemptRepo) BestScore(ctx context.Context, questionID string) (int, error) {
	var best sql.NullInt64
	err := r.db.QueryRowContext(ctx,
		`SELECT MAX(score) FROM attempts WHERE question_id = ?`, questionID,
	).Scan(&best)
	if err != nil {
		return 0, fmt.Errorf("query best score: %w", err)
	}
	if !best.Valid {
		return 0, nil
	}
	return int(best.Int64), nil
}
