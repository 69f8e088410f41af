package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crackit/crackit-backend/internal/model"
)

// LiveExamRepository handles scheduled exam data access.
type LiveExamRepository struct {
	pool *pgxpool.Pool
}

// NewLiveExamRepository creates a new LiveExamRepository.
func NewLiveExamRepository(pool *pgxpool.Pool) *LiveExamRepository {
	return &LiveExamRepository{pool: pool}
}

// GetByID retrieves a scheduled exam.
func (r *LiveExamRepository) GetByID(ctx context.Context, id string) (*model.LiveExam, error) {
	e := &model.LiveExam{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, title, title_bn, category, scheduled_at, duration_seconds, total_questions, registered_count, is_premium
		 FROM live_exams WHERE id = $1`, id,
	).Scan(&e.ID, &e.Title, &e.TitleBn, &e.Category, &e.ScheduledAt, &e.DurationSeconds,
		&e.TotalQuestions, &e.RegisteredCount, &e.IsPremium)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// ListUpcoming retrieves exams that have not yet finished, soonest first.
// The cutoff keeps exams visible while their window is still open.
func (r *LiveExamRepository) ListUpcoming(ctx context.Context, now time.Time) ([]model.LiveExam, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, title, title_bn, category, scheduled_at, duration_seconds, total_questions, registered_count, is_premium
		 FROM live_exams
		 WHERE scheduled_at + (duration_seconds || ' seconds')::interval > $1
		 ORDER BY scheduled_at ASC`, now,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exams []model.LiveExam
	for rows.Next() {
		var e model.LiveExam
		if err := rows.Scan(&e.ID, &e.Title, &e.TitleBn, &e.Category, &e.ScheduledAt, &e.DurationSeconds,
			&e.TotalQuestions, &e.RegisteredCount, &e.IsPremium); err != nil {
			return nil, err
		}
		exams = append(exams, e)
	}
	return exams, rows.Err()
}

// IncrementRegistered bumps the registration counter once per exam.
func (r *LiveExamRepository) IncrementRegistered(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE live_exams SET registered_count = registered_count + 1 WHERE id = $1`, id,
	)
	return err
}
