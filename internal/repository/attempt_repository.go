package repository

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crackit/crackit-backend/internal/model"
)

// AttemptRepository handles exam attempt history data access.
type AttemptRepository struct {
	pool *pgxpool.Pool
}

// NewAttemptRepository creates a new AttemptRepository.
func NewAttemptRepository(pool *pgxpool.Pool) *AttemptRepository {
	return &AttemptRepository{pool: pool}
}

// Create inserts a finished attempt.
func (r *AttemptRepository) Create(ctx context.Context, a *model.Attempt) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO attempts (id, user_id, exam_type, subject_id, topic_id, total_questions, correct, wrong, skipped, score, time_taken, completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 ON CONFLICT (id) DO NOTHING`,
		a.ID, a.UserID, a.ExamType, a.SubjectID, a.TopicID, a.TotalQuestions,
		a.Correct, a.Wrong, a.Skipped, a.Score, a.TimeTaken, a.CompletedAt,
	)
	return err
}

// CreateBatch inserts a drained worker batch of attempts in one transaction.
func (r *AttemptRepository) CreateBatch(ctx context.Context, attempts []model.Attempt) error {
	if len(attempts) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, a := range attempts {
		if _, err := tx.Exec(ctx,
			`INSERT INTO attempts (id, user_id, exam_type, subject_id, topic_id, total_questions, correct, wrong, skipped, score, time_taken, completed_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			 ON CONFLICT (id) DO NOTHING`,
			a.ID, a.UserID, a.ExamType, a.SubjectID, a.TopicID, a.TotalQuestions,
			a.Correct, a.Wrong, a.Skipped, a.Score, a.TimeTaken, a.CompletedAt,
		); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// ListByUser retrieves a user's attempts with pagination and an optional
// exam type filter, newest first.
func (r *AttemptRepository) ListByUser(ctx context.Context, userID string, examType *model.ExamType, limit, offset int) ([]model.Attempt, int, error) {
	countQuery := `SELECT COUNT(*) FROM attempts WHERE user_id = $1`
	countArgs := []interface{}{userID}
	if examType != nil {
		countQuery += ` AND exam_type = $2`
		countArgs = append(countArgs, *examType)
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT id, user_id, exam_type, subject_id, topic_id, total_questions, correct, wrong, skipped, score, time_taken, completed_at
	          FROM attempts WHERE user_id = $1`
	args := []interface{}{userID}
	argIdx := 2

	if examType != nil {
		query += ` AND exam_type = $2`
		args = append(args, *examType)
		argIdx++
	}

	query += ` ORDER BY completed_at DESC LIMIT $` + strconv.Itoa(argIdx) + ` OFFSET $` + strconv.Itoa(argIdx+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var attempts []model.Attempt
	for rows.Next() {
		var a model.Attempt
		if err := rows.Scan(&a.ID, &a.UserID, &a.ExamType, &a.SubjectID, &a.TopicID, &a.TotalQuestions,
			&a.Correct, &a.Wrong, &a.Skipped, &a.Score, &a.TimeTaken, &a.CompletedAt); err != nil {
			return nil, 0, err
		}
		attempts = append(attempts, a)
	}
	return attempts, total, rows.Err()
}

// UserStats aggregates a user's lifetime attempt figures.
type UserStats struct {
	TotalAttempts  int     `json:"totalAttempts"`
	TotalQuestions int     `json:"totalQuestions"`
	TotalCorrect   int     `json:"totalCorrect"`
	TotalWrong     int     `json:"totalWrong"`
	AverageScore   float64 `json:"averageScore"`
	BestScore      float64 `json:"bestScore"`
	TotalTimeTaken int     `json:"totalTimeTaken"`
}

// GetUserStats computes lifetime aggregates for one user.
func (r *AttemptRepository) GetUserStats(ctx context.Context, userID string) (*UserStats, error) {
	s := &UserStats{}
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*),
		        COALESCE(SUM(total_questions), 0),
		        COALESCE(SUM(correct), 0),
		        COALESCE(SUM(wrong), 0),
		        COALESCE(AVG(score), 0),
		        COALESCE(MAX(score), 0),
		        COALESCE(SUM(time_taken), 0)
		 FROM attempts WHERE user_id = $1`, userID,
	).Scan(&s.TotalAttempts, &s.TotalQuestions, &s.TotalCorrect, &s.TotalWrong,
		&s.AverageScore, &s.BestScore, &s.TotalTimeTaken)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// SubjectAccuracy is a user's correctness rate within one subject.
type SubjectAccuracy struct {
	SubjectID string  `json:"subjectId"`
	Attempted int     `json:"attempted"`
	Correct   int     `json:"correct"`
	Accuracy  float64 `json:"accuracy"`
}

// GetSubjectAccuracy breaks a user's correctness down per subject.
func (r *AttemptRepository) GetSubjectAccuracy(ctx context.Context, userID string) ([]SubjectAccuracy, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT subject_id,
		        SUM(total_questions),
		        SUM(correct),
		        ROUND(SUM(correct)::numeric / NULLIF(SUM(total_questions), 0) * 100, 1)
		 FROM attempts
		 WHERE user_id = $1 AND subject_id <> ''
		 GROUP BY subject_id
		 ORDER BY subject_id`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SubjectAccuracy
	for rows.Next() {
		var sa SubjectAccuracy
		var accuracy *float64
		if err := rows.Scan(&sa.SubjectID, &sa.Attempted, &sa.Correct, &accuracy); err != nil {
			return nil, err
		}
		if accuracy != nil {
			sa.Accuracy = *accuracy
		}
		out = append(out, sa)
	}
	return out, rows.Err()
}

// TopScores returns the best score per user, for rebuilding a leaderboard
// from history when the ranking cache is cold.
func (r *AttemptRepository) TopScores(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT user_id, MAX(score), MIN(time_taken)
		 FROM attempts
		 GROUP BY user_id
		 ORDER BY MAX(score) DESC, MIN(time_taken) ASC
		 LIMIT $1`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.LeaderboardEntry
	for rows.Next() {
		var e model.LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.Score, &e.TimeTaken); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
