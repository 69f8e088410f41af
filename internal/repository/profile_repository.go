package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crackit/crackit-backend/internal/model"
)

// ProfileRepository handles profile and progression data access.
type ProfileRepository struct {
	pool *pgxpool.Pool
}

// NewProfileRepository creates a new ProfileRepository.
func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

// GetByID retrieves a profile by user ID.
func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*model.Profile, error) {
	p := &model.Profile{}
	var badges []byte
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, avatar, exam_category, streak, xp, coins, badges, last_active_at, joined_at
		 FROM profiles WHERE id = $1`, id,
	).Scan(&p.ID, &p.Name, &p.Avatar, &p.ExamCategory, &p.Streak, &p.XP, &p.Coins, &badges, &p.LastActiveAt, &p.JoinedAt)
	if err != nil {
		return nil, err
	}
	if len(badges) > 0 {
		if err := json.Unmarshal(badges, &p.Badges); err != nil {
			return nil, fmt.Errorf("decode badges for %s: %w", id, err)
		}
	}
	return p, nil
}

// Create inserts a new profile with default progression.
func (r *ProfileRepository) Create(ctx context.Context, p *model.Profile) error {
	settings, err := json.Marshal(model.DefaultSettings())
	if err != nil {
		return err
	}
	return r.pool.QueryRow(ctx,
		`INSERT INTO profiles (id, name, avatar, exam_category, settings)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING joined_at`,
		p.ID, p.Name, p.Avatar, p.ExamCategory, settings,
	).Scan(&p.JoinedAt)
}

// Update modifies editable profile fields.
func (r *ProfileRepository) Update(ctx context.Context, p *model.Profile) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE profiles SET name = $1, avatar = $2, exam_category = $3, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $4`,
		p.Name, p.Avatar, p.ExamCategory, p.ID,
	)
	return err
}

// AddRewards credits XP and coins to one profile.
func (r *ProfileRepository) AddRewards(ctx context.Context, id string, xp, coins int) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE profiles SET xp = xp + $1, coins = coins + $2, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $3`,
		xp, coins, id,
	)
	return err
}

// BulkAddRewards credits XP and coins for many profiles in one statement.
// Used by the rewards worker to flush a drained queue batch.
func (r *ProfileRepository) BulkAddRewards(ctx context.Context, ids []string, xp, coins []int) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.pool.Exec(ctx,
		`UPDATE profiles p
		 SET xp = p.xp + u.xp, coins = p.coins + u.coins, updated_at = CURRENT_TIMESTAMP
		 FROM (SELECT UNNEST($1::text[]) AS id, UNNEST($2::int[]) AS xp, UNNEST($3::int[]) AS coins) u
		 WHERE p.id = u.id`,
		ids, xp, coins,
	)
	return err
}

// UpdateStreak sets the streak counter and the last-active stamp together.
func (r *ProfileRepository) UpdateStreak(ctx context.Context, id string, streak int, lastActiveAt time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE profiles SET streak = $1, last_active_at = $2, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $3`,
		streak, lastActiveAt, id,
	)
	return err
}

// AddBadge appends a badge unless the profile already holds one with the
// same id.
func (r *ProfileRepository) AddBadge(ctx context.Context, id string, badge model.Badge) error {
	raw, err := json.Marshal(badge)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx,
		`UPDATE profiles SET badges = badges || $1::jsonb, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $2
		 AND NOT EXISTS (
		   SELECT 1 FROM jsonb_array_elements(badges) b WHERE b->>'id' = $3
		 )`,
		raw, id, badge.ID,
	)
	return err
}

// GetSettings retrieves a profile's app settings.
func (r *ProfileRepository) GetSettings(ctx context.Context, id string) (*model.Settings, error) {
	var raw []byte
	if err := r.pool.QueryRow(ctx, `SELECT settings FROM profiles WHERE id = $1`, id).Scan(&raw); err != nil {
		return nil, err
	}

	settings := model.DefaultSettings()
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &settings); err != nil {
			return nil, fmt.Errorf("decode settings for %s: %w", id, err)
		}
	}
	return &settings, nil
}

// UpdateSettings replaces a profile's app settings.
func (r *ProfileRepository) UpdateSettings(ctx context.Context, id string, settings model.Settings) error {
	raw, err := json.Marshal(settings)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx,
		`UPDATE profiles SET settings = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`,
		raw, id,
	)
	return err
}

// ListNames resolves display names for a set of user ids. Unknown ids are
// simply absent from the result.
func (r *ProfileRepository) ListNames(ctx context.Context, ids []string) (map[string]string, error) {
	if len(ids) == 0 {
		return map[string]string{}, nil
	}

	rows, err := r.pool.Query(ctx, `SELECT id, name FROM profiles WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := make(map[string]string, len(ids))
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		names[id] = name
	}
	return names, rows.Err()
}
