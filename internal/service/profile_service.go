package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/crackit/crackit-backend/internal/auth"
	"github.com/crackit/crackit-backend/internal/model"
	"github.com/crackit/crackit-backend/internal/repository"
	"github.com/crackit/crackit-backend/internal/session"
)

// ProfileService handles profile, settings and progression logic.
type ProfileService struct {
	profileRepo *repository.ProfileRepository
	attemptRepo *repository.AttemptRepository
	log         zerolog.Logger
}

// NewProfileService creates a new ProfileService.
func NewProfileService(profileRepo *repository.ProfileRepository, attemptRepo *repository.AttemptRepository, log zerolog.Logger) *ProfileService {
	return &ProfileService{
		profileRepo: profileRepo,
		attemptRepo: attemptRepo,
		log:         log.With().Str("component", "profile_service").Logger(),
	}
}

// GetOrCreate returns the caller's profile, creating it from the token
// claims on first contact.
func (s *ProfileService) GetOrCreate(ctx context.Context, claims *auth.Claims) (*model.Profile, error) {
	profile, err := s.profileRepo.GetByID(ctx, claims.UserID())
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("get profile: %w", err)
	}

	profile = &model.Profile{
		ID:           claims.UserID(),
		Name:         claims.Name,
		Avatar:       claims.Avatar,
		ExamCategory: claims.ExamCategory,
	}
	if profile.Name == "" {
		profile.Name = "Aspirant"
	}
	if profile.ExamCategory == "" {
		profile.ExamCategory = model.CategoryVarsity
	}

	if err := s.profileRepo.Create(ctx, profile); err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}
	s.log.Info().Str("user_id", profile.ID).Msg("Profile created")
	return profile, nil
}

// Update applies the editable profile fields and returns the fresh profile.
func (s *ProfileService) Update(ctx context.Context, userID string, req model.UpdateProfileRequest) (*model.Profile, error) {
	profile, err := s.profileRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}

	if req.Name != "" {
		profile.Name = req.Name
	}
	if req.Avatar != "" {
		profile.Avatar = req.Avatar
	}
	if req.ExamCategory != "" {
		profile.ExamCategory = model.ExamCategory(req.ExamCategory)
	}

	if err := s.profileRepo.Update(ctx, profile); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return profile, nil
}

// GetSettings returns the caller's app settings.
func (s *ProfileService) GetSettings(ctx context.Context, userID string) (*model.Settings, error) {
	settings, err := s.profileRepo.GetSettings(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get settings: %w", err)
	}
	return settings, nil
}

// UpdateSettings applies the set fields of the request on top of the
// current settings. Settings changes are written through immediately.
func (s *ProfileService) UpdateSettings(ctx context.Context, userID string, req model.UpdateSettingsRequest) (*model.Settings, error) {
	settings, err := s.GetSettings(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Theme != nil {
		settings.Theme = *req.Theme
	}
	if req.Language != nil {
		settings.Language = *req.Language
	}
	if req.Notifications != nil {
		settings.Notifications = *req.Notifications
	}
	if req.SoundEffects != nil {
		settings.SoundEffects = *req.SoundEffects
	}

	if err := s.profileRepo.UpdateSettings(ctx, userID, *settings); err != nil {
		return nil, fmt.Errorf("update settings: %w", err)
	}
	return settings, nil
}

// ProfileStats combines lifetime aggregates with per-subject accuracy.
type ProfileStats struct {
	repository.UserStats
	Subjects []repository.SubjectAccuracy `json:"subjects"`
}

// Stats computes the caller's lifetime exam statistics.
func (s *ProfileService) Stats(ctx context.Context, userID string) (*ProfileStats, error) {
	stats, err := s.attemptRepo.GetUserStats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user stats: %w", err)
	}
	subjects, err := s.attemptRepo.GetSubjectAccuracy(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get subject accuracy: %w", err)
	}
	return &ProfileStats{UserStats: *stats, Subjects: subjects}, nil
}

// RecordActivity advances the streak for a finished exam and awards any
// newly earned badges. Best-effort: progression failures are logged, not
// surfaced, since the exam result must not depend on them. Returns the
// profile (possibly nil) so the caller can tag leaderboard entries.
func (s *ProfileService) RecordActivity(ctx context.Context, userID string, outcome session.Outcome) *model.Profile {
	profile, err := s.profileRepo.GetByID(ctx, userID)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("Streak update skipped")
		return nil
	}

	now := time.Now()
	streak := nextStreak(profile.Streak, profile.LastActiveAt, now)
	if err := s.profileRepo.UpdateStreak(ctx, userID, streak, now); err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("Streak write failed")
	} else {
		profile.Streak = streak
		profile.LastActiveAt = &now
	}

	s.awardBadges(ctx, profile, outcome)
	return profile
}

// nextStreak implements the daily streak rule: same-day activity keeps the
// count, consecutive-day activity increments it, a gap resets it to one.
func nextStreak(current int, lastActive *time.Time, now time.Time) int {
	if lastActive == nil {
		return 1
	}
	last := lastActive.In(now.Location())
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	lastDay := time.Date(last.Year(), last.Month(), last.Day(), 0, 0, 0, 0, now.Location())

	switch days := int(today.Sub(lastDay).Hours() / 24); {
	case days == 0:
		return max(current, 1)
	case days == 1:
		return current + 1
	default:
		return 1
	}
}

func (s *ProfileService) awardBadges(ctx context.Context, profile *model.Profile, outcome session.Outcome) {
	now := time.Now()
	var earned []model.Badge

	if !hasBadge(profile, "first-exam") {
		earned = append(earned, model.Badge{
			ID:          "first-exam",
			Name:        "First Steps",
			Icon:        "footprints",
			Description: "Completed your first exam",
			EarnedAt:    now,
		})
	}
	if outcome.Total > 0 && outcome.Correct == outcome.Total && !hasBadge(profile, "perfect-score") {
		earned = append(earned, model.Badge{
			ID:          "perfect-score",
			Name:        "Perfectionist",
			Icon:        "target",
			Description: "Answered every question correctly",
			EarnedAt:    now,
		})
	}
	if profile.Streak >= 7 && !hasBadge(profile, "week-streak") {
		earned = append(earned, model.Badge{
			ID:          "week-streak",
			Name:        "Week Warrior",
			Icon:        "flame",
			Description: "Practiced seven days in a row",
			EarnedAt:    now,
		})
	}

	for _, badge := range earned {
		if err := s.profileRepo.AddBadge(ctx, profile.ID, badge); err != nil {
			s.log.Warn().Err(err).Str("user_id", profile.ID).Str("badge", badge.ID).Msg("Badge write failed")
			continue
		}
		profile.Badges = append(profile.Badges, badge)
		s.log.Info().Str("user_id", profile.ID).Str("badge", badge.ID).Msg("Badge earned")
	}
}

func hasBadge(profile *model.Profile, id string) bool {
	for _, b := range profile.Badges {
		if b.ID == id {
			return true
		}
	}
	return false
}
