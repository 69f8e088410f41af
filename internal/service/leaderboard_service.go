package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/crackit/crackit-backend/internal/config"
	"github.com/crackit/crackit-backend/internal/model"
	"github.com/crackit/crackit-backend/internal/remote"
	"github.com/crackit/crackit-backend/internal/repository"
)

// CategoryGlobal is the leaderboard bucket every score lands in, next to
// the user's own exam category bucket.
const CategoryGlobal = "global"

const defaultBoardSize = 50

// LeaderboardService ranks users by their best score. Rankings live in
// Redis sorted sets; a cold set is rebuilt from attempt history, and the
// upstream leaderboard is the final fallback.
type LeaderboardService struct {
	rdb         *redis.Client
	profileRepo *repository.ProfileRepository
	attemptRepo *repository.AttemptRepository
	remote      *remote.Client
	log         zerolog.Logger
}

// NewLeaderboardService creates a new LeaderboardService.
func NewLeaderboardService(
	rdb *redis.Client,
	profileRepo *repository.ProfileRepository,
	attemptRepo *repository.AttemptRepository,
	remoteClient *remote.Client,
	log zerolog.Logger,
) *LeaderboardService {
	return &LeaderboardService{
		rdb:         rdb,
		profileRepo: profileRepo,
		attemptRepo: attemptRepo,
		remote:      remoteClient,
		log:         log.With().Str("component", "leaderboard_service").Logger(),
	}
}

// RecordScore folds a finished exam into the rankings. Only a user's best
// score counts, so re-taking exams can never lower a position.
func (s *LeaderboardService) RecordScore(ctx context.Context, userID, name, category string, score float64, timeTaken int) {
	categories := []string{CategoryGlobal}
	if category != "" && category != CategoryGlobal {
		categories = append(categories, category)
	}

	pipe := s.rdb.Pipeline()
	for _, cat := range categories {
		pipe.ZAddArgs(ctx, config.CacheKey.LeaderboardKey(cat), redis.ZAddArgs{
			GT:      true,
			Members: []redis.Z{{Score: score, Member: userID}},
		})
		if name != "" {
			pipe.HSet(ctx, config.CacheKey.LeaderboardNameKey(cat), userID, name)
		}
		pipe.HSet(ctx, config.CacheKey.LeaderboardTimeKey(cat), userID, timeTaken)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("Leaderboard update failed")
	}
}

// Get returns the top of a category leaderboard plus the caller's rank.
func (s *LeaderboardService) Get(ctx context.Context, userID, category string, limit int) (*model.Leaderboard, error) {
	if category == "" {
		category = CategoryGlobal
	}
	if limit < 1 || limit > 100 {
		limit = defaultBoardSize
	}

	key := config.CacheKey.LeaderboardKey(category)
	size, err := s.rdb.ZCard(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("leaderboard size: %w", err)
	}
	if size == 0 {
		if err := s.rebuild(ctx, category); err != nil {
			s.log.Warn().Err(err).Str("category", category).Msg("Leaderboard rebuild failed")
		}
	}

	rows, err := s.rdb.ZRevRangeWithScores(ctx, key, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("leaderboard range: %w", err)
	}
	if len(rows) == 0 {
		return s.fromUpstream(ctx, limit)
	}

	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i], _ = row.Member.(string)
	}
	names, times := s.memberMeta(ctx, category, ids)

	board := &model.Leaderboard{Entries: make([]model.LeaderboardEntry, len(rows))}
	for i, row := range rows {
		board.Entries[i] = model.LeaderboardEntry{
			Rank:      i + 1,
			UserID:    ids[i],
			Name:      names[ids[i]],
			Score:     row.Score,
			TimeTaken: times[ids[i]],
		}
	}

	if rank, err := s.rdb.ZRevRank(ctx, key, userID).Result(); err == nil {
		board.MyRank = int(rank) + 1
	}
	return board, nil
}

// rebuild repopulates a cold ranking set from attempt history.
func (s *LeaderboardService) rebuild(ctx context.Context, category string) error {
	if category != CategoryGlobal {
		return nil // Only the global board can be derived from raw history.
	}

	entries, err := s.attemptRepo.TopScores(ctx, defaultBoardSize)
	if err != nil {
		return fmt.Errorf("top scores: %w", err)
	}
	if len(entries) == 0 {
		return nil
	}

	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.UserID
	}
	names, err := s.profileRepo.ListNames(ctx, ids)
	if err != nil {
		s.log.Warn().Err(err).Msg("Leaderboard name lookup failed")
	}

	pipe := s.rdb.Pipeline()
	for _, e := range entries {
		pipe.ZAddArgs(ctx, config.CacheKey.LeaderboardKey(category), redis.ZAddArgs{
			GT:      true,
			Members: []redis.Z{{Score: e.Score, Member: e.UserID}},
		})
		if name, ok := names[e.UserID]; ok {
			pipe.HSet(ctx, config.CacheKey.LeaderboardNameKey(category), e.UserID, name)
		}
		pipe.HSet(ctx, config.CacheKey.LeaderboardTimeKey(category), e.UserID, e.TimeTaken)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("rebuild write: %w", err)
	}

	s.log.Info().Int("entries", len(entries)).Msg("Leaderboard rebuilt from history")
	return nil
}

// fromUpstream serves the upstream leaderboard when nothing local exists.
func (s *LeaderboardService) fromUpstream(ctx context.Context, limit int) (*model.Leaderboard, error) {
	board := &model.Leaderboard{Entries: []model.LeaderboardEntry{}}
	if !s.remote.Enabled() {
		return board, nil
	}

	entries, err := s.remote.GetLeaderboard(ctx, limit)
	if err != nil {
		s.log.Warn().Err(err).Msg("Upstream leaderboard unavailable")
		return board, nil
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	board.Entries = entries
	return board, nil
}

func (s *LeaderboardService) memberMeta(ctx context.Context, category string, ids []string) (map[string]string, map[string]int) {
	names := make(map[string]string, len(ids))
	times := make(map[string]int, len(ids))
	if len(ids) == 0 {
		return names, times
	}

	rawNames, err := s.rdb.HMGet(ctx, config.CacheKey.LeaderboardNameKey(category), ids...).Result()
	if err == nil {
		for i, v := range rawNames {
			if str, ok := v.(string); ok {
				names[ids[i]] = str
			}
		}
	}
	rawTimes, err := s.rdb.HMGet(ctx, config.CacheKey.LeaderboardTimeKey(category), ids...).Result()
	if err == nil {
		for i, v := range rawTimes {
			if str, ok := v.(string); ok {
				if n, err := strconv.Atoi(str); err == nil {
					times[ids[i]] = n
				}
			}
		}
	}
	return names, times
}
