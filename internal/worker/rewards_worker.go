package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/crackit/crackit-backend/internal/config"
	"github.com/crackit/crackit-backend/internal/repository"
)

const (
	RewardsBatchSize    = 100
	RewardsBatchTimeout = 2 * time.Second
	RewardsPollTimeout  = 1 * time.Second
)

// RewardsWorker drains the rewards queue and credits XP and coins with one
// bulk UPDATE per batch.
type RewardsWorker struct {
	profileRepo *repository.ProfileRepository
	rdb         *redis.Client
	log         zerolog.Logger
}

func NewRewardsWorker(profileRepo *repository.ProfileRepository, rdb *redis.Client, log zerolog.Logger) *RewardsWorker {
	return &RewardsWorker{
		profileRepo: profileRepo,
		rdb:         rdb,
		log:         log.With().Str("component", "rewards_worker").Logger(),
	}
}

type rewardsPayload struct {
	UserID string `json:"userId"`
	XP     int    `json:"xp"`
	Coins  int    `json:"coins"`
}

// ----------------------------------------------------------------
// Worker loop with batching
// ----------------------------------------------------------------

func (w *RewardsWorker) Start(ctx context.Context) {
	w.log.Info().Msg("RewardsWorker started")

	batch := make([]*rewardsPayload, 0, RewardsBatchSize)
	lastFlush := time.Now()

	for {
		// Should flush?
		if len(batch) > 0 &&
			(len(batch) >= RewardsBatchSize || time.Since(lastFlush) >= RewardsBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, RewardsPollTimeout, config.WorkerKey.PersistRewardsQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var p rewardsPayload
			if err := json.Unmarshal([]byte(item[1]), &p); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			batch = append(batch, &p)
		}
	}
}

// ----------------------------------------------------------------
// BULK PostgreSQL UPDATE using UNNEST + alias
// ----------------------------------------------------------------

func (w *RewardsWorker) flushSafe(ctx context.Context, batch []*rewardsPayload) {
	if len(batch) == 0 {
		return
	}

	// Jobs for the same user are merged so one UPDATE row credits the sum.
	merged := make(map[string]*rewardsPayload, len(batch))
	order := make([]string, 0, len(batch))
	for _, p := range batch {
		if acc, ok := merged[p.UserID]; ok {
			acc.XP += p.XP
			acc.Coins += p.Coins
			continue
		}
		cp := *p
		merged[p.UserID] = &cp
		order = append(order, p.UserID)
	}

	ids := make([]string, 0, len(order))
	xp := make([]int, 0, len(order))
	coins := make([]int, 0, len(order))
	for _, id := range order {
		ids = append(ids, id)
		xp = append(xp, merged[id].XP)
		coins = append(coins, merged[id].Coins)
	}

	if err := w.profileRepo.BulkAddRewards(ctx, ids, xp, coins); err != nil {
		w.log.Warn().Err(err).Msg("Bulk rewards update failed, using fallback")

		for _, id := range order {
			p := merged[id]
			if err := w.profileRepo.AddRewards(ctx, id, p.XP, p.Coins); err != nil {
				w.log.Error().Err(err).Str("user_id", id).Msg("Single rewards update failed — requeueing")
				raw, _ := json.Marshal(p)
				w.rdb.RPush(ctx, config.WorkerKey.PersistRewardsQueue, raw)
			}
		}
		return
	}

	w.log.Debug().Int("users", len(order)).Msg("Rewards batch credited")
}
