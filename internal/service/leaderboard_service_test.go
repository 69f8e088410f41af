package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crackit/crackit-backend/internal/remote"
)

func newBoard(t *testing.T) *LeaderboardService {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	// Repositories are only touched when a ranking set is cold; these
	// tests record scores first, so nil repos are never reached.
	disabled := remote.NewClient("", time.Second, zerolog.Nop())
	return NewLeaderboardService(rdb, nil, nil, disabled, zerolog.Nop())
}

func TestLeaderboardRanksByScore(t *testing.T) {
	board := newBoard(t)
	ctx := context.Background()

	board.RecordScore(ctx, "u1", "Rahim", "medical", 7.5, 300)
	board.RecordScore(ctx, "u2", "Karim", "medical", 9.0, 250)
	board.RecordScore(ctx, "u3", "Salma", "bcs", 4.25, 500)

	got, err := board.Get(ctx, "u1", CategoryGlobal, 10)
	require.NoError(t, err)
	require.Len(t, got.Entries, 3)

	assert.Equal(t, "u2", got.Entries[0].UserID)
	assert.Equal(t, 1, got.Entries[0].Rank)
	assert.Equal(t, "Karim", got.Entries[0].Name)
	assert.Equal(t, 250, got.Entries[0].TimeTaken)
	assert.Equal(t, "u1", got.Entries[1].UserID)
	assert.Equal(t, 2, got.MyRank)
}

func TestLeaderboardKeepsBestScore(t *testing.T) {
	board := newBoard(t)
	ctx := context.Background()

	board.RecordScore(ctx, "u1", "Rahim", "medical", 8.0, 300)
	board.RecordScore(ctx, "u1", "Rahim", "medical", 3.0, 200)

	got, err := board.Get(ctx, "u1", CategoryGlobal, 10)
	require.NoError(t, err)
	require.Len(t, got.Entries, 1)
	assert.Equal(t, 8.0, got.Entries[0].Score)
}

func TestLeaderboardCategoryBuckets(t *testing.T) {
	board := newBoard(t)
	ctx := context.Background()

	board.RecordScore(ctx, "u1", "Rahim", "medical", 7.0, 300)
	board.RecordScore(ctx, "u2", "Karim", "bcs", 6.0, 280)

	medical, err := board.Get(ctx, "u1", "medical", 10)
	require.NoError(t, err)
	require.Len(t, medical.Entries, 1)
	assert.Equal(t, "u1", medical.Entries[0].UserID)

	global, err := board.Get(ctx, "u2", CategoryGlobal, 10)
	require.NoError(t, err)
	assert.Len(t, global.Entries, 2)
	assert.Equal(t, 2, global.MyRank)
}

func TestLeaderboardUnrankedCaller(t *testing.T) {
	board := newBoard(t)
	ctx := context.Background()

	board.RecordScore(ctx, "u1", "Rahim", "medical", 7.0, 300)

	got, err := board.Get(ctx, "stranger", CategoryGlobal, 10)
	require.NoError(t, err)
	assert.Zero(t, got.MyRank)
}
