package cache

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewStore(client, 24*time.Hour, zerolog.Nop()), mr
}

func TestPutAndGetAll(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	err := store.Put(ctx, KindSubjects, []Record{
		{ID: "phy", Data: []byte(`{"id":"phy"}`)},
		{ID: "chem", Data: []byte(`{"id":"chem"}`)},
	})
	require.NoError(t, err)

	all, err := store.GetAll(ctx, KindSubjects, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestGetAllWithIndexFilter(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	err := store.Put(ctx, KindQuestions, []Record{
		{ID: "q1", Data: []byte(`{"id":"q1"}`), Indexes: map[string]string{"subjectId": "phy"}},
		{ID: "q2", Data: []byte(`{"id":"q2"}`), Indexes: map[string]string{"subjectId": "phy"}},
		{ID: "q3", Data: []byte(`{"id":"q3"}`), Indexes: map[string]string{"subjectId": "chem"}},
	})
	require.NoError(t, err)

	phy, err := store.GetAll(ctx, KindQuestions, &IndexFilter{Field: "subjectId", Value: "phy"})
	require.NoError(t, err)
	assert.Len(t, phy, 2)

	none, err := store.GetAll(ctx, KindQuestions, &IndexFilter{Field: "subjectId", Value: "bio"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestPutDropsOutdatedIndexes(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	// Topic t1 starts under physics, then moves to chemistry on refresh.
	require.NoError(t, store.Put(ctx, KindTopics, []Record{
		{ID: "t1", Data: []byte(`{"id":"t1","subjectId":"phy"}`), Indexes: map[string]string{"subjectId": "phy"}},
	}))
	require.NoError(t, store.Put(ctx, KindTopics, []Record{
		{ID: "t1", Data: []byte(`{"id":"t1","subjectId":"chem"}`), Indexes: map[string]string{"subjectId": "chem"}},
	}))

	phy, err := store.GetAll(ctx, KindTopics, &IndexFilter{Field: "subjectId", Value: "phy"})
	require.NoError(t, err)
	assert.Empty(t, phy, "record must not be reachable under its old index value")

	chem, err := store.GetAll(ctx, KindTopics, &IndexFilter{Field: "subjectId", Value: "chem"})
	require.NoError(t, err)
	assert.Len(t, chem, 1)
}

func TestGetByIDsSkipsUnknown(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, KindQuestions, []Record{
		{ID: "q1", Data: []byte(`{"id":"q1"}`)},
	}))

	got, err := store.GetByIDs(ctx, KindQuestions, []string{"q1", "missing"})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestIsFreshHonorsThreshold(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	// Nothing cached yet: stale.
	assert.False(t, store.IsFresh(ctx, KindSubjects))

	require.NoError(t, store.Put(ctx, KindSubjects, []Record{{ID: "phy", Data: []byte(`{}`)}}))
	assert.True(t, store.IsFresh(ctx, KindSubjects))

	// Move the clock past the 24h threshold.
	store.now = func() time.Time { return time.Now().Add(25 * time.Hour) }
	assert.False(t, store.IsFresh(ctx, KindSubjects))
}

func TestClearDropsEverything(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, KindQuestions, []Record{
		{ID: "q1", Data: []byte(`{}`), Indexes: map[string]string{"subjectId": "phy"}},
	}))
	require.NoError(t, store.Clear(ctx))

	all, err := store.GetAll(ctx, KindQuestions, nil)
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.False(t, store.IsFresh(ctx, KindQuestions))
}
