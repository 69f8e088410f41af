package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crackit/crackit-backend/internal/cache"
	"github.com/crackit/crackit-backend/internal/model"
)

type fakeRemote struct {
	enabled   bool
	subjects  []model.Subject
	topics    []model.Topic
	questions []model.Question
	err       error
	calls     int
}

func (f *fakeRemote) Enabled() bool { return f.enabled }

func (f *fakeRemote) ListSubjects(ctx context.Context) ([]model.Subject, error) {
	f.calls++
	return f.subjects, f.err
}

func (f *fakeRemote) ListTopics(ctx context.Context, subjectID string) ([]model.Topic, error) {
	f.calls++
	return f.topics, f.err
}

func (f *fakeRemote) ListQuestions(ctx context.Context, filter model.QuestionFilter) ([]model.Question, error) {
	f.calls++
	return f.questions, f.err
}

func newTestService(t *testing.T, remote *fakeRemote) (*Service, *cache.Store) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	store := cache.NewStore(rdb, 24*time.Hour, zerolog.Nop())
	static, err := LoadStatic()
	require.NoError(t, err)

	return NewService(remote, store, static, zerolog.Nop()), store
}

func TestSubjectsPrefersRemoteAndCaches(t *testing.T) {
	remote := &fakeRemote{
		enabled:  true,
		subjects: []model.Subject{{ID: "astro", Name: "Astronomy"}},
	}
	svc, store := newTestService(t, remote)
	ctx := context.Background()

	got := svc.Subjects(ctx)
	require.Len(t, got, 1)
	assert.Equal(t, "astro", got[0].ID)

	// The successful fetch must have landed in the offline cache.
	assert.True(t, store.IsFresh(ctx, cache.KindSubjects))
	raw, err := store.GetAll(ctx, cache.KindSubjects, nil)
	require.NoError(t, err)
	assert.Len(t, raw, 1)
}

func TestSubjectsFallsBackToCacheWhenRemoteFails(t *testing.T) {
	remote := &fakeRemote{
		enabled:  true,
		subjects: []model.Subject{{ID: "astro", Name: "Astronomy"}},
	}
	svc, _ := newTestService(t, remote)
	ctx := context.Background()

	// First call warms the cache.
	require.Len(t, svc.Subjects(ctx), 1)

	remote.err = errors.New("upstream down")
	remote.subjects = nil

	got := svc.Subjects(ctx)
	require.Len(t, got, 1)
	assert.Equal(t, "astro", got[0].ID)
}

func TestSubjectsFallsBackToStaticWhenAllElseFails(t *testing.T) {
	remote := &fakeRemote{enabled: true, err: errors.New("upstream down")}
	svc, _ := newTestService(t, remote)

	got := svc.Subjects(context.Background())
	require.NotEmpty(t, got)
	assert.Equal(t, "physics", got[0].ID)
}

func TestSubjectsRemoteDisabledSkipsFetch(t *testing.T) {
	remote := &fakeRemote{enabled: false}
	svc, _ := newTestService(t, remote)

	got := svc.Subjects(context.Background())
	require.NotEmpty(t, got)
	assert.Zero(t, remote.calls)
}

func TestTopicsCacheHonorsSubjectIndex(t *testing.T) {
	remote := &fakeRemote{
		enabled: true,
		topics: []model.Topic{
			{ID: "t1", SubjectID: "physics", Name: "Optics"},
			{ID: "t2", SubjectID: "chemistry", Name: "Acids"},
		},
	}
	svc, _ := newTestService(t, remote)
	ctx := context.Background()

	require.Len(t, svc.Topics(ctx, ""), 2)

	remote.err = errors.New("upstream down")
	remote.topics = nil

	got := svc.Topics(ctx, "physics")
	require.Len(t, got, 1)
	assert.Equal(t, "t1", got[0].ID)
}

func TestQuestionsEmptyMatchFallsBackToFullList(t *testing.T) {
	remote := &fakeRemote{enabled: false}
	svc, _ := newTestService(t, remote)

	got := svc.Questions(context.Background(), model.QuestionFilter{SubjectID: "no-such-subject"})
	assert.NotEmpty(t, got)
}

func TestQuestionsCachedWithLimitAndFilter(t *testing.T) {
	remote := &fakeRemote{
		enabled: true,
		questions: []model.Question{
			{ID: "q1", SubjectID: "physics", TopicID: "optics", Difficulty: model.DifficultyEasy},
			{ID: "q2", SubjectID: "physics", TopicID: "optics", Difficulty: model.DifficultyHard},
			{ID: "q3", SubjectID: "chemistry", TopicID: "acids", Difficulty: model.DifficultyEasy},
		},
	}
	svc, _ := newTestService(t, remote)
	ctx := context.Background()

	require.Len(t, svc.Questions(ctx, model.QuestionFilter{}), 3)

	remote.err = errors.New("upstream down")
	remote.questions = nil

	got := svc.Questions(ctx, model.QuestionFilter{SubjectID: "physics", Difficulty: model.DifficultyEasy})
	require.Len(t, got, 1)
	assert.Equal(t, "q1", got[0].ID)

	got = svc.Questions(ctx, model.QuestionFilter{SubjectID: "physics", Limit: 1})
	assert.Len(t, got, 1)
}

func TestQuestionsStaleCacheIsSkipped(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	// Zero TTL means everything written is immediately stale.
	store := cache.NewStore(rdb, 0, zerolog.Nop())
	static, err := LoadStatic()
	require.NoError(t, err)

	remote := &fakeRemote{
		enabled:   true,
		questions: []model.Question{{ID: "q1", SubjectID: "physics"}},
	}
	svc := NewService(remote, store, static, zerolog.Nop())
	ctx := context.Background()

	require.Len(t, svc.Questions(ctx, model.QuestionFilter{SubjectID: "physics"}), 1)

	remote.err = errors.New("upstream down")
	remote.questions = nil

	// Stale cache must be bypassed in favor of the bundled catalog.
	got := svc.Questions(ctx, model.QuestionFilter{SubjectID: "physics"})
	require.NotEmpty(t, got)
	assert.NotEqual(t, "q1", got[0].ID)
}

func TestQuestionsByIDsFillsGapsFromStatic(t *testing.T) {
	remote := &fakeRemote{
		enabled:   true,
		questions: []model.Question{{ID: "remote-1", SubjectID: "physics"}},
	}
	svc, _ := newTestService(t, remote)
	ctx := context.Background()

	require.NotEmpty(t, svc.Questions(ctx, model.QuestionFilter{}))

	got := svc.QuestionsByIDs(ctx, []string{"remote-1", "phy-001"})
	require.Len(t, got, 2)
	assert.Equal(t, "remote-1", got[0].ID)
	assert.Equal(t, "phy-001", got[1].ID)
}

func TestStatsCountsPerSubject(t *testing.T) {
	remote := &fakeRemote{enabled: false}
	svc, _ := newTestService(t, remote)

	stats := svc.Stats(context.Background())
	require.NotEmpty(t, stats)

	total := 0
	for _, st := range stats {
		assert.Positive(t, st.Count)
		total += st.Count
	}
	assert.Equal(t, len(svc.Questions(context.Background(), model.QuestionFilter{})), total)
}

func TestStaticQuestionsEmptyFilterReturnsAll(t *testing.T) {
	static, err := LoadStatic()
	require.NoError(t, err)

	all := static.Questions(model.QuestionFilter{})
	assert.NotEmpty(t, all)

	limited := static.Questions(model.QuestionFilter{Limit: 3, Random: true})
	assert.Len(t, limited, 3)
}
