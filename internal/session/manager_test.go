package session

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/crackit/crackit-backend/internal/model"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testQuestions(n int) []model.Question {
	qs := make([]model.Question, n)
	for i := range qs {
		qs[i] = model.Question{ID: "q", CorrectIndex: 0}
	}
	return qs
}

func TestManagerSingleSessionPerUser(t *testing.T) {
	m := NewManager(context.Background(), zerolog.Nop())

	first := m.Start("u1", testQuestions(3), 180, model.ExamTypePractice, "", "")
	second := m.Start("u1", testQuestions(5), 300, model.ExamTypeMock, "", "")
	defer m.Shutdown()

	// The first session was abandoned and reset.
	assert.False(t, first.Session.Active())
	assert.Zero(t, first.Session.Snapshot().TotalQuestions)

	act, ok := m.Get("u1")
	require.True(t, ok)
	assert.Same(t, second, act)
	assert.Equal(t, 5, act.Session.Snapshot().TotalQuestions)
}

func TestManagerTakeClaimsOnce(t *testing.T) {
	m := NewManager(context.Background(), zerolog.Nop())
	m.Start("u1", testQuestions(2), 120, model.ExamTypePractice, "", "")

	act, ok := m.Take("u1")
	require.True(t, ok)
	assert.False(t, act.Session.Active())

	// Second claim fails: the duplicate-submit guard.
	_, ok = m.Take("u1")
	assert.False(t, ok)
}

func TestManagerAbandon(t *testing.T) {
	m := NewManager(context.Background(), zerolog.Nop())
	m.Start("u1", testQuestions(2), 120, model.ExamTypePractice, "", "")

	assert.True(t, m.Abandon("u1"))
	assert.False(t, m.Abandon("u1"))

	_, ok := m.Get("u1")
	assert.False(t, ok)
}

func TestManagerExpiryHandlerAutoSubmits(t *testing.T) {
	m := NewManager(context.Background(), zerolog.Nop())

	var expired atomic.Int32
	m.SetExpiryHandler(func(userID string) {
		if userID == "u1" {
			expired.Add(1)
		}
		// Auto-submit claims the session through the same path as a
		// manual submit.
		m.Take(userID)
	})

	m.Start("u1", testQuestions(1), 2, model.ExamTypePractice, "", "")

	require.Eventually(t, func() bool { return expired.Load() == 1 }, 5*time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), expired.Load())

	_, ok := m.Get("u1")
	assert.False(t, ok)
}

// The clock is bound to the manager's lifetime. A start request's context
// dies the moment the handler returns; the ticker must keep running and
// the session must still auto-submit.
func TestManagerClockOutlivesStartCaller(t *testing.T) {
	m := NewManager(context.Background(), zerolog.Nop())

	var expired atomic.Int32
	m.SetExpiryHandler(func(userID string) {
		expired.Add(1)
		m.Take(userID)
	})

	startExam := func() {
		reqCtx, cancel := context.WithCancel(context.Background())
		m.Start("u1", testQuestions(1), 2, model.ExamTypePractice, "", "")
		cancel() // The request context dies as soon as the response is written.
		<-reqCtx.Done()
	}
	startExam()

	act, ok := m.Get("u1")
	require.True(t, ok)

	// The countdown keeps moving after the start caller is long gone.
	require.Eventually(t, func() bool {
		return act.Session.Snapshot().Remaining < 2
	}, 3*time.Second, 10*time.Millisecond)

	require.Eventually(t, func() bool { return expired.Load() == 1 }, 5*time.Second, 10*time.Millisecond)

	_, ok = m.Get("u1")
	assert.False(t, ok)
}

func TestManagerBaseContextCancelStopsClocks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	m := NewManager(ctx, zerolog.Nop())

	act := m.Start("u1", testQuestions(1), 1000, model.ExamTypePractice, "", "")
	cancel()

	time.Sleep(20 * time.Millisecond)
	remaining := act.Session.Snapshot().Remaining

	// No further ticks once the server context is cancelled.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, remaining, act.Session.Snapshot().Remaining)
}
