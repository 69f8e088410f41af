package session

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunnerExpiresExactlyOnce(t *testing.T) {
	s := New()
	s.Initialize(1, 3)

	var fired atomic.Int32
	r := newRunnerWithInterval(s, func() { fired.Add(1) }, time.Millisecond)
	r.Start(context.Background())

	require.Eventually(t, func() bool { return !s.Active() }, time.Second, time.Millisecond)
	require.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, time.Millisecond)

	// The loop has exited; nothing fires again.
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), fired.Load())
	assert.Equal(t, 0, s.Snapshot().Remaining)
}

func TestRunnerStopsWithoutExpiry(t *testing.T) {
	s := New()
	s.Initialize(1, 1000)

	var fired atomic.Int32
	r := newRunnerWithInterval(s, func() { fired.Add(1) }, time.Millisecond)
	r.Start(context.Background())

	time.Sleep(10 * time.Millisecond)
	r.Stop()

	remaining := s.Snapshot().Remaining
	assert.Zero(t, fired.Load())

	// No orphaned ticker keeps mutating the session after Stop.
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, remaining, s.Snapshot().Remaining)
}

func TestRunnerStopIsIdempotent(t *testing.T) {
	s := New()
	s.Initialize(1, 1000)

	r := newRunnerWithInterval(s, nil, time.Millisecond)
	r.Start(context.Background())

	r.Stop()
	r.Stop()
}

func TestRunnerContextCancelTearsDown(t *testing.T) {
	s := New()
	s.Initialize(1, 1000)

	ctx, cancel := context.WithCancel(context.Background())
	r := newRunnerWithInterval(s, nil, time.Millisecond)
	r.Start(ctx)

	cancel()
	r.Stop() // Must return promptly once the loop has exited.
}
