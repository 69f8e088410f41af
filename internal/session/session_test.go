package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeAllocatesNeutralState(t *testing.T) {
	for _, n := range []int{0, 1, 10, 100} {
		s := New()
		s.Initialize(n, n*60)

		snap := s.Snapshot()
		require.Len(t, snap.Answers, n)
		require.Len(t, snap.MarkedForReview, n)
		require.Len(t, snap.TimeSpent, n)
		assert.Equal(t, 0, snap.CurrentIndex)
		assert.Equal(t, n*60, snap.TotalDuration)
		assert.Equal(t, n*60, snap.Remaining)
		assert.True(t, snap.Active)
		assert.False(t, snap.PaletteVisible)

		for i := 0; i < n; i++ {
			assert.Equal(t, Unanswered, snap.Answers[i])
			assert.False(t, snap.MarkedForReview[i])
			assert.Zero(t, snap.TimeSpent[i])
		}
	}
}

func TestSelectAnswerTogglesOnReclick(t *testing.T) {
	s := New()
	s.Initialize(3, 180)

	s.SelectAnswer(1, 2)
	assert.Equal(t, 2, s.Snapshot().Answers[1])

	// Reclicking the same option clears the slot.
	s.SelectAnswer(1, 2)
	assert.Equal(t, Unanswered, s.Snapshot().Answers[1])

	// Selecting a different option replaces, not clears.
	s.SelectAnswer(1, 0)
	s.SelectAnswer(1, 3)
	assert.Equal(t, 3, s.Snapshot().Answers[1])

	// Answering does not advance the pointer.
	assert.Equal(t, 0, s.Snapshot().CurrentIndex)
}

func TestToggleReviewIndependentOfAnswers(t *testing.T) {
	s := New()
	s.Initialize(2, 120)

	s.ToggleReview(0)
	snap := s.Snapshot()
	assert.True(t, snap.MarkedForReview[0])
	assert.Equal(t, Unanswered, snap.Answers[0])

	s.ToggleReview(0)
	assert.False(t, s.Snapshot().MarkedForReview[0])
}

func TestNavigationClamps(t *testing.T) {
	s := New()
	s.Initialize(3, 180)

	s.PrevQuestion()
	assert.Equal(t, 0, s.Snapshot().CurrentIndex)

	s.NextQuestion()
	s.NextQuestion()
	s.NextQuestion() // Already at the last question.
	assert.Equal(t, 2, s.Snapshot().CurrentIndex)

	s.GoToQuestion(1)
	assert.Equal(t, 1, s.Snapshot().CurrentIndex)
}

func TestTickDrivesClockToZeroAndStops(t *testing.T) {
	s := New()
	s.Initialize(2, 5)

	for i := 0; i < 5; i++ {
		assert.True(t, s.Active())
		s.Tick()
	}

	snap := s.Snapshot()
	assert.Equal(t, 0, snap.Remaining)
	assert.False(t, snap.Active)

	// Further ticks never push the clock below zero.
	s.Tick()
	s.Tick()
	assert.Equal(t, 0, s.Snapshot().Remaining)
}

func TestTickChargesCurrentQuestion(t *testing.T) {
	s := New()
	s.Initialize(3, 180)

	s.Tick()
	s.Tick()
	s.GoToQuestion(2)
	s.Tick()

	snap := s.Snapshot()
	assert.Equal(t, 2, snap.TimeSpent[0])
	assert.Equal(t, 0, snap.TimeSpent[1])
	assert.Equal(t, 1, snap.TimeSpent[2])
}

func TestEndExamIsIdempotentAndKeepsAnswers(t *testing.T) {
	s := New()
	s.Initialize(2, 120)
	s.SelectAnswer(0, 1)

	s.EndExam()
	s.EndExam()

	snap := s.Snapshot()
	assert.False(t, snap.Active)
	assert.Equal(t, 1, snap.Answers[0])
}

func TestResetReturnsToNeutral(t *testing.T) {
	s := New()
	s.Initialize(4, 240)
	s.SelectAnswer(0, 2)
	s.ToggleReview(1)
	s.Tick()

	s.Reset()

	snap := s.Snapshot()
	assert.Zero(t, snap.TotalQuestions)
	assert.Empty(t, snap.Answers)
	assert.Zero(t, snap.Remaining)
	assert.False(t, snap.Active)
}

func TestTogglePalette(t *testing.T) {
	s := New()
	s.Initialize(1, 60)

	s.TogglePalette()
	assert.True(t, s.Snapshot().PaletteVisible)
	s.TogglePalette()
	assert.False(t, s.Snapshot().PaletteVisible)
}

func TestDefaultDuration(t *testing.T) {
	assert.Equal(t, 600, DefaultDuration(10))
	assert.Equal(t, 0, DefaultDuration(0))
}
