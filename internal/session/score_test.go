package session

import (
	"testing"

	"github.com/crackit/crackit-backend/internal/model"
	"github.com/stretchr/testify/assert"
)

// questionsWithAnswers builds n questions whose correct option is always 0.
func questionsWithAnswers(n int) []model.Question {
	qs := make([]model.Question, n)
	for i := range qs {
		qs[i] = model.Question{ID: "q", CorrectIndex: 0}
	}
	return qs
}

func TestScoreNegativeMarking(t *testing.T) {
	// 10 questions: 6 correct, 2 wrong, 2 skipped.
	qs := questionsWithAnswers(10)
	answers := []int{0, 0, 0, 0, 0, 0, 1, 2, Unanswered, Unanswered}

	out := Score(answers, qs)
	assert.Equal(t, 6, out.Correct)
	assert.Equal(t, 2, out.Wrong)
	assert.Equal(t, 2, out.Skipped)
	assert.InDelta(t, 5.5, out.Score, 1e-9)
	assert.Equal(t, 60, out.Percentage)
}

func TestScoreFloorsAtZero(t *testing.T) {
	// 1 correct, 9 wrong: raw 1 − 2.25 = −1.25, clamped to 0.
	qs := questionsWithAnswers(10)
	answers := []int{0, 1, 1, 1, 1, 1, 1, 1, 1, 1}

	out := Score(answers, qs)
	assert.Equal(t, 1, out.Correct)
	assert.Equal(t, 9, out.Wrong)
	assert.Zero(t, out.Score)
}

func TestScoreAllSkippedAllowed(t *testing.T) {
	qs := questionsWithAnswers(5)
	answers := []int{Unanswered, Unanswered, Unanswered, Unanswered, Unanswered}

	out := Score(answers, qs)
	assert.Equal(t, 5, out.Skipped)
	assert.Zero(t, out.Correct)
	assert.Zero(t, out.Wrong)
	assert.Zero(t, out.Score)
	assert.Zero(t, out.Percentage)
}

func TestScoreEmptyVector(t *testing.T) {
	out := Score(nil, nil)
	assert.Zero(t, out.Total)
	assert.Zero(t, out.Score)
	assert.Zero(t, out.Percentage)
}

func TestRewardsAllCorrectBonus(t *testing.T) {
	out := Score([]int{0, 0, 0, 0, 0}, questionsWithAnswers(5))

	xp, coins := Rewards(out)
	assert.Equal(t, 100, xp) // 5*10 + 50 bonus
	assert.Equal(t, 10, coins)
}

func TestRewardsNoBonusWhenImperfect(t *testing.T) {
	out := Score([]int{0, 0, 0, 1, Unanswered}, questionsWithAnswers(5))

	xp, coins := Rewards(out)
	assert.Equal(t, 30, xp)
	assert.Equal(t, 6, coins)
}

func TestRewardsZeroTotal(t *testing.T) {
	xp, coins := Rewards(Outcome{})
	assert.Zero(t, xp)
	assert.Zero(t, coins)
}
