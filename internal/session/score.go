package session

import (
	"math"

	"github.com/crackit/crackit-backend/internal/model"
)

// Negative-marking policy: +1 per correct, −0.25 per wrong, 0 per skipped.
const (
	pointsPerCorrect  = 1.0
	penaltyPerWrong   = 0.25
	xpPerCorrect      = 10
	xpAllCorrectBonus = 50
	coinsPerCorrect   = 2
)

// Outcome is the scored result of a finished answer vector.
type Outcome struct {
	Correct    int
	Wrong      int
	Skipped    int
	Total      int
	Score      float64
	Percentage int
}

// Score grades an answer vector against the index-aligned question list.
// The raw score is floored at zero so a run of wrong answers can never go
// negative. An empty vector grades to all zeroes.
func Score(answers []int, questions []model.Question) Outcome {
	out := Outcome{Total: len(answers)}

	for i, ans := range answers {
		switch {
		case ans == Unanswered:
			out.Skipped++
		case i < len(questions) && ans == questions[i].CorrectIndex:
			out.Correct++
		default:
			out.Wrong++
		}
	}

	raw := float64(out.Correct)*pointsPerCorrect - float64(out.Wrong)*penaltyPerWrong
	out.Score = math.Max(0, raw)

	if out.Total > 0 {
		out.Percentage = int(math.Round(float64(out.Correct) / float64(out.Total) * 100))
	}
	return out
}

// Rewards converts an outcome into profile progression: XP and coins.
// A flawless run earns a flat bonus on top of the per-question XP.
func Rewards(out Outcome) (xp, coins int) {
	xp = out.Correct * xpPerCorrect
	if out.Total > 0 && out.Correct == out.Total {
		xp += xpAllCorrectBonus
	}
	coins = out.Correct * coinsPerCorrect
	return xp, coins
}
