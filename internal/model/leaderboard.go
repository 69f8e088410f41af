package model

// LeaderboardEntry is one ranked row of the scoreboard.
type LeaderboardEntry struct {
	Rank      int     `json:"rank"`
	UserID    string  `json:"userId"`
	Name      string  `json:"name"`
	Score     float64 `json:"score"`
	TimeTaken int     `json:"timeTaken"`
}

// Leaderboard is the ordered scoreboard plus the caller's own rank
// (0 when the caller has no score yet).
type Leaderboard struct {
	Entries []LeaderboardEntry `json:"entries"`
	MyRank  int                `json:"myRank"`
}
