package model

import (
	"time"

	"github.com/google/uuid"
)

// Attempt is a finished exam recorded in the user's history.
type Attempt struct {
	ID             uuid.UUID `json:"id"`
	UserID         string    `json:"userId"`
	ExamType       ExamType  `json:"examType"`
	SubjectID      string    `json:"subjectId,omitempty"`
	TopicID        string    `json:"topicId,omitempty"`
	TotalQuestions int       `json:"totalQuestions"`
	Correct        int       `json:"correct"`
	Wrong          int       `json:"wrong"`
	Skipped        int       `json:"skipped"`
	Score          float64   `json:"score"`
	TimeTaken      int       `json:"timeTaken"`
	CompletedAt    time.Time `json:"completedAt"`
}

// ExamResult is the serializable hand-off produced exactly once when a
// session ends. Immutable once computed.
type ExamResult struct {
	AttemptID  uuid.UUID `json:"attemptId"`
	Correct    int       `json:"correct"`
	Wrong      int       `json:"wrong"`
	Skipped    int       `json:"skipped"`
	Total      int       `json:"total"`
	Score      float64   `json:"score"`
	Percentage int       `json:"percentage"`
	Answers    []int     `json:"answers"`
	TimeTaken  int       `json:"timeTaken"`
	// Breakdown carries per-question correctness for the result view.
	Breakdown []ResultItem `json:"breakdown"`
}

// ResultItem is one question's outcome in a result breakdown.
type ResultItem struct {
	QuestionID   string `json:"questionId"`
	Text         string `json:"text"`
	Selected     int    `json:"selected"` // -1 when skipped
	CorrectIndex int    `json:"correctIndex"`
	Correct      bool   `json:"correct"`
	Explanation  string `json:"explanation,omitempty"`
}
