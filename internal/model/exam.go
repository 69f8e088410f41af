package model

import "time"

// ExamType distinguishes how a session was started.
type ExamType string

const (
	ExamTypePractice ExamType = "practice"
	ExamTypeMock     ExamType = "mock"
	ExamTypeLive     ExamType = "live"
)

// StartExamRequest is the payload for starting a new exam session.
// Practice sessions take the matching question set with one minute per
// question. Mock sessions must pick from the fixed count/duration menus.
type StartExamRequest struct {
	Type       string `json:"type" binding:"required,oneof=practice mock live"`
	SubjectID  string `json:"subjectId" binding:"omitempty,max=64"`
	TopicID    string `json:"topicId" binding:"omitempty,max=64"`
	Difficulty string `json:"difficulty" binding:"omitempty,oneof=easy medium hard"`
	// Mock only.
	QuestionCount   int `json:"questionCount" binding:"omitempty,oneof=10 20 30 50 100"`
	DurationMinutes int `json:"durationMinutes" binding:"omitempty,oneof=15 30 45 60 90"`
	// Live only.
	LiveExamID string `json:"liveExamId" binding:"omitempty,max=64"`
}

// AnswerRequest selects (or re-selects to clear) an option for a question.
type AnswerRequest struct {
	Index  int `json:"index" binding:"min=0"`
	Option int `json:"option" binding:"min=0,max=3"`
}

// IndexRequest addresses a question slot by position.
type IndexRequest struct {
	Index int `json:"index" binding:"min=0"`
}

// LiveExam is a scheduled exam with a shared static start time. The "live"
// aspect is a countdown, not a synchronized multi-user session.
type LiveExam struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	TitleBn         string    `json:"titleBn"`
	Category        string    `json:"category"`
	ScheduledAt     time.Time `json:"scheduledAt"`
	DurationSeconds int       `json:"duration"`
	TotalQuestions  int       `json:"totalQuestions"`
	RegisteredCount int       `json:"registeredCount"`
	IsPremium       bool      `json:"isPremium"`
}

// LiveExamStatus is derived from the schedule at read time.
type LiveExamStatus string

const (
	LiveStatusUpcoming  LiveExamStatus = "upcoming"
	LiveStatusLive      LiveExamStatus = "live"
	LiveStatusCompleted LiveExamStatus = "completed"
)

// Status derives the live exam's phase at the given instant.
func (e *LiveExam) Status(now time.Time) LiveExamStatus {
	switch {
	case now.Before(e.ScheduledAt):
		return LiveStatusUpcoming
	case now.Before(e.ScheduledAt.Add(time.Duration(e.DurationSeconds) * time.Second)):
		return LiveStatusLive
	default:
		return LiveStatusCompleted
	}
}
