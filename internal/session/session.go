package session

import "sync"

// Unanswered marks an answer slot with no selection.
const Unanswered = -1

// Session is the state machine for one timed exam attempt. All answer,
// review and time vectors are index-aligned with the question list the
// session was created for; the session never owns the questions themselves.
//
// Handlers and the ticker goroutine mutate concurrently, so every
// transition holds the lock. Each operation is a single Active → Active
// self-transition; Active → Ended happens on EndExam or when the clock
// runs out inside Tick.
type Session struct {
	mu sync.Mutex

	totalQuestions  int
	currentIndex    int
	answers         []int
	markedForReview []bool
	timeSpent       []int
	totalDuration   int
	remaining       int
	active          bool
	paletteVisible  bool
}

// New returns an uninitialized session. Initialize must be called before use.
func New() *Session {
	return &Session{}
}

// Initialize allocates neutral state for questionCount questions and starts
// the clock at durationSeconds. questionCount must be >= 0.
func (s *Session) Initialize(questionCount, durationSeconds int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.totalQuestions = questionCount
	s.currentIndex = 0
	s.answers = make([]int, questionCount)
	for i := range s.answers {
		s.answers[i] = Unanswered
	}
	s.markedForReview = make([]bool, questionCount)
	s.timeSpent = make([]int, questionCount)
	s.totalDuration = durationSeconds
	s.remaining = durationSeconds
	s.active = true
	s.paletteVisible = false
}

// SelectAnswer sets the answer at index to option, or clears it back to
// Unanswered when option is already selected (deselect-by-reclick).
// The current question pointer does not move.
func (s *Session) SelectAnswer(index, option int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= s.totalQuestions {
		return
	}
	if s.answers[index] == option {
		s.answers[index] = Unanswered
	} else {
		s.answers[index] = option
	}
}

// ToggleReview flips the review flag at index, independent of the answer.
func (s *Session) ToggleReview(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= s.totalQuestions {
		return
	}
	s.markedForReview[index] = !s.markedForReview[index]
}

// GoToQuestion jumps the pointer to index. Callers pass in-range indices
// from the navigator grid; out-of-range values are ignored.
func (s *Session) GoToQuestion(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= s.totalQuestions {
		return
	}
	s.currentIndex = index
}

// NextQuestion advances the pointer, clamped to the last question.
func (s *Session) NextQuestion() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.currentIndex < s.totalQuestions-1 {
		s.currentIndex++
	}
}

// PrevQuestion moves the pointer back, clamped to the first question.
func (s *Session) PrevQuestion() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.currentIndex > 0 {
		s.currentIndex--
	}
}

// Tick is the sole timer-driven transition: one wall-clock second elapsed.
// It decrements the remaining time (floored at 0), charges the second to
// the current question, and deactivates the session when time runs out.
// Returns whether the session is still active so the caller can stop the
// ticker as soon as the clock hits zero.
func (s *Session) Tick() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active {
		return false
	}
	if s.remaining > 0 {
		s.remaining--
	}
	if s.currentIndex >= 0 && s.currentIndex < s.totalQuestions {
		s.timeSpent[s.currentIndex]++
	}
	s.active = s.remaining > 0
	return s.active
}

// TogglePalette flips the question-navigator visibility. Pure UI state.
func (s *Session) TogglePalette() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paletteVisible = !s.paletteVisible
}

// EndExam deactivates the session without touching the answers. Idempotent.
func (s *Session) EndExam() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = false
}

// Reset returns every field to the uninitialized neutral values.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.totalQuestions = 0
	s.currentIndex = 0
	s.answers = nil
	s.markedForReview = nil
	s.timeSpent = nil
	s.totalDuration = 0
	s.remaining = 0
	s.active = false
	s.paletteVisible = false
}

// Active reports whether the session clock is still running.
func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Snapshot is an immutable copy of the session state for serialization.
type Snapshot struct {
	TotalQuestions  int    `json:"totalQuestions"`
	CurrentIndex    int    `json:"currentIndex"`
	Answers         []int  `json:"answers"`
	MarkedForReview []bool `json:"markedForReview"`
	TimeSpent       []int  `json:"timeSpent"`
	TotalDuration   int    `json:"totalDuration"`
	Remaining       int    `json:"remaining"`
	Active          bool   `json:"active"`
	PaletteVisible  bool   `json:"paletteVisible"`
}

// Snapshot copies the current state under the lock.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		TotalQuestions:  s.totalQuestions,
		CurrentIndex:    s.currentIndex,
		Answers:         make([]int, len(s.answers)),
		MarkedForReview: make([]bool, len(s.markedForReview)),
		TimeSpent:       make([]int, len(s.timeSpent)),
		TotalDuration:   s.totalDuration,
		Remaining:       s.remaining,
		Active:          s.active,
		PaletteVisible:  s.paletteVisible,
	}
	copy(snap.Answers, s.answers)
	copy(snap.MarkedForReview, s.markedForReview)
	copy(snap.TimeSpent, s.timeSpent)
	return snap
}

// DefaultDuration is the standard time budget: one minute per question.
func DefaultDuration(questionCount int) int {
	return questionCount * 60
}
