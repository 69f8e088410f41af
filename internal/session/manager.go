package session

import (
	"context"
	"sync"
	"time"

	"github.com/crackit/crackit-backend/internal/model"
	"github.com/rs/zerolog"
)

// Active bundles one user's live exam: the session state machine, the
// ticker runner bound to it, and the question list the answer vector is
// aligned with.
type Active struct {
	Session   *Session
	Runner    *Runner
	Questions []model.Question
	ExamType  model.ExamType
	SubjectID string
	TopicID   string
	StartedAt time.Time
}

// Manager enforces the one-live-session rule: at most one active exam per
// user. Starting a new exam abandons the previous one, and Take removes
// the entry atomically so a session can be submitted exactly once.
type Manager struct {
	mu     sync.Mutex
	active map[string]*Active
	log    zerolog.Logger

	// baseCtx bounds every runner's tick loop. Exam clocks must outlive
	// the request that started them, so runners are never tied to a
	// caller's context.
	baseCtx context.Context

	// onExpire is invoked (off the ticker goroutine) when a user's clock
	// runs out. Wired to the exam service's auto-submit.
	onExpire func(userID string)
}

// NewManager creates an empty session manager. ctx should live as long as
// the server; cancelling it stops every running clock.
func NewManager(ctx context.Context, log zerolog.Logger) *Manager {
	return &Manager{
		active:  make(map[string]*Active),
		baseCtx: ctx,
		log:     log.With().Str("component", "session_manager").Logger(),
	}
}

// SetExpiryHandler registers the auto-submit hook. Must be called before
// any session starts.
func (m *Manager) SetExpiryHandler(fn func(userID string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onExpire = fn
}

// Start creates and activates a session for the user, abandoning any
// session already in flight. The clock runs on the manager's base
// context, not the caller's.
func (m *Manager) Start(userID string, questions []model.Question, durationSeconds int, examType model.ExamType, subjectID, topicID string) *Active {
	m.mu.Lock()
	prev := m.active[userID]
	delete(m.active, userID)
	expire := m.onExpire
	m.mu.Unlock()

	if prev != nil {
		m.teardown(prev)
		m.log.Info().Str("user_id", userID).Msg("Abandoned previous session")
	}

	sess := New()
	sess.Initialize(len(questions), durationSeconds)

	act := &Active{
		Session:   sess,
		Questions: questions,
		ExamType:  examType,
		SubjectID: subjectID,
		TopicID:   topicID,
		StartedAt: time.Now(),
	}
	act.Runner = NewRunner(sess, func() {
		if expire != nil {
			expire(userID)
		}
	})

	m.mu.Lock()
	m.active[userID] = act
	m.mu.Unlock()

	act.Runner.Start(m.baseCtx)
	return act
}

// Get returns the user's live exam, if any.
func (m *Manager) Get(userID string) (*Active, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	act, ok := m.active[userID]
	return act, ok
}

// Take removes and returns the user's live exam in one step. The second
// caller gets ok=false, which is the duplicate-submit guard: whether the
// zero-clock state is observed once or many times, only one submission
// can ever claim the session.
func (m *Manager) Take(userID string) (*Active, bool) {
	m.mu.Lock()
	act, ok := m.active[userID]
	delete(m.active, userID)
	m.mu.Unlock()

	if ok {
		act.Session.EndExam()
		act.Runner.Stop()
	}
	return act, ok
}

// Abandon discards the user's live exam without producing a result.
func (m *Manager) Abandon(userID string) bool {
	m.mu.Lock()
	act, ok := m.active[userID]
	delete(m.active, userID)
	m.mu.Unlock()

	if !ok {
		return false
	}
	m.teardown(act)
	return true
}

// Shutdown stops every runner. Used on graceful shutdown.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	all := make([]*Active, 0, len(m.active))
	for _, act := range m.active {
		all = append(all, act)
	}
	m.active = make(map[string]*Active)
	m.mu.Unlock()

	for _, act := range all {
		m.teardown(act)
	}
}

func (m *Manager) teardown(act *Active) {
	act.Session.EndExam()
	act.Runner.Stop()
	act.Session.Reset()
}
