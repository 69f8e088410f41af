package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/crackit/crackit-backend/internal/catalog"
	"github.com/crackit/crackit-backend/internal/config"
	"github.com/crackit/crackit-backend/internal/model"
	"github.com/crackit/crackit-backend/internal/remote"
	"github.com/crackit/crackit-backend/internal/repository"
	"github.com/crackit/crackit-backend/internal/session"
)

// Defaults applied when a start request leaves mock parameters unset.
const (
	defaultMockQuestionCount   = 10
	defaultMockDurationMinutes = 15
)

// SessionView is the client-facing picture of a running exam: the public
// question list plus the session state, answer key stripped.
type SessionView struct {
	ExamType  model.ExamType         `json:"examType"`
	SubjectID string                 `json:"subjectId,omitempty"`
	TopicID   string                 `json:"topicId,omitempty"`
	StartedAt time.Time              `json:"startedAt"`
	Questions []model.PublicQuestion `json:"questions"`
	State     session.Snapshot       `json:"state"`
}

// rewardsJob is the payload pushed to the rewards persistence queue.
type rewardsJob struct {
	UserID string `json:"userId"`
	XP     int    `json:"xp"`
	Coins  int    `json:"coins"`
}

// ExamService owns the exam lifecycle: starting sessions, relaying session
// commands, and turning a finished session into a result exactly once.
type ExamService struct {
	manager     *session.Manager
	catalog     *catalog.Service
	liveRepo    *repository.LiveExamRepository
	attemptRepo *repository.AttemptRepository
	profileSvc  *ProfileService
	board       *LeaderboardService
	remote      *remote.Client
	rdb         *redis.Client
	resultTTL   time.Duration
	log         zerolog.Logger
}

// NewExamService creates an ExamService and registers itself as the
// session manager's expiry handler, so a session whose clock runs out is
// submitted automatically.
func NewExamService(
	manager *session.Manager,
	catalogSvc *catalog.Service,
	liveRepo *repository.LiveExamRepository,
	attemptRepo *repository.AttemptRepository,
	profileSvc *ProfileService,
	board *LeaderboardService,
	remoteClient *remote.Client,
	rdb *redis.Client,
	resultTTL time.Duration,
	log zerolog.Logger,
) *ExamService {
	s := &ExamService{
		manager:     manager,
		catalog:     catalogSvc,
		liveRepo:    liveRepo,
		attemptRepo: attemptRepo,
		profileSvc:  profileSvc,
		board:       board,
		remote:      remoteClient,
		rdb:         rdb,
		resultTTL:   resultTTL,
		log:         log.With().Str("component", "exam_service").Logger(),
	}
	manager.SetExpiryHandler(s.autoSubmit)
	return s
}

// Start begins a new exam session for the user. Any session already in
// flight is abandoned without a result.
func (s *ExamService) Start(ctx context.Context, userID string, req model.StartExamRequest) (*SessionView, error) {
	var (
		questions []model.Question
		duration  int
	)

	switch model.ExamType(req.Type) {
	case model.ExamTypePractice:
		questions = s.catalog.Questions(ctx, model.QuestionFilter{
			SubjectID:  req.SubjectID,
			TopicID:    req.TopicID,
			Difficulty: model.Difficulty(req.Difficulty),
			Random:     true,
		})
		duration = session.DefaultDuration(len(questions))

	case model.ExamTypeMock:
		count := req.QuestionCount
		if count == 0 {
			count = defaultMockQuestionCount
		}
		minutes := req.DurationMinutes
		if minutes == 0 {
			minutes = defaultMockDurationMinutes
		}
		questions = s.catalog.Questions(ctx, model.QuestionFilter{
			SubjectID:  req.SubjectID,
			Difficulty: model.Difficulty(req.Difficulty),
			Limit:      count,
			Random:     true,
		})
		duration = minutes * 60

	case model.ExamTypeLive:
		exam, err := s.liveRepo.GetByID(ctx, req.LiveExamID)
		if err != nil {
			return nil, ErrExamNotAvailable
		}
		if exam.Status(time.Now()) != model.LiveStatusLive {
			return nil, ErrExamNotAvailable
		}
		questions = s.catalog.Questions(ctx, model.QuestionFilter{
			Limit:  exam.TotalQuestions,
			Random: true,
		})
		duration = exam.DurationSeconds

	default:
		return nil, ErrExamNotAvailable
	}

	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}

	act := s.manager.Start(userID, questions, duration, model.ExamType(req.Type), req.SubjectID, req.TopicID)
	s.log.Info().
		Str("user_id", userID).
		Str("exam_type", req.Type).
		Int("questions", len(questions)).
		Int("duration", duration).
		Msg("Exam session started")

	return viewOf(act), nil
}

// State returns the user's running session, if any.
func (s *ExamService) State(userID string) (*SessionView, error) {
	act, ok := s.manager.Get(userID)
	if !ok {
		return nil, ErrNoSession
	}
	return viewOf(act), nil
}

// Answer selects (or re-selects to clear) an option for a question.
func (s *ExamService) Answer(userID string, req model.AnswerRequest) (*session.Snapshot, error) {
	return s.mutate(userID, func(sess *session.Session) {
		sess.SelectAnswer(req.Index, req.Option)
	})
}

// ToggleReview flips a question's review flag.
func (s *ExamService) ToggleReview(userID string, index int) (*session.Snapshot, error) {
	return s.mutate(userID, func(sess *session.Session) {
		sess.ToggleReview(index)
	})
}

// GoTo jumps the current-question pointer.
func (s *ExamService) GoTo(userID string, index int) (*session.Snapshot, error) {
	return s.mutate(userID, func(sess *session.Session) {
		sess.GoToQuestion(index)
	})
}

// Next advances the current-question pointer.
func (s *ExamService) Next(userID string) (*session.Snapshot, error) {
	return s.mutate(userID, func(sess *session.Session) {
		sess.NextQuestion()
	})
}

// Prev moves the current-question pointer back.
func (s *ExamService) Prev(userID string) (*session.Snapshot, error) {
	return s.mutate(userID, func(sess *session.Session) {
		sess.PrevQuestion()
	})
}

// TogglePalette flips the question navigator visibility.
func (s *ExamService) TogglePalette(userID string) (*session.Snapshot, error) {
	return s.mutate(userID, func(sess *session.Session) {
		sess.TogglePalette()
	})
}

// Abandon discards the user's running session without a result.
func (s *ExamService) Abandon(userID string) error {
	if !s.manager.Abandon(userID) {
		return ErrNoSession
	}
	s.log.Info().Str("user_id", userID).Msg("Exam session abandoned")
	return nil
}

// Submit ends the user's session and produces its result. The session is
// claimed atomically, so a submission racing the timer's auto-submit
// yields exactly one result; the loser of the race reads the stashed
// result instead.
func (s *ExamService) Submit(ctx context.Context, userID string) (*model.ExamResult, error) {
	act, ok := s.manager.Take(userID)
	if !ok {
		// Already submitted (e.g. by the timer). Serve the stored result.
		if result, err := s.Result(ctx, userID); err == nil {
			return result, nil
		}
		return nil, ErrNoSession
	}
	return s.finish(ctx, userID, act)
}

// Result returns the user's most recent exam result.
func (s *ExamService) Result(ctx context.Context, userID string) (*model.ExamResult, error) {
	raw, err := s.rdb.Get(ctx, config.CacheKey.UserResultKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoResult
		}
		return nil, fmt.Errorf("read result: %w", err)
	}

	result := &model.ExamResult{}
	if err := json.Unmarshal(raw, result); err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}
	return result, nil
}

// History lists the user's finished attempts, newest first.
func (s *ExamService) History(ctx context.Context, userID string, examType *model.ExamType, page, perPage int) ([]model.Attempt, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	attempts, total, err := s.attemptRepo.ListByUser(ctx, userID, examType, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, fmt.Errorf("list attempts: %w", err)
	}
	return attempts, total, nil
}

// autoSubmit is the timer expiry hook: the session clock hit zero without
// a manual submission.
func (s *ExamService) autoSubmit(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	act, ok := s.manager.Take(userID)
	if !ok {
		return // A manual submit won the race.
	}

	s.log.Info().Str("user_id", userID).Msg("Session clock expired, submitting")
	if _, err := s.finish(ctx, userID, act); err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Msg("Auto-submit failed")
	}
}

// finish grades a claimed session, stores the result, and fans out the
// persistence work. Called exactly once per session.
func (s *ExamService) finish(ctx context.Context, userID string, act *session.Active) (*model.ExamResult, error) {
	snap := act.Session.Snapshot()
	outcome := session.Score(snap.Answers, act.Questions)
	xp, coins := session.Rewards(outcome)
	timeTaken := snap.TotalDuration - snap.Remaining

	attempt := model.Attempt{
		ID:             uuid.New(),
		UserID:         userID,
		ExamType:       act.ExamType,
		SubjectID:      act.SubjectID,
		TopicID:        act.TopicID,
		TotalQuestions: outcome.Total,
		Correct:        outcome.Correct,
		Wrong:          outcome.Wrong,
		Skipped:        outcome.Skipped,
		Score:          outcome.Score,
		TimeTaken:      timeTaken,
		CompletedAt:    time.Now(),
	}

	result := &model.ExamResult{
		AttemptID:  attempt.ID,
		Correct:    outcome.Correct,
		Wrong:      outcome.Wrong,
		Skipped:    outcome.Skipped,
		Total:      outcome.Total,
		Score:      outcome.Score,
		Percentage: outcome.Percentage,
		Answers:    snap.Answers,
		TimeTaken:  timeTaken,
		Breakdown:  breakdown(snap.Answers, act.Questions),
	}

	if err := s.stashResult(ctx, userID, result); err != nil {
		// The computed result is still returned; only the replay copy is lost.
		s.log.Error().Err(err).Str("user_id", userID).Msg("Result stash failed")
	}

	s.enqueueAttempt(ctx, attempt)
	s.enqueueRewards(ctx, userID, xp, coins)

	name, category := "", CategoryGlobal
	if profile := s.profileSvc.RecordActivity(ctx, userID, outcome); profile != nil {
		name, category = profile.Name, string(profile.ExamCategory)
	}
	s.board.RecordScore(ctx, userID, name, category, outcome.Score, timeTaken)

	// Best-effort upstream report; never blocks the result path.
	if s.remote.Enabled() {
		go func() {
			rctx, rcancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer rcancel()
			if _, err := s.remote.SubmitExam(rctx, attempt); err != nil {
				s.log.Warn().Err(err).Str("user_id", userID).Msg("Upstream submit failed")
			}
		}()
	}

	s.log.Info().
		Str("user_id", userID).
		Str("attempt_id", attempt.ID.String()).
		Float64("score", outcome.Score).
		Int("correct", outcome.Correct).
		Int("wrong", outcome.Wrong).
		Int("time_taken", timeTaken).
		Msg("Exam submitted")

	act.Session.Reset()
	return result, nil
}

func (s *ExamService) stashResult(ctx context.Context, userID string, result *model.ExamResult) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	if err := s.rdb.Set(ctx, config.CacheKey.UserResultKey(userID), raw, s.resultTTL).Err(); err != nil {
		return fmt.Errorf("store result: %w", err)
	}
	return nil
}

func (s *ExamService) enqueueAttempt(ctx context.Context, attempt model.Attempt) {
	raw, err := json.Marshal(attempt)
	if err != nil {
		s.log.Error().Err(err).Msg("Encode attempt job failed")
		return
	}
	if err := s.rdb.RPush(ctx, config.WorkerKey.PersistAttemptsQueue, raw).Err(); err != nil {
		s.log.Error().Err(err).Msg("Enqueue attempt job failed")
	}
}

func (s *ExamService) enqueueRewards(ctx context.Context, userID string, xp, coins int) {
	raw, err := json.Marshal(rewardsJob{UserID: userID, XP: xp, Coins: coins})
	if err != nil {
		s.log.Error().Err(err).Msg("Encode rewards job failed")
		return
	}
	if err := s.rdb.RPush(ctx, config.WorkerKey.PersistRewardsQueue, raw).Err(); err != nil {
		s.log.Error().Err(err).Msg("Enqueue rewards job failed")
	}
}

func viewOf(act *session.Active) *SessionView {
	public := make([]model.PublicQuestion, len(act.Questions))
	for i, q := range act.Questions {
		public[i] = q.Public()
	}
	return &SessionView{
		ExamType:  act.ExamType,
		SubjectID: act.SubjectID,
		TopicID:   act.TopicID,
		StartedAt: act.StartedAt,
		Questions: public,
		State:     act.Session.Snapshot(),
	}
}

func breakdown(answers []int, questions []model.Question) []model.ResultItem {
	items := make([]model.ResultItem, 0, len(answers))
	for i, ans := range answers {
		if i >= len(questions) {
			break
		}
		q := questions[i]
		items = append(items, model.ResultItem{
			QuestionID:   q.ID,
			Text:         q.Text,
			Selected:     ans,
			CorrectIndex: q.CorrectIndex,
			Correct:      ans == q.CorrectIndex,
			Explanation:  q.Explanation,
		})
	}
	return items
}

func (s *ExamService) mutate(userID string, fn func(*session.Session)) (*session.Snapshot, error) {
	act, ok := s.manager.Get(userID)
	if !ok {
		return nil, ErrNoSession
	}
	fn(act.Session)
	snap := act.Session.Snapshot()
	return &snap, nil
}
