package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/crackit/crackit-backend/internal/config"
	"github.com/crackit/crackit-backend/internal/model"
	"github.com/crackit/crackit-backend/internal/remote"
	"github.com/crackit/crackit-backend/internal/repository"
)

// LiveExamView is a scheduled exam with its phase derived at read time.
type LiveExamView struct {
	model.LiveExam
	LiveStatus model.LiveExamStatus `json:"status"`
	Registered bool                 `json:"registered"`
}

// LiveService handles the scheduled exam lobby and registrations.
type LiveService struct {
	liveRepo *repository.LiveExamRepository
	remote   *remote.Client
	rdb      *redis.Client
	log      zerolog.Logger
}

// NewLiveService creates a new LiveService.
func NewLiveService(liveRepo *repository.LiveExamRepository, remoteClient *remote.Client, rdb *redis.Client, log zerolog.Logger) *LiveService {
	return &LiveService{
		liveRepo: liveRepo,
		remote:   remoteClient,
		rdb:      rdb,
		log:      log.With().Str("component", "live_service").Logger(),
	}
}

// List returns the upcoming and in-window exams, soonest first. When the
// local schedule is empty the upstream catalog is consulted.
func (s *LiveService) List(ctx context.Context, userID string) ([]LiveExamView, error) {
	now := time.Now()

	exams, err := s.liveRepo.ListUpcoming(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("list live exams: %w", err)
	}

	if len(exams) == 0 && s.remote.Enabled() {
		if upstream, err := s.remote.ListLiveExams(ctx); err == nil {
			exams = upstream
		} else {
			s.log.Warn().Err(err).Msg("Upstream live exams unavailable")
		}
	}

	views := make([]LiveExamView, 0, len(exams))
	for _, exam := range exams {
		views = append(views, LiveExamView{
			LiveExam:   exam,
			LiveStatus: exam.Status(now),
			Registered: s.isRegistered(ctx, userID, exam.ID),
		})
	}
	return views, nil
}

// Get returns one scheduled exam with its current phase.
func (s *LiveService) Get(ctx context.Context, userID, examID string) (*LiveExamView, error) {
	exam, err := s.liveRepo.GetByID(ctx, examID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get live exam: %w", err)
	}
	return &LiveExamView{
		LiveExam:   *exam,
		LiveStatus: exam.Status(time.Now()),
		Registered: s.isRegistered(ctx, userID, exam.ID),
	}, nil
}

// Register signs the user up for a scheduled exam. Registration closes
// once the exam has finished.
func (s *LiveService) Register(ctx context.Context, userID, examID string) error {
	exam, err := s.liveRepo.GetByID(ctx, examID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("get live exam: %w", err)
	}
	if exam.Status(time.Now()) == model.LiveStatusCompleted {
		return ErrExamNotAvailable
	}

	added, err := s.rdb.SAdd(ctx, config.CacheKey.LiveExamRegistrationsKey(examID), userID).Result()
	if err != nil {
		return fmt.Errorf("register: %w", err)
	}
	if added == 0 {
		return ErrAlreadyRegistered
	}

	if err := s.liveRepo.IncrementRegistered(ctx, examID); err != nil {
		s.log.Warn().Err(err).Str("exam_id", examID).Msg("Registration counter update failed")
	}

	s.log.Info().Str("user_id", userID).Str("exam_id", examID).Msg("Registered for live exam")
	return nil
}

func (s *LiveService) isRegistered(ctx context.Context, userID, examID string) bool {
	ok, err := s.rdb.SIsMember(ctx, config.CacheKey.LiveExamRegistrationsKey(examID), userID).Result()
	if err != nil {
		return false
	}
	return ok
}
