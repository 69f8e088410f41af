package catalog

import (
	"context"
	"encoding/json"

	"github.com/crackit/crackit-backend/internal/cache"
	"github.com/crackit/crackit-backend/internal/model"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// RemoteSource is the upstream content API surface the catalog consumes.
type RemoteSource interface {
	Enabled() bool
	ListSubjects(ctx context.Context) ([]model.Subject, error)
	ListTopics(ctx context.Context, subjectID string) ([]model.Topic, error)
	ListQuestions(ctx context.Context, filter model.QuestionFilter) ([]model.Question, error)
}

// OfflineStore is the cache surface the catalog consumes.
type OfflineStore interface {
	Put(ctx context.Context, kind string, records []cache.Record) error
	GetAll(ctx context.Context, kind string, filter *cache.IndexFilter) ([][]byte, error)
	GetByIDs(ctx context.Context, kind string, ids []string) ([][]byte, error)
	IsFresh(ctx context.Context, kind string) bool
}

// Service answers catalog queries through a three-stage source chain:
// remote content API, then offline cache (when fresh), then the bundled
// static data. Failures along the chain are swallowed — a read path never
// surfaces a data-unavailable error to the caller.
type Service struct {
	remote RemoteSource
	store  OfflineStore
	static *Static
	sf     singleflight.Group
	log    zerolog.Logger
}

// NewService wires the catalog source chain.
func NewService(remote RemoteSource, store OfflineStore, static *Static, log zerolog.Logger) *Service {
	return &Service{
		remote: remote,
		store:  store,
		static: static,
		log:    log.With().Str("component", "catalog").Logger(),
	}
}

// Subjects returns the subject list from the freshest available source.
func (s *Service) Subjects(ctx context.Context) []model.Subject {
	if s.remote.Enabled() {
		// Concurrent refreshes of one kind collapse into a single fetch.
		v, err, _ := s.sf.Do(cache.KindSubjects, func() (interface{}, error) {
			return s.remote.ListSubjects(ctx)
		})
		if subjects, ok := v.([]model.Subject); err == nil && ok && len(subjects) > 0 {
			s.cacheSubjects(ctx, subjects)
			return subjects
		}
		s.log.Debug().Err(err).Msg("Remote subjects unavailable, falling back")
	}

	if s.store.IsFresh(ctx, cache.KindSubjects) {
		if cached := decodeAll[model.Subject](s.mustGetAll(ctx, cache.KindSubjects, nil)); len(cached) > 0 {
			return cached
		}
	}
	return s.static.Subjects()
}

// Topics returns topics, narrowed to a subject when subjectID is set.
func (s *Service) Topics(ctx context.Context, subjectID string) []model.Topic {
	if s.remote.Enabled() {
		v, err, _ := s.sf.Do(cache.KindTopics+":"+subjectID, func() (interface{}, error) {
			return s.remote.ListTopics(ctx, subjectID)
		})
		if topics, ok := v.([]model.Topic); err == nil && ok && len(topics) > 0 {
			s.cacheTopics(ctx, topics)
			return topics
		}
		s.log.Debug().Err(err).Msg("Remote topics unavailable, falling back")
	}

	if s.store.IsFresh(ctx, cache.KindTopics) {
		var filter *cache.IndexFilter
		if subjectID != "" {
			filter = &cache.IndexFilter{Field: "subjectId", Value: subjectID}
		}
		if cached := decodeAll[model.Topic](s.mustGetAll(ctx, cache.KindTopics, filter)); len(cached) > 0 {
			return cached
		}
	}
	return s.static.Topics(subjectID)
}

// Questions resolves a question set for the filter. The chain guarantees a
// non-empty result whenever the bundled catalog is non-empty: a filter
// that matches nothing degrades to the full default list rather than
// producing a zero-length exam.
func (s *Service) Questions(ctx context.Context, filter model.QuestionFilter) []model.Question {
	if s.remote.Enabled() {
		if qs, err := s.remote.ListQuestions(ctx, filter); err == nil && len(qs) > 0 {
			s.cacheQuestions(ctx, qs)
			return qs
		} else if err != nil {
			s.log.Debug().Err(err).Msg("Remote questions unavailable, falling back")
		}
	}

	if cached := s.cachedQuestions(ctx, filter); len(cached) > 0 {
		return cached
	}
	return s.static.Questions(filter)
}

// QuestionsByIDs resolves specific questions, preferring the cache and
// filling gaps from the bundled catalog.
func (s *Service) QuestionsByIDs(ctx context.Context, ids []string) []model.Question {
	cached := decodeAll[model.Question](s.mustGetByIDs(ctx, cache.KindQuestions, ids))
	if len(cached) == len(ids) {
		return cached
	}

	seen := make(map[string]bool, len(cached))
	for _, q := range cached {
		seen[q.ID] = true
	}
	missing := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			missing = append(missing, id)
		}
	}
	return append(cached, s.static.QuestionsByIDs(missing)...)
}

// Stats aggregates question counts per subject from the current best
// question source.
func (s *Service) Stats(ctx context.Context) []model.SubjectStat {
	counts := make(map[string]int)
	var order []string
	for _, q := range s.Questions(ctx, model.QuestionFilter{}) {
		if _, ok := counts[q.SubjectID]; !ok {
			order = append(order, q.SubjectID)
		}
		counts[q.SubjectID]++
	}

	stats := make([]model.SubjectStat, 0, len(order))
	for _, id := range order {
		stats = append(stats, model.SubjectStat{SubjectID: id, Count: counts[id]})
	}
	return stats
}

// cachedQuestions reads from the offline cache, honoring freshness and
// re-applying the parts of the filter the index cannot express.
func (s *Service) cachedQuestions(ctx context.Context, filter model.QuestionFilter) []model.Question {
	if !s.store.IsFresh(ctx, cache.KindQuestions) {
		return nil
	}

	var idx *cache.IndexFilter
	switch {
	case filter.SubjectID != "":
		idx = &cache.IndexFilter{Field: "subjectId", Value: filter.SubjectID}
	case filter.TopicID != "":
		idx = &cache.IndexFilter{Field: "topicId", Value: filter.TopicID}
	}

	qs := decodeAll[model.Question](s.mustGetAll(ctx, cache.KindQuestions, idx))
	qs = filterQuestions(qs, filter)
	if len(qs) == 0 {
		return nil
	}
	return sampleQuestions(qs, filter)
}

func (s *Service) cacheSubjects(ctx context.Context, subjects []model.Subject) {
	records := make([]cache.Record, 0, len(subjects))
	for _, sub := range subjects {
		raw, err := json.Marshal(sub)
		if err != nil {
			continue
		}
		records = append(records, cache.Record{ID: sub.ID, Data: raw})
	}
	if err := s.store.Put(ctx, cache.KindSubjects, records); err != nil {
		s.log.Warn().Err(err).Msg("Subject cache write failed")
	}
}

func (s *Service) cacheTopics(ctx context.Context, topics []model.Topic) {
	records := make([]cache.Record, 0, len(topics))
	for _, t := range topics {
		raw, err := json.Marshal(t)
		if err != nil {
			continue
		}
		records = append(records, cache.Record{
			ID:      t.ID,
			Data:    raw,
			Indexes: map[string]string{"subjectId": t.SubjectID},
		})
	}
	if err := s.store.Put(ctx, cache.KindTopics, records); err != nil {
		s.log.Warn().Err(err).Msg("Topic cache write failed")
	}
}

func (s *Service) cacheQuestions(ctx context.Context, qs []model.Question) {
	records := make([]cache.Record, 0, len(qs))
	for _, q := range qs {
		raw, err := json.Marshal(q)
		if err != nil {
			continue
		}
		records = append(records, cache.Record{
			ID:   q.ID,
			Data: raw,
			Indexes: map[string]string{
				"subjectId": q.SubjectID,
				"topicId":   q.TopicID,
			},
		})
	}
	if err := s.store.Put(ctx, cache.KindQuestions, records); err != nil {
		s.log.Warn().Err(err).Msg("Question cache write failed")
	}
}

// mustGetAll swallows cache read errors: a broken cache is just a miss.
func (s *Service) mustGetAll(ctx context.Context, kind string, filter *cache.IndexFilter) [][]byte {
	raw, err := s.store.GetAll(ctx, kind, filter)
	if err != nil {
		s.log.Warn().Err(err).Str("kind", kind).Msg("Cache read failed")
		return nil
	}
	return raw
}

func (s *Service) mustGetByIDs(ctx context.Context, kind string, ids []string) [][]byte {
	raw, err := s.store.GetByIDs(ctx, kind, ids)
	if err != nil {
		s.log.Warn().Err(err).Str("kind", kind).Msg("Cache read failed")
		return nil
	}
	return raw
}

func decodeAll[T any](raw [][]byte) []T {
	out := make([]T, 0, len(raw))
	for _, b := range raw {
		var v T
		if err := json.Unmarshal(b, &v); err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}
