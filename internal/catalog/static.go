package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"math/rand"

	"github.com/crackit/crackit-backend/internal/model"
)

//go:embed data/subjects.json
var subjectsJSON []byte

//go:embed data/topics.json
var topicsJSON []byte

//go:embed data/questions.json
var questionsJSON []byte

// Static is the bundled question catalog: the data source of last resort.
// Loaded once at startup; immutable afterwards.
type Static struct {
	subjects  []model.Subject
	topics    []model.Topic
	questions []model.Question
	byID      map[string]model.Question
}

// LoadStatic parses the embedded catalog. Fails only on a broken build.
func LoadStatic() (*Static, error) {
	s := &Static{}

	if err := json.Unmarshal(subjectsJSON, &s.subjects); err != nil {
		return nil, fmt.Errorf("parse bundled subjects: %w", err)
	}
	if err := json.Unmarshal(topicsJSON, &s.topics); err != nil {
		return nil, fmt.Errorf("parse bundled topics: %w", err)
	}
	if err := json.Unmarshal(questionsJSON, &s.questions); err != nil {
		return nil, fmt.Errorf("parse bundled questions: %w", err)
	}

	s.byID = make(map[string]model.Question, len(s.questions))
	for _, q := range s.questions {
		s.byID[q.ID] = q
	}
	return s, nil
}

// Subjects returns all bundled subjects.
func (s *Static) Subjects() []model.Subject {
	return s.subjects
}

// Topics returns bundled topics, narrowed to a subject when given.
func (s *Static) Topics(subjectID string) []model.Topic {
	if subjectID == "" {
		return s.topics
	}
	var out []model.Topic
	for _, t := range s.topics {
		if t.SubjectID == subjectID {
			out = append(out, t)
		}
	}
	return out
}

// Questions applies the filter to the bundled question list. An empty
// filtered result falls back to the full list so callers never end up
// with a zero-length session.
func (s *Static) Questions(filter model.QuestionFilter) []model.Question {
	out := filterQuestions(s.questions, filter)
	if len(out) == 0 {
		out = append([]model.Question(nil), s.questions...)
	}
	return sampleQuestions(out, filter)
}

// QuestionsByIDs resolves specific bundled questions, skipping unknown ids.
func (s *Static) QuestionsByIDs(ids []string) []model.Question {
	out := make([]model.Question, 0, len(ids))
	for _, id := range ids {
		if q, ok := s.byID[id]; ok {
			out = append(out, q)
		}
	}
	return out
}

// filterQuestions narrows a question list by subject/topic/difficulty.
func filterQuestions(qs []model.Question, filter model.QuestionFilter) []model.Question {
	var out []model.Question
	for _, q := range qs {
		if filter.SubjectID != "" && q.SubjectID != filter.SubjectID {
			continue
		}
		if filter.TopicID != "" && q.TopicID != filter.TopicID {
			continue
		}
		if filter.Difficulty != "" && q.Difficulty != filter.Difficulty {
			continue
		}
		out = append(out, q)
	}
	return out
}

// sampleQuestions applies the random/limit part of a filter to an already
// narrowed list. Shuffles a copy; the input is never reordered.
func sampleQuestions(qs []model.Question, filter model.QuestionFilter) []model.Question {
	out := append([]model.Question(nil), qs...)
	if filter.Random {
		rand.Shuffle(len(out), func(i, j int) {
			out[i], out[j] = out[j], out[i]
		})
	}
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out
}
