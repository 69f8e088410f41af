package model

// Difficulty tiers a question by how hard it is.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// OptionCount is the fixed number of answer options per question.
const OptionCount = 4

// Question is a single multiple-choice question. Immutable once loaded.
type Question struct {
	ID           string     `json:"id"`
	Text         string     `json:"text"`
	Options      [4]string  `json:"options"`
	CorrectIndex int        `json:"correctIndex"`
	Explanation  string     `json:"explanation"`
	SubjectID    string     `json:"subjectId"`
	TopicID      string     `json:"topicId"`
	Difficulty   Difficulty `json:"difficulty"`
	Year         string     `json:"year,omitempty"`
	ExamSource   string     `json:"examSource,omitempty"`
	Tags         []string   `json:"tags,omitempty"`
}

// PublicQuestion is a question with the correct answer and explanation
// stripped, safe to send to a client with a running session.
type PublicQuestion struct {
	ID         string     `json:"id"`
	Text       string     `json:"text"`
	Options    [4]string  `json:"options"`
	SubjectID  string     `json:"subjectId"`
	TopicID    string     `json:"topicId"`
	Difficulty Difficulty `json:"difficulty"`
}

// Public strips the answer key from a question.
func (q Question) Public() PublicQuestion {
	return PublicQuestion{
		ID:         q.ID,
		Text:       q.Text,
		Options:    q.Options,
		SubjectID:  q.SubjectID,
		TopicID:    q.TopicID,
		Difficulty: q.Difficulty,
	}
}

// QuestionFilter narrows a catalog query. Zero value means "everything".
type QuestionFilter struct {
	SubjectID  string
	TopicID    string
	Difficulty Difficulty
	Limit      int
	Random     bool
}

// IsZero reports whether no constraint is set.
func (f QuestionFilter) IsZero() bool {
	return f.SubjectID == "" && f.TopicID == "" && f.Difficulty == "" && f.Limit == 0 && !f.Random
}

// SubjectStat aggregates question counts for one subject.
type SubjectStat struct {
	SubjectID string `json:"subjectId"`
	Count     int    `json:"count"`
}
