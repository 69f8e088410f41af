package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/crackit/crackit-backend/internal/model"
	"github.com/rs/zerolog"
)

// ErrDisabled is returned when no upstream content API is configured.
// Callers treat it like any other fetch failure and fall back.
var ErrDisabled = errors.New("content api not configured")

// Client talks to the upstream content API. Every call is best-effort:
// errors are returned for the caller to catch-and-fallback, never retried
// here.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

// NewClient creates a content API client. An empty baseURL disables it.
func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     log.With().Str("component", "content_api").Logger(),
	}
}

// Enabled reports whether an upstream is configured.
func (c *Client) Enabled() bool {
	return c.baseURL != ""
}

// ListSubjects fetches the subject catalog.
func (c *Client) ListSubjects(ctx context.Context) ([]model.Subject, error) {
	var out struct {
		Subjects []model.Subject `json:"subjects"`
	}
	if err := c.get(ctx, "/subjects", nil, &out); err != nil {
		return nil, err
	}
	return out.Subjects, nil
}

// ListTopics fetches topics, optionally narrowed to one subject.
func (c *Client) ListTopics(ctx context.Context, subjectID string) ([]model.Topic, error) {
	q := url.Values{}
	if subjectID != "" {
		q.Set("subjectId", subjectID)
	}
	var out struct {
		Topics []model.Topic `json:"topics"`
	}
	if err := c.get(ctx, "/topics", q, &out); err != nil {
		return nil, err
	}
	return out.Topics, nil
}

// ListQuestions fetches questions matching the filter.
func (c *Client) ListQuestions(ctx context.Context, filter model.QuestionFilter) ([]model.Question, error) {
	q := url.Values{}
	if filter.SubjectID != "" {
		q.Set("subjectId", filter.SubjectID)
	}
	if filter.TopicID != "" {
		q.Set("topicId", filter.TopicID)
	}
	if filter.Difficulty != "" {
		q.Set("difficulty", string(filter.Difficulty))
	}
	if filter.Limit > 0 {
		q.Set("limit", strconv.Itoa(filter.Limit))
	}
	if filter.Random {
		q.Set("random", "true")
	}

	var out struct {
		Questions []model.Question `json:"questions"`
		Total     int              `json:"total"`
	}
	if err := c.get(ctx, "/questions", q, &out); err != nil {
		return nil, err
	}
	return out.Questions, nil
}

// AttemptSummary is the upstream's acknowledgement of a submitted exam.
type AttemptSummary struct {
	AttemptID string  `json:"attemptId"`
	Score     float64 `json:"score"`
	Rank      int     `json:"rank,omitempty"`
}

// SubmitExam reports a finished attempt upstream. Failures are logged and
// surfaced but must never block the local result path.
func (c *Client) SubmitExam(ctx context.Context, attempt model.Attempt) (*AttemptSummary, error) {
	var out AttemptSummary
	if err := c.post(ctx, "/exams/submit", attempt, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListLiveExams fetches the scheduled live exam catalog.
func (c *Client) ListLiveExams(ctx context.Context) ([]model.LiveExam, error) {
	var out struct {
		Exams []model.LiveExam `json:"exams"`
	}
	if err := c.get(ctx, "/exams/live", nil, &out); err != nil {
		return nil, err
	}
	return out.Exams, nil
}

// GetLeaderboard fetches the global leaderboard.
func (c *Client) GetLeaderboard(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out struct {
		Leaderboard []model.LeaderboardEntry `json:"leaderboard"`
	}
	if err := c.get(ctx, "/leaderboard", q, &out); err != nil {
		return nil, err
	}
	return out.Leaderboard, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, dst interface{}) error {
	if !c.Enabled() {
		return ErrDisabled
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	return c.do(req, dst)
}

func (c *Client) post(ctx context.Context, path string, body, dst interface{}) error {
	if !c.Enabled() {
		return ErrDisabled
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, dst)
}

func (c *Client) do(req *http.Request, dst interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("content api %s: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("content api %s: status %d", req.URL.Path, resp.StatusCode)
	}
	if dst == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode %s: %w", req.URL.Path, err)
	}
	return nil
}
