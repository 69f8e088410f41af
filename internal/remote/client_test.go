package remote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/crackit/crackit-backend/internal/model"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListQuestionsBuildsFilterQuery(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"questions":[{"id":"q1","correctIndex":2}],"total":1}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, zerolog.Nop())
	qs, err := c.ListQuestions(context.Background(), model.QuestionFilter{
		SubjectID:  "phy",
		Difficulty: model.DifficultyHard,
		Limit:      10,
		Random:     true,
	})
	require.NoError(t, err)
	require.Len(t, qs, 1)
	assert.Equal(t, "q1", qs[0].ID)
	assert.Contains(t, gotQuery, "subjectId=phy")
	assert.Contains(t, gotQuery, "difficulty=hard")
	assert.Contains(t, gotQuery, "limit=10")
	assert.Contains(t, gotQuery, "random=true")
}

func TestNonOKStatusIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, zerolog.Nop())
	_, err := c.ListSubjects(context.Background())
	assert.Error(t, err)
}

func TestDisabledClientFailsFast(t *testing.T) {
	c := NewClient("", time.Second, zerolog.Nop())
	assert.False(t, c.Enabled())

	_, err := c.ListSubjects(context.Background())
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestContextCancellationPropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Minute, zerolog.Nop())
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := c.ListLiveExams(ctx)
	assert.Error(t, err)
}
