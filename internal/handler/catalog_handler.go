package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/crackit/crackit-backend/internal/catalog"
	"github.com/crackit/crackit-backend/internal/model"
	"github.com/crackit/crackit-backend/internal/response"
)

type CatalogHandler struct {
	catalogService *catalog.Service
}

func NewCatalogHandler(catalogService *catalog.Service) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// GetSubjects godoc
// GET /api/v1/subjects
func (h *CatalogHandler) GetSubjects(c *gin.Context) {
	subjects := h.catalogService.Subjects(c.Request.Context())
	if subjects == nil {
		subjects = []model.Subject{}
	}
	response.Success(c, http.StatusOK, gin.H{"subjects": subjects})
}

// GetTopics godoc
// GET /api/v1/topics?subjectId=...
func (h *CatalogHandler) GetTopics(c *gin.Context) {
	topics := h.catalogService.Topics(c.Request.Context(), c.Query("subjectId"))
	if topics == nil {
		topics = []model.Topic{}
	}
	response.Success(c, http.StatusOK, gin.H{"topics": topics})
}

// GetQuestions godoc
// GET /api/v1/questions?subjectId=&topicId=&difficulty=&limit=&random=
// Questions are served without answer keys; grading happens server-side.
func (h *CatalogHandler) GetQuestions(c *gin.Context) {
	filter := model.QuestionFilter{
		SubjectID:  c.Query("subjectId"),
		TopicID:    c.Query("topicId"),
		Difficulty: model.Difficulty(c.Query("difficulty")),
		Random:     c.Query("random") == "true",
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil && limit > 0 {
		filter.Limit = limit
	}

	questions := h.catalogService.Questions(c.Request.Context(), filter)
	public := make([]model.PublicQuestion, len(questions))
	for i, q := range questions {
		public[i] = q.Public()
	}
	response.Success(c, http.StatusOK, gin.H{"questions": public, "total": len(public)})
}

// GetStats godoc
// GET /api/v1/subjects/stats
func (h *CatalogHandler) GetStats(c *gin.Context) {
	stats := h.catalogService.Stats(c.Request.Context())
	if stats == nil {
		stats = []model.SubjectStat{}
	}
	response.Success(c, http.StatusOK, gin.H{"stats": stats})
}
