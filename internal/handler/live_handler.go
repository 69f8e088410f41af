package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/crackit/crackit-backend/internal/middleware"
	"github.com/crackit/crackit-backend/internal/response"
	"github.com/crackit/crackit-backend/internal/service"
)

type LiveHandler struct {
	liveService *service.LiveService
}

func NewLiveHandler(liveService *service.LiveService) *LiveHandler {
	return &LiveHandler{liveService: liveService}
}

// List godoc
// GET /api/v1/live
func (h *LiveHandler) List(c *gin.Context) {
	exams, err := h.liveService.List(c.Request.Context(), middleware.GetClaims(c).UserID())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if exams == nil {
		exams = []service.LiveExamView{}
	}
	response.Success(c, http.StatusOK, gin.H{"exams": exams})
}

// Get godoc
// GET /api/v1/live/:id
func (h *LiveHandler) Get(c *gin.Context) {
	exam, err := h.liveService.Get(c.Request.Context(), middleware.GetClaims(c).UserID(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"exam": exam})
}

// Register godoc
// POST /api/v1/live/:id/register
func (h *LiveHandler) Register(c *gin.Context) {
	err := h.liveService.Register(c.Request.Context(), middleware.GetClaims(c).UserID(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrAlreadyRegistered):
			response.Fail(c, http.StatusConflict, response.ErrAlreadyRegistered)
		case errors.Is(err, service.ErrExamNotAvailable):
			response.Fail(c, http.StatusConflict, response.ErrExamNotAvailable)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "registered"})
}
