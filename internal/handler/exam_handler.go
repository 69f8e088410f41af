package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/crackit/crackit-backend/internal/middleware"
	"github.com/crackit/crackit-backend/internal/model"
	"github.com/crackit/crackit-backend/internal/response"
	"github.com/crackit/crackit-backend/internal/service"
	"github.com/crackit/crackit-backend/internal/validator"
)

type ExamHandler struct {
	examService *service.ExamService
}

func NewExamHandler(examService *service.ExamService) *ExamHandler {
	return &ExamHandler{examService: examService}
}

// Start godoc
// POST /api/v1/exams/start
func (h *ExamHandler) Start(c *gin.Context) {
	var req model.StartExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	view, err := h.examService.Start(c.Request.Context(), middleware.GetClaims(c).UserID(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrExamNotAvailable):
			response.Fail(c, http.StatusConflict, response.ErrExamNotAvailable)
		case errors.Is(err, service.ErrNoQuestions):
			response.Fail(c, http.StatusNotFound, response.ErrNoQuestions)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"session": view})
}

// GetSession godoc
// GET /api/v1/exams/session
func (h *ExamHandler) GetSession(c *gin.Context) {
	view, err := h.examService.State(middleware.GetClaims(c).UserID())
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrSessionNotFound)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"session": view})
}

// Answer godoc
// POST /api/v1/exams/session/answer
func (h *ExamHandler) Answer(c *gin.Context) {
	var req model.AnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	h.command(c, func(userID string) (interface{}, error) {
		return h.examService.Answer(userID, req)
	})
}

// ToggleReview godoc
// POST /api/v1/exams/session/review
func (h *ExamHandler) ToggleReview(c *gin.Context) {
	var req model.IndexRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	h.command(c, func(userID string) (interface{}, error) {
		return h.examService.ToggleReview(userID, req.Index)
	})
}

// GoTo godoc
// POST /api/v1/exams/session/goto
func (h *ExamHandler) GoTo(c *gin.Context) {
	var req model.IndexRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	h.command(c, func(userID string) (interface{}, error) {
		return h.examService.GoTo(userID, req.Index)
	})
}

// Next godoc
// POST /api/v1/exams/session/next
func (h *ExamHandler) Next(c *gin.Context) {
	h.command(c, func(userID string) (interface{}, error) {
		return h.examService.Next(userID)
	})
}

// Prev godoc
// POST /api/v1/exams/session/prev
func (h *ExamHandler) Prev(c *gin.Context) {
	h.command(c, func(userID string) (interface{}, error) {
		return h.examService.Prev(userID)
	})
}

// TogglePalette godoc
// POST /api/v1/exams/session/palette
func (h *ExamHandler) TogglePalette(c *gin.Context) {
	h.command(c, func(userID string) (interface{}, error) {
		return h.examService.TogglePalette(userID)
	})
}

// Abandon godoc
// DELETE /api/v1/exams/session
func (h *ExamHandler) Abandon(c *gin.Context) {
	if err := h.examService.Abandon(middleware.GetClaims(c).UserID()); err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrSessionNotFound)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "session abandoned"})
}

// Submit godoc
// POST /api/v1/exams/submit
func (h *ExamHandler) Submit(c *gin.Context) {
	result, err := h.examService.Submit(c.Request.Context(), middleware.GetClaims(c).UserID())
	if err != nil {
		if errors.Is(err, service.ErrNoSession) {
			response.Fail(c, http.StatusNotFound, response.ErrSessionNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"result": result})
}

// GetResult godoc
// GET /api/v1/exams/result
func (h *ExamHandler) GetResult(c *gin.Context) {
	result, err := h.examService.Result(c.Request.Context(), middleware.GetClaims(c).UserID())
	if err != nil {
		if errors.Is(err, service.ErrNoResult) {
			response.Fail(c, http.StatusNotFound, response.ErrResultNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"result": result})
}

// GetHistory godoc
// GET /api/v1/exams/history?type=&page=&per_page=
func (h *ExamHandler) GetHistory(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))

	var examType *model.ExamType
	if t := c.Query("type"); t != "" {
		et := model.ExamType(t)
		examType = &et
	}

	attempts, total, err := h.examService.History(c.Request.Context(), middleware.GetClaims(c).UserID(), examType, page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if attempts == nil {
		attempts = []model.Attempt{}
	}

	totalPages := total / perPage
	if total%perPage > 0 {
		totalPages++
	}
	response.SuccessWithPagination(c, http.StatusOK, gin.H{"attempts": attempts}, &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: totalPages,
	})
}

// command runs a session mutation and returns the fresh snapshot.
func (h *ExamHandler) command(c *gin.Context, fn func(userID string) (interface{}, error)) {
	snap, err := fn(middleware.GetClaims(c).UserID())
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrSessionNotFound)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"state": snap})
}
