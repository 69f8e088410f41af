package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/crackit/crackit-backend/internal/middleware"
	"github.com/crackit/crackit-backend/internal/response"
	"github.com/crackit/crackit-backend/internal/service"
)

type LeaderboardHandler struct {
	boardService *service.LeaderboardService
}

func NewLeaderboardHandler(boardService *service.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{boardService: boardService}
}

// Get godoc
// GET /api/v1/leaderboard?category=&limit=
func (h *LeaderboardHandler) Get(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	board, err := h.boardService.Get(
		c.Request.Context(),
		middleware.GetClaims(c).UserID(),
		c.Query("category"),
		limit,
	)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"leaderboard": board})
}
