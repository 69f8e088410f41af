package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/crackit/crackit-backend/internal/middleware"
	"github.com/crackit/crackit-backend/internal/model"
	"github.com/crackit/crackit-backend/internal/response"
	"github.com/crackit/crackit-backend/internal/service"
	"github.com/crackit/crackit-backend/internal/validator"
)

type ProfileHandler struct {
	profileService *service.ProfileService
}

func NewProfileHandler(profileService *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

// GetProfile godoc
// GET /api/v1/profile
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	profile, err := h.profileService.GetOrCreate(c.Request.Context(), middleware.GetClaims(c))
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if profile.Badges == nil {
		profile.Badges = []model.Badge{}
	}
	response.Success(c, http.StatusOK, gin.H{"profile": profile})
}

// UpdateProfile godoc
// PUT /api/v1/profile
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	var req model.UpdateProfileRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	profile, err := h.profileService.Update(c.Request.Context(), middleware.GetClaims(c).UserID(), req)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"profile": profile})
}

// GetSettings godoc
// GET /api/v1/profile/settings
func (h *ProfileHandler) GetSettings(c *gin.Context) {
	settings, err := h.profileService.GetSettings(c.Request.Context(), middleware.GetClaims(c).UserID())
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"settings": settings})
}

// UpdateSettings godoc
// PUT /api/v1/profile/settings
func (h *ProfileHandler) UpdateSettings(c *gin.Context) {
	var req model.UpdateSettingsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	settings, err := h.profileService.UpdateSettings(c.Request.Context(), middleware.GetClaims(c).UserID(), req)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"settings": settings})
}

// GetStats godoc
// GET /api/v1/profile/stats
func (h *ProfileHandler) GetStats(c *gin.Context) {
	stats, err := h.profileService.Stats(c.Request.Context(), middleware.GetClaims(c).UserID())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"stats": stats})
}
