package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"suitability/internal/repository"
	"suitability/internal/scoring"
	"suitability/internal/service"
)

type CalculationHandler struct {
	Service *service.CalculationService
	Repo    repository.Repository
}

func (h *CalculationHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1/calculations")
	group.POST("", h.runCalculation)
	group.GET("/latest", h.latestScores)
	group.GET("/:correlationId/events", h.listEvents)
}

type runCalculationRequest struct {
	UserID            string `json:"user_id" binding:"required"`
	CriteriaVersionID string `json:"criteria_version_id"`
}

func (h *CalculationHandler) runCalculation(c *gin.Context) {
	if h.Service == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	var req runCalculationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	out, err := h.Service.Run(c.Request.Context(), req.UserID, req.CriteriaVersionID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoCriteriaVersion):
			Error(c, http.StatusNotFound, err.Error(), nil)
		case errors.Is(err, scoring.ErrMalformedCriterion):
			Error(c, http.StatusUnprocessableEntity, err.Error(), nil)
		default:
			Error(c, http.StatusInternalServerError, err.Error(), nil)
		}
		return
	}
	Ok(c, out, map[string]any{"asset_count": len(out.Results)})
}

func (h *CalculationHandler) latestScores(c *gin.Context) {
	if h.Service == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	userID := strings.TrimSpace(c.Query("user_id"))
	if userID == "" {
		Error(c, http.StatusBadRequest, "user_id is required", nil)
		return
	}
	latest, err := h.Service.LatestScores(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, scoring.ErrNoEvents) {
			Error(c, http.StatusNotFound, err.Error(), nil)
			return
		}
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	Ok(c, latest, nil)
}

func (h *CalculationHandler) listEvents(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	correlationID := c.Param("correlationId")
	items, err := h.Repo.ListCalculationEventsByCorrelationID(c.Request.Context(), correlationID)
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	if len(items) == 0 {
		Error(c, http.StatusNotFound, "no events found", nil)
		return
	}
	Ok(c, items, map[string]any{"count": len(items)})
}
