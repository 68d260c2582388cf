package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"suitability/internal/scoring"
	"suitability/internal/service"
)

type VerificationHandler struct {
	Service *service.VerificationService
}

func (h *VerificationHandler) Register(r *gin.Engine) {
	r.GET("/api/v1/verification/:correlationId", h.verify)
}

func (h *VerificationHandler) verify(c *gin.Context) {
	if h.Service == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	correlationID := c.Param("correlationId")
	report, err := h.Service.Verify(c.Request.Context(), correlationID)
	switch {
	case err == nil:
		Ok(c, report, nil)
	case errors.Is(err, scoring.ErrNoEvents):
		Error(c, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, scoring.ErrDeterminismViolation):
		// The verification itself succeeded; the replay did not match. The
		// report carries the discrepancy list.
		Fail(c, http.StatusConflict, "determinism violation", report)
	default:
		Error(c, http.StatusInternalServerError, err.Error(), nil)
	}
}
