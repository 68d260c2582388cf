package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"suitability/internal/models"
	"suitability/internal/repository"
	"suitability/internal/scoring"
)

type RateHandler struct {
	Repo repository.Repository
}

func (h *RateHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1/rates")
	group.GET("", h.listRates)
	group.PUT("", h.putRate)
}

type putRateRequest struct {
	Base  string     `json:"base" binding:"required"`
	Quote string     `json:"quote" binding:"required"`
	Rate  string     `json:"rate" binding:"required"`
	AsOf  *time.Time `json:"as_of"`
}

func (h *RateHandler) putRate(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	var req putRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	rate, err := scoring.ParseDecimal(req.Rate)
	if err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	asOf := time.Now().UTC()
	if req.AsOf != nil {
		asOf = req.AsOf.UTC()
	}
	item := &models.ExchangeRate{
		Base:  strings.ToUpper(strings.TrimSpace(req.Base)),
		Quote: strings.ToUpper(strings.TrimSpace(req.Quote)),
		Rate:  rate,
		AsOf:  asOf,
	}
	if err := h.Repo.UpsertExchangeRate(c.Request.Context(), item); err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	Ok(c, item, nil)
}

func (h *RateHandler) listRates(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	items, err := h.Repo.ListExchangeRates(c.Request.Context())
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	Ok(c, items, map[string]any{"count": len(items)})
}
