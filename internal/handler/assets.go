package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"suitability/internal/models"
	"suitability/internal/repository"
	"suitability/internal/scoring"
)

type AssetHandler struct {
	Repo repository.Repository
}

func (h *AssetHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1/assets")
	group.GET("", h.listAssets)
	group.POST("", h.createAsset)
	group.PUT("/:id/fundamentals", h.putFundamentals)
	group.PUT("/:id/price", h.putPrice)
}

type createAssetRequest struct {
	Symbol string `json:"symbol" binding:"required"`
	Name   string `json:"name"`
}

func (h *AssetHandler) createAsset(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	var req createAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	item := &models.Asset{
		ID:     uuid.NewString(),
		Symbol: strings.ToUpper(strings.TrimSpace(req.Symbol)),
		Name:   strings.TrimSpace(req.Name),
		Active: true,
	}
	if err := h.Repo.UpsertAsset(c.Request.Context(), item); err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	Ok(c, item, nil)
}

func (h *AssetHandler) listAssets(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	params := repository.ListAssetsParams{
		ActiveOnly: strings.EqualFold(c.Query("active"), "true"),
		Limit:      intQuery(c, "limit", 500),
		Offset:     intQuery(c, "offset", 0),
	}
	if symbol := strings.TrimSpace(c.Query("symbol")); symbol != "" {
		params.Symbol = &symbol
	}
	items, err := h.Repo.ListAssets(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	Ok(c, items, map[string]any{"count": len(items)})
}

type putFundamentalsRequest struct {
	// Fundamentals maps metric name to a decimal string, or null for a
	// known-but-missing metric.
	Fundamentals map[string]*string `json:"fundamentals" binding:"required"`
	AsOf         *time.Time         `json:"as_of"`
}

func (h *AssetHandler) putFundamentals(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	assetID := c.Param("id")
	asset, err := h.Repo.GetAssetByID(c.Request.Context(), assetID)
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	if asset == nil {
		Error(c, http.StatusNotFound, "asset not found", nil)
		return
	}

	var req putFundamentalsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	asOf := time.Now().UTC()
	if req.AsOf != nil {
		asOf = req.AsOf.UTC()
	}

	items := make([]models.Fundamental, 0, len(req.Fundamentals))
	for metric, raw := range req.Fundamentals {
		item := models.Fundamental{
			AssetID: assetID,
			Metric:  strings.TrimSpace(metric),
			AsOf:    asOf,
		}
		if raw != nil {
			v, err := scoring.ParseDecimal(*raw)
			if err != nil {
				Error(c, http.StatusBadRequest, err.Error(), map[string]any{"metric": metric})
				return
			}
			item.Value = &v
		}
		items = append(items, item)
	}
	if err := h.Repo.UpsertFundamentals(c.Request.Context(), items); err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	Ok(c, gin.H{"asset_id": assetID, "updated": len(items)}, nil)
}

type putPriceRequest struct {
	Price    string     `json:"price" binding:"required"`
	Currency string     `json:"currency" binding:"required"`
	AsOf     *time.Time `json:"as_of"`
}

func (h *AssetHandler) putPrice(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	assetID := c.Param("id")
	asset, err := h.Repo.GetAssetByID(c.Request.Context(), assetID)
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	if asset == nil {
		Error(c, http.StatusNotFound, "asset not found", nil)
		return
	}

	var req putPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	price, err := scoring.ParseDecimal(req.Price)
	if err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	asOf := time.Now().UTC()
	if req.AsOf != nil {
		asOf = req.AsOf.UTC()
	}
	item := &models.Price{
		AssetID:  assetID,
		Price:    price,
		Currency: strings.ToUpper(strings.TrimSpace(req.Currency)),
		AsOf:     asOf,
	}
	if err := h.Repo.UpsertPrice(c.Request.Context(), item); err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	Ok(c, item, nil)
}
