package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"suitability/internal/models"
	"suitability/internal/repository"
	"suitability/internal/scoring"
)

type CriteriaHandler struct {
	Repo repository.Repository
}

func (h *CriteriaHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1/criteria/versions")
	group.GET("", h.listVersions)
	group.GET("/:id", h.getVersion)
	group.POST("", h.createVersion)
	group.POST("/:id/activate", h.activateVersion)
}

type criterionRequest struct {
	Name                 string   `json:"name" binding:"required"`
	Metric               string   `json:"metric" binding:"required"`
	Operator             string   `json:"operator" binding:"required"`
	Value                string   `json:"value"`
	Value2               *string  `json:"value2"`
	Points               int      `json:"points"`
	RequiredFundamentals []string `json:"required_fundamentals"`
	SortOrder            int      `json:"sort_order"`
}

type createVersionRequest struct {
	Name        string             `json:"name" binding:"required"`
	Description *string            `json:"description"`
	Criteria    []criterionRequest `json:"criteria"`
}

func (h *CriteriaHandler) createVersion(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	var req createVersionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	version := &models.CriteriaVersion{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Status:      models.VersionStatusDraft,
	}

	criteria := make([]models.Criterion, 0, len(req.Criteria))
	for i, cr := range req.Criteria {
		row, err := buildCriterion(cr)
		if err != nil {
			Error(c, http.StatusBadRequest, err.Error(), map[string]any{"index": i})
			return
		}
		criteria = append(criteria, row)
	}

	if err := h.Repo.InTx(c.Request.Context(), func(tx *gorm.DB) error {
		return h.Repo.CreateCriteriaVersionTx(c.Request.Context(), tx, version, criteria)
	}); err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	Ok(c, gin.H{"version": version, "criteria": criteria}, nil)
}

// buildCriterion validates one rule at the door: operators come from the
// wire vocabulary, thresholds must parse as decimals, between needs both
// bounds. A rule that cannot be stored cleanly cannot be scored
// deterministically later.
func buildCriterion(cr criterionRequest) (models.Criterion, error) {
	op, err := scoring.ParseOperator(cr.Operator)
	if err != nil {
		return models.Criterion{}, err
	}

	value := decimal.Zero
	if strings.TrimSpace(cr.Value) != "" {
		value, err = scoring.ParseDecimal(cr.Value)
		if err != nil {
			return models.Criterion{}, err
		}
	}

	var value2 *decimal.Decimal
	if op == scoring.OpBetween {
		if cr.Value2 == nil || strings.TrimSpace(*cr.Value2) == "" {
			return models.Criterion{}, scoring.ErrMalformedCriterion
		}
		v2, err := scoring.ParseDecimal(*cr.Value2)
		if err != nil {
			return models.Criterion{}, err
		}
		value2 = &v2
	}

	var required datatypes.JSON
	if len(cr.RequiredFundamentals) > 0 {
		raw, err := json.Marshal(cr.RequiredFundamentals)
		if err != nil {
			return models.Criterion{}, err
		}
		required = datatypes.JSON(raw)
	}

	return models.Criterion{
		ID:                   uuid.NewString(),
		Name:                 strings.TrimSpace(cr.Name),
		Metric:               strings.TrimSpace(cr.Metric),
		Operator:             string(op),
		Value:                value,
		Value2:               value2,
		Points:               cr.Points,
		RequiredFundamentals: required,
		SortOrder:            cr.SortOrder,
	}, nil
}

func (h *CriteriaHandler) listVersions(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	params := repository.ListCriteriaVersionsParams{
		Limit:  intQuery(c, "limit", 100),
		Offset: intQuery(c, "offset", 0),
	}
	if status := strings.TrimSpace(c.Query("status")); status != "" {
		params.Status = &status
	}
	items, err := h.Repo.ListCriteriaVersions(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	Ok(c, items, map[string]any{"count": len(items)})
}

func (h *CriteriaHandler) getVersion(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	id := c.Param("id")
	version, err := h.Repo.GetCriteriaVersionByID(c.Request.Context(), id)
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	if version == nil {
		Error(c, http.StatusNotFound, "criteria version not found", nil)
		return
	}
	criteria, err := h.Repo.ListCriteriaByVersionID(c.Request.Context(), id)
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	Ok(c, gin.H{"version": version, "criteria": criteria}, nil)
}

func (h *CriteriaHandler) activateVersion(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	id := c.Param("id")
	if err := h.Repo.ActivateCriteriaVersion(c.Request.Context(), id); err != nil {
		if err == gorm.ErrRecordNotFound {
			Error(c, http.StatusNotFound, "criteria version not found", nil)
			return
		}
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	Ok(c, gin.H{"id": id, "status": models.VersionStatusActive}, nil)
}

func intQuery(c *gin.Context, key string, fallback int) int {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
