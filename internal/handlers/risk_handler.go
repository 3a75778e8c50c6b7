package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"epiwatch/internal/services"
)

type RiskHandler struct {
	Source services.RiskSource
}

func NewRiskHandler(source services.RiskSource) *RiskHandler {
	return &RiskHandler{Source: source}
}

// @Summary      Disease risk snapshot
// @Description  Current per-state risk feed consumed by the dashboard and the
// @Description  alert sweep
// @Tags         Risk
// @Produce      json
// @Success      200  {object}  models.RiskSnapshot
// @Failure      502  {object}  map[string]string
// @Router       /api/disease-data [get]
func (h *RiskHandler) DiseaseData(c *gin.Context) {
	snap, err := h.Source.Fetch(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Risk data unavailable."})
		return
	}
	c.JSON(http.StatusOK, snap)
}
