package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"epiwatch/internal/geo"
	"epiwatch/internal/models"
	"epiwatch/internal/services"
)

type LocationHandler struct {
	Risk     services.RiskSource
	Telegram *services.TelegramService
}

func NewLocationHandler(risk services.RiskSource, tg *services.TelegramService) *LocationHandler {
	return &LocationHandler{Risk: risk, Telegram: tg}
}

type locationRequest struct {
	Lat *float64 `json:"lat" binding:"required"`
	Lng *float64 `json:"lng" binding:"required"`
}

// @Summary      Location risk lookup
// @Description  Resolves coordinates to the nearest covered state and returns
// @Description  its current risk plus prevention guidance
// @Tags         Risk
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/location/risk [post]
func (h *LocationHandler) LocationRisk(c *gin.Context) {
	var req locationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lng are required."})
		return
	}
	lat, lng := *req.Lat, *req.Lng
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Coordinates out of range."})
		return
	}

	state, ok := geo.NearestState(lat, lng)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No coverage configured."})
		return
	}

	snap, err := h.Risk.Fetch(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Risk data unavailable."})
		return
	}

	var match *models.StateRisk
	key := geo.NormalizePlaceName(state)
	for i := range snap.States {
		if geo.NormalizePlaceName(snap.States[i].State) == key {
			match = &snap.States[i]
			break
		}
	}

	resp := gin.H{
		"state":      state,
		"updated_at": snap.UpdatedAt,
	}
	if match != nil {
		risk := models.Clamp01(match.RiskScore)
		level := match.EffectiveLevel()
		resp["risk_score"] = risk
		resp["risk_level"] = level
		resp["primary_threat"] = match.PrimaryThreat
		resp["preventions"] = services.BuildPreventions(risk, level, match.PrimaryThreat)
	} else {
		resp["risk_level"] = models.RiskLow
		resp["preventions"] = services.GenericSafetyActions()
	}
	if h.Telegram.Configured() {
		resp["alert_bot"] = h.Telegram.BotURL()
	}

	c.JSON(http.StatusOK, resp)
}
