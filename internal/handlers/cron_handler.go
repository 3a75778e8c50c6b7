package handlers

import (
	"crypto/subtle"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"epiwatch/internal/models"
	"epiwatch/internal/services"
)

type CronHandler struct {
	Alerts     *services.AlertService
	CronSecret string
	Production bool
}

func NewCronHandler(alerts *services.AlertService, cronSecret string, production bool) *CronHandler {
	return &CronHandler{Alerts: alerts, CronSecret: cronSecret, Production: production}
}

func (h *CronHandler) authorized(c *gin.Context) bool {
	if h.CronSecret == "" {
		// without a secret the endpoint is only usable in dev
		return !h.Production
	}
	if secret := c.GetHeader("X-Cron-Secret"); secret != "" {
		return subtle.ConstantTimeCompare([]byte(secret), []byte(h.CronSecret)) == 1
	}
	auth := c.GetHeader("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		token := strings.TrimPrefix(auth, "Bearer ")
		return subtle.ConstantTimeCompare([]byte(token), []byte(h.CronSecret)) == 1
	}
	return false
}

// @Summary      Run the risk-alert sweep
// @Description  Walks every enabled settings row for the channel and sends
// @Description  at most one alert per user
// @Tags         Cron
// @Produce      json
// @Param        channel  query     string  false  "whatsapp or telegram"  default(whatsapp)
// @Success      200      {object}  map[string]interface{}
// @Failure      401      {object}  map[string]string
// @Failure      502      {object}  map[string]string
// @Router       /api/cron/risk-alerts [get]
func (h *CronHandler) RiskAlerts(c *gin.Context) {
	if !h.authorized(c) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	raw := c.DefaultQuery("channel", string(models.ChannelWhatsApp))
	channel, ok := models.ParseChannel(raw)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown channel. Use whatsapp or telegram."})
		return
	}

	res, err := h.Alerts.RunSweep(c.Request.Context(), channel)
	if err != nil {
		log.Printf("[cron][risk-alerts] sweep %s aborted: %v", channel, err)
		if services.IsConfigurationError(err) {
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"ok": false, "error": "Sweep aborted: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":        true,
		"channel":   res.Channel,
		"sent":      res.Sent,
		"skipped":   res.Skipped,
		"failed":    res.Failed,
		"updatedAt": res.UpdatedAt,
	})
}
