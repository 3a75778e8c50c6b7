package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"epiwatch/internal/models"
	"epiwatch/internal/services"
)

type SettingsHandler struct {
	Settings *services.SettingsService
	Users    services.UserService
}

func NewSettingsHandler(settings *services.SettingsService, users services.UserService) *SettingsHandler {
	return &SettingsHandler{Settings: settings, Users: users}
}

// @Summary      Alert settings and WhatsApp contact status
// @Tags         Alerts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Router       /api/alerts/whatsapp/settings [get]
func (h *SettingsHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	user, err := h.Users.GetUserByID(userID)
	if err != nil || user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	settings, err := h.Settings.Get(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load settings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"phone_number":    user.PhoneNumber,
		"phone_verified":  user.PhoneVerified,
		"whatsapp_opt_in": user.WhatsAppOptIn,
		"settings":        settings,
	})
}

type updateSettingsRequest struct {
	models.AlertSettingsUpdate
	WhatsAppOptIn *bool `json:"whatsapp_opt_in,omitempty"`
}

// @Summary      Update alert settings
// @Description  Create-or-update with partial merge; threshold defaults to
// @Description  HIGH, cooldown to 60 minutes (clamped to 5..1440)
// @Tags         Alerts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Router       /api/alerts/whatsapp/settings [post]
func (h *SettingsHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req updateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	settings, err := h.Settings.Update(c.Request.Context(), userID, req.AlertSettingsUpdate, req.WhatsAppOptIn)
	if err != nil {
		if err == services.ErrInvalidState {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid state."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save settings"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "settings": settings})
}
