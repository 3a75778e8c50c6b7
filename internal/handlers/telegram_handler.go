package handlers

import (
	"crypto/subtle"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"epiwatch/internal/models"
	"epiwatch/internal/services"
)

type TelegramHandler struct {
	Telegram      *services.TelegramService
	Links         *services.TelegramLinkService
	Settings      *services.SettingsService
	Users         services.UserService
	WebhookSecret string
	Production    bool
}

func NewTelegramHandler(
	tg *services.TelegramService,
	links *services.TelegramLinkService,
	settings *services.SettingsService,
	users services.UserService,
	webhookSecret string,
	production bool,
) *TelegramHandler {
	return &TelegramHandler{
		Telegram:      tg,
		Links:         links,
		Settings:      settings,
		Users:         users,
		WebhookSecret: webhookSecret,
		Production:    production,
	}
}

// @Summary      Telegram linkage status
// @Tags         Alerts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Router       /api/alerts/telegram [get]
func (h *TelegramHandler) Status(c *gin.Context) {
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
		"telegram": gin.H{
			"has_bot":           h.Telegram.Configured(),
			"bot_username":      h.Telegram.BotUsername(),
			"chat_id_linked":    user.TelegramChatID != 0,
			"telegram_username": user.TelegramUsername,
			"telegram_opt_in":   user.TelegramOptIn,
		},
		"settings": settings,
	})
}

type linkCodeRequest struct {
	models.AlertSettingsUpdate
}

// @Summary      Create a Telegram link code
// @Description  Saves any settings changes, replaces the outstanding link
// @Description  code and returns the bot deep link
// @Tags         Alerts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Router       /api/alerts/telegram/link-code [post]
func (h *TelegramHandler) CreateLinkCode(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req linkCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// settings ride along on this endpoint for convenience
	if _, err := h.Settings.Update(c.Request.Context(), userID, req.AlertSettingsUpdate, nil); err != nil {
		if err == services.ErrInvalidState {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid state."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save settings"})
		return
	}

	link, startLink, err := h.Links.CreateLinkCode(c.Request.Context(), userID)
	if err != nil {
		if services.IsConfigurationError(err) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Telegram bot is not configured."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create link code"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":           true,
		"code":         link.Code,
		"expires_at":   link.ExpiresAt,
		"start_link":   startLink,
		"bot_username": h.Telegram.BotUsername(),
	})
}

func (h *TelegramHandler) webhookAuthorized(c *gin.Context) bool {
	if h.WebhookSecret == "" {
		// fail closed in production, open in dev
		return !h.Production
	}
	got := c.GetHeader("X-Telegram-Bot-Api-Secret-Token")
	return subtle.ConstantTimeCompare([]byte(got), []byte(h.WebhookSecret)) == 1
}

// Webhook receives bot updates. Only "/start <code>" is meaningful; anything
// else is acknowledged and dropped so Telegram does not retry.
func (h *TelegramHandler) Webhook(c *gin.Context) {
	if !h.webhookAuthorized(c) {
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false})
		return
	}

	var update tgbotapi.Update
	if err := c.ShouldBindJSON(&update); err != nil || update.Message == nil {
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}
	msg := update.Message
	if !msg.IsCommand() || msg.Command() != "start" {
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}

	code := strings.TrimSpace(msg.CommandArguments())
	chatID := msg.Chat.ID
	username := ""
	if msg.From != nil {
		username = msg.From.UserName
	}

	linked, err := h.Links.ConsumeStartCode(c.Request.Context(), code, chatID, username)
	if err != nil {
		log.Printf("[tg][webhook] consume failed chatID=%d: %v", chatID, err)
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}
	if linked {
		_ = h.Telegram.SendMessage(chatID,
			"✅ Linked! You will receive outbreak alerts for your selected state here.")
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// WebhookHealth answers health probes on the webhook URL.
func (h *TelegramHandler) WebhookHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// @Summary      Open the alert bot
// @Description  307 redirect to the bot's t.me page
// @Tags         Alerts
// @Router       /api/telegram/bot [get]
func (h *TelegramHandler) BotRedirect(c *gin.Context) {
	if !h.Telegram.Configured() || h.Telegram.BotURL() == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "Telegram bot is not configured."})
		return
	}
	c.Redirect(http.StatusTemporaryRedirect, h.Telegram.BotURL())
}
