package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"epiwatch/internal/services"
)

type VerifyHandler struct {
	Verification *services.VerificationService
}

func NewVerifyHandler(v *services.VerificationService) *VerifyHandler {
	return &VerifyHandler{Verification: v}
}

// @Summary      Request a WhatsApp OTP
// @Description  Sends a one-time code to the given phone number over WhatsApp
// @Tags         Alerts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/alerts/whatsapp/request-otp [post]
func (h *VerifyHandler) RequestOTP(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req struct {
		PhoneNumber string `json:"phone_number"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	phone, ttl, err := h.Verification.RequestOTP(c.Request.Context(), userID, req.PhoneNumber)
	if err != nil {
		switch {
		case err == services.ErrInvalidPhone:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid phone number. Use E.164 format like +911234567890."})
		case services.IsConfigurationError(err):
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		case services.IsDeliveryError(err):
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to send OTP via WhatsApp.", "details": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create verification."})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":                 true,
		"to":                 phone,
		"expires_in_minutes": int(ttl / time.Minute),
	})
}

// @Summary      Verify a WhatsApp OTP
// @Description  Confirms the code and links the phone number to the account
// @Tags         Alerts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/alerts/whatsapp/verify-otp [post]
func (h *VerifyHandler) VerifyOTP(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req struct {
		Code string `json:"code"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	phone, err := h.Verification.VerifyOTP(c.Request.Context(), userID, strings.TrimSpace(req.Code))
	if err != nil {
		// each failure is actionable: the client decides between re-entry
		// and requesting a fresh code
		switch err {
		case services.ErrInvalidCode:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid code."})
		case services.ErrNoPending:
			c.JSON(http.StatusNotFound, gin.H{"error": "No pending verification found."})
		case services.ErrCodeExpired:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Code expired. Request a new one."})
		case services.ErrTooManyAttempts:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Too many attempts. Request a new code."})
		case services.ErrCodeMismatch:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Incorrect code."})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Verification failed."})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "phone_number": phone})
}
