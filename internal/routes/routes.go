package routes

import (
	"github.com/gin-gonic/gin"

	"epiwatch/internal/handlers"
	"epiwatch/internal/middleware"
)

func SetupRoutes(
	r *gin.Engine,
	authHandler *handlers.AuthHandler,
	verifyHandler *handlers.VerifyHandler,
	settingsHandler *handlers.SettingsHandler,
	telegramHandler *handlers.TelegramHandler,
	cronHandler *handlers.CronHandler,
	locationHandler *handlers.LocationHandler,
	riskHandler *handlers.RiskHandler,
	reportHandler *handlers.ReportHandler,
) *gin.Engine {

	// ---- public
	r.POST("/register", authHandler.Register)
	r.POST("/login", authHandler.Login)
	r.POST("/refresh", authHandler.RefreshToken)

	r.GET("/api/disease-data", riskHandler.DiseaseData)
	r.POST("/api/location/risk", locationHandler.LocationRisk)
	r.GET("/api/telegram/bot", telegramHandler.BotRedirect)

	// webhook and cron carry their own shared-secret auth
	r.POST("/api/telegram/webhook", telegramHandler.Webhook)
	r.GET("/api/telegram/webhook", telegramHandler.WebhookHealth)
	r.GET("/api/cron/risk-alerts", cronHandler.RiskAlerts)

	// ---- protected
	api := r.Group("/api", middleware.AuthMiddleware())

	wa := api.Group("/alerts/whatsapp")
	{
		wa.POST("/request-otp", verifyHandler.RequestOTP)
		wa.POST("/verify-otp", verifyHandler.VerifyOTP)
		wa.GET("/settings", settingsHandler.Get)
		wa.POST("/settings", settingsHandler.Update)
	}

	tg := api.Group("/alerts/telegram")
	{
		tg.GET("", telegramHandler.Status)
		tg.POST("/link-code", telegramHandler.CreateLinkCode)
	}

	reports := api.Group("/reports")
	{
		reports.GET("/risk.pdf", reportHandler.RiskPDF)
	}

	return r
}
