package app

import (
	"database/sql"
	"fmt"
	"log"

	"epiwatch/internal/config"
	"epiwatch/internal/handlers"
	"epiwatch/internal/middleware"
	"epiwatch/internal/models"
	"epiwatch/internal/pdf"
	"epiwatch/internal/repositories"
	"epiwatch/internal/routes"
	"epiwatch/internal/services"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "epiwatch/docs"
)

func Run() {
	cfg := config.LoadConfig()
	middleware.Init(cfg.JWT.Secret)

	// === DB ===
	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Failed to close database: %v", err)
		}
	}()

	// === Repos ===
	userRepo := repositories.NewUserRepository(db)
	verificationRepo := repositories.NewPhoneVerificationRepository(db)
	linkRepo := repositories.NewTelegramLinkRepository(db)
	settingsRepo := repositories.NewAlertSettingsRepository(db)

	// === Services ===
	authService := services.NewAuthService()
	emailService := services.NewEmailService(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPassword,
		cfg.Email.FromEmail,
	)
	userService := services.NewUserService(userRepo, emailService, authService)

	otpService := services.NewOTPService(cfg.Alerts.OTPSecret)
	whatsappService := services.NewWhatsAppService(
		cfg.WhatsApp.Token,
		cfg.WhatsApp.PhoneNumberID,
		cfg.WhatsApp.TemplateLanguageCode(),
		cfg.WhatsApp.DryRun,
	)
	verificationService := services.NewVerificationService(
		verificationRepo,
		otpService,
		whatsappService,
		cfg.WhatsApp.OTPTemplateName,
		cfg.Alerts.DefaultCountryCode,
	)

	telegramService, err := services.NewTelegramService(
		cfg.Telegram.BotToken,
		cfg.Telegram.BotUsername,
		cfg.Telegram.DryRun,
	)
	if err != nil {
		log.Fatal("Failed to initialize telegram bot: ", err)
	}
	linkService := services.NewTelegramLinkService(linkRepo, telegramService)
	settingsService := services.NewSettingsService(settingsRepo, userRepo)

	// risk/advice sources; without external URLs the sweep reads the
	// built-in snapshot directly
	var riskSource services.RiskSource = services.BuiltinRiskSource{}
	if cfg.Risk.DataURL != "" {
		riskSource = services.NewHTTPRiskSource(cfg.Risk.DataURL)
	}
	var adviceSource services.AdviceSource = services.StaticAdviceSource{}
	if cfg.Risk.PredictionsURL != "" {
		adviceSource = services.NewHTTPAdviceSource(cfg.Risk.PredictionsURL)
	}

	senders := map[models.Channel]services.AlertSender{
		models.ChannelWhatsApp: &services.WhatsAppAlertSender{
			WhatsApp:     whatsappService,
			TemplateName: cfg.WhatsApp.AlertTemplateName,
		},
		models.ChannelTelegram: &services.TelegramAlertSender{
			Telegram: telegramService,
		},
	}
	alertService := services.NewAlertService(settingsRepo, riskSource, adviceSource, senders, cfg.Server.BaseURL)

	pdfGen := pdf.NewReportGenerator()

	// === Handlers ===
	authHandler := handlers.NewAuthHandler(userService, authService)
	verifyHandler := handlers.NewVerifyHandler(verificationService)
	settingsHandler := handlers.NewSettingsHandler(settingsService, userService)
	telegramHandler := handlers.NewTelegramHandler(
		telegramService,
		linkService,
		settingsService,
		userService,
		cfg.Telegram.WebhookSecret,
		cfg.IsProduction(),
	)
	cronHandler := handlers.NewCronHandler(alertService, cfg.Alerts.CronSecret, cfg.IsProduction())
	locationHandler := handlers.NewLocationHandler(riskSource, telegramService)
	riskHandler := handlers.NewRiskHandler(riskSource)
	reportHandler := handlers.NewReportHandler(riskSource, pdfGen)

	// register the webhook with Telegram on boot
	if telegramService.Configured() {
		webhookURL := cfg.Server.BaseURL + "/api/telegram/webhook"
		if err := telegramService.SetWebhook(webhookURL, cfg.Telegram.WebhookSecret); err != nil {
			log.Printf("[tg][init] webhook registration failed: %v", err)
		}
	}

	// === Gin ===
	router := gin.Default()
	router.Use(corsMiddleware())
	router.Use(middleware.Language())

	// Swagger
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	routes.SetupRoutes(
		router,
		authHandler,
		verifyHandler,
		settingsHandler,
		telegramHandler,
		cronHandler,
		locationHandler,
		riskHandler,
		reportHandler,
	)

	// === Run ===
	listenAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Server listening on %s", listenAddr)
	if err := router.Run(listenAddr); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization, X-Cron-Secret")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
