package routes_test

import (
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"epiwatch/internal/handlers"
	"epiwatch/internal/routes"
)

func TestRouteTable(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := routes.SetupRoutes(
		gin.New(),
		&handlers.AuthHandler{},
		&handlers.VerifyHandler{},
		&handlers.SettingsHandler{},
		&handlers.TelegramHandler{},
		&handlers.CronHandler{},
		&handlers.LocationHandler{},
		&handlers.RiskHandler{},
		&handlers.ReportHandler{},
	)

	registered := map[string]bool{}
	for _, ri := range r.Routes() {
		registered[ri.Method+" "+ri.Path] = true
	}

	for _, want := range []string{
		"POST /register",
		"POST /login",
		"POST /refresh",
		"GET /api/disease-data",
		"POST /api/location/risk",
		"GET /api/telegram/bot",
		"POST /api/telegram/webhook",
		"GET /api/telegram/webhook",
		"GET /api/cron/risk-alerts",
		"POST /api/alerts/whatsapp/request-otp",
		"POST /api/alerts/whatsapp/verify-otp",
		"GET /api/alerts/whatsapp/settings",
		"POST /api/alerts/whatsapp/settings",
		"GET /api/alerts/telegram",
		"POST /api/alerts/telegram/link-code",
		"GET /api/reports/risk.pdf",
	} {
		require.True(t, registered[want], "missing route %s", want)
	}
}
