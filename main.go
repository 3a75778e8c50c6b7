package main

import "epiwatch/internal/app"

// @title           EpiWatch Alerts API
// @version         1.0
// @description     Disease-surveillance dashboard backend: WhatsApp/Telegram
// @description     contact verification and risk-alert dispatch.

// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization

func main() {
	app.Run()
}
