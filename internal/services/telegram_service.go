package services

import (
	"fmt"
	"log"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// NewBotAPI defaults to a client with no timeout; a stalled Bot API call
// would otherwise hang the caller, so every request goes through this one.
var botClient = &http.Client{Timeout: 15 * time.Second}

// TelegramService: thin wrapper over the bot API. A nil *TelegramService is
// a valid "telegram not configured" service: sends are skipped with a log
// line, mirroring the dry-run behavior.
type TelegramService struct {
	bot      *tgbotapi.BotAPI
	username string
	dryRun   bool
}

func NewTelegramService(botToken, username string, dryRun bool) (*TelegramService, error) {
	if botToken == "" {
		return nil, nil
	}
	if dryRun {
		return &TelegramService{username: username, dryRun: true}, nil
	}
	bot, err := tgbotapi.NewBotAPIWithClient(botToken, tgbotapi.APIEndpoint, botClient)
	if err != nil {
		return nil, fmt.Errorf("telegram init: %w", err)
	}
	return &TelegramService{bot: bot, username: username}, nil
}

func (t *TelegramService) Configured() bool { return t != nil }

func (t *TelegramService) BotUsername() string {
	if t == nil {
		return ""
	}
	return t.username
}

// StartLink: deep link carrying the raw link code; the chat echoes it back
// through the webhook as "/start <code>".
func (t *TelegramService) StartLink(code string) string {
	if t == nil || t.username == "" {
		return ""
	}
	return fmt.Sprintf("https://t.me/%s?start=%s", t.username, code)
}

func (t *TelegramService) BotURL() string {
	if t == nil || t.username == "" {
		return ""
	}
	return "https://t.me/" + t.username
}

func (t *TelegramService) SendMessage(chatID int64, text string) error {
	if t == nil || chatID == 0 {
		log.Printf("[tg][skip] not configured or chatID empty (chatID=%d)", chatID)
		return nil
	}
	if t.dryRun {
		log.Printf("[tg][dry-run] chatID=%d text=%q", chatID, text)
		return nil
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if _, err := t.bot.Send(msg); err != nil {
		log.Printf("[tg][send][err] chatID=%d: %v", chatID, err)
		return &DeliveryError{Channel: "telegram", Err: err}
	}
	return nil
}

// SetWebhook registers the webhook URL with the optional shared secret that
// Telegram will echo in X-Telegram-Bot-Api-Secret-Token.
func (t *TelegramService) SetWebhook(webhookURL, secret string) error {
	if t == nil || webhookURL == "" || t.dryRun {
		return nil
	}
	params := tgbotapi.Params{"url": webhookURL}
	if secret != "" {
		// secret_token postdates the library's WebhookConfig, send it raw
		params["secret_token"] = secret
	}
	if _, err := t.bot.MakeRequest("setWebhook", params); err != nil {
		return fmt.Errorf("telegram setWebhook: %w", err)
	}
	log.Printf("[tg][setWebhook] url=%s", webhookURL)
	return nil
}
