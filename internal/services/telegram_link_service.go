package services

import (
	"context"
	"log"
	"time"

	"epiwatch/internal/models"
	"epiwatch/internal/repositories"
	"epiwatch/internal/utils"
)

const (
	linkCodeTTL    = 15 * time.Minute
	linkCodeLength = 16
)

// TelegramLinkService issues one-time deep-link codes and consumes them when
// the bot webhook echoes one back. The consume path is global (no session
// exists on the webhook), so code entropy plus the short TTL are the guard.
type TelegramLinkService struct {
	Repo     repositories.TelegramLinkRepository
	Telegram *TelegramService
}

func NewTelegramLinkService(repo repositories.TelegramLinkRepository, tg *TelegramService) *TelegramLinkService {
	return &TelegramLinkService{Repo: repo, Telegram: tg}
}

// CreateLinkCode supersedes any outstanding code for the user and returns the
// fresh one together with the t.me start link.
func (s *TelegramLinkService) CreateLinkCode(ctx context.Context, userID int) (*models.TelegramLinkCode, string, error) {
	if !s.Telegram.Configured() {
		return nil, "", &ConfigurationError{Missing: "telegram bot"}
	}
	code, err := utils.NewLinkCode(linkCodeLength)
	if err != nil {
		return nil, "", err
	}
	link, err := s.Repo.Replace(ctx, userID, code, linkCodeTTL)
	if err != nil {
		return nil, "", err
	}
	log.Printf("[tg][link-code] user_id=%d expires_at=%s", userID, link.ExpiresAt.Format(time.RFC3339))
	return link, s.Telegram.StartLink(code), nil
}

// ConsumeStartCode links chatID to whichever user owns the code. Unknown or
// expired codes are a no-op (false, nil): the webhook acks them silently.
func (s *TelegramLinkService) ConsumeStartCode(ctx context.Context, code string, chatID int64, username string) (bool, error) {
	if code == "" {
		return false, nil
	}
	link, err := s.Repo.ConsumeByCode(ctx, code, chatID, username)
	if err != nil {
		return false, err
	}
	if link == nil {
		log.Printf("[tg][webhook] no usable link code for chatID=%d", chatID)
		return false, nil
	}
	log.Printf("[tg][webhook] linked user_id=%d chatID=%d", link.UserID, chatID)
	return true, nil
}
