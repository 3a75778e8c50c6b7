package models

import "time"

// TelegramLinkCode: one-time code embedded in the bot deep link. Unlike the
// OTP it carries no contact and no attempt counter: the webhook looks it up
// globally by exact code and a miss is simply a no-op.
type TelegramLinkCode struct {
	ID        int64     `json:"id"`
	UserID    int       `json:"user_id"`
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}
