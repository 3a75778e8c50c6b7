package models

import "time"

type User struct {
	ID           int    `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	PasswordHash string `json:"-"` // never returned

	// WhatsApp contact. PhoneNumber is only meaningful together with
	// PhoneVerified: the two are written in one transaction.
	PhoneNumber     string     `json:"phone_number,omitempty"`
	PhoneVerified   bool       `json:"phone_verified"`
	WhatsAppOptIn   bool       `json:"whatsapp_opt_in"`
	WhatsAppOptInAt *time.Time `json:"whatsapp_opt_in_at,omitempty"`

	// Telegram contact, same pairing rule (chat id + opt-in flag).
	TelegramChatID   int64      `json:"telegram_chat_id,omitempty"`
	TelegramUsername string     `json:"telegram_username,omitempty"`
	TelegramOptIn    bool       `json:"telegram_opt_in"`
	TelegramOptInAt  *time.Time `json:"telegram_opt_in_at,omitempty"`

	// refresh-token storage
	RefreshToken     *string    `json:"-"`
	RefreshExpiresAt *time.Time `json:"-"`
	RefreshRevoked   bool       `json:"-"`

	CreatedAt time.Time `json:"created_at"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}
