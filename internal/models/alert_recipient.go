package models

// AlertRecipient: an AlertSettings row joined with the owning user's contact
// fields, as the dispatch sweep consumes it.
type AlertRecipient struct {
	Settings AlertSettings

	PhoneNumber   string
	PhoneVerified bool
	WhatsAppOptIn bool

	TelegramChatID int64
	TelegramOptIn  bool
}
