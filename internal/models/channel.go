package models

// Channel: a messaging transport alerts are delivered through.
type Channel string

const (
	ChannelWhatsApp Channel = "whatsapp"
	ChannelTelegram Channel = "telegram"
)

func ParseChannel(s string) (Channel, bool) {
	switch Channel(s) {
	case ChannelWhatsApp, ChannelTelegram:
		return Channel(s), true
	}
	return "", false
}
