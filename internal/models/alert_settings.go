package models

import "time"

type AlertThreshold string

const (
	ThresholdHigh     AlertThreshold = "HIGH"
	ThresholdCritical AlertThreshold = "CRITICAL"
)

const (
	CooldownMinMinutes     = 5
	CooldownMaxMinutes     = 24 * 60
	CooldownDefaultMinutes = 60
)

// AlertSettings: one row per user, created lazily on the first settings
// write. Threshold and cooldown always hold defined values.
type AlertSettings struct {
	ID                 int64          `json:"id"`
	UserID             int            `json:"user_id"`
	SelectedState      string         `json:"selected_state"`
	WhatsAppEnabled    bool           `json:"whatsapp_enabled"`
	TelegramEnabled    bool           `json:"telegram_enabled"`
	BrowserEnabled     bool           `json:"browser_enabled"`
	DailyDigestEnabled bool           `json:"daily_digest_enabled"`
	Threshold          AlertThreshold `json:"threshold"`
	CooldownMinutes    int            `json:"cooldown_minutes"`
	LastAlertSentAt    *time.Time     `json:"last_alert_sent_at,omitempty"`
}

// AlertSettingsUpdate: partial update payload for the upsert. Nil fields
// leave the stored (or defaulted) value untouched.
type AlertSettingsUpdate struct {
	SelectedState      *string         `json:"selected_state,omitempty"`
	WhatsAppEnabled    *bool           `json:"whatsapp_enabled,omitempty"`
	TelegramEnabled    *bool           `json:"telegram_enabled,omitempty"`
	BrowserEnabled     *bool           `json:"browser_enabled,omitempty"`
	DailyDigestEnabled *bool           `json:"daily_digest_enabled,omitempty"`
	Threshold          *AlertThreshold `json:"threshold,omitempty"`
	CooldownMinutes    *int            `json:"cooldown_minutes,omitempty"`
}

// MergeAlertSettings applies a partial update over an optional existing row.
// Defaulting happens here and nowhere else: threshold HIGH, cooldown 60,
// browser and daily digest enabled, messaging channels disabled.
func MergeAlertSettings(userID int, existing *AlertSettings, upd AlertSettingsUpdate) AlertSettings {
	out := AlertSettings{
		UserID:             userID,
		WhatsAppEnabled:    false,
		TelegramEnabled:    false,
		BrowserEnabled:     true,
		DailyDigestEnabled: true,
		Threshold:          ThresholdHigh,
		CooldownMinutes:    CooldownDefaultMinutes,
	}
	if existing != nil {
		out = *existing
		out.UserID = userID
	}

	if upd.SelectedState != nil && *upd.SelectedState != "" {
		out.SelectedState = *upd.SelectedState
	}
	if upd.WhatsAppEnabled != nil {
		out.WhatsAppEnabled = *upd.WhatsAppEnabled
	}
	if upd.TelegramEnabled != nil {
		out.TelegramEnabled = *upd.TelegramEnabled
	}
	if upd.BrowserEnabled != nil {
		out.BrowserEnabled = *upd.BrowserEnabled
	}
	if upd.DailyDigestEnabled != nil {
		out.DailyDigestEnabled = *upd.DailyDigestEnabled
	}
	if upd.Threshold != nil {
		if t := *upd.Threshold; t == ThresholdHigh || t == ThresholdCritical {
			out.Threshold = t
		}
	}
	if upd.CooldownMinutes != nil {
		out.CooldownMinutes = ClampCooldown(*upd.CooldownMinutes)
	}

	if out.Threshold != ThresholdHigh && out.Threshold != ThresholdCritical {
		out.Threshold = ThresholdHigh
	}
	if out.CooldownMinutes == 0 {
		out.CooldownMinutes = CooldownDefaultMinutes
	}
	return out
}

func ClampCooldown(minutes int) int {
	if minutes < CooldownMinMinutes {
		return CooldownMinMinutes
	}
	if minutes > CooldownMaxMinutes {
		return CooldownMaxMinutes
	}
	return minutes
}
