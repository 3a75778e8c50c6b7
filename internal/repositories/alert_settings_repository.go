package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"epiwatch/internal/models"
)

type AlertSettingsRepository interface {
	GetByUserID(ctx context.Context, userID int) (*models.AlertSettings, error)
	Upsert(ctx context.Context, s *models.AlertSettings) error
	ListEnabled(ctx context.Context, channel models.Channel) ([]*models.AlertRecipient, error)
	UpdateLastSent(ctx context.Context, id int64, sentAt time.Time) error
}

type alertSettingsRepository struct {
	DB *sql.DB
}

func NewAlertSettingsRepository(db *sql.DB) AlertSettingsRepository {
	return &alertSettingsRepository{DB: db}
}

const settingsColumns = `
	id, user_id, COALESCE(selected_state,''),
	whatsapp_enabled, telegram_enabled, browser_enabled, daily_digest_enabled,
	threshold, cooldown_minutes, last_alert_sent_at
`

func scanSettings(scan func(dest ...any) error) (*models.AlertSettings, error) {
	var s models.AlertSettings
	var lastSent sql.NullTime
	if err := scan(
		&s.ID, &s.UserID, &s.SelectedState,
		&s.WhatsAppEnabled, &s.TelegramEnabled, &s.BrowserEnabled, &s.DailyDigestEnabled,
		&s.Threshold, &s.CooldownMinutes, &lastSent,
	); err != nil {
		return nil, err
	}
	if lastSent.Valid {
		t := lastSent.Time
		s.LastAlertSentAt = &t
	}
	return &s, nil
}

func (r *alertSettingsRepository) GetByUserID(ctx context.Context, userID int) (*models.AlertSettings, error) {
	q := `SELECT ` + settingsColumns + ` FROM alert_settings WHERE user_id = $1`
	s, err := scanSettings(r.DB.QueryRowContext(ctx, q, userID).Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("alert_settings get: %w", err)
	}
	return s, nil
}

// Upsert: create-or-update keyed by user_id. The caller passes a fully
// merged record (see models.MergeAlertSettings); last_alert_sent_at is
// deliberately not touched here.
func (r *alertSettingsRepository) Upsert(ctx context.Context, s *models.AlertSettings) error {
	const q = `
		INSERT INTO alert_settings
			(user_id, selected_state, whatsapp_enabled, telegram_enabled,
			 browser_enabled, daily_digest_enabled, threshold, cooldown_minutes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (user_id) DO UPDATE SET
			selected_state=EXCLUDED.selected_state,
			whatsapp_enabled=EXCLUDED.whatsapp_enabled,
			telegram_enabled=EXCLUDED.telegram_enabled,
			browser_enabled=EXCLUDED.browser_enabled,
			daily_digest_enabled=EXCLUDED.daily_digest_enabled,
			threshold=EXCLUDED.threshold,
			cooldown_minutes=EXCLUDED.cooldown_minutes
		RETURNING id
	`
	if err := r.DB.QueryRowContext(ctx, q,
		s.UserID, s.SelectedState, s.WhatsAppEnabled, s.TelegramEnabled,
		s.BrowserEnabled, s.DailyDigestEnabled, s.Threshold, s.CooldownMinutes,
	).Scan(&s.ID); err != nil {
		return fmt.Errorf("alert_settings upsert: %w", err)
	}
	return nil
}

// ListEnabled: all settings rows with the given channel switched on, joined
// with the owning user's contact fields. Ordering is not significant to the
// sweep.
func (r *alertSettingsRepository) ListEnabled(ctx context.Context, channel models.Channel) ([]*models.AlertRecipient, error) {
	var channelFilter string
	switch channel {
	case models.ChannelWhatsApp:
		channelFilter = "s.whatsapp_enabled"
	case models.ChannelTelegram:
		channelFilter = "s.telegram_enabled"
	default:
		return nil, fmt.Errorf("alert_settings list: unknown channel %q", channel)
	}

	q := `
		SELECT ` + prefixedSettingsColumns() + `,
			COALESCE(u.phone_number,''), u.phone_verified, u.whatsapp_opt_in,
			COALESCE(u.telegram_chat_id,0), u.telegram_opt_in
		FROM alert_settings s
		JOIN users u ON u.id = s.user_id
		WHERE ` + channelFilter

	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("alert_settings list: %w", err)
	}
	defer rows.Close()

	var out []*models.AlertRecipient
	for rows.Next() {
		var rec models.AlertRecipient
		var lastSent sql.NullTime
		if err := rows.Scan(
			&rec.Settings.ID, &rec.Settings.UserID, &rec.Settings.SelectedState,
			&rec.Settings.WhatsAppEnabled, &rec.Settings.TelegramEnabled,
			&rec.Settings.BrowserEnabled, &rec.Settings.DailyDigestEnabled,
			&rec.Settings.Threshold, &rec.Settings.CooldownMinutes, &lastSent,
			&rec.PhoneNumber, &rec.PhoneVerified, &rec.WhatsAppOptIn,
			&rec.TelegramChatID, &rec.TelegramOptIn,
		); err != nil {
			return nil, fmt.Errorf("alert_settings scan: %w", err)
		}
		if lastSent.Valid {
			t := lastSent.Time
			rec.Settings.LastAlertSentAt = &t
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}

func (r *alertSettingsRepository) UpdateLastSent(ctx context.Context, id int64, sentAt time.Time) error {
	if _, err := r.DB.ExecContext(ctx, `UPDATE alert_settings SET last_alert_sent_at=$1 WHERE id=$2`, sentAt, id); err != nil {
		return fmt.Errorf("alert_settings update last sent: %w", err)
	}
	return nil
}

func prefixedSettingsColumns() string {
	return `
		s.id, s.user_id, COALESCE(s.selected_state,''),
		s.whatsapp_enabled, s.telegram_enabled, s.browser_enabled, s.daily_digest_enabled,
		s.threshold, s.cooldown_minutes, s.last_alert_sent_at`
}
