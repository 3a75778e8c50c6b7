package services

import (
	"context"
	"fmt"
	"log"
	"math"
	"net/url"
	"strconv"
	"time"

	"epiwatch/internal/geo"
	"epiwatch/internal/models"
	"epiwatch/internal/repositories"
)

// AlertMessage holds the channel-agnostic parameters of one outbound alert.
type AlertMessage struct {
	Level         models.RiskLevel
	State         string
	RiskPercent   string
	PrimaryThreat string
	Actions       []string // exactly 3 entries
	DashboardLink string
}

// AlertSender delivers one alert to one recipient over a concrete channel.
// Ready reports configuration problems up front so the sweep can fail whole
// instead of per-row.
type AlertSender interface {
	Ready() error
	SendAlert(ctx context.Context, rec *models.AlertRecipient, msg AlertMessage) error
}

type RowOutcome string

const (
	OutcomeSent             RowOutcome = "sent"
	OutcomeSkippedContact   RowOutcome = "skipped_contact"
	OutcomeSkippedNoRegion  RowOutcome = "skipped_no_region"
	OutcomeSkippedThreshold RowOutcome = "skipped_threshold"
	OutcomeSkippedCooldown  RowOutcome = "skipped_cooldown"
	OutcomeFailed           RowOutcome = "failed"
)

type SweepRow struct {
	UserID  int
	State   string
	Outcome RowOutcome
	Err     error
}

type SweepResult struct {
	Channel   models.Channel
	Sent      int
	Skipped   int
	Failed    int
	UpdatedAt string
	Rows      []SweepRow
}

// AlertService runs the dispatch sweep: one pass over every settings row
// with the channel enabled, at most one send per eligible user. Per-row
// delivery failures are recorded and the loop continues; a missing snapshot
// or missing template aborts before anything is sent.
type AlertService struct {
	Settings repositories.AlertSettingsRepository
	Risk     RiskSource
	Advice   AdviceSource
	Senders  map[models.Channel]AlertSender
	BaseURL  string

	now func() time.Time
}

func NewAlertService(
	settings repositories.AlertSettingsRepository,
	risk RiskSource,
	advice AdviceSource,
	senders map[models.Channel]AlertSender,
	baseURL string,
) *AlertService {
	return &AlertService{
		Settings: settings,
		Risk:     risk,
		Advice:   advice,
		Senders:  senders,
		BaseURL:  baseURL,
		now:      time.Now,
	}
}

func (s *AlertService) RunSweep(ctx context.Context, channel models.Channel) (*SweepResult, error) {
	sender, ok := s.Senders[channel]
	if !ok {
		return nil, &ConfigurationError{Missing: fmt.Sprintf("%s sender", channel)}
	}
	if err := sender.Ready(); err != nil {
		return nil, err
	}

	snap, err := s.Risk.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("sweep %s: snapshot unavailable: %w", channel, err)
	}
	byState := make(map[string]models.StateRisk, len(snap.States))
	for _, st := range snap.States {
		byState[geo.NormalizePlaceName(st.State)] = st
	}

	recipients, err := s.Settings.ListEnabled(ctx, channel)
	if err != nil {
		return nil, fmt.Errorf("sweep %s: %w", channel, err)
	}

	res := &SweepResult{Channel: channel, UpdatedAt: snap.UpdatedAt}
	now := s.now()

	for _, rec := range recipients {
		row := SweepRow{UserID: rec.Settings.UserID, State: rec.Settings.SelectedState}

		if !contactLinked(channel, rec) {
			row.Outcome = OutcomeSkippedContact
			res.Skipped++
			res.Rows = append(res.Rows, row)
			continue
		}

		st, ok := byState[geo.NormalizePlaceName(rec.Settings.SelectedState)]
		if !ok {
			row.Outcome = OutcomeSkippedNoRegion
			res.Skipped++
			res.Rows = append(res.Rows, row)
			continue
		}

		level := st.EffectiveLevel()
		if !models.MeetsThreshold(level, rec.Settings.Threshold) {
			row.Outcome = OutcomeSkippedThreshold
			res.Skipped++
			res.Rows = append(res.Rows, row)
			continue
		}

		if rec.Settings.LastAlertSentAt != nil {
			cooldown := time.Duration(rec.Settings.CooldownMinutes) * time.Minute
			if now.Sub(*rec.Settings.LastAlertSentAt) < cooldown {
				row.Outcome = OutcomeSkippedCooldown
				res.Skipped++
				res.Rows = append(res.Rows, row)
				continue
			}
		}

		msg := s.buildMessage(ctx, st, level)
		if err := sender.SendAlert(ctx, rec, msg); err != nil {
			// one bad recipient must not starve the rest of the sweep
			log.Printf("[sweep][%s][err] user_id=%d state=%s: %v", channel, rec.Settings.UserID, st.State, err)
			row.Outcome = OutcomeFailed
			row.Err = err
			res.Failed++
			res.Rows = append(res.Rows, row)
			continue
		}

		if err := s.Settings.UpdateLastSent(ctx, rec.Settings.ID, now); err != nil {
			log.Printf("[sweep][%s][err] last_sent update user_id=%d: %v", channel, rec.Settings.UserID, err)
		}
		row.Outcome = OutcomeSent
		res.Sent++
		res.Rows = append(res.Rows, row)
	}

	log.Printf("[sweep][%s] sent=%d skipped=%d failed=%d updated_at=%s",
		channel, res.Sent, res.Skipped, res.Failed, res.UpdatedAt)
	return res, nil
}

func contactLinked(channel models.Channel, rec *models.AlertRecipient) bool {
	switch channel {
	case models.ChannelWhatsApp:
		return rec.PhoneNumber != "" && rec.PhoneVerified && rec.WhatsAppOptIn
	case models.ChannelTelegram:
		return rec.TelegramChatID != 0 && rec.TelegramOptIn
	}
	return false
}

func (s *AlertService) buildMessage(ctx context.Context, st models.StateRisk, level models.RiskLevel) AlertMessage {
	risk := models.Clamp01(st.RiskScore)
	threat := st.PrimaryThreat
	if threat == "" {
		threat = "Unknown"
	}

	actions := s.Advice.Fetch(ctx, st.State, threat, risk)
	if len(actions) == 0 {
		actions = GenericSafetyActions()
	}
	for len(actions) < 3 {
		actions = append(actions, "")
	}
	actions = actions[:3]

	return AlertMessage{
		Level:         level,
		State:         st.State,
		RiskPercent:   strconv.Itoa(int(math.Round(risk * 100))),
		PrimaryThreat: threat,
		Actions:       actions,
		DashboardLink: s.BaseURL + "/dashboard?state=" + url.QueryEscape(st.State),
	}
}

// WhatsAppAlertSender renders the alert into the approved template's body
// parameters: level, state, risk percent, threat, three actions, link.
type WhatsAppAlertSender struct {
	WhatsApp     *WhatsAppService
	TemplateName string
}

func (w *WhatsAppAlertSender) Ready() error {
	if w.TemplateName == "" {
		return &ConfigurationError{Missing: "whatsapp alert template"}
	}
	return nil
}

func (w *WhatsAppAlertSender) SendAlert(ctx context.Context, rec *models.AlertRecipient, msg AlertMessage) error {
	return w.WhatsApp.SendTemplate(ctx, rec.PhoneNumber, w.TemplateName, []string{
		string(msg.Level),
		msg.State,
		msg.RiskPercent,
		msg.PrimaryThreat,
		msg.Actions[0],
		msg.Actions[1],
		msg.Actions[2],
		msg.DashboardLink,
	})
}

// TelegramAlertSender formats the alert as an HTML bot message.
type TelegramAlertSender struct {
	Telegram *TelegramService
}

func (t *TelegramAlertSender) Ready() error {
	if !t.Telegram.Configured() {
		return &ConfigurationError{Missing: "telegram bot"}
	}
	return nil
}

func (t *TelegramAlertSender) SendAlert(ctx context.Context, rec *models.AlertRecipient, msg AlertMessage) error {
	text := fmt.Sprintf(
		"⚠️ <b>%s risk in %s</b>\n\nRisk score: %s%%\nPrimary threat: %s\n\nRecommended actions:\n• %s\n• %s\n• %s\n\n<a href=\"%s\">Open dashboard</a>",
		msg.Level, msg.State, msg.RiskPercent, msg.PrimaryThreat,
		msg.Actions[0], msg.Actions[1], msg.Actions[2], msg.DashboardLink,
	)
	return t.Telegram.SendMessage(rec.TelegramChatID, text)
}
