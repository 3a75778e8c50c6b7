package models_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"epiwatch/internal/models"
)

func TestMergeAlertSettingsDefaults(t *testing.T) {
	out := models.MergeAlertSettings(7, nil, models.AlertSettingsUpdate{})

	require.Equal(t, 7, out.UserID)
	require.Equal(t, models.ThresholdHigh, out.Threshold)
	require.Equal(t, models.CooldownDefaultMinutes, out.CooldownMinutes)
	require.True(t, out.BrowserEnabled)
	require.True(t, out.DailyDigestEnabled)
	require.False(t, out.WhatsAppEnabled)
	require.False(t, out.TelegramEnabled)
}

func TestMergeAlertSettingsPartialUpdate(t *testing.T) {
	sent := time.Now().Add(-time.Hour)
	existing := &models.AlertSettings{
		ID:              12,
		UserID:          7,
		SelectedState:   "Kerala",
		WhatsAppEnabled: true,
		Threshold:       models.ThresholdCritical,
		CooldownMinutes: 120,
		LastAlertSentAt: &sent,
	}

	tg := true
	out := models.MergeAlertSettings(7, existing, models.AlertSettingsUpdate{
		TelegramEnabled: &tg,
	})

	// untouched fields survive the merge
	require.Equal(t, "Kerala", out.SelectedState)
	require.True(t, out.WhatsAppEnabled)
	require.True(t, out.TelegramEnabled)
	require.Equal(t, models.ThresholdCritical, out.Threshold)
	require.Equal(t, 120, out.CooldownMinutes)
	require.Equal(t, &sent, out.LastAlertSentAt)
}

func TestMergeAlertSettingsInvalidValues(t *testing.T) {
	bad := models.AlertThreshold("MEDIUM")
	tooLow := 1
	empty := ""
	out := models.MergeAlertSettings(1, &models.AlertSettings{
		UserID:        1,
		SelectedState: "Delhi",
		Threshold:     models.ThresholdHigh,
	}, models.AlertSettingsUpdate{
		Threshold:       &bad,
		CooldownMinutes: &tooLow,
		SelectedState:   &empty,
	})

	require.Equal(t, models.ThresholdHigh, out.Threshold)
	require.Equal(t, models.CooldownMinMinutes, out.CooldownMinutes)
	require.Equal(t, "Delhi", out.SelectedState)
}

func TestClampCooldown(t *testing.T) {
	require.Equal(t, models.CooldownMinMinutes, models.ClampCooldown(0))
	require.Equal(t, models.CooldownMinMinutes, models.ClampCooldown(-10))
	require.Equal(t, 60, models.ClampCooldown(60))
	require.Equal(t, models.CooldownMaxMinutes, models.ClampCooldown(100000))
}
