package models_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"epiwatch/internal/models"
)

func TestEffectiveLevel(t *testing.T) {
	require.Equal(t, models.RiskCritical, models.StateRisk{OverallRisk: models.RiskCritical, RiskLevel: models.RiskLow}.EffectiveLevel())
	require.Equal(t, models.RiskHigh, models.StateRisk{RiskLevel: models.RiskHigh}.EffectiveLevel())
	require.Equal(t, models.RiskLow, models.StateRisk{}.EffectiveLevel())
}

func TestMeetsThreshold(t *testing.T) {
	cases := []struct {
		level     models.RiskLevel
		threshold models.AlertThreshold
		want      bool
	}{
		{models.RiskCritical, models.ThresholdHigh, true},
		{models.RiskHigh, models.ThresholdHigh, true},
		{models.RiskMedium, models.ThresholdHigh, false},
		{models.RiskLow, models.ThresholdHigh, false},
		{models.RiskCritical, models.ThresholdCritical, true},
		{models.RiskHigh, models.ThresholdCritical, false},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, models.MeetsThreshold(tc.level, tc.threshold),
			"level=%s threshold=%s", tc.level, tc.threshold)
	}
}

func TestClamp01(t *testing.T) {
	require.Equal(t, 0.0, models.Clamp01(-0.3))
	require.Equal(t, 0.42, models.Clamp01(0.42))
	require.Equal(t, 1.0, models.Clamp01(7))
	require.Equal(t, 0.0, models.Clamp01(math.NaN()))
	require.Equal(t, 0.0, models.Clamp01(math.Inf(1)))
	require.Equal(t, 0.0, models.Clamp01(math.Inf(-1)))
}

func TestParseChannel(t *testing.T) {
	ch, ok := models.ParseChannel("whatsapp")
	require.True(t, ok)
	require.Equal(t, models.ChannelWhatsApp, ch)

	ch, ok = models.ParseChannel("telegram")
	require.True(t, ok)
	require.Equal(t, models.ChannelTelegram, ch)

	_, ok = models.ParseChannel("sms")
	require.False(t, ok)
}
