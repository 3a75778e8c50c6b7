package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"epiwatch/internal/models"
	"epiwatch/internal/services"
)

type settingsRepoMock struct {
	recipients []*models.AlertRecipient
	lastSent   map[int64]time.Time
	listErr    error
}

func (m *settingsRepoMock) GetByUserID(_ context.Context, userID int) (*models.AlertSettings, error) {
	for _, r := range m.recipients {
		if r.Settings.UserID == userID {
			cp := r.Settings
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *settingsRepoMock) Upsert(_ context.Context, s *models.AlertSettings) error {
	s.ID = int64(s.UserID)
	return nil
}

func (m *settingsRepoMock) ListEnabled(_ context.Context, channel models.Channel) ([]*models.AlertRecipient, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.recipients, nil
}

func (m *settingsRepoMock) UpdateLastSent(_ context.Context, id int64, sentAt time.Time) error {
	if m.lastSent == nil {
		m.lastSent = map[int64]time.Time{}
	}
	m.lastSent[id] = sentAt
	return nil
}

type riskSourceStub struct {
	snap *models.RiskSnapshot
	err  error
}

func (s riskSourceStub) Fetch(context.Context) (*models.RiskSnapshot, error) {
	return s.snap, s.err
}

type adviceStub struct{ bullets []string }

func (s adviceStub) Fetch(context.Context, string, string, float64) []string {
	return s.bullets
}

type senderMock struct {
	sent     []services.AlertMessage
	sentTo   []int
	failFor  map[int]error
	readyErr error
}

func (m *senderMock) Ready() error { return m.readyErr }

func (m *senderMock) SendAlert(_ context.Context, rec *models.AlertRecipient, msg services.AlertMessage) error {
	if err, ok := m.failFor[rec.Settings.UserID]; ok {
		return err
	}
	m.sent = append(m.sent, msg)
	m.sentTo = append(m.sentTo, rec.Settings.UserID)
	return nil
}

func waRecipient(userID int, state string, threshold models.AlertThreshold, lastSent *time.Time, cooldown int) *models.AlertRecipient {
	return &models.AlertRecipient{
		Settings: models.AlertSettings{
			ID:              int64(userID),
			UserID:          userID,
			SelectedState:   state,
			WhatsAppEnabled: true,
			Threshold:       threshold,
			CooldownMinutes: cooldown,
			LastAlertSentAt: lastSent,
		},
		PhoneNumber:   "+911234567890",
		PhoneVerified: true,
		WhatsAppOptIn: true,
	}
}

func snapshotWith(states ...models.StateRisk) *models.RiskSnapshot {
	return &models.RiskSnapshot{
		UpdatedAt: "2026-09-01T06:00:00Z",
		States:    states,
	}
}

func newSweepFixture(repo *settingsRepoMock, snap *models.RiskSnapshot, sender services.AlertSender) *services.AlertService {
	return services.NewAlertService(
		repo,
		riskSourceStub{snap: snap},
		adviceStub{},
		map[models.Channel]services.AlertSender{models.ChannelWhatsApp: sender},
		"https://epiwatch.example",
	)
}

func TestRunSweepThresholdMatrix(t *testing.T) {
	cases := []struct {
		name      string
		level     models.RiskLevel
		threshold models.AlertThreshold
		wantSent  int
	}{
		{"high level meets high threshold", models.RiskHigh, models.ThresholdHigh, 1},
		{"critical level meets high threshold", models.RiskCritical, models.ThresholdHigh, 1},
		{"medium level below high threshold", models.RiskMedium, models.ThresholdHigh, 0},
		{"high level below critical threshold", models.RiskHigh, models.ThresholdCritical, 0},
		{"critical level meets critical threshold", models.RiskCritical, models.ThresholdCritical, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &settingsRepoMock{recipients: []*models.AlertRecipient{
				waRecipient(1, "Delhi", tc.threshold, nil, 60),
			}}
			sender := &senderMock{}
			svc := newSweepFixture(repo, snapshotWith(models.StateRisk{
				State: "Delhi", RiskScore: 0.8, OverallRisk: tc.level, PrimaryThreat: "Cholera",
			}), sender)

			res, err := svc.RunSweep(context.Background(), models.ChannelWhatsApp)
			require.NoError(t, err)
			require.Equal(t, tc.wantSent, res.Sent)
			require.Equal(t, 1-tc.wantSent, res.Skipped)
			require.Zero(t, res.Failed)
		})
	}
}

func TestRunSweepCooldown(t *testing.T) {
	recent := time.Now().Add(-30 * time.Minute)
	stale := time.Now().Add(-70 * time.Minute)
	snap := snapshotWith(models.StateRisk{
		State: "Delhi", RiskScore: 0.8, OverallRisk: models.RiskHigh, PrimaryThreat: "Cholera",
	})

	t.Run("inside cooldown skips", func(t *testing.T) {
		repo := &settingsRepoMock{recipients: []*models.AlertRecipient{
			waRecipient(1, "Delhi", models.ThresholdHigh, &recent, 60),
		}}
		sender := &senderMock{}
		svc := newSweepFixture(repo, snap, sender)

		res, err := svc.RunSweep(context.Background(), models.ChannelWhatsApp)
		require.NoError(t, err)
		require.Zero(t, res.Sent)
		require.Equal(t, 1, res.Skipped)
		require.Equal(t, services.OutcomeSkippedCooldown, res.Rows[0].Outcome)
		require.Empty(t, repo.lastSent)
	})

	t.Run("past cooldown sends and stamps", func(t *testing.T) {
		repo := &settingsRepoMock{recipients: []*models.AlertRecipient{
			waRecipient(1, "Delhi", models.ThresholdHigh, &stale, 60),
		}}
		sender := &senderMock{}
		svc := newSweepFixture(repo, snap, sender)

		res, err := svc.RunSweep(context.Background(), models.ChannelWhatsApp)
		require.NoError(t, err)
		require.Equal(t, 1, res.Sent)
		require.Contains(t, repo.lastSent, int64(1))
	})
}

func TestRunSweepContactAndRegionChecks(t *testing.T) {
	unverified := waRecipient(1, "Delhi", models.ThresholdHigh, nil, 60)
	unverified.PhoneVerified = false
	noRegion := waRecipient(2, "Atlantis", models.ThresholdHigh, nil, 60)
	ok := waRecipient(3, "Delhi", models.ThresholdHigh, nil, 60)

	repo := &settingsRepoMock{recipients: []*models.AlertRecipient{unverified, noRegion, ok}}
	sender := &senderMock{}
	svc := newSweepFixture(repo, snapshotWith(models.StateRisk{
		State: "Delhi", RiskScore: 0.8, OverallRisk: models.RiskHigh, PrimaryThreat: "Cholera",
	}), sender)

	res, err := svc.RunSweep(context.Background(), models.ChannelWhatsApp)
	require.NoError(t, err)
	require.Equal(t, 1, res.Sent)
	require.Equal(t, 2, res.Skipped)
	require.Equal(t, services.OutcomeSkippedContact, res.Rows[0].Outcome)
	require.Equal(t, services.OutcomeSkippedNoRegion, res.Rows[1].Outcome)
	require.Equal(t, services.OutcomeSent, res.Rows[2].Outcome)
	require.Equal(t, []int{3}, sender.sentTo)
}

func TestRunSweepTwoUsersTwoRegions(t *testing.T) {
	repo := &settingsRepoMock{recipients: []*models.AlertRecipient{
		waRecipient(1, "Delhi", models.ThresholdHigh, nil, 60),
		waRecipient(2, "Kerala", models.ThresholdHigh, nil, 60),
	}}
	sender := &senderMock{}
	svc := newSweepFixture(repo, snapshotWith(
		models.StateRisk{State: "Delhi", RiskScore: 0.85, OverallRisk: models.RiskHigh, PrimaryThreat: "Cholera"},
		models.StateRisk{State: "Kerala", RiskScore: 0.36, OverallRisk: models.RiskMedium, PrimaryThreat: "Leptospirosis"},
	), sender)

	res, err := svc.RunSweep(context.Background(), models.ChannelWhatsApp)
	require.NoError(t, err)
	require.Equal(t, 1, res.Sent)
	require.Equal(t, 1, res.Skipped)
	require.Equal(t, []int{1}, sender.sentTo)
}

func TestRunSweepFailureIsolation(t *testing.T) {
	repo := &settingsRepoMock{recipients: []*models.AlertRecipient{
		waRecipient(1, "Delhi", models.ThresholdHigh, nil, 60),
		waRecipient(2, "Delhi", models.ThresholdHigh, nil, 60),
		waRecipient(3, "Delhi", models.ThresholdHigh, nil, 60),
	}}
	sender := &senderMock{failFor: map[int]error{
		2: errors.New("provider 500"),
	}}
	svc := newSweepFixture(repo, snapshotWith(models.StateRisk{
		State: "Delhi", RiskScore: 0.8, OverallRisk: models.RiskHigh, PrimaryThreat: "Cholera",
	}), sender)

	res, err := svc.RunSweep(context.Background(), models.ChannelWhatsApp)
	require.NoError(t, err)
	require.Equal(t, 2, res.Sent)
	require.Equal(t, 1, res.Failed)
	require.Zero(t, res.Skipped)
	require.Equal(t, []int{1, 3}, sender.sentTo)

	// the failed row keeps its previous last-sent stamp
	require.NotContains(t, repo.lastSent, int64(2))
	require.Contains(t, repo.lastSent, int64(1))
	require.Contains(t, repo.lastSent, int64(3))
}

func TestRunSweepSnapshotUnavailableAborts(t *testing.T) {
	repo := &settingsRepoMock{recipients: []*models.AlertRecipient{
		waRecipient(1, "Delhi", models.ThresholdHigh, nil, 60),
	}}
	sender := &senderMock{}
	svc := services.NewAlertService(
		repo,
		riskSourceStub{err: errors.New("feed down")},
		adviceStub{},
		map[models.Channel]services.AlertSender{models.ChannelWhatsApp: sender},
		"https://epiwatch.example",
	)

	_, err := svc.RunSweep(context.Background(), models.ChannelWhatsApp)
	require.Error(t, err)
	require.Empty(t, sender.sent)
}

func TestRunSweepSenderNotReadyAborts(t *testing.T) {
	repo := &settingsRepoMock{recipients: []*models.AlertRecipient{
		waRecipient(1, "Delhi", models.ThresholdHigh, nil, 60),
	}}
	sender := &senderMock{readyErr: &services.ConfigurationError{Missing: "whatsapp alert template"}}
	svc := newSweepFixture(repo, snapshotWith(models.StateRisk{
		State: "Delhi", RiskScore: 0.8, OverallRisk: models.RiskHigh,
	}), sender)

	_, err := svc.RunSweep(context.Background(), models.ChannelWhatsApp)
	require.True(t, services.IsConfigurationError(err))
	require.Empty(t, sender.sent)
}

func TestRunSweepMessageContents(t *testing.T) {
	repo := &settingsRepoMock{recipients: []*models.AlertRecipient{
		waRecipient(1, "tamil-nadu", models.ThresholdHigh, nil, 60),
	}}
	sender := &senderMock{}
	svc := newSweepFixture(repo, snapshotWith(models.StateRisk{
		State: "Tamil Nadu", RiskScore: 1.7, OverallRisk: models.RiskCritical, PrimaryThreat: "Dengue",
	}), sender)

	res, err := svc.RunSweep(context.Background(), models.ChannelWhatsApp)
	require.NoError(t, err)
	require.Equal(t, 1, res.Sent)
	require.Equal(t, "2026-09-01T06:00:00Z", res.UpdatedAt)

	msg := sender.sent[0]
	require.Equal(t, models.RiskCritical, msg.Level)
	require.Equal(t, "Tamil Nadu", msg.State)
	require.Equal(t, "100", msg.RiskPercent) // clamped before formatting
	require.Equal(t, "Dengue", msg.PrimaryThreat)
	require.Len(t, msg.Actions, 3)
	for _, a := range msg.Actions {
		require.NotEmpty(t, a)
	}
	require.Contains(t, msg.DashboardLink, "https://epiwatch.example/dashboard?state=Tamil+Nadu")
}
