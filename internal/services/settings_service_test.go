package services_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"epiwatch/internal/models"
	"epiwatch/internal/services"
)

type userRepoMock struct {
	users map[int]*models.User
}

func (m *userRepoMock) Create(u *models.User) error {
	if m.users == nil {
		m.users = map[int]*models.User{}
	}
	u.ID = len(m.users) + 1
	m.users[u.ID] = u
	return nil
}

func (m *userRepoMock) GetByID(id int) (*models.User, error) { return m.users[id], nil }

func (m *userRepoMock) GetByEmail(email string) (*models.User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, nil
}

func (m *userRepoMock) UpdateRefresh(userID int, token string, expiresAt time.Time) error {
	u := m.users[userID]
	u.RefreshToken = &token
	u.RefreshExpiresAt = &expiresAt
	u.RefreshRevoked = false
	return nil
}

func (m *userRepoMock) RotateRefresh(oldToken, newToken string, newExpiresAt time.Time) (*models.User, error) {
	for _, u := range m.users {
		if u.RefreshToken != nil && *u.RefreshToken == oldToken && !u.RefreshRevoked {
			u.RefreshToken = &newToken
			u.RefreshExpiresAt = &newExpiresAt
			return u, nil
		}
	}
	return nil, nil
}

func (m *userRepoMock) GetByRefreshToken(token string) (*models.User, error) {
	for _, u := range m.users {
		if u.RefreshToken != nil && *u.RefreshToken == token {
			return u, nil
		}
	}
	return nil, nil
}

func (m *userRepoMock) SetWhatsAppOptIn(userID int, optIn bool) error {
	u := m.users[userID]
	u.WhatsAppOptIn = optIn
	return nil
}

func TestSettingsUpdateCreatesRowWithDefaults(t *testing.T) {
	repo := &settingsRepoMock{}
	users := &userRepoMock{users: map[int]*models.User{1: {ID: 1}}}
	svc := services.NewSettingsService(repo, users)

	state := "Kerala"
	out, err := svc.Update(context.Background(), 1, models.AlertSettingsUpdate{SelectedState: &state}, nil)
	require.NoError(t, err)
	require.Equal(t, "Kerala", out.SelectedState)
	require.Equal(t, models.ThresholdHigh, out.Threshold)
	require.Equal(t, models.CooldownDefaultMinutes, out.CooldownMinutes)
}

func TestSettingsUpdateRejectsOverlongState(t *testing.T) {
	repo := &settingsRepoMock{}
	users := &userRepoMock{users: map[int]*models.User{1: {ID: 1}}}
	svc := services.NewSettingsService(repo, users)

	state := strings.Repeat("x", 81)
	_, err := svc.Update(context.Background(), 1, models.AlertSettingsUpdate{SelectedState: &state}, nil)
	require.ErrorIs(t, err, services.ErrInvalidState)
}

func TestSettingsUpdateTogglesWhatsAppOptIn(t *testing.T) {
	repo := &settingsRepoMock{}
	user := &models.User{ID: 1, WhatsAppOptIn: true}
	users := &userRepoMock{users: map[int]*models.User{1: user}}
	svc := services.NewSettingsService(repo, users)

	off := false
	_, err := svc.Update(context.Background(), 1, models.AlertSettingsUpdate{}, &off)
	require.NoError(t, err)
	require.False(t, user.WhatsAppOptIn)

	on := true
	_, err = svc.Update(context.Background(), 1, models.AlertSettingsUpdate{}, &on)
	require.NoError(t, err)
	require.True(t, user.WhatsAppOptIn)
}
