package services

import (
	"context"
	"errors"

	"epiwatch/internal/models"
	"epiwatch/internal/repositories"
)

const maxStateNameLen = 80

var ErrInvalidState = errors.New("invalid state")

// SettingsService: lazy-upsert over the per-user alert settings row.
// Defaulting lives in models.MergeAlertSettings; this layer only validates
// and persists.
type SettingsService struct {
	Repo  repositories.AlertSettingsRepository
	Users repositories.UserRepository
}

func NewSettingsService(repo repositories.AlertSettingsRepository, users repositories.UserRepository) *SettingsService {
	return &SettingsService{Repo: repo, Users: users}
}

func (s *SettingsService) Get(ctx context.Context, userID int) (*models.AlertSettings, error) {
	return s.Repo.GetByUserID(ctx, userID)
}

// Update merges the partial payload over the stored row (or defaults) and
// upserts the result. whatsappOptIn, when present, toggles the user row too;
// the identity stays linked, only the opt-in flag and its timestamp move.
func (s *SettingsService) Update(ctx context.Context, userID int, upd models.AlertSettingsUpdate, whatsappOptIn *bool) (*models.AlertSettings, error) {
	if upd.SelectedState != nil && len(*upd.SelectedState) > maxStateNameLen {
		return nil, ErrInvalidState
	}

	if whatsappOptIn != nil {
		if err := s.Users.SetWhatsAppOptIn(userID, *whatsappOptIn); err != nil {
			return nil, err
		}
	}

	existing, err := s.Repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	merged := models.MergeAlertSettings(userID, existing, upd)
	if err := s.Repo.Upsert(ctx, &merged); err != nil {
		return nil, err
	}
	return &merged, nil
}
