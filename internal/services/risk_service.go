package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"epiwatch/internal/models"
)

// RiskSource: the external per-region risk snapshot feed. The sweep aborts
// outright when it is unavailable; no partial sends.
type RiskSource interface {
	Fetch(ctx context.Context) (*models.RiskSnapshot, error)
}

// HTTPRiskSource pulls the snapshot from a configured URL (by default the
// service's own /api/disease-data endpoint).
type HTTPRiskSource struct {
	URL    string
	client *http.Client
}

func NewHTTPRiskSource(url string) *HTTPRiskSource {
	return &HTTPRiskSource{
		URL:    url,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

func (s *HTTPRiskSource) Fetch(ctx context.Context) (*models.RiskSnapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("risk fetch: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("risk fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("risk fetch: unexpected status %d", resp.StatusCode)
	}
	var snap models.RiskSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return nil, fmt.Errorf("risk fetch decode: %w", err)
	}
	return &snap, nil
}

// surveillanceBaseline: the built-in dataset behind /api/disease-data, used
// until a live feed is configured.
var surveillanceBaseline = []struct {
	State   string
	Disease string
	Risk    float64
}{
	{"Delhi", "Cholera", 0.82},
	{"Maharashtra", "Dengue", 0.67},
	{"Uttar Pradesh", "Typhoid", 0.54},
	{"Assam", "Hepatitis A", 0.48},
	{"Meghalaya", "Cholera", 0.41},
	{"West Bengal", "Dengue", 0.59},
	{"Kerala", "Leptospirosis", 0.36},
	{"Bihar", "Typhoid", 0.44},
	{"Punjab", "Cholera", 0.29},
	{"Karnataka", "Dengue", 0.38},
}

// LevelFromScore: bucketing used when a feed entry carries no level.
func LevelFromScore(score float64) models.RiskLevel {
	switch {
	case score > 0.9:
		return models.RiskCritical
	case score > 0.7:
		return models.RiskHigh
	case score > 0.5:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}

// BuiltinRiskSource serves the baseline dataset with a fresh timestamp.
type BuiltinRiskSource struct{}

func (BuiltinRiskSource) Fetch(context.Context) (*models.RiskSnapshot, error) {
	return BuiltinSnapshot(time.Now()), nil
}

func BuiltinSnapshot(now time.Time) *models.RiskSnapshot {
	snap := &models.RiskSnapshot{UpdatedAt: now.UTC().Format(time.RFC3339)}
	for _, row := range surveillanceBaseline {
		score := models.Clamp01(row.Risk)
		snap.States = append(snap.States, models.StateRisk{
			State:         row.State,
			RiskScore:     score,
			OverallRisk:   LevelFromScore(score),
			PrimaryThreat: row.Disease,
		})
	}
	return snap
}
