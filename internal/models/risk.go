package models

import "math"

type RiskLevel string

const (
	RiskLow      RiskLevel = "Low"
	RiskMedium   RiskLevel = "Medium"
	RiskHigh     RiskLevel = "High"
	RiskCritical RiskLevel = "Critical"
)

// StateRisk: per-state entry of the surveillance snapshot. OverallRisk is
// the authoritative level; RiskLevel is the legacy secondary field some
// upstream feeds still populate instead.
type StateRisk struct {
	State         string    `json:"state"`
	RiskScore     float64   `json:"riskScore"`
	OverallRisk   RiskLevel `json:"overallRisk,omitempty"`
	RiskLevel     RiskLevel `json:"riskLevel,omitempty"`
	PrimaryThreat string    `json:"primaryThreat,omitempty"`
}

// RiskSnapshot: full response of the risk source, read-only to this service.
type RiskSnapshot struct {
	UpdatedAt string      `json:"updatedAt"`
	States    []StateRisk `json:"states"`
}

// EffectiveLevel: overall risk, falling back to the secondary level field,
// then to Low.
func (s StateRisk) EffectiveLevel() RiskLevel {
	if s.OverallRisk != "" {
		return s.OverallRisk
	}
	if s.RiskLevel != "" {
		return s.RiskLevel
	}
	return RiskLow
}

// MeetsThreshold: CRITICAL requires Critical; HIGH accepts High or Critical.
func MeetsThreshold(level RiskLevel, threshold AlertThreshold) bool {
	if threshold == ThresholdCritical {
		return level == RiskCritical
	}
	return level == RiskHigh || level == RiskCritical
}

// Clamp01: risk scores from external feeds are clamped into [0,1] before
// they are shown or formatted into messages. Non-finite input counts as 0.
func Clamp01(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
