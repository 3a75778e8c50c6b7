package services

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"epiwatch/internal/models"
)

// AdviceSource: external recommendation engine. Best-effort: any failure is
// reported as an empty list and the caller falls back to generic guidance.
type AdviceSource interface {
	Fetch(ctx context.Context, state, primaryThreat string, risk float64) []string
}

// HTTPAdviceSource posts to the predictions endpoint and distills its prose
// analysis into short bullets.
type HTTPAdviceSource struct {
	URL    string
	client *http.Client
}

func NewHTTPAdviceSource(url string) *HTTPAdviceSource {
	return &HTTPAdviceSource{
		URL:    url,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

func (s *HTTPAdviceSource) Fetch(ctx context.Context, state, primaryThreat string, risk float64) []string {
	if s.URL == "" {
		return nil
	}
	payload, err := json.Marshal(map[string]any{
		"region":  state,
		"disease": primaryThreat,
		"risk":    risk,
		"trend":   "stable",
	})
	if err != nil {
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.URL, bytes.NewReader(payload))
	if err != nil {
		return nil
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		log.Printf("[advice][err] %v", err)
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil
	}

	var body struct {
		Analysis string `json:"analysis"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil
	}
	return SplitBullets(body.Analysis, 3)
}

// SplitBullets turns free-form analysis text into at most max short lines,
// stripping list markers and numbering.
func SplitBullets(text string, max int) []string {
	if max <= 0 {
		return nil
	}
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*• \t")
		// drop "1." / "2)" style numbering
		if len(line) >= 2 && line[0] >= '0' && line[0] <= '9' && (line[1] == '.' || line[1] == ')') {
			line = strings.TrimSpace(line[2:])
		}
		if line == "" {
			continue
		}
		if len(line) > 160 {
			line = line[:160]
		}
		out = append(out, line)
		if len(out) == max {
			break
		}
	}
	return out
}

// StaticAdviceSource serves threat-keyed prevention guidance without an
// external engine; used when no predictions URL is configured.
type StaticAdviceSource struct{}

func (StaticAdviceSource) Fetch(_ context.Context, _, primaryThreat string, risk float64) []string {
	all := BuildPreventions(risk, LevelFromScore(models.Clamp01(risk)), primaryThreat)
	if len(all) > 3 {
		all = all[:3]
	}
	return all
}

// GenericSafetyActions: fallback bullets when the advice source returns
// nothing.
func GenericSafetyActions() []string {
	return []string{
		"Avoid unsafe water and use boiled/filtered water.",
		"Increase hand hygiene and sanitation precautions.",
		"Seek medical advice early if symptoms appear.",
	}
}
