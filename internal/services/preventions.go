package services

import (
	"strings"

	"epiwatch/internal/models"
)

// BuildPreventions: threat-keyed prevention guidance for the location-risk
// endpoint. Waterborne, respiratory, and (default) vector-borne variants,
// with one bullet sharpened when risk is elevated.
func BuildPreventions(risk float64, level models.RiskLevel, primaryThreat string) []string {
	risk = models.Clamp01(risk)
	threat := strings.ToLower(primaryThreat)
	intense := risk > 0.7 || level == models.RiskHigh || level == models.RiskCritical

	if strings.Contains(threat, "water") || isWaterborne(threat) {
		urgent := "Keep ORS available and monitor symptoms early."
		if intense {
			urgent = "Keep ORS ready and seek medical care quickly for diarrhea/dehydration symptoms."
		}
		return []string{
			"Drink only boiled/filtered water; avoid untreated water sources.",
			"Wash hands with soap regularly, especially before eating and after toilet use.",
			"Avoid raw/unsafe street food; eat freshly cooked hot meals.",
			urgent,
			"Ensure safe sanitation and disinfect high-touch surfaces at home.",
		}
	}

	if strings.Contains(threat, "resp") {
		urgent := "If fever/cough persists, seek medical advice and rest."
		if intense {
			urgent = "If fever/breathing issues occur, seek medical care promptly and isolate."
		}
		return []string{
			"Improve ventilation indoors; avoid crowded poorly ventilated places.",
			"Wear a mask in crowded indoor areas if you have symptoms or risk is elevated.",
			"Practice hand hygiene and avoid touching face after public contact.",
			urgent,
			"Keep children and seniors up to date with recommended vaccines where available.",
		}
	}

	// vector-borne default
	urgent := "Monitor symptoms and get tested early if fever develops."
	if intense {
		urgent = "Seek medical care quickly for high fever, rash, or severe body aches."
	}
	return []string{
		"Use mosquito repellent and wear long sleeves in the evening/night.",
		"Remove standing water (coolers, pots, buckets) to reduce mosquito breeding.",
		"Use bed nets/screens; keep doors/windows closed when possible.",
		urgent,
		"Maintain clean surroundings and coordinate community vector control where possible.",
	}
}

func isWaterborne(threat string) bool {
	for _, d := range []string{"cholera", "typhoid", "hepatitis", "leptospirosis", "diarrhea"} {
		if strings.Contains(threat, d) {
			return true
		}
	}
	return false
}
