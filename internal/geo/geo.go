package geo

import (
	"math"
	"strings"
)

type Coordinates struct {
	Lat float64
	Lng float64
}

// StateCoordinates: centroids of the states the surveillance feed covers.
var StateCoordinates = map[string]Coordinates{
	"Delhi":          {28.7041, 77.1025},
	"Maharashtra":    {19.7515, 75.7139},
	"Uttar Pradesh":  {26.8467, 80.9462},
	"Assam":          {26.2006, 92.9376},
	"Meghalaya":      {25.4670, 91.3662},
	"West Bengal":    {22.9868, 87.8550},
	"Kerala":         {10.8505, 76.2711},
	"Bihar":          {25.0961, 85.3131},
	"Punjab":         {31.1471, 75.3412},
	"Karnataka":      {15.3173, 75.7139},
	"Tamil Nadu":     {11.1271, 78.6569},
	"Gujarat":        {22.2587, 71.1924},
	"Rajasthan":      {27.0238, 74.2179},
	"Madhya Pradesh": {22.9734, 78.6569},
	"Odisha":         {20.9517, 85.0985},
}

const earthRadiusKm = 6371

func degToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// HaversineKm: great-circle distance between two points.
func HaversineKm(a, b Coordinates) float64 {
	dLat := degToRad(b.Lat - a.Lat)
	dLng := degToRad(b.Lng - a.Lng)
	lat1 := degToRad(a.Lat)
	lat2 := degToRad(b.Lat)

	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)

	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLng*sinLng
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}

// NearestState: name of the closest configured centroid. ok is false only
// when no states are configured.
func NearestState(lat, lng float64) (string, bool) {
	best := ""
	bestDist := math.Inf(1)
	p := Coordinates{Lat: lat, Lng: lng}
	for state, coords := range StateCoordinates {
		if d := HaversineKm(p, coords); d < bestDist {
			bestDist = d
			best = state
		}
	}
	return best, best != ""
}

// NormalizePlaceName: case/punctuation-insensitive key for matching feed
// state names against user selections ("Tamil Nadu" == "tamil-nadu").
func NormalizePlaceName(v string) string {
	v = strings.ToLower(v)
	v = strings.ReplaceAll(v, "&", "and")
	var b strings.Builder
	for _, r := range v {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
