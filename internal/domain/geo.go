package domain

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// GeoScale is the number of fractional digits kept for latitude and longitude.
const GeoScale = 5

// NormalizeGeo rounds half away from zero and renders exactly GeoScale digits.
func NormalizeGeo(d decimal.Decimal) string {
	return d.StringFixed(GeoScale)
}

// NormalizeGeoString re-normalizes a stored or client supplied decimal string.
func NormalizeGeoString(s string) (string, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return "", err
	}
	return NormalizeGeo(d), nil
}

// GeoNumber renders a normalized geo string as a JSON number, nil when unset.
func GeoNumber(s string) *json.Number {
	if s == "" {
		return nil
	}
	n := json.Number(s)
	return &n
}
