package validator_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"incidentService/internal/domain"
	"incidentService/pkg/validator"
)

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func intPtr(v int) *int { return &v }

func TestValidateStruct_IncidentPatch(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		patch   domain.IncidentPatch
		wantErr bool
	}{
		{"empty", domain.IncidentPatch{ID: "incident1"}, false},
		{"in_range", domain.IncidentPatch{Lat: dec("31.12345678"), Lon: dec("-71.98765432")}, false},
		{"bounds", domain.IncidentPatch{Lat: dec("-90"), Lon: dec("180")}, false},
		{"lat_too_big", domain.IncidentPatch{Lat: dec("90.00001")}, true},
		{"lon_too_small", domain.IncidentPatch{Lon: dec("-180.5")}, true},
		{"negative_people", domain.IncidentPatch{NumberOfPeople: intPtr(-1)}, true},
		{"zero_people", domain.IncidentPatch{NumberOfPeople: intPtr(0)}, false},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			err := validator.ValidateStruct(c.patch)
			if c.wantErr && err == nil {
				t.Fatalf("expected validation error")
			}
			if !c.wantErr && err != nil {
				t.Fatalf("unexpected validation error: %v", err)
			}
		})
	}
}
