package service_test

import (
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"incidentService/internal/domain"
	"incidentService/internal/service"
)

func decPtr(t *testing.T, s string) *decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return &d
}

func intPtr(v int) *int                                        { return &v }
func boolPtr(v bool) *bool                                     { return &v }
func strPtr(v string) *string                                  { return &v }
func statusPtr(s domain.IncidentStatus) *domain.IncidentStatus { return &s }

func storedIncident() domain.Incident {
	return domain.Incident{
		ID:                "incident2",
		Latitude:          "31.12346",
		Longitude:         "-71.98765",
		NumberOfPeople:    4,
		MedicalNeeded:     true,
		VictimName:        "John Doe",
		VictimPhoneNumber: "(211) 456-78990",
		Status:            domain.IncidentReported,
		ReportedTime:      time.Date(2025, 12, 23, 12, 0, 0, 0, time.UTC),
		Version:           3,
	}
}

func TestReconcile_EmptyPatchIsNoop(t *testing.T) {
	t.Parallel()

	current := storedIncident()
	before := current

	changes := service.Reconcile(&current, domain.IncidentPatch{ID: "incident2"})
	if !changes.Empty() {
		t.Fatalf("expected no changes, got %v", changes)
	}
	if !reflect.DeepEqual(current, before) {
		t.Fatalf("incident mutated: got=%+v want=%+v", current, before)
	}
}

func TestReconcile_SameValuesAreNoop(t *testing.T) {
	t.Parallel()

	current := storedIncident()
	before := current

	patch := domain.IncidentPatch{
		ID:                "incident2",
		Lat:               decPtr(t, "31.123456"),
		Lon:               decPtr(t, "-71.98765432"),
		NumberOfPeople:    intPtr(4),
		MedicalNeeded:     boolPtr(true),
		VictimName:        strPtr("John Doe"),
		VictimPhoneNumber: strPtr("(211) 456-78990"),
		Status:            statusPtr(domain.IncidentReported),
	}

	changes := service.Reconcile(&current, patch)
	if !changes.Empty() {
		t.Fatalf("expected no changes, got %v", changes)
	}
	if !reflect.DeepEqual(current, before) {
		t.Fatalf("incident mutated: got=%+v want=%+v", current, before)
	}
}

func TestReconcile_PartialOverwrite(t *testing.T) {
	t.Parallel()

	current := storedIncident()

	patch := domain.IncidentPatch{
		ID:     "ignored-id",
		Lat:    decPtr(t, "32.12345"),
		Lon:    decPtr(t, "-72.98765"),
		Status: statusPtr(domain.IncidentAssigned),
	}

	changes := service.Reconcile(&current, patch)

	want := service.ChangeSet{service.FieldLatitude, service.FieldLongitude, service.FieldStatus}
	if !reflect.DeepEqual(changes, want) {
		t.Fatalf("changes mismatch: got=%v want=%v", changes, want)
	}
	if current.Latitude != "32.12345" || current.Longitude != "-72.98765" {
		t.Fatalf("geo not updated: lat=%q lon=%q", current.Latitude, current.Longitude)
	}
	if current.Status != domain.IncidentAssigned {
		t.Fatalf("status=%q, want %q", current.Status, domain.IncidentAssigned)
	}
	if current.NumberOfPeople != 4 || !current.MedicalNeeded || current.VictimName != "John Doe" {
		t.Fatalf("absent fields changed: %+v", current)
	}
	if current.ID != "incident2" || current.Version != 3 {
		t.Fatalf("id/version must not change: %+v", current)
	}
}

func TestReconcile_EveryField(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		patch domain.IncidentPatch
		field string
		check func(domain.Incident) bool
	}{
		{"lat", domain.IncidentPatch{Lat: decPtr(t, "10.123456")}, service.FieldLatitude,
			func(i domain.Incident) bool { return i.Latitude == "10.12346" }},
		{"lon", domain.IncidentPatch{Lon: decPtr(t, "-10")}, service.FieldLongitude,
			func(i domain.Incident) bool { return i.Longitude == "-10.00000" }},
		{"people", domain.IncidentPatch{NumberOfPeople: intPtr(0)}, service.FieldNumberOfPeople,
			func(i domain.Incident) bool { return i.NumberOfPeople == 0 }},
		{"medical", domain.IncidentPatch{MedicalNeeded: boolPtr(false)}, service.FieldMedicalNeeded,
			func(i domain.Incident) bool { return !i.MedicalNeeded }},
		{"name", domain.IncidentPatch{VictimName: strPtr("")}, service.FieldVictimName,
			func(i domain.Incident) bool { return i.VictimName == "" }},
		{"phone", domain.IncidentPatch{VictimPhoneNumber: strPtr("111")}, service.FieldVictimPhoneNumber,
			func(i domain.Incident) bool { return i.VictimPhoneNumber == "111" }},
		{"status", domain.IncidentPatch{Status: statusPtr(domain.IncidentRescued)}, service.FieldStatus,
			func(i domain.Incident) bool { return i.Status == domain.IncidentRescued }},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			current := storedIncident()
			changes := service.Reconcile(&current, c.patch)
			if len(changes) != 1 || !changes.Has(c.field) {
				t.Fatalf("changes=%v, want only %q", changes, c.field)
			}
			if !c.check(current) {
				t.Fatalf("field %q not applied: %+v", c.field, current)
			}
		})
	}
}

func TestReconcile_LegacyUnnormalizedGeo(t *testing.T) {
	t.Parallel()

	current := storedIncident()
	current.Latitude = "31.1234600"

	changes := service.Reconcile(&current, domain.IncidentPatch{Lat: decPtr(t, "31.12346")})
	if !changes.Empty() {
		t.Fatalf("expected equal after normalization, got %v", changes)
	}
}

func TestNewIncident(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 12, 23, 12, 0, 0, 0, time.UTC)
	patch := domain.IncidentPatch{
		ID:                "client-id",
		Lat:               decPtr(t, "31.12345678"),
		Lon:               decPtr(t, "-71.98765432"),
		NumberOfPeople:    intPtr(4),
		MedicalNeeded:     boolPtr(true),
		VictimName:        strPtr("John Doe"),
		VictimPhoneNumber: strPtr("(211) 456-78990"),
		Status:            statusPtr(domain.IncidentRescued),
	}

	inc := service.NewIncident(patch, "minted", now)

	want := &domain.Incident{
		ID:                "minted",
		Latitude:          "31.12346",
		Longitude:         "-71.98765",
		NumberOfPeople:    4,
		MedicalNeeded:     true,
		VictimName:        "John Doe",
		VictimPhoneNumber: "(211) 456-78990",
		Status:            domain.IncidentReported,
		ReportedTime:      now,
	}
	if !reflect.DeepEqual(inc, want) {
		t.Fatalf("incident mismatch:\n got=%+v\nwant=%+v", inc, want)
	}
}
