package service

import (
	"time"

	"incidentService/internal/domain"
)

const (
	FieldLatitude          = "lat"
	FieldLongitude         = "lon"
	FieldNumberOfPeople    = "numberOfPeople"
	FieldMedicalNeeded     = "medicalNeeded"
	FieldVictimName        = "victimName"
	FieldVictimPhoneNumber = "victimPhoneNumber"
	FieldStatus            = "status"
)

// ChangeSet lists the fields a reconciliation overwrote, in field order.
type ChangeSet []string

func (c ChangeSet) Empty() bool { return len(c) == 0 }

func (c ChangeSet) Has(field string) bool {
	for _, f := range c {
		if f == field {
			return true
		}
	}
	return false
}

// Reconcile merges patch into current in place. Only present fields that
// differ from the stored value are written; geo values are compared after
// normalization. id, reportedTime and version are never touched.
func Reconcile(current *domain.Incident, patch domain.IncidentPatch) ChangeSet {
	if patch.Empty() {
		return nil
	}

	var changes ChangeSet

	if patch.Lat != nil {
		if v := domain.NormalizeGeo(*patch.Lat); v != normalizedStored(current.Latitude) {
			current.Latitude = v
			changes = append(changes, FieldLatitude)
		}
	}
	if patch.Lon != nil {
		if v := domain.NormalizeGeo(*patch.Lon); v != normalizedStored(current.Longitude) {
			current.Longitude = v
			changes = append(changes, FieldLongitude)
		}
	}
	if patch.NumberOfPeople != nil && *patch.NumberOfPeople != current.NumberOfPeople {
		current.NumberOfPeople = *patch.NumberOfPeople
		changes = append(changes, FieldNumberOfPeople)
	}
	if patch.MedicalNeeded != nil && *patch.MedicalNeeded != current.MedicalNeeded {
		current.MedicalNeeded = *patch.MedicalNeeded
		changes = append(changes, FieldMedicalNeeded)
	}
	if patch.VictimName != nil && *patch.VictimName != current.VictimName {
		current.VictimName = *patch.VictimName
		changes = append(changes, FieldVictimName)
	}
	if patch.VictimPhoneNumber != nil && *patch.VictimPhoneNumber != current.VictimPhoneNumber {
		current.VictimPhoneNumber = *patch.VictimPhoneNumber
		changes = append(changes, FieldVictimPhoneNumber)
	}
	if patch.Status != nil && *patch.Status != current.Status {
		current.Status = *patch.Status
		changes = append(changes, FieldStatus)
	}

	return changes
}

// normalizedStored tolerates legacy rows written without normalization.
func normalizedStored(s string) string {
	if s == "" {
		return ""
	}
	n, err := domain.NormalizeGeoString(s)
	if err != nil {
		return s
	}
	return n
}

// NewIncident builds a fresh aggregate from a create request. Client supplied
// id and status are ignored.
func NewIncident(patch domain.IncidentPatch, id string, now time.Time) *domain.Incident {
	inc := &domain.Incident{
		ID:           id,
		Status:       domain.IncidentReported,
		ReportedTime: now.UTC(),
	}
	if patch.Lat != nil {
		inc.Latitude = domain.NormalizeGeo(*patch.Lat)
	}
	if patch.Lon != nil {
		inc.Longitude = domain.NormalizeGeo(*patch.Lon)
	}
	if patch.NumberOfPeople != nil {
		inc.NumberOfPeople = *patch.NumberOfPeople
	}
	if patch.MedicalNeeded != nil {
		inc.MedicalNeeded = *patch.MedicalNeeded
	}
	if patch.VictimName != nil {
		inc.VictimName = *patch.VictimName
	}
	if patch.VictimPhoneNumber != nil {
		inc.VictimPhoneNumber = *patch.VictimPhoneNumber
	}
	return inc
}
