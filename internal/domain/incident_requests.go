package domain

import (
	"github.com/shopspring/decimal"
)

// IncidentPatch is the field-partial incident carried by commands and create
// requests. A nil field means "not provided".
type IncidentPatch struct {
	ID                string           `json:"id"`
	Lat               *decimal.Decimal `json:"lat" validate:"omitempty,lat"`
	Lon               *decimal.Decimal `json:"lon" validate:"omitempty,lng"`
	NumberOfPeople    *int             `json:"numberOfPeople" validate:"omitempty,min=0"`
	MedicalNeeded     *bool            `json:"medicalNeeded"`
	VictimName        *string          `json:"victimName"`
	VictimPhoneNumber *string          `json:"victimPhoneNumber"`
	Status            *IncidentStatus  `json:"status"`
}

// Empty reports whether no mutable field is set.
func (p IncidentPatch) Empty() bool {
	return p.Lat == nil && p.Lon == nil && p.NumberOfPeople == nil && p.MedicalNeeded == nil &&
		p.VictimName == nil && p.VictimPhoneNumber == nil && p.Status == nil
}
