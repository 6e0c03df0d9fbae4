package domain

import (
	"time"
)

type IncidentStatus = string

const (
	IncidentReported IncidentStatus = "REPORTED"
	IncidentAssigned IncidentStatus = "ASSIGNED"
	IncidentPickedUp IncidentStatus = "PICKEDUP"
	IncidentRescued  IncidentStatus = "RESCUED"
)

// Incident is the stored aggregate. Latitude and Longitude are always kept
// normalized to GeoScale fractional digits.
type Incident struct {
	ID                string         `json:"id"`
	Latitude          string         `json:"lat"`
	Longitude         string         `json:"lon"`
	NumberOfPeople    int            `json:"numberOfPeople"`
	MedicalNeeded     bool           `json:"medicalNeeded"`
	VictimName        string         `json:"victimName"`
	VictimPhoneNumber string         `json:"victimPhoneNumber"`
	Status            IncidentStatus `json:"status"`
	ReportedTime      time.Time      `json:"reportedTime"`
	Version           int64          `json:"version"`
}

// Timestamp is the reported time as epoch milliseconds.
func (i Incident) Timestamp() int64 {
	return i.ReportedTime.UnixMilli()
}
