package domain

import "encoding/json"

const (
	UpdateIncidentCommand = "UpdateIncidentCommand"
	IncidentReportedEvent = "IncidentReportedEvent"
	IncidentUpdatedEvent  = "IncidentUpdatedEvent"
)

// IncidentEvent is the full post-state snapshot published after a create or
// update. Geo fields go out as JSON numbers.
type IncidentEvent struct {
	ID                string       `json:"id"`
	Lat               *json.Number `json:"lat"`
	Lon               *json.Number `json:"lon"`
	NumberOfPeople    int          `json:"numberOfPeople"`
	MedicalNeeded     bool         `json:"medicalNeeded"`
	VictimName        string       `json:"victimName"`
	VictimPhoneNumber string       `json:"victimPhoneNumber"`
	Status            string       `json:"status"`
	Timestamp         int64        `json:"timestamp"`
}

func NewIncidentEvent(inc Incident) IncidentEvent {
	return IncidentEvent{
		ID:                inc.ID,
		Lat:               GeoNumber(inc.Latitude),
		Lon:               GeoNumber(inc.Longitude),
		NumberOfPeople:    inc.NumberOfPeople,
		MedicalNeeded:     inc.MedicalNeeded,
		VictimName:        inc.VictimName,
		VictimPhoneNumber: inc.VictimPhoneNumber,
		Status:            inc.Status,
		Timestamp:         inc.Timestamp(),
	}
}
