package domain

// Request/reply bridge actions.
const (
	ActionIncidents         = "incidents"
	ActionIncidentByID      = "incidentById"
	ActionIncidentsByStatus = "incidentsByStatus"
	ActionIncidentsByName   = "incidentsByName"
	ActionReset             = "reset"
	ActionCreateIncident    = "createIncident"
	ActionUpdateIncident    = "updateIncident"
)
