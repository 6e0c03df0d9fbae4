package envelope_test

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"incidentService/internal/domain"
	"incidentService/internal/envelope"
	"incidentService/internal/messaging"
	"incidentService/pkg/e"
)

func cloudRecord(payload, typ string, extra map[string]string) messaging.Record {
	headers := map[string]string{
		"ce_specversion": "1.0",
		"ce_id":          "18cb49fe-9353-4856-9a0c-d66fe1237c86",
		"ce_type":        typ,
		"ce_source":      "test",
		"ce_time":        "2020-12-30T19:54:20.765566Z",
	}
	for k, v := range extra {
		headers[k] = v
	}
	return messaging.NewRecord("incident-command:0", "1-0", "incident1", []byte(payload), headers, nil)
}

func plainRecord(payload string) messaging.Record {
	return messaging.NewRecord("incident-command:0", "1-0", "incident1", []byte(payload), nil, nil)
}

func requireReject(t *testing.T, err error, level slog.Level) {
	t.Helper()
	require.Error(t, err)
	require.True(t, errors.Is(err, e.ErrIgnored), "expected ErrIgnored, got %v", err)

	var rej *envelope.RejectError
	require.True(t, errors.As(err, &rej))
	assert.Equal(t, level, rej.Level)
}

func TestDecode_CloudEvent_NestedIncident(t *testing.T) {
	t.Parallel()

	rec := cloudRecord(`{"incident":{"id":"incident1","status":"ASSIGNED"}}`, "UpdateIncidentCommand",
		map[string]string{"content-type": "application/json"})

	cmd, err := envelope.NewDecoder().Decode(rec)
	require.NoError(t, err)

	assert.Equal(t, envelope.ShapeCloudEvent, cmd.Shape)
	assert.Equal(t, domain.UpdateIncidentCommand, cmd.Type)
	assert.Equal(t, "18cb49fe-9353-4856-9a0c-d66fe1237c86", cmd.MessageID)
	assert.Equal(t, "test", cmd.Source)
	assert.Equal(t, "incident1", cmd.Incident.ID)
	require.NotNil(t, cmd.Incident.Status)
	assert.Equal(t, "ASSIGNED", *cmd.Incident.Status)
	assert.Nil(t, cmd.Incident.Lat)
	assert.Nil(t, cmd.Incident.NumberOfPeople)
}

func TestDecode_CloudEvent_TopLevelIncident(t *testing.T) {
	t.Parallel()

	rec := cloudRecord(`{"id":"incident2","lat":32.12345,"lon":"-72.98765","numberOfPeople":0,"medicalNeeded":false}`,
		"UpdateIncidentCommand", nil)

	cmd, err := envelope.NewDecoder().Decode(rec)
	require.NoError(t, err)

	assert.Equal(t, "incident2", cmd.Incident.ID)
	require.NotNil(t, cmd.Incident.Lat)
	assert.Equal(t, "32.12345", cmd.Incident.Lat.String())
	require.NotNil(t, cmd.Incident.Lon)
	assert.Equal(t, "-72.98765", cmd.Incident.Lon.String())
	require.NotNil(t, cmd.Incident.NumberOfPeople)
	assert.Equal(t, 0, *cmd.Incident.NumberOfPeople)
	require.NotNil(t, cmd.Incident.MedicalNeeded)
	assert.False(t, *cmd.Incident.MedicalNeeded)
}

func TestDecode_PlainTypeHeader(t *testing.T) {
	t.Parallel()

	rec := messaging.NewRecord("s", "1-0", "incident1", []byte(`{"incident":{"id":"incident1"}}`),
		map[string]string{"type": "UpdateIncidentCommand", "Content-Type": "APPLICATION/JSON"}, nil)

	cmd, err := envelope.NewDecoder().Decode(rec)
	require.NoError(t, err)
	assert.Equal(t, envelope.ShapeCloudEvent, cmd.Shape)
}

func TestDecode_CloudEvent_Rejections(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		rec   messaging.Record
		level slog.Level
	}{
		{"wrong_type", cloudRecord(`{}`, "WrongType", nil), slog.LevelDebug},
		{"wrong_content_type", cloudRecord(`{"incident":{"id":"incident1"}}`, "UpdateIncidentCommand",
			map[string]string{"content-type": "text/plain"}), slog.LevelWarn},
		{"wrong_ce_content_type", cloudRecord(`{"incident":{"id":"incident1"}}`, "UpdateIncidentCommand",
			map[string]string{"ce_datacontenttype": "application/xml"}), slog.LevelWarn},
		{"not_json", cloudRecord(`not json`, "UpdateIncidentCommand", nil), slog.LevelWarn},
		{"json_array", cloudRecord(`[1,2]`, "UpdateIncidentCommand", nil), slog.LevelWarn},
		{"incident_not_object", cloudRecord(`{"incident":"incident1"}`, "UpdateIncidentCommand", nil), slog.LevelWarn},
		{"missing_id", cloudRecord(`{"incident":{"status":"ASSIGNED"}}`, "UpdateIncidentCommand", nil), slog.LevelWarn},
		{"bad_lat", cloudRecord(`{"incident":{"id":"incident1","lat":"north"}}`, "UpdateIncidentCommand", nil), slog.LevelWarn},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			_, err := envelope.NewDecoder().Decode(c.rec)
			requireReject(t, err, c.level)
		})
	}
}

func TestDecode_Message(t *testing.T) {
	t.Parallel()

	payload := `{"messageType":"UpdateIncidentCommand","id":"msg-1","invokingService":"MissionService","timestamp":1521148332350,` +
		`"body":{"incident":{"id":"incident2","lat":32.12345,"lon":-72.98765,"status":"ASSIGNED"}}}`

	cmd, err := envelope.NewDecoder().Decode(plainRecord(payload))
	require.NoError(t, err)

	assert.Equal(t, envelope.ShapeMessage, cmd.Shape)
	assert.Equal(t, "msg-1", cmd.MessageID)
	assert.Equal(t, "MissionService", cmd.Source)
	assert.Equal(t, "incident2", cmd.Incident.ID)
	require.NotNil(t, cmd.Incident.Status)
	assert.Equal(t, "ASSIGNED", *cmd.Incident.Status)
	assert.Nil(t, cmd.Incident.VictimName)
}

func TestDecode_Message_Rejections(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		payload string
		headers map[string]string
		level   slog.Level
	}{
		{"wrong_type", `{"messageType":"CreateIncidentCommand","body":{"incident":{"id":"x"}}}`, nil, slog.LevelDebug},
		{"no_message_type", `{"body":{"incident":{"id":"x"}}}`, nil, slog.LevelWarn},
		{"malformed", `{"messageType":`, nil, slog.LevelWarn},
		{"empty", ``, nil, slog.LevelWarn},
		{"no_body", `{"messageType":"UpdateIncidentCommand"}`, nil, slog.LevelWarn},
		{"no_incident", `{"messageType":"UpdateIncidentCommand","body":{}}`, nil, slog.LevelWarn},
		{"null_incident", `{"messageType":"UpdateIncidentCommand","body":{"incident":null}}`, nil, slog.LevelWarn},
		{"wrong_content_type", `{"messageType":"UpdateIncidentCommand","body":{"incident":{"id":"incident2"}}}`,
			map[string]string{"content-type": "text/plain"}, slog.LevelWarn},
		{"wrong_ce_content_type", `{"messageType":"UpdateIncidentCommand","body":{"incident":{"id":"incident2"}}}`,
			map[string]string{"ce_datacontenttype": "application/xml"}, slog.LevelWarn},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			rec := messaging.NewRecord("incident-command:0", "1-0", "incident1", []byte(c.payload), c.headers, nil)
			_, err := envelope.NewDecoder().Decode(rec)
			requireReject(t, err, c.level)
		})
	}
}

func TestDecode_Message_JSONContentType(t *testing.T) {
	t.Parallel()

	payload := `{"messageType":"UpdateIncidentCommand","body":{"incident":{"id":"incident2"}}}`
	rec := messaging.NewRecord("incident-command:0", "1-0", "incident2", []byte(payload),
		map[string]string{"Content-Type": "Application/JSON"}, nil)

	cmd, err := envelope.NewDecoder().Decode(rec)
	require.NoError(t, err)
	assert.Equal(t, envelope.ShapeMessage, cmd.Shape)
	assert.Equal(t, "incident2", cmd.Incident.ID)
}

func TestDecode_NoRangeChecksOnCommands(t *testing.T) {
	t.Parallel()

	rec := cloudRecord(`{"incident":{"id":"incident1","lat":95,"numberOfPeople":-2}}`, "UpdateIncidentCommand", nil)

	cmd, err := envelope.NewDecoder().Decode(rec)
	require.NoError(t, err)
	require.NotNil(t, cmd.Incident.Lat)
	assert.Equal(t, "95", cmd.Incident.Lat.String())
	require.NotNil(t, cmd.Incident.NumberOfPeople)
	assert.Equal(t, -2, *cmd.Incident.NumberOfPeople)
}

func TestDecoder_CustomAcceptedTypes(t *testing.T) {
	t.Parallel()

	d := envelope.NewDecoder("PatchIncidentCommand")
	assert.True(t, d.Accepts("PatchIncidentCommand"))
	assert.False(t, d.Accepts(domain.UpdateIncidentCommand))
}
