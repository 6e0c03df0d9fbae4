// Package envelope translates between transport records and incident commands
// or events. Both historical wire shapes are normalized here so that nothing
// downstream needs to know which one arrived.
package envelope

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"incidentService/internal/domain"
	"incidentService/internal/messaging"
	"incidentService/pkg/e"
)

// Shape identifies the wire layout a command arrived in.
type Shape int

const (
	ShapeUnknown Shape = iota
	// ShapeMessage is the self-describing JSON envelope with messageType and body.incident.
	ShapeMessage
	// ShapeCloudEvent carries type and content type as transport headers.
	ShapeCloudEvent
)

func (s Shape) String() string {
	switch s {
	case ShapeMessage:
		return "message"
	case ShapeCloudEvent:
		return "cloudevent"
	default:
		return "unknown"
	}
}

const (
	HeaderCEType        = "ce_type"
	HeaderCEID          = "ce_id"
	HeaderCESource      = "ce_source"
	HeaderCESpecVersion = "ce_specversion"
	HeaderCETime        = "ce_time"
	HeaderCEContentType = "ce_datacontenttype"
	HeaderContentType   = "content-type"
	HeaderType          = "type"

	ContentTypeJSON = "application/json"
	SpecVersion     = "1.0"
)

// Command is the normalized inbound command.
type Command struct {
	Type      string
	Shape     Shape
	MessageID string
	Source    string
	Incident  domain.IncidentPatch
}

// RejectError explains why a record was ignored and at which level to log it.
type RejectError struct {
	Reason string
	Type   string
	Level  slog.Level
}

func (r *RejectError) Error() string {
	if r.Type != "" {
		return fmt.Sprintf("%s (type %q)", r.Reason, r.Type)
	}
	return r.Reason
}

func (r *RejectError) Unwrap() error { return e.ErrIgnored }

func reject(level slog.Level, typ, reason string) error {
	return &RejectError{Reason: reason, Type: typ, Level: level}
}

// Decoder accepts a fixed set of command types.
type Decoder struct {
	accepted map[string]struct{}
}

// NewDecoder accepts UpdateIncidentCommand when no types are given.
func NewDecoder(types ...string) *Decoder {
	if len(types) == 0 {
		types = []string{domain.UpdateIncidentCommand}
	}
	accepted := make(map[string]struct{}, len(types))
	for _, t := range types {
		accepted[t] = struct{}{}
	}
	return &Decoder{accepted: accepted}
}

func (d *Decoder) Accepts(typ string) bool {
	_, ok := d.accepted[typ]
	return ok
}

// Decode returns the command in rec or a *RejectError. It never returns any
// other kind of error.
func (d *Decoder) Decode(rec messaging.Record) (Command, error) {
	typ, structured := metadataType(rec)
	if ct, ok := contentType(rec); ok && !strings.EqualFold(strings.TrimSpace(ct), ContentTypeJSON) {
		return Command{}, reject(slog.LevelWarn, typ, "unsupported content type "+ct)
	}
	if structured {
		return d.decodeCloudEvent(rec, typ)
	}
	return d.decodeMessage(rec)
}

func contentType(rec messaging.Record) (string, bool) {
	if ct, ok := rec.Header(HeaderContentType); ok {
		return ct, true
	}
	return rec.Header(HeaderCEContentType)
}

func metadataType(rec messaging.Record) (string, bool) {
	if t, ok := rec.Header(HeaderCEType); ok {
		return t, true
	}
	if t, ok := rec.Header(HeaderType); ok {
		return t, true
	}
	if _, ok := rec.Header(HeaderCESpecVersion); ok {
		return "", true
	}
	return "", false
}

func (d *Decoder) decodeCloudEvent(rec messaging.Record, typ string) (Command, error) {
	if !d.Accepts(typ) {
		return Command{}, reject(slog.LevelDebug, typ, "message type is ignored")
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(rec.Value, &payload); err != nil {
		return Command{}, reject(slog.LevelWarn, typ, "payload is not a JSON object")
	}

	raw := json.RawMessage(rec.Value)
	if inner, ok := payload["incident"]; ok {
		raw = inner
	}

	patch, err := decodeIncident(raw)
	if err != nil {
		return Command{}, reject(slog.LevelWarn, typ, err.Error())
	}

	id, _ := rec.Header(HeaderCEID)
	source, _ := rec.Header(HeaderCESource)
	return Command{
		Type:      typ,
		Shape:     ShapeCloudEvent,
		MessageID: id,
		Source:    source,
		Incident:  patch,
	}, nil
}

type messageEnvelope struct {
	ID              string `json:"id"`
	MessageType     string `json:"messageType"`
	InvokingService string `json:"invokingService"`
	Body            *struct {
		Incident json.RawMessage `json:"incident"`
	} `json:"body"`
}

func (d *Decoder) decodeMessage(rec messaging.Record) (Command, error) {
	var env messageEnvelope
	if err := json.Unmarshal(rec.Value, &env); err != nil {
		return Command{}, reject(slog.LevelWarn, "", "message is not JSON or without 'messageType' field")
	}
	if env.MessageType == "" {
		return Command{}, reject(slog.LevelWarn, "", "message is not JSON or without 'messageType' field")
	}
	if !d.Accepts(env.MessageType) {
		return Command{}, reject(slog.LevelDebug, env.MessageType, "message type is ignored")
	}
	if env.Body == nil || len(env.Body.Incident) == 0 {
		return Command{}, reject(slog.LevelWarn, env.MessageType, "message without body.incident")
	}

	patch, err := decodeIncident(env.Body.Incident)
	if err != nil {
		return Command{}, reject(slog.LevelWarn, env.MessageType, err.Error())
	}

	return Command{
		Type:      env.MessageType,
		Shape:     ShapeMessage,
		MessageID: env.ID,
		Source:    env.InvokingService,
		Incident:  patch,
	}, nil
}

func decodeIncident(raw json.RawMessage) (domain.IncidentPatch, error) {
	var patch domain.IncidentPatch

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return patch, fmt.Errorf("incident is not a JSON object")
	}
	if err := json.Unmarshal(trimmed, &patch); err != nil {
		return patch, fmt.Errorf("malformed incident: %v", err)
	}
	if patch.ID == "" {
		return patch, fmt.Errorf("incident without id")
	}
	return patch, nil
}
