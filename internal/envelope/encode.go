package envelope

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"incidentService/internal/domain"
	"incidentService/internal/messaging"
)

// Format selects the outbound envelope shape.
type Format string

const (
	FormatCloudEvent Format = "cloudevent"
	FormatMessage    Format = "message"
)

func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatCloudEvent, FormatMessage:
		return Format(s), nil
	case "":
		return FormatCloudEvent, nil
	default:
		return "", fmt.Errorf("unknown event format %q", s)
	}
}

// DefaultSource is the invokingService / ce_source attribution.
const DefaultSource = "IncidentService"

// Message is the self-describing outbound envelope.
type Message struct {
	ID              string               `json:"id"`
	MessageType     string               `json:"messageType"`
	InvokingService string               `json:"invokingService"`
	Timestamp       int64                `json:"timestamp"`
	Body            domain.IncidentEvent `json:"body"`
}

type Encoder struct {
	format Format
	source string
	now    func() time.Time
	newID  func() string
}

type EncoderOption func(*Encoder)

func WithClock(now func() time.Time) EncoderOption {
	return func(enc *Encoder) { enc.now = now }
}

func WithIDGenerator(newID func() string) EncoderOption {
	return func(enc *Encoder) { enc.newID = newID }
}

func NewEncoder(format Format, source string, opts ...EncoderOption) *Encoder {
	if source == "" {
		source = DefaultSource
	}
	enc := &Encoder{
		format: format,
		source: source,
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(enc)
	}
	return enc
}

// Encode builds the outbound record for a full incident snapshot. The record
// key is always the incident id.
func (enc *Encoder) Encode(inc domain.Incident, eventType string) (messaging.OutboundRecord, error) {
	event := domain.NewIncidentEvent(inc)
	now := enc.now().UTC()

	switch enc.format {
	case FormatMessage:
		value, err := json.Marshal(Message{
			ID:              enc.newID(),
			MessageType:     eventType,
			InvokingService: enc.source,
			Timestamp:       now.UnixMilli(),
			Body:            event,
		})
		if err != nil {
			return messaging.OutboundRecord{}, fmt.Errorf("envelope.Encode: %w", err)
		}
		return messaging.OutboundRecord{
			Key:     inc.ID,
			Value:   value,
			Headers: map[string]string{HeaderContentType: ContentTypeJSON},
		}, nil
	default:
		value, err := json.Marshal(event)
		if err != nil {
			return messaging.OutboundRecord{}, fmt.Errorf("envelope.Encode: %w", err)
		}
		return messaging.OutboundRecord{
			Key:   inc.ID,
			Value: value,
			Headers: map[string]string{
				HeaderCESpecVersion: SpecVersion,
				HeaderCEID:          enc.newID(),
				HeaderCEType:        eventType,
				HeaderCESource:      enc.source,
				HeaderCETime:        now.Format(time.RFC3339Nano),
				HeaderContentType:   ContentTypeJSON,
			},
		}, nil
	}
}
