// Package messaging holds the transport-neutral record types exchanged between
// the command consumer, the event publisher and a broker binding.
package messaging

import (
	"context"
	"hash/fnv"
	"strings"
	"sync"
)

// Record is one inbound transport record. It must be acknowledged exactly once.
type Record struct {
	Stream  string
	ID      string
	Key     string
	Value   []byte
	Headers map[string]string

	ack  func(ctx context.Context) error
	once *sync.Once
}

// NewRecord binds an acknowledgment callback to a record. ack may be nil.
func NewRecord(stream, id, key string, value []byte, headers map[string]string, ack func(ctx context.Context) error) Record {
	return Record{
		Stream:  stream,
		ID:      id,
		Key:     key,
		Value:   value,
		Headers: headers,
		ack:     ack,
		once:    &sync.Once{},
	}
}

// Ack acknowledges the record. Calls after the first one are no-ops.
func (r Record) Ack(ctx context.Context) error {
	if r.once == nil || r.ack == nil {
		return nil
	}
	var err error
	r.once.Do(func() {
		err = r.ack(ctx)
	})
	return err
}

// Header looks a header up case-insensitively.
func (r Record) Header(name string) (string, bool) {
	if v, ok := r.Headers[name]; ok {
		return v, true
	}
	for k, v := range r.Headers {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return "", false
}

// OutboundRecord is handed to a Sender; Key selects the partition.
type OutboundRecord struct {
	Key     string
	Value   []byte
	Headers map[string]string
}

// Handler processes one inbound record. It owns the acknowledgment.
type Handler func(ctx context.Context, rec Record)

type Subscriber interface {
	// Consume blocks delivering records to h until ctx is done. Records of the
	// same key are delivered in order, one at a time.
	Consume(ctx context.Context, h Handler) error
}

type Sender interface {
	Send(ctx context.Context, rec OutboundRecord) error
}

// Partition maps a key to one of n partitions.
func Partition(key string, n int) int {
	if n <= 1 {
		return 0
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(n))
}
