package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"incidentService/internal/config"
	"incidentService/internal/messaging"
)

const (
	fieldKey   = "key"
	fieldValue = "value"
)

// PartitionStream names the physical stream backing one partition.
func PartitionStream(stream string, partition int) string {
	return fmt.Sprintf("%s:%d", stream, partition)
}

// StreamProducer appends records to a partitioned stream. A record lands on
// the partition chosen by its key.
type StreamProducer struct {
	client     *goredis.Client
	stream     string
	partitions int
	maxLen     int64
}

func NewStreamProducer(client *goredis.Client, stream string, cfg config.StreamsConfig) *StreamProducer {
	return &StreamProducer{
		client:     client,
		stream:     stream,
		partitions: cfg.Partitions,
		maxLen:     cfg.MaxLen,
	}
}

func (p *StreamProducer) Send(ctx context.Context, rec messaging.OutboundRecord) error {
	const op = "redis.StreamProducer.Send"

	values := make(map[string]interface{}, len(rec.Headers)+2)
	for k, v := range rec.Headers {
		values[k] = v
	}
	values[fieldKey] = rec.Key
	values[fieldValue] = rec.Value

	args := &goredis.XAddArgs{
		Stream: PartitionStream(p.stream, messaging.Partition(rec.Key, p.partitions)),
		Values: values,
	}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = true
	}
	if err := p.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// StreamConsumer reads a partitioned stream through a consumer group. Each
// partition is served by one goroutine so records sharing a key are handled
// in order. Entries left pending by a previous run are replayed first.
type StreamConsumer struct {
	client     *goredis.Client
	stream     string
	group      string
	consumer   string
	partitions int
	block      time.Duration
	count      int64
	logger     *slog.Logger
}

func NewStreamConsumer(client *goredis.Client, stream string, cfg config.StreamsConfig, logger *slog.Logger) *StreamConsumer {
	if logger == nil {
		logger = slog.Default()
	}
	return &StreamConsumer{
		client:     client,
		stream:     stream,
		group:      cfg.Group,
		consumer:   cfg.Consumer,
		partitions: cfg.Partitions,
		block:      cfg.BlockTimeout,
		count:      cfg.BatchSize,
		logger:     logger,
	}
}

// EnsureGroups creates the consumer group on every partition stream.
func (c *StreamConsumer) EnsureGroups(ctx context.Context) error {
	const op = "redis.StreamConsumer.EnsureGroups"

	for p := 0; p < c.partitions; p++ {
		stream := PartitionStream(c.stream, p)
		err := c.client.XGroupCreateMkStream(ctx, stream, c.group, "0").Err()
		if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
			return fmt.Errorf("%s: %s: %w", op, stream, err)
		}
	}
	return nil
}

func (c *StreamConsumer) Consume(ctx context.Context, h messaging.Handler) error {
	if err := c.EnsureGroups(ctx); err != nil {
		return err
	}

	var wg sync.WaitGroup
	for p := 0; p < c.partitions; p++ {
		wg.Add(1)
		go func(stream string) {
			defer wg.Done()
			c.consumePartition(ctx, stream, h)
		}(PartitionStream(c.stream, p))
	}
	wg.Wait()
	return ctx.Err()
}

func (c *StreamConsumer) consumePartition(ctx context.Context, stream string, h messaging.Handler) {
	log := c.logger.With(slog.String("stream", stream), slog.String("group", c.group))
	log.Debug("partition reader started")

	// "0" walks this consumer's pending entries, ">" asks for new ones.
	cursor := "0"
	for ctx.Err() == nil {
		res, err := c.client.XReadGroup(ctx, &goredis.XReadGroupArgs{
			Group:    c.group,
			Consumer: c.consumer,
			Streams:  []string{stream, cursor},
			Count:    c.count,
			Block:    c.block,
		}).Result()
		if errors.Is(err, goredis.Nil) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			log.Error("XREADGROUP failed", slog.Any("error", err))
			sleep(ctx, 500*time.Millisecond)
			continue
		}

		delivered := 0
		for _, xs := range res {
			for _, msg := range xs.Messages {
				delivered++
				if cursor != ">" {
					cursor = msg.ID
				}
				h(ctx, c.toRecord(stream, msg))
			}
		}
		if cursor != ">" && delivered == 0 {
			cursor = ">"
		}
	}
	log.Debug("partition reader stopped")
}

func (c *StreamConsumer) toRecord(stream string, msg goredis.XMessage) messaging.Record {
	var key string
	var value []byte
	headers := make(map[string]string, len(msg.Values))
	for k, v := range msg.Values {
		s := fmt.Sprint(v)
		switch k {
		case fieldKey:
			key = s
		case fieldValue:
			value = []byte(s)
		default:
			headers[k] = s
		}
	}

	id := msg.ID
	return messaging.NewRecord(stream, id, key, value, headers, func(ctx context.Context) error {
		return c.client.XAck(ctx, stream, c.group, id).Err()
	})
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
