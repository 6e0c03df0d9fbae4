package redis

import (
	"context"
	"encoding/json"

	goredis "github.com/redis/go-redis/v9"

	"incidentService/internal/domain"
)

// DroppedLog is a capped list of commands that failed processing. Newest
// entries come first.
type DroppedLog struct {
	client *goredis.Client
	key    string
	max    int64
}

func NewDroppedLog(client *goredis.Client, key string, max int64) *DroppedLog {
	if max <= 0 {
		max = 1000
	}
	return &DroppedLog{client: client, key: key, max: max}
}

func (l *DroppedLog) Record(ctx context.Context, cmd domain.DroppedCommand) error {
	b, err := json.Marshal(cmd)
	if err != nil {
		return err
	}
	_, err = l.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.LPush(ctx, l.key, b)
		pipe.LTrim(ctx, l.key, 0, l.max-1)
		return nil
	})
	return err
}

func (l *DroppedLog) List(ctx context.Context, limit int64) ([]domain.DroppedCommand, error) {
	if limit <= 0 || limit > l.max {
		limit = l.max
	}
	res, err := l.client.LRange(ctx, l.key, 0, limit-1).Result()
	if err != nil {
		return nil, err
	}

	out := make([]domain.DroppedCommand, 0, len(res))
	for _, raw := range res {
		var cmd domain.DroppedCommand
		if err := json.Unmarshal([]byte(raw), &cmd); err != nil {
			continue
		}
		out = append(out, cmd)
	}
	return out, nil
}
