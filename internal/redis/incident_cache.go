package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"incidentService/internal/config"
	"incidentService/internal/domain"
)

// Keys live under <prefix><generation>:id:<incident id>, with one index set
// per generation. Flush bumps the generation, so a fill that read the old
// generation lands nowhere.
var (
	cacheGetScript = goredis.NewScript(`
local gen = redis.call('GET', KEYS[1]) or '0'
local v = redis.call('GET', ARGV[1] .. gen .. ':id:' .. ARGV[2])
return {gen, v}
`)

	cacheFillScript = goredis.NewScript(`
local gen = redis.call('GET', KEYS[1]) or '0'
if gen ~= ARGV[1] then return 0 end
local base = ARGV[2] .. gen
local ttl = tonumber(ARGV[5])
local ok
if ttl > 0 then
  ok = redis.call('SET', base .. ':id:' .. ARGV[3], ARGV[4], 'NX', 'PX', ttl)
else
  ok = redis.call('SET', base .. ':id:' .. ARGV[3], ARGV[4], 'NX')
end
if not ok then return 0 end
redis.call('SADD', base .. ':index', ARGV[3])
return 1
`)

	cacheStoreScript = goredis.NewScript(`
local gen = redis.call('GET', KEYS[1]) or '0'
local base = ARGV[1] .. gen
local key = base .. ':id:' .. ARGV[2]
local cur = redis.call('GET', key)
if cur then
  local ok, doc = pcall(cjson.decode, cur)
  if ok and type(doc) == 'table' and tonumber(doc.version) and tonumber(doc.version) > tonumber(ARGV[4]) then
    return 0
  end
end
local ttl = tonumber(ARGV[5])
if ttl > 0 then
  redis.call('SET', key, ARGV[3], 'PX', ttl)
else
  redis.call('SET', key, ARGV[3])
end
redis.call('SADD', base .. ':index', ARGV[2])
return 1
`)

	cacheFlushScript = goredis.NewScript(`
local gen = redis.call('GET', KEYS[1]) or '0'
redis.call('INCR', KEYS[1])
local base = ARGV[1] .. gen
local ids = redis.call('SMEMBERS', base .. ':index')
for _, id in ipairs(ids) do
  redis.call('DEL', base .. ':id:' .. id)
end
redis.call('DEL', base .. ':index')
return #ids
`)
)

// IncidentCache keeps get-by-id snapshots, version-aware and generation
// scoped.
type IncidentCache struct {
	client *goredis.Client
	prefix string
	ttl    time.Duration
}

func NewIncidentCache(r *Redis, cfg config.CacheConfig) *IncidentCache {
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "incident:"
	}
	return &IncidentCache{
		client: r.Client,
		prefix: prefix,
		ttl:    cfg.TTL,
	}
}

func (c *IncidentCache) generationKey() string { return c.prefix + "gen" }

func (c *IncidentCache) Get(ctx context.Context, id string) (*domain.Incident, string, error) {
	const op = "redis.IncidentCache.Get"

	res, err := cacheGetScript.Run(ctx, c.client, []string{c.generationKey()}, c.prefix, id).Slice()
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	if len(res) == 0 {
		return nil, "", fmt.Errorf("%s: empty script reply", op)
	}
	gen := fmt.Sprint(res[0])
	if len(res) < 2 || res[1] == nil {
		return nil, gen, nil
	}
	data, ok := res[1].(string)
	if !ok {
		return nil, gen, nil
	}

	var inc domain.Incident
	if err := json.Unmarshal([]byte(data), &inc); err != nil {
		return nil, gen, fmt.Errorf("%s: %w", op, err)
	}
	return &inc, gen, nil
}

func (c *IncidentCache) Fill(ctx context.Context, generation string, inc *domain.Incident) error {
	b, err := json.Marshal(inc)
	if err != nil {
		return err
	}
	return cacheFillScript.Run(ctx, c.client, []string{c.generationKey()},
		generation, c.prefix, inc.ID, b, c.ttl.Milliseconds()).Err()
}

func (c *IncidentCache) Store(ctx context.Context, inc *domain.Incident) error {
	b, err := json.Marshal(inc)
	if err != nil {
		return err
	}
	return cacheStoreScript.Run(ctx, c.client, []string{c.generationKey()},
		c.prefix, inc.ID, b, inc.Version, c.ttl.Milliseconds()).Err()
}

func (c *IncidentCache) Flush(ctx context.Context) error {
	return cacheFlushScript.Run(ctx, c.client, []string{c.generationKey()}, c.prefix).Err()
}
