package quota

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"
)

// checkAndIncrScript performs the whole evaluation in one round trip:
// read both counters, compare against the ceilings, and only when both
// pass increment both and set expirations. Running as a Lua script makes
// the check and the increment a single atomic operation, so concurrent
// requests for the same account cannot jointly slip past a ceiling.
//
// KEYS[1] = monthly counter, KEYS[2] = minute counter
// ARGV[1] = monthly ceiling, ARGV[2] = minute ceiling
// ARGV[3] = monthly key TTL seconds, ARGV[4] = minute key TTL seconds
//
// Returns {allowed, exceeded, monthly, minute}.
var checkAndIncrScript = redis.NewScript(`
local monthly = tonumber(redis.call('GET', KEYS[1]) or '0')
local minute = tonumber(redis.call('GET', KEYS[2]) or '0')
if monthly >= tonumber(ARGV[1]) then
  return {0, 'monthly', monthly, minute}
end
if minute >= tonumber(ARGV[2]) then
  return {0, 'minute', monthly, minute}
end
monthly = redis.call('INCR', KEYS[1])
if monthly == 1 then
  redis.call('EXPIRE', KEYS[1], tonumber(ARGV[3]))
end
minute = redis.call('INCR', KEYS[2])
if minute == 1 then
  redis.call('EXPIRE', KEYS[2], tonumber(ARGV[4]))
end
return {1, '', monthly, minute}
`)

const (
	// monthlyKeyTTL keeps a monthly counter around past its window so
	// billing reconciliation can still read it, then self-cleans.
	monthlyKeyTTL = 40 * 24 * time.Hour

	// minuteKeyTTL covers the minute window plus clock slack. The key
	// space moves each minute, so expiry only garbage-collects.
	minuteKeyTTL = 2 * time.Minute
)

// RedisStore is the production quota store backend. Counters are shared by
// every gateway instance pointing at the same Redis, so admission decisions
// hold across the whole fleet.
type RedisStore struct {
	client *redis.Client
	logger *slog.Logger
}

// RedisConfig configures the Redis quota store.
type RedisConfig struct {
	// Addr is the Redis host:port
	Addr string

	// Password is the optional AUTH password
	Password string

	// DB is the logical database number
	DB int

	// DialTimeout bounds connection establishment
	DialTimeout time.Duration

	// OpTimeout bounds each quota operation
	OpTimeout time.Duration
}

// NewRedisStore creates a Redis-backed quota store.
func NewRedisStore(cfg RedisConfig, logger *slog.Logger) *RedisStore {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = 5 * time.Second
	}
	if cfg.OpTimeout == 0 {
		cfg.OpTimeout = 2 * time.Second
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.OpTimeout,
		WriteTimeout: cfg.OpTimeout,
	})

	return &RedisStore{
		client: client,
		logger: logger.With("component", "quota"),
	}
}

// CheckAndIncrement runs the atomic evaluation script.
func (s *RedisStore) CheckAndIncrement(ctx context.Context, accountID string, monthlyCeiling, minuteCeiling int64) (*Result, error) {
	now := time.Now()

	keys := []string{
		monthlyKey(accountID, now),
		minuteKey(accountID, now),
	}
	args := []interface{}{
		monthlyCeiling,
		minuteCeiling,
		int64(monthlyKeyTTL.Seconds()),
		int64(minuteKeyTTL.Seconds()),
	}

	raw, err := checkAndIncrScript.Run(ctx, s.client, keys, args...).Result()
	if err != nil {
		return nil, fmt.Errorf("quota script failed: %w", err)
	}

	reply, ok := raw.([]interface{})
	if !ok || len(reply) != 4 {
		return nil, fmt.Errorf("unexpected quota script reply: %v", raw)
	}

	allowed, _ := reply[0].(int64)
	exceeded, _ := reply[1].(string)
	monthly, _ := reply[2].(int64)
	minute, _ := reply[3].(int64)

	return &Result{
		Allowed:      allowed == 1,
		Exceeded:     Dimension(exceeded),
		MonthlyUsed:  monthly,
		MinuteUsed:   minute,
		MonthlyReset: monthlyReset(now),
		MinuteReset:  minuteReset(now),
	}, nil
}

// Ping reports Redis reachability.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
