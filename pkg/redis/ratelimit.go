package redis

import (
	"context"
	"fmt"
	"time"

	rd "github.com/redis/go-redis/v9"
)

// luaRateLimit keeps a sliding window of message timestamps per key as a
// sorted set (atomic in Redis).
// KEYS[1]=limit key, ARGV[1]=now, ARGV[2]=window start, ARGV[3]=window sec,
// ARGV[4]=member, ARGV[5]=limit. Returns the count inside the window, or -1
// when the limit is hit.
const luaRateLimit = `
local key = KEYS[1]
local now = tonumber(ARGV[1])
local windowStart = tonumber(ARGV[2])
local windowSec = tonumber(ARGV[3])
local member = ARGV[4]

redis.call('ZREMRANGEBYSCORE', key, '0', windowStart)

local count = redis.call('ZCARD', key)

if count < tonumber(ARGV[5]) then
  redis.call('ZADD', key, now, member)
  redis.call('EXPIRE', key, windowSec)
  return count + 1
else
  return -1
end
`

// Limiter caps how many inbound messages a single user may send per window.
// A nil Limiter or nil client means limiting is disabled, and Redis errors
// degrade open so a cache outage never blocks the bots.
type Limiter struct {
	rdb    *rd.Client
	limit  int
	window time.Duration
}

func NewLimiter(rdb *rd.Client, limit int, window time.Duration) *Limiter {
	return &Limiter{rdb: rdb, limit: limit, window: window}
}

// Allow reports whether one more event is permitted under key.
func (l *Limiter) Allow(ctx context.Context, key string) bool {
	if l == nil || l.rdb == nil {
		return true
	}

	now := time.Now().Unix()
	windowSec := int64(l.window.Seconds())
	windowStart := now - windowSec
	member := fmt.Sprintf("%d-%d", now, time.Now().UnixNano())

	res, err := l.rdb.Eval(ctx, luaRateLimit, []string{key},
		now, windowStart, windowSec, member, l.limit).Int()
	if err != nil {
		return true
	}
	return res >= 0
}
