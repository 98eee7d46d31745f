package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/wikimedia/mediawiki-extensions-UserStatus/status"
)

var _ status.Stats = (*Redis)(nil)

// ErrNoStats is returned when no statistics are recorded for a user.
var ErrNoStats = errors.New("no statistics recorded")

// decrStatusCount decrements a hash field without going below zero.
var decrStatusCount = redis.NewScript(`
local n = redis.call("HINCRBY", KEYS[1], ARGV[1], -1)
if n < 0 then
	redis.call("HSET", KEYS[1], ARGV[1], 0)
	return 0
end
return n
`)

// IncStatusCount increments the status count of actor.
func (r *Redis) IncStatusCount(ctx context.Context, actor int64) error {
	if err := r.cli.HIncrBy(ctx, statsKey(actor), statusCountField, 1).Err(); err != nil {
		return fmt.Errorf("hincrby: %w", err)
	}
	return nil
}

// DecStatusCount decrements the status count of actor. The count never
// goes below zero.
func (r *Redis) DecStatusCount(ctx context.Context, actor int64) error {
	if err := decrStatusCount.Run(ctx, r.cli, []string{statsKey(actor)}, statusCountField).Err(); err != nil {
		return fmt.Errorf("decrement status count: %w", err)
	}
	return nil
}

// StatusCount returns the status count of actor. It returns ErrNoStats if
// nothing was recorded for actor yet.
func (r *Redis) StatusCount(ctx context.Context, actor int64) (int64, error) {
	res := r.cli.HGetAll(ctx, statsKey(actor))
	vals, err := res.Result()
	if err != nil {
		return 0, fmt.Errorf("hgetall: %w", err)
	}
	if _, ok := vals[statusCountField]; !ok {
		return 0, ErrNoStats
	}

	var st userStats
	if err := res.Scan(&st); err != nil {
		return 0, fmt.Errorf("scan: %w", err)
	}
	return st.StatusCount, nil
}

// SetStatusCounts overwrites the status counts of the given actors in a
// single transaction.
func (r *Redis) SetStatusCounts(ctx context.Context, counts map[int64]int64) error {
	if len(counts) == 0 {
		return nil
	}
	_, err := r.cli.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for actor, n := range counts {
			pipe.HSet(ctx, statsKey(actor), statusCountField, n)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis set status counts: %w", err)
	}
	return nil
}
