package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/wikimedia/mediawiki-extensions-UserStatus/status"
)

var _ status.Networks = (*NetworkCache)(nil)

// NetworkCache caches lookups of a network directory. Team lists and names
// change rarely, so entries simply expire after TTL.
type NetworkCache struct {
	cli      *redis.Client
	logger   *slog.Logger
	networks status.Networks
	ttl      time.Duration
}

// NetworkCache returns a cache in front of networks.
func (r *Redis) NetworkCache(networks status.Networks, ttl time.Duration, logger *slog.Logger) *NetworkCache {
	return &NetworkCache{
		cli:      r.cli,
		logger:   logger,
		networks: networks,
		ttl:      ttl,
	}
}

// SportTeams returns the teams registered under a sport.
func (c *NetworkCache) SportTeams(ctx context.Context, sportID int64) ([]int64, error) {
	key := sportTeamsKey(sportID)
	b, err := c.cli.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var ids []int64
		if err := json.Unmarshal(b, &ids); err == nil {
			return ids, nil
		}
		c.logger.Warn("Dropping malformed cache entry", "key", key)
	case !errors.Is(err, redis.Nil):
		c.logger.Error("Could not read network cache", "key", key, "error", err.Error())
	}

	ids, err := c.networks.SportTeams(ctx, sportID)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []int64{}
	}
	b, err = json.Marshal(ids)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}
	if err := c.cli.Set(ctx, key, b, c.ttl).Err(); err != nil {
		c.logger.Error("Could not cache sport teams", "sport_id", sportID, "error", err.Error())
	}
	return ids, nil
}

// NetworkName returns the display name of a network.
func (c *NetworkCache) NetworkName(ctx context.Context, sportID, teamID int64) (string, error) {
	key := networkNameKey(sportID, teamID)
	name, err := c.cli.Get(ctx, key).Result()
	if err == nil {
		return name, nil
	}
	if !errors.Is(err, redis.Nil) {
		c.logger.Error("Could not read network cache", "key", key, "error", err.Error())
	}

	name, err = c.networks.NetworkName(ctx, sportID, teamID)
	if err != nil {
		return "", err
	}
	if name == "" {
		// Unknown networks are not cached so they show up once registered.
		return "", nil
	}
	if err := c.cli.Set(ctx, key, name, c.ttl).Err(); err != nil {
		c.logger.Error("Could not cache network name", "sport_id", sportID, "team_id", teamID, "error", err.Error())
	}
	return name, nil
}

// Invalidate drops the cached team list and name of a sport.
func (c *NetworkCache) Invalidate(ctx context.Context, sportID int64) error {
	if err := c.cli.Del(ctx, sportTeamsKey(sportID), networkNameKey(sportID, 0)).Err(); err != nil {
		return fmt.Errorf("del: %w", err)
	}
	return nil
}
