package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Redis provides the statistics aggregate and caching in Redis.
type Redis struct {
	cli *redis.Client
}

// Connect connects to the Redis server and pings the server to ensure the
// connection is working.
func Connect(ctx context.Context, addr string) (*Redis, error) {
	cli := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	if err := cli.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Redis{
		cli: cli,
	}, nil
}

// Close closes the client.
func (r *Redis) Close() error {
	return r.cli.Close()
}

const (
	statsPrefix   = "user_stats"
	networkPrefix = "networks"
)

func statsKey(actor int64) string {
	return fmt.Sprintf("%s:%d", statsPrefix, actor)
}

func sportTeamsKey(sportID int64) string {
	return fmt.Sprintf("%s:sport:%d:teams", networkPrefix, sportID)
}

func networkNameKey(sportID, teamID int64) string {
	return fmt.Sprintf("%s:name:%d:%d", networkPrefix, sportID, teamID)
}
