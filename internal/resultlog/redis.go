package resultlog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey is the list the Redis mirror appends to.
const DefaultRedisKey = "adaptiq:results"

// RedisSink mirrors entries into a Redis list as encoded CSV rows. RPUSH is
// atomic, so hosts sharing the server never interleave rows.
type RedisSink struct {
	client *redis.Client
	key    string
}

// NewRedisSink connects to url and checks the connection.
func NewRedisSink(ctx context.Context, url, key string) (*RedisSink, error) {
	if url == "" {
		return nil, fmt.Errorf("redis URL is empty")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisSink{client: client, key: key}, nil
}

// Append pushes e onto the list.
func (s *RedisSink) Append(ctx context.Context, e Entry) error {
	if err := s.client.RPush(ctx, s.key, EncodeRow(e)).Err(); err != nil {
		return fmt.Errorf("redis rpush: %w", err)
	}
	return nil
}

// Entries reads back every mirrored entry in push order.
func (s *RedisSink) Entries(ctx context.Context) ([]Entry, error) {
	rows, err := s.client.LRange(ctx, s.key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis lrange: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return ReadCSV(strings.NewReader(strings.Join(rows, "\n") + "\n"))
}

// Close shuts down the client.
func (s *RedisSink) Close() error {
	return s.client.Close()
}
