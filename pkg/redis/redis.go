package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
)

// Nil is returned by Get when the key does not exist
const Nil = redis.Nil

// DefaultKeyPrefix namespaces every key the engine writes
const DefaultKeyPrefix = "openevent"

// Config holds Redis connection configuration
type Config struct {
	Host         string
	Port         int
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	KeyPrefix    string

	EnableTracing bool

	// Retry configuration
	MaxRetries    int
	RetryInterval time.Duration
}

// DefaultConfig returns default Redis configuration
func DefaultConfig() *Config {
	return &Config{
		Host:          "localhost",
		Port:          6379,
		PoolSize:      100,
		MinIdleConns:  10,
		DialTimeout:   5 * time.Second,
		ReadTimeout:   3 * time.Second,
		WriteTimeout:  3 * time.Second,
		KeyPrefix:     DefaultKeyPrefix,
		MaxRetries:    3,
		RetryInterval: time.Second,
	}
}

// Addr returns the Redis address
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// claimScript stores ARGV[1] under KEYS[1] for ARGV[2] milliseconds unless the
// key exists. Returns {1, ""} when stored, {0, current} otherwise.
var claimScript = redis.NewScript(`
if redis.call("SET", KEYS[1], ARGV[1], "NX", "PX", ARGV[2]) then
	return {1, ""}
end
local current = redis.call("GET", KEYS[1])
if not current then
	current = ""
end
return {0, current}
`)

// Client wraps redis.Client with the engine's key namespace
type Client struct {
	client *redis.Client
	config *Config
}

// NewClient creates a new Redis client with retry logic
func NewClient(ctx context.Context, cfg *Config) (*Client, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = DefaultKeyPrefix
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	if cfg.EnableTracing {
		if err := redisotel.InstrumentTracing(client); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to instrument redis tracing: %w", err)
		}
	}

	var lastErr error
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(cfg.RetryInterval)
		}
		if lastErr = client.Ping(ctx).Err(); lastErr == nil {
			// warm the script cache so the first claim is an EVALSHA
			if err := claimScript.Load(ctx, client).Err(); err != nil {
				client.Close()
				return nil, fmt.Errorf("failed to load claim script: %w", err)
			}
			return &Client{client: client, config: cfg}, nil
		}
	}

	client.Close()
	return nil, fmt.Errorf("failed to connect to redis after %d attempts: %w", cfg.MaxRetries+1, lastErr)
}

// Key joins parts under the configured prefix, e.g. openevent:idempotency:alice:k1
func (c *Client) Key(parts ...string) string {
	return JoinKey(c.config.KeyPrefix, parts...)
}

// JoinKey joins prefix and parts with ':'
func JoinKey(prefix string, parts ...string) string {
	return strings.Join(append([]string{prefix}, parts...), ":")
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.client.Close()
}

// HealthCheck performs a health check on Redis
func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	result, err := c.client.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("redis health check failed: %w", err)
	}
	if result != "PONG" {
		return fmt.Errorf("redis health check unexpected response: %s", result)
	}
	return nil
}

// Claim atomically stores value under key unless it already exists.
// When the key is taken the current value is returned instead.
func (c *Client) Claim(ctx context.Context, key, value string, ttl time.Duration) (bool, string, error) {
	res, err := claimScript.Run(ctx, c.client, []string{key}, value, ttl.Milliseconds()).Slice()
	if err != nil {
		return false, "", err
	}
	return parseClaim(res)
}

func parseClaim(res []interface{}) (bool, string, error) {
	if len(res) != 2 {
		return false, "", fmt.Errorf("claim script returned %d values", len(res))
	}
	flag, ok := res[0].(int64)
	if !ok {
		return false, "", fmt.Errorf("claim script flag has type %T", res[0])
	}
	current, _ := res[1].(string)
	return flag == 1, current, nil
}

// Set stores value under key with expiration
func (c *Client) Set(ctx context.Context, key, value string, expiration time.Duration) error {
	return c.client.Set(ctx, key, value, expiration).Err()
}

// Del deletes keys
func (c *Client) Del(ctx context.Context, keys ...string) error {
	return c.client.Del(ctx, keys...).Err()
}
