package redis

import (
	"context"
	"os"
	"testing"
	"time"
)

// getTestConfig returns config for testing
func getTestConfig() *Config {
	cfg := DefaultConfig()
	if host := os.Getenv("TEST_REDIS_HOST"); host != "" {
		cfg.Host = host
	}
	if password := os.Getenv("TEST_REDIS_PASSWORD"); password != "" {
		cfg.Password = password
	}
	cfg.KeyPrefix = "openevent-test"
	cfg.MaxRetries = 0
	return cfg
}

func TestConfig_Addr(t *testing.T) {
	cfg := &Config{Host: "redis.example.com", Port: 6380}
	if cfg.Addr() != "redis.example.com:6380" {
		t.Errorf("Expected addr 'redis.example.com:6380', got '%s'", cfg.Addr())
	}
}

func TestJoinKey(t *testing.T) {
	if got := JoinKey("openevent", "idempotency", "alice", "k1"); got != "openevent:idempotency:alice:k1" {
		t.Errorf("JoinKey() = %q", got)
	}
	if got := JoinKey("openevent"); got != "openevent" {
		t.Errorf("JoinKey() with no parts = %q", got)
	}
}

func TestParseClaim(t *testing.T) {
	tests := []struct {
		name        string
		res         []interface{}
		wantClaimed bool
		wantCurrent string
		wantErr     bool
	}{
		{name: "claimed", res: []interface{}{int64(1), ""}, wantClaimed: true},
		{name: "taken", res: []interface{}{int64(0), "processing"}, wantCurrent: "processing"},
		{name: "short reply", res: []interface{}{int64(1)}, wantErr: true},
		{name: "bad flag", res: []interface{}{"1", ""}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claimed, current, err := parseClaim(tt.res)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseClaim() error = %v, wantErr %v", err, tt.wantErr)
			}
			if claimed != tt.wantClaimed || current != tt.wantCurrent {
				t.Errorf("parseClaim() = %v, %q; want %v, %q", claimed, current, tt.wantClaimed, tt.wantCurrent)
			}
		})
	}
}

func TestNewClient_InvalidConfig(t *testing.T) {
	cfg := &Config{
		Host:          "invalid-host-that-does-not-exist",
		Port:          9999,
		MaxRetries:    0,
		RetryInterval: 100 * time.Millisecond,
		DialTimeout:   500 * time.Millisecond,
	}

	if _, err := NewClient(context.Background(), cfg); err == nil {
		t.Error("Expected error for invalid host")
	}
}

func TestClient_Claim_Integration(t *testing.T) {
	if os.Getenv("TEST_REDIS_HOST") == "" {
		t.Skip("Skipping integration test: TEST_REDIS_HOST not set")
	}

	ctx := context.Background()
	client, err := NewClient(ctx, getTestConfig())
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	defer client.Close()

	if err := client.HealthCheck(ctx); err != nil {
		t.Fatalf("HealthCheck failed: %v", err)
	}

	key := client.Key("idempotency", "alice", "k1")
	defer client.Del(ctx, key)

	claimed, _, err := client.Claim(ctx, key, "processing", time.Minute)
	if err != nil || !claimed {
		t.Fatalf("Claim = %v, %v; want true", claimed, err)
	}
	claimed, current, err := client.Claim(ctx, key, "again", time.Minute)
	if err != nil || claimed {
		t.Fatalf("second Claim = %v, %v; want false", claimed, err)
	}
	if current != "processing" {
		t.Errorf("current = %q, want processing", current)
	}

	if err := client.Set(ctx, key, "completed", time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	_, current, _ = client.Claim(ctx, key, "again", time.Minute)
	if current != "completed" {
		t.Errorf("current after Set = %q, want completed", current)
	}

	if err := client.Del(ctx, key); err != nil {
		t.Fatalf("Del failed: %v", err)
	}
	claimed, _, _ = client.Claim(ctx, key, "fresh", time.Minute)
	if !claimed {
		t.Error("Claim after Del should succeed")
	}
}
