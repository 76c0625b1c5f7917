package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ServerAddress != ":3333" {
		t.Errorf("got address %q", cfg.ServerAddress)
	}
	if cfg.ServiceHost != "https://bsky.social" || cfg.WebHost != "bsky.app" {
		t.Errorf("got hosts %q %q", cfg.ServiceHost, cfg.WebHost)
	}
	if cfg.FollowersLimit != 50 {
		t.Errorf("got limit %d", cfg.FollowersLimit)
	}
	if cfg.RedisEnabled() {
		t.Error("redis should be disabled by default")
	}
	if cfg.SessionIdle() != 12*time.Hour {
		t.Errorf("got idle %v", cfg.SessionIdle())
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("got log level %q", cfg.LogLevel)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SERVER_ADDRESS", ":8080")
	t.Setenv("FOLLOWERS_LIMIT", "25")
	t.Setenv("REDIS_HOST", "redis")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("SESSION_CLEANUP_MINUTES", "1")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ServerAddress != ":8080" || cfg.FollowersLimit != 25 {
		t.Errorf("got %+v", cfg)
	}
	if !cfg.RedisEnabled() || cfg.RedisAddr() != "redis:6380" {
		t.Errorf("got redis %q", cfg.RedisAddr())
	}
	if cfg.SessionCleanupInterval() != time.Minute {
		t.Errorf("got interval %v", cfg.SessionCleanupInterval())
	}
}

func TestLoadRejectsInvalidLimit(t *testing.T) {
	t.Setenv("FOLLOWERS_LIMIT", "500")
	if _, err := Load(); err == nil {
		t.Error("expected error")
	}
}
