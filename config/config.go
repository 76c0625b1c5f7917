package config

import (
	"fmt"
	"github.com/spf13/viper"
	"time"
)

type Config struct {
	ServerAddress string `mapstructure:"SERVER_ADDRESS"`

	ServiceHost    string `mapstructure:"BSKY_SERVICE_HOST"`
	WebHost        string `mapstructure:"BSKY_WEB_HOST"`
	FollowersLimit int64  `mapstructure:"FOLLOWERS_LIMIT"`

	SessionSecret         string `mapstructure:"SESSION_SECRET"`
	SessionIdleMinutes    int    `mapstructure:"SESSION_IDLE_MINUTES"`
	SessionCleanupMinutes int    `mapstructure:"SESSION_CLEANUP_MINUTES"`

	RedisHost     string `mapstructure:"REDIS_HOST"`
	RedisPort     string `mapstructure:"REDIS_PORT"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`

	LogLevel string `mapstructure:"LOG_LEVEL"`
}

func Load() (Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_ADDRESS", ":3333")
	v.SetDefault("BSKY_SERVICE_HOST", "https://bsky.social")
	v.SetDefault("BSKY_WEB_HOST", "bsky.app")
	v.SetDefault("FOLLOWERS_LIMIT", 50)
	v.SetDefault("SESSION_SECRET", "")
	v.SetDefault("SESSION_IDLE_MINUTES", 720)
	v.SetDefault("SESSION_CLEANUP_MINUTES", 10)
	v.SetDefault("REDIS_HOST", "")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("LOG_LEVEL", "warn")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse configuration: %w", err)
	}
	if cfg.FollowersLimit < 1 || cfg.FollowersLimit > 100 {
		return Config{}, fmt.Errorf("FOLLOWERS_LIMIT must be between 1 and 100, got %d", cfg.FollowersLimit)
	}
	return cfg, nil
}

// RedisEnabled reports whether sessions are persisted to redis.
func (c Config) RedisEnabled() bool {
	return c.RedisHost != ""
}

func (c Config) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}

func (c Config) SessionIdle() time.Duration {
	return time.Duration(c.SessionIdleMinutes) * time.Minute
}

func (c Config) SessionCleanupInterval() time.Duration {
	return time.Duration(c.SessionCleanupMinutes) * time.Minute
}
