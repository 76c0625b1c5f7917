package main

import (
	"bskyfollowers/bluesky"
	"bskyfollowers/config"
	"bskyfollowers/monitoring/middleware"
	"bskyfollowers/server"
	"bskyfollowers/session"
	"bskyfollowers/tasks"
	"bskyfollowers/utils"
	"context"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"math"
)

func runBackgroundTasks(cfg config.Config, sessionManager *session.Manager) {
	// Idle session cleanup
	go utils.Recoverer(math.MaxInt, 1, func() {
		tasks.CleanIdleSessions(sessionManager, cfg.SessionIdle(), cfg.SessionCleanupInterval())
	})
}

func newSessionBackend(cfg config.Config) session.Backend {
	if !cfg.RedisEnabled() {
		log.Warn("REDIS_HOST not set, sessions will not survive a restart")
		return nil
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.RedisPassword,
		DB:       0, // use default DB
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Errorf("Error connecting to redis at %s: %v", cfg.RedisAddr(), err)
	}
	return session.NewRedisBackend(redisClient, cfg.SessionIdle())
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = log.WarnLevel
	}
	log.SetLevel(level)

	sessionManager := session.NewManager(
		func() bluesky.Client {
			return middleware.NewClientMiddleware(bluesky.NewXRPCClient(cfg.ServiceHost))
		},
		newSessionBackend(cfg),
		cfg.FollowersLimit,
	)

	cookieStore := server.NewCookieStore(cfg.SessionSecret, int(cfg.SessionIdle().Seconds()))
	s := server.NewServer(sessionManager, cookieStore, cfg.WebHost)

	// Run background tasks
	runBackgroundTasks(cfg, sessionManager)

	s.Run(cfg.ServerAddress)
}
