package tasks

import (
	"bskyfollowers/monitoring"
	"bskyfollowers/session"
	log "github.com/sirupsen/logrus"
	"time"
)

func CleanIdleSessions(sessionManager *session.Manager, maxIdle time.Duration, interval time.Duration) {
	for {
		select {
		case <-time.After(interval):
			cleanIdleSessions(sessionManager, maxIdle)
		}
	}
}

func cleanIdleSessions(sessionManager *session.Manager, maxIdle time.Duration) {
	if removed := sessionManager.CleanIdle(maxIdle); removed > 0 {
		log.Infof("Removed %d idle sessions", removed)
	}
	monitoring.ActiveSessions.Set(float64(sessionManager.Len()))
}
