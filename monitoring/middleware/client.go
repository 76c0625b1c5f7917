package middleware

import (
	"bskyfollowers/bluesky"
	"bskyfollowers/monitoring"
	"context"
	"github.com/prometheus/client_golang/prometheus"
)

// ClientMiddleware records metrics for every remote call of a bluesky.Client.
type ClientMiddleware struct {
	client bluesky.Client
}

func NewClientMiddleware(clientToWrap bluesky.Client) *ClientMiddleware {
	return &ClientMiddleware{clientToWrap}
}

func (m *ClientMiddleware) observe(method string, call func() error) {
	timer := prometheus.NewTimer(monitoring.ApiCallDuration.WithLabelValues(method))
	err := call()
	timer.ObserveDuration()

	outcome := "success"
	if bluesky.IsRateLimited(err) {
		outcome = "ratelimited"
	} else if err != nil {
		outcome = "error"
	}
	monitoring.ApiCalls.WithLabelValues(method, outcome).Inc()
}

func (m *ClientMiddleware) Login(ctx context.Context, identifier string, password string) (auth *bluesky.Auth, err error) {
	m.observe("login", func() error {
		auth, err = m.client.Login(ctx, identifier, password)
		return err
	})
	return auth, err
}

func (m *ClientMiddleware) Resume(auth *bluesky.Auth) {
	m.client.Resume(auth)
}

func (m *ClientMiddleware) Auth() *bluesky.Auth {
	return m.client.Auth()
}

func (m *ClientMiddleware) OnRefresh(handler func(auth *bluesky.Auth)) {
	m.client.OnRefresh(func(auth *bluesky.Auth) {
		monitoring.ApiCalls.WithLabelValues("refreshSession", "success").Inc()
		handler(auth)
	})
}

func (m *ClientMiddleware) GetProfile(ctx context.Context, actor string) (profile *bluesky.Profile, err error) {
	m.observe("getProfile", func() error {
		profile, err = m.client.GetProfile(ctx, actor)
		return err
	})
	return profile, err
}

func (m *ClientMiddleware) GetFollowers(ctx context.Context, actor string, limit int64) (followers []bluesky.Profile, err error) {
	m.observe("getFollowers", func() error {
		followers, err = m.client.GetFollowers(ctx, actor, limit)
		return err
	})
	return followers, err
}

func (m *ClientMiddleware) GetAuthorFeed(ctx context.Context, actor string, limit int64) (items []bluesky.FeedItem, err error) {
	m.observe("getAuthorFeed", func() error {
		items, err = m.client.GetAuthorFeed(ctx, actor, limit)
		return err
	})
	return items, err
}

func (m *ClientMiddleware) Follow(ctx context.Context, did string) (uri string, err error) {
	m.observe("follow", func() error {
		uri, err = m.client.Follow(ctx, did)
		return err
	})
	return uri, err
}

func (m *ClientMiddleware) Unfollow(ctx context.Context, followUri string) (err error) {
	m.observe("unfollow", func() error {
		err = m.client.Unfollow(ctx, followUri)
		return err
	})
	return err
}
