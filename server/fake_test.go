package server

import (
	"bskyfollowers/bluesky"
	"context"
	"errors"
	"sync"
)

const validPassword = "valid-secret"

type fakeClient struct {
	mu         sync.Mutex
	auth       *bluesky.Auth
	followed   []string
	unfollowed []string

	// followersFailures is how many follower loads fail before one succeeds.
	followersFailures int
}

func newFakeClient() bluesky.Client {
	return &fakeClient{}
}

func strPtr(value string) *string {
	return &value
}

func (c *fakeClient) Login(_ context.Context, identifier string, password string) (*bluesky.Auth, error) {
	if password != validPassword {
		return nil, errors.New("AuthenticationRequired: Invalid identifier or password")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.auth = &bluesky.Auth{Host: "https://pds.example", Did: "did:plc:alice", Handle: identifier}
	copied := *c.auth
	return &copied, nil
}

func (c *fakeClient) Resume(auth *bluesky.Auth) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.auth = auth
}

func (c *fakeClient) Auth() *bluesky.Auth {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.auth
}

func (c *fakeClient) OnRefresh(func(auth *bluesky.Auth)) {}

func (c *fakeClient) GetProfile(_ context.Context, actor string) (*bluesky.Profile, error) {
	return &bluesky.Profile{
		Did:         "did:plc:alice",
		Handle:      actor,
		DisplayName: strPtr("Alice"),
		Avatar:      strPtr("https://cdn.example/alice.jpg"),
	}, nil
}

func (c *fakeClient) GetFollowers(_ context.Context, _ string, _ int64) ([]bluesky.Profile, error) {
	c.mu.Lock()
	if c.followersFailures > 0 {
		c.followersFailures--
		c.mu.Unlock()
		return nil, errors.New("InternalServerError")
	}
	c.mu.Unlock()
	return []bluesky.Profile{
		{
			Did:         "did:plc:bob",
			Handle:      "bob.example",
			DisplayName: strPtr("Bob"),
			Description: strPtr("Bird watcher"),
			Avatar:      strPtr("https://cdn.example/bob.jpg"),
		},
		{
			Did:       "did:plc:carol",
			Handle:    "carol.example",
			Following: strPtr("at://did:plc:alice/app.bsky.graph.follow/3kcarol"),
		},
	}, nil
}

func (c *fakeClient) GetAuthorFeed(_ context.Context, actor string, _ int64) ([]bluesky.FeedItem, error) {
	return []bluesky.FeedItem{
		{
			Uri:       "at://" + actor + "/app.bsky.feed.post/3kpost1",
			Text:      "Spotted a heron today",
			IndexedAt: "2024-01-05T10:00:00.000Z",
		},
	}, nil
}

func (c *fakeClient) Follow(_ context.Context, did string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.followed = append(c.followed, did)
	return "at://did:plc:alice/app.bsky.graph.follow/3k" + did, nil
}

func (c *fakeClient) Unfollow(_ context.Context, followUri string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.unfollowed = append(c.unfollowed, followUri)
	return nil
}
