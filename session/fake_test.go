package session

import (
	"bskyfollowers/bluesky"
	"context"
	"errors"
	"sync"
)

const validPassword = "valid-secret"

var errInvalidCredentials = errors.New("AuthenticationRequired: Invalid identifier or password")

type fakeClient struct {
	mu   sync.Mutex
	auth *bluesky.Auth

	profileErr    error
	followers     []bluesky.Profile
	followersErr  error
	onRefresh     func(auth *bluesky.Auth)
	loginCalls    int
	profileActors []string
}

func newFakeClient() bluesky.Client {
	return &fakeClient{
		followers: []bluesky.Profile{
			{Did: "did:plc:bob", Handle: "bob.example"},
		},
	}
}

func (c *fakeClient) Login(_ context.Context, identifier string, password string) (*bluesky.Auth, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loginCalls++
	if password != validPassword {
		return nil, errInvalidCredentials
	}
	c.auth = &bluesky.Auth{
		Host:       "https://pds.example",
		Did:        "did:plc:alice",
		Handle:     identifier,
		AccessJwt:  "access",
		RefreshJwt: "refresh",
	}
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

func (c *fakeClient) OnRefresh(handler func(auth *bluesky.Auth)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onRefresh = handler
}

// refresh swaps in new tokens the way an expired session refresh does.
func (c *fakeClient) refresh(accessJwt string) {
	c.mu.Lock()
	auth := *c.auth
	auth.AccessJwt = accessJwt
	c.auth = &auth
	handler := c.onRefresh
	c.mu.Unlock()

	if handler != nil {
		handler(&auth)
	}
}

func (c *fakeClient) GetProfile(_ context.Context, actor string) (*bluesky.Profile, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.profileActors = append(c.profileActors, actor)
	if c.profileErr != nil {
		return nil, c.profileErr
	}
	displayName := "Alice"
	return &bluesky.Profile{Did: "did:plc:alice", Handle: actor, DisplayName: &displayName}, nil
}

func (c *fakeClient) GetFollowers(_ context.Context, _ string, _ int64) ([]bluesky.Profile, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.followersErr != nil {
		return nil, c.followersErr
	}
	return c.followers, nil
}

func (c *fakeClient) GetAuthorFeed(_ context.Context, _ string, _ int64) ([]bluesky.FeedItem, error) {
	return nil, nil
}

func (c *fakeClient) Follow(_ context.Context, did string) (string, error) {
	return "at://did:plc:alice/app.bsky.graph.follow/" + did, nil
}

func (c *fakeClient) Unfollow(_ context.Context, _ string) error {
	return nil
}
