package followers

import (
	"bskyfollowers/bluesky"
	"context"
	"errors"
	"sync"
)

var errRemote = errors.New("remote failure")

type fakeAPI struct {
	mu sync.Mutex

	followers    []bluesky.Profile
	followersErr error
	feed         []bluesky.FeedItem
	feedErr      error
	followErr    error
	unfollowErr  error

	feedCalls     int
	feedLimit     int64
	followCalls   []string
	unfollowCalls []string

	// feedStarted/feedRelease let tests hold a feed request in flight.
	feedStarted chan struct{}
	feedRelease chan struct{}
}

func (f *fakeAPI) GetFollowers(_ context.Context, _ string, _ int64) ([]bluesky.Profile, error) {
	if f.followersErr != nil {
		return nil, f.followersErr
	}
	return f.followers, nil
}

func (f *fakeAPI) GetAuthorFeed(_ context.Context, _ string, limit int64) ([]bluesky.FeedItem, error) {
	f.mu.Lock()
	f.feedCalls++
	f.feedLimit = limit
	f.mu.Unlock()

	if f.feedStarted != nil {
		f.feedStarted <- struct{}{}
		<-f.feedRelease
	}
	if f.feedErr != nil {
		return nil, f.feedErr
	}
	return f.feed, nil
}

func (f *fakeAPI) Follow(_ context.Context, did string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.followCalls = append(f.followCalls, did)
	if f.followErr != nil {
		return "", f.followErr
	}
	return "at://did:plc:viewer/app.bsky.graph.follow/" + did[len("did:plc:"):], nil
}

func (f *fakeAPI) Unfollow(_ context.Context, followUri string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unfollowCalls = append(f.unfollowCalls, followUri)
	return f.unfollowErr
}

func (f *fakeAPI) FeedCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.feedCalls
}

func strPtr(s string) *string {
	return &s
}
