package bluesky

import (
	"context"
)

const (
	DefaultServiceHost = "https://bsky.social"
	FollowCollection   = "app.bsky.graph.follow"
)

// Auth holds the tokens of an authenticated session on a PDS.
type Auth struct {
	Host       string `json:"host"`
	Did        string `json:"did"`
	Handle     string `json:"handle"`
	AccessJwt  string `json:"access_jwt"`
	RefreshJwt string `json:"refresh_jwt"`
}

type Profile struct {
	Did         string
	Handle      string
	DisplayName *string
	Description *string
	Avatar      *string

	// Following is the URI of the viewer's follow record for this account.
	Following *string
}

type FeedItem struct {
	Uri       string
	Text      string
	IndexedAt string
}

// Client is a single account's connection to the social API.
type Client interface {
	Login(ctx context.Context, identifier string, password string) (*Auth, error)
	Resume(auth *Auth)
	Auth() *Auth
	// OnRefresh registers a handler called with the new tokens whenever an
	// expired session is refreshed.
	OnRefresh(handler func(auth *Auth))

	GetProfile(ctx context.Context, actor string) (*Profile, error)
	GetFollowers(ctx context.Context, actor string, limit int64) ([]Profile, error)
	GetAuthorFeed(ctx context.Context, actor string, limit int64) ([]FeedItem, error)
	Follow(ctx context.Context, did string) (string, error)
	Unfollow(ctx context.Context, followUri string) error
}
