package bluesky

import (
	"context"
	"fmt"
	comatproto "github.com/bluesky-social/indigo/api/atproto"
	appbsky "github.com/bluesky-social/indigo/api/bsky"
	"github.com/bluesky-social/indigo/atproto/identity"
	"github.com/bluesky-social/indigo/atproto/syntax"
	lexutil "github.com/bluesky-social/indigo/lex/util"
	"github.com/bluesky-social/indigo/xrpc"
	log "github.com/sirupsen/logrus"
	"net/http"
	"sync"
	"time"
)

// XRPCClient talks to a PDS through indigo's generated XRPC bindings.
type XRPCClient struct {
	serviceHost string
	httpClient  *http.Client
	directory   identity.Directory

	refreshMu sync.Mutex

	mu        sync.RWMutex
	client    *xrpc.Client
	onRefresh func(auth *Auth)
}

func NewXRPCClient(serviceHost string) *XRPCClient {
	if serviceHost == "" {
		serviceHost = DefaultServiceHost
	}
	return &XRPCClient{
		serviceHost: serviceHost,
		httpClient:  http.DefaultClient,
		directory:   identity.DefaultDirectory(),
	}
}

func (c *XRPCClient) Login(ctx context.Context, identifier string, password string) (*Auth, error) {
	host := c.resolveHost(ctx, identifier)

	client := &xrpc.Client{
		Client: c.httpClient,
		Host:   host,
	}
	sess, err := comatproto.ServerCreateSession(ctx, client, &comatproto.ServerCreateSession_Input{
		Identifier: identifier,
		Password:   password,
	})
	if err != nil {
		return nil, err
	}

	auth := &Auth{
		Host:       host,
		Did:        sess.Did,
		Handle:     sess.Handle,
		AccessJwt:  sess.AccessJwt,
		RefreshJwt: sess.RefreshJwt,
	}
	c.Resume(auth)
	return auth, nil
}

func (c *XRPCClient) Resume(auth *Auth) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if auth == nil {
		c.client = nil
		return
	}
	c.client = &xrpc.Client{
		Client: c.httpClient,
		Auth: &xrpc.AuthInfo{
			AccessJwt:  auth.AccessJwt,
			RefreshJwt: auth.RefreshJwt,
			Handle:     auth.Handle,
			Did:        auth.Did,
		},
		Host: auth.Host,
	}
}

func (c *XRPCClient) Auth() *Auth {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.client == nil || c.client.Auth == nil {
		return nil
	}
	return &Auth{
		Host:       c.client.Host,
		Did:        c.client.Auth.Did,
		Handle:     c.client.Auth.Handle,
		AccessJwt:  c.client.Auth.AccessJwt,
		RefreshJwt: c.client.Auth.RefreshJwt,
	}
}

func (c *XRPCClient) OnRefresh(handler func(auth *Auth)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onRefresh = handler
}

func (c *XRPCClient) GetProfile(ctx context.Context, actor string) (*Profile, error) {
	var profile *appbsky.ActorDefs_ProfileViewDetailed
	err := c.call(ctx, func(client *xrpc.Client) (err error) {
		profile, err = appbsky.ActorGetProfile(ctx, client, actor)
		return err
	})
	if err != nil {
		return nil, err
	}

	result := &Profile{
		Did:         profile.Did,
		Handle:      profile.Handle,
		DisplayName: profile.DisplayName,
		Description: profile.Description,
		Avatar:      profile.Avatar,
	}
	if profile.Viewer != nil {
		result.Following = profile.Viewer.Following
	}
	return result, nil
}

func (c *XRPCClient) GetFollowers(ctx context.Context, actor string, limit int64) ([]Profile, error) {
	var response *appbsky.GraphGetFollowers_Output
	err := c.call(ctx, func(client *xrpc.Client) (err error) {
		response, err = appbsky.GraphGetFollowers(ctx, client, actor, "", limit)
		return err
	})
	if err != nil {
		return nil, err
	}

	followers := make([]Profile, 0, len(response.Followers))
	for _, follower := range response.Followers {
		if follower == nil {
			continue
		}
		profile := Profile{
			Did:         follower.Did,
			Handle:      follower.Handle,
			DisplayName: follower.DisplayName,
			Description: follower.Description,
			Avatar:      follower.Avatar,
		}
		if follower.Viewer != nil {
			profile.Following = follower.Viewer.Following
		}
		followers = append(followers, profile)
	}
	return followers, nil
}

func (c *XRPCClient) GetAuthorFeed(ctx context.Context, actor string, limit int64) ([]FeedItem, error) {
	var response *appbsky.FeedGetAuthorFeed_Output
	err := c.call(ctx, func(client *xrpc.Client) (err error) {
		response, err = appbsky.FeedGetAuthorFeed(ctx, client, actor, "", "", limit)
		return err
	})
	if err != nil {
		return nil, err
	}

	items := make([]FeedItem, 0, len(response.Feed))
	for _, item := range response.Feed {
		if item == nil || item.Post == nil {
			continue
		}
		text := ""
		if item.Post.Record != nil {
			if post, ok := item.Post.Record.Val.(*appbsky.FeedPost); ok {
				text = post.Text
			} else {
				log.Debugf("Unexpected record type in feed of '%s': %T", actor, item.Post.Record.Val)
			}
		}
		items = append(items, FeedItem{
			Uri:       item.Post.Uri,
			Text:      text,
			IndexedAt: item.Post.IndexedAt,
		})
	}
	return items, nil
}

func (c *XRPCClient) Follow(ctx context.Context, did string) (string, error) {
	follow := &appbsky.GraphFollow{
		LexiconTypeID: FollowCollection,
		CreatedAt:     time.Now().UTC().Format(time.RFC3339),
		Subject:       did,
	}

	var response *comatproto.RepoCreateRecord_Output
	err := c.call(ctx, func(client *xrpc.Client) (err error) {
		response, err = comatproto.RepoCreateRecord(ctx, client, &comatproto.RepoCreateRecord_Input{
			Collection: FollowCollection,
			Repo:       client.Auth.Did,
			Record:     &lexutil.LexiconTypeDecoder{Val: follow},
		})
		return err
	})
	if err != nil {
		return "", err
	}
	return response.Uri, nil
}

func (c *XRPCClient) Unfollow(ctx context.Context, followUri string) error {
	uri, err := syntax.ParseATURI(followUri)
	if err != nil {
		return fmt.Errorf("invalid follow uri %q: %w", followUri, err)
	}
	if uri.Collection().String() != FollowCollection {
		return fmt.Errorf("not a follow record: %s", followUri)
	}

	return c.call(ctx, func(client *xrpc.Client) error {
		err := comatproto.RepoDeleteRecord(ctx, client, &comatproto.RepoDeleteRecord_Input{
			Collection: FollowCollection,
			Repo:       client.Auth.Did,
			Rkey:       uri.RecordKey().String(),
		})
		return err
	})
}

func (c *XRPCClient) authenticated() (*xrpc.Client, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.client == nil {
		return nil, ErrNotAuthenticated
	}
	return c.client, nil
}

// call runs request with the authenticated client. When the access token has
// expired the session is refreshed and the request retried once.
func (c *XRPCClient) call(ctx context.Context, request func(client *xrpc.Client) error) error {
	client, err := c.authenticated()
	if err != nil {
		return err
	}

	err = request(client)
	if !IsExpiredToken(err) {
		return err
	}

	refreshed, refreshErr := c.refresh(ctx, client)
	if refreshErr != nil {
		log.WithFields(ErrorFields(refreshErr)).Errorf("Failed to refresh session: %v", refreshErr)
		return err
	}
	return request(refreshed)
}

func (c *XRPCClient) refresh(ctx context.Context, stale *xrpc.Client) (*xrpc.Client, error) {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	current, err := c.authenticated()
	if err != nil {
		return nil, err
	}
	// Another request refreshed the session while this one waited.
	if current != stale {
		return current, nil
	}

	refreshClient := &xrpc.Client{
		Client: c.httpClient,
		Host:   current.Host,
		Auth: &xrpc.AuthInfo{
			AccessJwt:  current.Auth.RefreshJwt,
			RefreshJwt: current.Auth.RefreshJwt,
			Handle:     current.Auth.Handle,
			Did:        current.Auth.Did,
		},
	}
	sess, err := comatproto.ServerRefreshSession(ctx, refreshClient)
	if err != nil {
		return nil, err
	}

	auth := &Auth{
		Host:       current.Host,
		Did:        sess.Did,
		Handle:     sess.Handle,
		AccessJwt:  sess.AccessJwt,
		RefreshJwt: sess.RefreshJwt,
	}
	c.Resume(auth)
	log.Infof("Refreshed session of '%s'", auth.Handle)

	c.mu.RLock()
	onRefresh := c.onRefresh
	c.mu.RUnlock()
	if onRefresh != nil {
		copied := *auth
		onRefresh(&copied)
	}
	return c.authenticated()
}

// resolveHost finds the PDS of a handle or DID, falling back to the
// configured entryway for anything else (e.g. an email address).
func (c *XRPCClient) resolveHost(ctx context.Context, identifier string) string {
	if c.directory == nil {
		return c.serviceHost
	}
	atIdentifier, err := syntax.ParseAtIdentifier(identifier)
	if err != nil {
		return c.serviceHost
	}
	ident, err := c.directory.Lookup(ctx, *atIdentifier)
	if err != nil {
		log.Infof("Could not resolve '%s', using %s: %v", identifier, c.serviceHost, err)
		return c.serviceHost
	}
	pdsURL := ident.PDSEndpoint()
	if pdsURL == "" {
		return c.serviceHost
	}
	return pdsURL
}
