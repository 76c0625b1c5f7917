package session

import (
	"bskyfollowers/bluesky"
	"context"
	"errors"
	log "github.com/sirupsen/logrus"
)

var ErrLoginFailed = errors.New("Login failed. Please check your credentials.")

// Authenticator is the part of the social API used to log in.
type Authenticator interface {
	Login(ctx context.Context, identifier string, password string) (*bluesky.Auth, error)
	GetProfile(ctx context.Context, actor string) (*bluesky.Profile, error)
}

// Login authenticates and then loads the profile of the returned handle. On
// any failure the identity is cleared and ErrLoginFailed is returned; on
// success the identity is set and onSuccess is called once.
func Login(
	ctx context.Context,
	identity *Identity,
	authenticator Authenticator,
	identifier string,
	password string,
	onSuccess func(),
) error {
	auth, err := authenticator.Login(ctx, identifier, password)
	if err == nil && (auth == nil || auth.Handle == "") {
		err = errors.New("empty session returned")
	}
	if err != nil {
		log.WithFields(bluesky.ErrorFields(err)).Errorf("Login error for '%s': %v", identifier, err)
		identity.Set(nil)
		return ErrLoginFailed
	}

	profile, err := authenticator.GetProfile(ctx, auth.Handle)
	if err != nil {
		log.WithFields(bluesky.ErrorFields(err)).Errorf("Login error fetching profile of '%s': %v", auth.Handle, err)
		identity.Set(nil)
		return ErrLoginFailed
	}

	identity.Set(&AuthenticatedUser{
		Handle:      profile.Handle,
		DisplayName: profile.DisplayName,
		Avatar:      profile.Avatar,
	})

	if onSuccess != nil {
		onSuccess()
	}
	return nil
}
