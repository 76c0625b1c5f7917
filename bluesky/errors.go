package bluesky

import (
	"errors"
	"github.com/bluesky-social/indigo/xrpc"
	log "github.com/sirupsen/logrus"
)

const expiredTokenError = "ExpiredToken"

var ErrNotAuthenticated = errors.New("not authenticated")

// ErrorFields extracts loggable details from an XRPC failure.
func ErrorFields(err error) log.Fields {
	fields := log.Fields{}

	var bskyErr *xrpc.Error
	if !errors.As(err, &bskyErr) {
		return fields
	}

	fields["status"] = bskyErr.StatusCode
	var wrappedError *xrpc.XRPCError
	if errors.As(bskyErr.Wrapped, &wrappedError) {
		fields["error"] = wrappedError.ErrStr
	}
	if bskyErr.Ratelimit != nil {
		fields["ratelimit_remaining"] = bskyErr.Ratelimit.Remaining
		fields["ratelimit_reset"] = bskyErr.Ratelimit.Reset
	}
	return fields
}

func IsRateLimited(err error) bool {
	var bskyErr *xrpc.Error
	if errors.As(err, &bskyErr) {
		return bskyErr.Ratelimit != nil && bskyErr.Ratelimit.Remaining == 0
	}
	return false
}

// IsExpiredToken reports whether the PDS rejected the access token as expired.
func IsExpiredToken(err error) bool {
	var bskyErr *xrpc.Error
	if !errors.As(err, &bskyErr) {
		return false
	}
	var wrappedError *xrpc.XRPCError
	return errors.As(bskyErr.Wrapped, &wrappedError) && wrappedError.ErrStr == expiredTokenError
}
