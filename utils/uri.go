package utils

import (
	"github.com/bluesky-social/indigo/atproto/syntax"
	"strings"
)

// RecordKey returns the record key of an AT-URI, falling back to the last
// path segment when the value does not parse.
func RecordKey(uri string) string {
	if aturi, err := syntax.ParseATURI(uri); err == nil {
		if rkey := aturi.RecordKey().String(); rkey != "" {
			return rkey
		}
	}
	parts := strings.Split(uri, "/")
	return parts[len(parts)-1]
}
