package session

import (
	"sync"
)

// AuthenticatedUser is the display identity of the logged in account.
type AuthenticatedUser struct {
	Handle      string  `json:"handle"`
	DisplayName *string `json:"display_name,omitempty"`
	Avatar      *string `json:"avatar,omitempty"`
}

// Identity holds the authenticated user of one browser session. It is absent
// until a login succeeds and is cleared again by a failed login.
type Identity struct {
	mu   sync.RWMutex
	user *AuthenticatedUser
}

func NewIdentity() *Identity {
	return &Identity{}
}

func (i *Identity) Set(user *AuthenticatedUser) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if user == nil {
		i.user = nil
		return
	}
	copied := *user
	i.user = &copied
}

func (i *Identity) Get() *AuthenticatedUser {
	i.mu.RLock()
	defer i.mu.RUnlock()

	if i.user == nil {
		return nil
	}
	copied := *i.user
	return &copied
}
