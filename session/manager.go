package session

import (
	"bskyfollowers/bluesky"
	"bskyfollowers/followers"
	"context"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"sync"
	"time"
)

// Snapshot is what a Backend keeps to resume a session after a restart.
type Snapshot struct {
	User *AuthenticatedUser `json:"user"`
	Auth *bluesky.Auth      `json:"auth"`
}

type Backend interface {
	Save(ctx context.Context, id string, snapshot Snapshot) error
	Load(ctx context.Context, id string) (Snapshot, bool)
	Delete(ctx context.Context, id string)
}

type ClientFactory func() bluesky.Client

// Session is the state of one browser: who is logged in, the API client
// acting on their behalf and their follower list.
type Session struct {
	ID       string
	Identity *Identity
	Client   bluesky.Client

	followersLimit int64
	loginMu        sync.Mutex

	mu        sync.Mutex
	followers *followers.List
	lastSeen  time.Time
}

func (s *Session) Followers() *followers.List {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.followers
}

func (s *Session) Authenticated() bool {
	return s.Identity.Get() != nil
}

// LoadFollowers fetches the followers of the authenticated account.
func (s *Session) LoadFollowers(ctx context.Context) error {
	auth := s.Client.Auth()
	if auth == nil {
		return bluesky.ErrNotAuthenticated
	}
	return s.Followers().Load(ctx, auth.Did)
}

// StartLoadingFollowers runs LoadFollowers in the background. Errors are
// logged by the follower list.
func (s *Session) StartLoadingFollowers() {
	go func() {
		_ = s.LoadFollowers(context.Background())
	}()
}

// RetryFailedLoad starts a new background load when the last one failed and
// the retry interval has passed.
func (s *Session) RetryFailedLoad() bool {
	user := s.Identity.Get()
	if user == nil || s.Client.Auth() == nil || !s.Followers().ClaimRetry() {
		return false
	}
	log.Infof("Retrying follower load of '%s'", user.Handle)
	s.StartLoadingFollowers()
	return true
}

func (s *Session) resetFollowers() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.followers = followers.NewList(s.Client, s.followersLimit)
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = now
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}

type Manager struct {
	newClient      ClientFactory
	backend        Backend
	followersLimit int64
	now            func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager builds a session manager. backend may be nil, in which case
// sessions only live in memory.
func NewManager(newClient ClientFactory, backend Backend, followersLimit int64) *Manager {
	return &Manager{
		newClient:      newClient,
		backend:        backend,
		followersLimit: followersLimit,
		now:            time.Now,
		sessions:       make(map[string]*Session),
	}
}

func (m *Manager) newSession(id string) *Session {
	s := &Session{
		ID:             id,
		Identity:       NewIdentity(),
		Client:         m.newClient(),
		followersLimit: m.followersLimit,
		lastSeen:       m.now(),
	}
	s.resetFollowers()
	s.Client.OnRefresh(func(_ *bluesky.Auth) {
		m.save(context.Background(), s)
	})
	return s
}

func (m *Manager) Create() *Session {
	s := m.newSession(uuid.NewString())

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return s
}

// Get returns the session with the given id, resuming it from the backend
// when it is not in memory.
func (m *Manager) Get(ctx context.Context, id string) (*Session, bool) {
	if id == "" {
		return nil, false
	}

	m.mu.Lock()
	s, ok := m.sessions[id]
	m.mu.Unlock()
	if ok {
		s.touch(m.now())
		return s, true
	}

	if m.backend == nil {
		return nil, false
	}
	snapshot, ok := m.backend.Load(ctx, id)
	if !ok || snapshot.User == nil || snapshot.Auth == nil {
		return nil, false
	}

	s = m.newSession(id)
	s.Client.Resume(snapshot.Auth)
	s.Identity.Set(snapshot.User)

	m.mu.Lock()
	if existing, ok := m.sessions[id]; ok {
		m.mu.Unlock()
		return existing, true
	}
	m.sessions[id] = s
	m.mu.Unlock()

	log.Infof("Resumed session of '%s'", snapshot.User.Handle)
	s.StartLoadingFollowers()
	return s, true
}

// Login runs the login operation for a session. A successful login replaces
// the follower list and persists the session; a failed one clears it.
func (m *Manager) Login(ctx context.Context, s *Session, identifier string, password string, onSuccess func()) error {
	s.loginMu.Lock()
	defer s.loginMu.Unlock()

	err := Login(ctx, s.Identity, s.Client, identifier, password, func() {
		s.resetFollowers()
		m.save(ctx, s)
		if onSuccess != nil {
			onSuccess()
		}
	})
	if err != nil {
		s.Client.Resume(nil)
		s.resetFollowers()
		if m.backend != nil {
			m.backend.Delete(ctx, s.ID)
		}
	}
	return err
}

func (m *Manager) save(ctx context.Context, s *Session) {
	if m.backend == nil {
		return
	}
	snapshot := Snapshot{
		User: s.Identity.Get(),
		Auth: s.Client.Auth(),
	}
	if err := m.backend.Save(ctx, s.ID, snapshot); err != nil {
		log.Errorf("Error saving session: %v", err)
	}
}

func (m *Manager) Destroy(ctx context.Context, id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()

	if m.backend != nil {
		m.backend.Delete(ctx, id)
	}
}

// CleanIdle drops in-memory sessions unused for longer than maxIdle and
// returns how many were dropped. Persisted snapshots expire on their own.
func (m *Manager) CleanIdle(maxIdle time.Duration) int {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, s := range m.sessions {
		if s.idleSince(now) > maxIdle {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
