package followers

import (
	"bskyfollowers/bluesky"
	"context"
	"errors"
	log "github.com/sirupsen/logrus"
	"sync"
	"time"
)

const (
	DefaultFollowersLimit = 50
	PostsLimit            = 5
)

var ErrUnknownFollower = errors.New("unknown follower")

// LoadRetryInterval is how long a failed load is kept before ClaimRetry
// allows another attempt.
var LoadRetryInterval = 30 * time.Second

// API is the part of the social API the follower list depends on.
type API interface {
	GetFollowers(ctx context.Context, actor string, limit int64) ([]bluesky.Profile, error)
	GetAuthorFeed(ctx context.Context, actor string, limit int64) ([]bluesky.FeedItem, error)
	Follow(ctx context.Context, did string) (string, error)
	Unfollow(ctx context.Context, followUri string) error
}

// List is the follower collection of one authenticated account together with
// the per-record UI state. The mutex is never held across remote calls.
type List struct {
	api            API
	followersLimit int64

	now func() time.Time

	mu       sync.Mutex
	records  []*Record
	index    map[string]*Record
	loading  bool
	failedAt time.Time
}

func NewList(api API, followersLimit int64) *List {
	if followersLimit <= 0 {
		followersLimit = DefaultFollowersLimit
	}
	return &List{
		api:            api,
		followersLimit: followersLimit,
		now:            time.Now,
		index:          make(map[string]*Record),
		loading:        true,
	}
}

// Load replaces the collection with the followers of actor. On failure the
// collection is left empty.
func (l *List) Load(ctx context.Context, actor string) error {
	l.mu.Lock()
	l.loading = true
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		l.loading = false
		l.mu.Unlock()
	}()

	profiles, err := l.api.GetFollowers(ctx, actor, l.followersLimit)
	if err != nil {
		log.WithFields(bluesky.ErrorFields(err)).Errorf("Failed to load followers: %v", err)
		l.replace(nil)
		l.setFailedAt(l.now())
		return err
	}

	l.replace(profiles)
	l.setFailedAt(time.Time{})
	return nil
}

func (l *List) setFailedAt(t time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failedAt = t
}

// ClaimRetry reports whether the last load failed at least LoadRetryInterval
// ago. When it did, the list is marked as loading so that a single caller
// retries.
func (l *List) ClaimRetry() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.loading || l.failedAt.IsZero() || l.now().Sub(l.failedAt) < LoadRetryInterval {
		return false
	}
	l.loading = true
	return true
}

func (l *List) replace(profiles []bluesky.Profile) {
	records := make([]*Record, 0, len(profiles))
	index := make(map[string]*Record, len(profiles))
	for _, profile := range profiles {
		if _, ok := index[profile.Did]; ok {
			log.Warnf("Duplicate follower '%s' skipped", profile.Did)
			continue
		}
		record := recordFromProfile(profile)
		records = append(records, &record)
		index[record.Did] = &record
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = records
	l.index = index
}

// Follow creates a follow relation and records the confirmed follow record
// URI on the follower.
func (l *List) Follow(ctx context.Context, did string) error {
	l.mu.Lock()
	_, ok := l.index[did]
	l.mu.Unlock()
	if !ok {
		return ErrUnknownFollower
	}

	followUri, err := l.api.Follow(ctx, did)
	if err != nil {
		log.WithFields(bluesky.ErrorFields(err)).Errorf("Failed to follow '%s': %v", did, err)
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if record, ok := l.index[did]; ok {
		record.FollowingRelation = &followUri
	}
	return nil
}

// Unfollow deletes the viewer's follow record for did. It does nothing when
// the follower is not followed.
func (l *List) Unfollow(ctx context.Context, did string) error {
	l.mu.Lock()
	record, ok := l.index[did]
	var followUri string
	if ok && record.IsFollowing() {
		followUri = *record.FollowingRelation
	}
	l.mu.Unlock()
	if !ok {
		return ErrUnknownFollower
	}
	if followUri == "" {
		return nil
	}

	if err := l.api.Unfollow(ctx, followUri); err != nil {
		log.WithFields(bluesky.ErrorFields(err)).Errorf("Failed to unfollow '%s': %v", did, err)
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if record, ok := l.index[did]; ok {
		record.FollowingRelation = nil
	}
	return nil
}

// TogglePosts expands or collapses the recent posts of a follower, fetching
// them the first time. A toggle while the same follower's posts are being
// fetched is ignored.
func (l *List) TogglePosts(ctx context.Context, did string) error {
	l.mu.Lock()
	record, ok := l.index[did]
	if !ok || record.PostsLoading {
		l.mu.Unlock()
		return nil
	}
	if record.Posts != nil {
		record.PostsExpanded = !record.PostsExpanded
		l.mu.Unlock()
		return nil
	}
	record.PostsLoading = true
	l.mu.Unlock()

	items, err := l.api.GetAuthorFeed(ctx, did, PostsLimit)

	l.mu.Lock()
	defer l.mu.Unlock()

	// The collection may have been reloaded while the feed was in flight.
	record, ok = l.index[did]
	if !ok {
		return nil
	}
	record.PostsLoading = false
	if err != nil {
		log.WithFields(bluesky.ErrorFields(err)).Errorf("Failed to load posts of '%s': %v", did, err)
		return err
	}

	if len(items) > PostsLimit {
		items = items[:PostsLimit]
	}
	posts := make([]Post, len(items))
	for i, item := range items {
		posts[i] = Post{
			Uri:       item.Uri,
			Text:      item.Text,
			IndexedAt: item.IndexedAt,
		}
	}
	record.Posts = posts
	record.PostsExpanded = true
	return nil
}

func (l *List) Loading() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loading
}

// Records returns a snapshot of the whole collection.
func (l *List) Records() []Record {
	l.mu.Lock()
	defer l.mu.Unlock()

	result := make([]Record, len(l.records))
	for i, record := range l.records {
		result[i] = record.clone()
	}
	return result
}

func (l *List) Get(did string) (Record, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	record, ok := l.index[did]
	if !ok {
		return Record{}, false
	}
	return record.clone(), true
}

func (l *List) Filter(criteria Criteria) []Record {
	return Apply(l.Records(), criteria)
}
