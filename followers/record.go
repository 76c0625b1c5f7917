package followers

import (
	"bskyfollowers/bluesky"
)

type Post struct {
	Uri       string `json:"uri"`
	Text      string `json:"text"`
	IndexedAt string `json:"indexedAt"`
}

type Record struct {
	Did               string  `json:"did"`
	Handle            string  `json:"handle"`
	DisplayName       *string `json:"displayName,omitempty"`
	Description       *string `json:"description,omitempty"`
	Avatar            *string `json:"avatar,omitempty"`
	FollowingRelation *string `json:"following,omitempty"`

	// Posts stays nil until the author feed has been fetched.
	Posts         []Post `json:"posts,omitempty"`
	PostsExpanded bool   `json:"postsExpanded"`
	PostsLoading  bool   `json:"postsLoading"`
}

func recordFromProfile(profile bluesky.Profile) Record {
	return Record{
		Did:               profile.Did,
		Handle:            profile.Handle,
		DisplayName:       profile.DisplayName,
		Description:       profile.Description,
		Avatar:            profile.Avatar,
		FollowingRelation: profile.Following,
	}
}

func (r *Record) IsFollowing() bool {
	return r.FollowingRelation != nil && *r.FollowingRelation != ""
}

func (r *Record) clone() Record {
	c := *r
	if r.Posts != nil {
		c.Posts = append([]Post(nil), r.Posts...)
	}
	return c
}
