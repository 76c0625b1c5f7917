package server

import (
	"bskyfollowers/followers"
	"bskyfollowers/session"
	"bskyfollowers/utils"
	"bytes"
	"context"
	"errors"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	log "github.com/sirupsen/logrus"
	"net/http"
	"net/url"
	"strings"
)

type pageData struct {
	User       *session.AuthenticatedUser
	Error      string
	Identifier string
	Loading    bool
	Criteria   followers.Criteria
	Followers  []followers.Record
}

func (s *Server) render(w http.ResponseWriter, status int, data pageData) {
	var buf bytes.Buffer
	if err := s.page.ExecuteTemplate(&buf, "index.html", data); err != nil {
		log.Errorf("Error rendering page: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

func (s *Server) getIndex(w http.ResponseWriter, r *http.Request) {
	data := pageData{}

	sess := s.currentSession(r)
	if sess != nil {
		data.User = sess.Identity.Get()
	}
	if data.User != nil {
		sess.RetryFailedLoad()
		list := sess.Followers()
		data.Criteria = criteriaFromValues(r.URL.Query())
		data.Loading = list.Loading()
		data.Followers = list.Filter(data.Criteria)
	}

	s.render(w, http.StatusOK, data)
}

func (s *Server) postLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		sendError(w, http.StatusBadRequest, "invalid form")
		return
	}
	identifier := strings.TrimSpace(r.PostForm.Get("identifier"))
	password := r.PostForm.Get("password")

	cookie, _ := s.cookies.Get(r, cookieName)
	sess := s.sessionFromCookie(r, cookie)
	created := sess == nil
	if created {
		sess = s.sessions.Create()
	}

	loginErr := s.sessions.Login(r.Context(), sess, identifier, password, sess.StartLoadingFollowers)
	if loginErr != nil && created {
		// Sessions are only kept for browsers that logged in at least once.
		s.sessions.Destroy(r.Context(), sess.ID)
	} else {
		cookie.Values[cookieIdKey] = sess.ID
		if err := cookie.Save(r, w); err != nil {
			log.Errorf("Error saving session cookie: %v", err)
		}
	}

	if loginErr != nil {
		s.render(w, http.StatusUnauthorized, pageData{
			Error:      loginErr.Error(),
			Identifier: identifier,
		})
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) postLogout(w http.ResponseWriter, r *http.Request) {
	cookie, _ := s.cookies.Get(r, cookieName)
	if id, ok := cookie.Values[cookieIdKey].(string); ok {
		s.sessions.Destroy(r.Context(), id)
	}

	delete(cookie.Values, cookieIdKey)
	cookie.Options.MaxAge = -1
	if err := cookie.Save(r, w); err != nil {
		log.Errorf("Error clearing session cookie: %v", err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) postFollow(w http.ResponseWriter, r *http.Request) {
	s.updateFollower(w, r, (*followers.List).Follow)
}

func (s *Server) postUnfollow(w http.ResponseWriter, r *http.Request) {
	s.updateFollower(w, r, (*followers.List).Unfollow)
}

func (s *Server) postTogglePosts(w http.ResponseWriter, r *http.Request) {
	s.updateFollower(w, r, (*followers.List).TogglePosts)
}

// updateFollower applies a follower list operation and sends the browser back
// to the list with the same filters. Remote failures are logged by the list
// and not shown.
func (s *Server) updateFollower(
	w http.ResponseWriter,
	r *http.Request,
	update func(list *followers.List, ctx context.Context, did string) error,
) {
	sess := s.requireSession(w, r)
	if sess == nil {
		return
	}

	did, err := url.PathUnescape(chi.URLParam(r, "did"))
	if err != nil || did == "" {
		sendError(w, http.StatusBadRequest, "invalid did")
		return
	}

	err = update(sess.Followers(), r.Context(), did)
	if errors.Is(err, followers.ErrUnknownFollower) {
		sendError(w, http.StatusNotFound, "follower not found")
		return
	}

	_ = r.ParseForm()
	http.Redirect(w, r, indexURL(criteriaFromValues(r.PostForm)), http.StatusSeeOther)
}

func (s *Server) getFollowersJson(w http.ResponseWriter, r *http.Request) {
	sess := s.requireSession(w, r)
	if sess == nil {
		return
	}

	list := sess.Followers()
	criteria := criteriaFromValues(r.URL.Query())

	w.Header().Set("Content-Type", "application/json")
	jsonResp := utils.ToJson(
		map[string]any{
			"loading":   list.Loading(),
			"criteria":  criteria,
			"followers": list.Filter(criteria),
		},
	)
	w.Write(jsonResp)
}

func (s *Server) currentSession(r *http.Request) *session.Session {
	cookie, _ := s.cookies.Get(r, cookieName)
	return s.sessionFromCookie(r, cookie)
}

func (s *Server) sessionFromCookie(r *http.Request, cookie *sessions.Session) *session.Session {
	if cookie == nil {
		return nil
	}
	id, _ := cookie.Values[cookieIdKey].(string)
	sess, ok := s.sessions.Get(r.Context(), id)
	if !ok {
		return nil
	}
	return sess
}

// requireSession returns the authenticated session of the request, or writes
// a 401 and returns nil.
func (s *Server) requireSession(w http.ResponseWriter, r *http.Request) *session.Session {
	sess := s.currentSession(r)
	if sess == nil || !sess.Authenticated() {
		sendError(w, http.StatusUnauthorized, "not authenticated")
		return nil
	}
	return sess
}
