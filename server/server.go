package server

import (
	"bskyfollowers/monitoring/middleware"
	"bskyfollowers/session"
	"bskyfollowers/utils"
	"embed"
	"errors"
	"fmt"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"html/template"
	"net/http"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	cookieName  = "bsky_followers"
	cookieIdKey = "id"
)

//go:embed templates/index.html
var templatesFS embed.FS

type Server struct {
	sessions *session.Manager
	cookies  sessions.Store
	webHost  string
	page     *template.Template
	router   chi.Router
}

// NewCookieStore returns the store for the signed browser cookie that carries
// the session id. Without a secret a random one is used, so cookies do not
// survive a restart.
func NewCookieStore(secret string, maxAge int) *sessions.CookieStore {
	if secret == "" {
		log.Warn("SESSION_SECRET not set, using a random secret")
		secret = uuid.NewString() + uuid.NewString()
	}
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

func NewServer(manager *session.Manager, cookies sessions.Store, webHost string) *Server {
	s := &Server{
		sessions: manager,
		cookies:  cookies,
		webHost:  webHost,
	}

	s.page = template.Must(
		template.New("index.html").Funcs(template.FuncMap{
			"deref":      deref,
			"initial":    initial,
			"formatDate": utils.FormatDate,
			"profileURL": s.profileURL,
			"postURL":    s.postURL,
		}).ParseFS(templatesFS, "templates/index.html"),
	)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Get("/", s.getIndex)
	r.Post("/login", s.postLogin)
	r.Post("/logout", s.postLogout)
	r.Route("/followers/{did}", func(r chi.Router) {
		r.Post("/follow", s.postFollow)
		r.Post("/unfollow", s.postUnfollow)
		r.Post("/posts", s.postTogglePosts)
	})
	r.Get("/api/followers", s.getFollowersJson)
	r.Handle("/metrics", promhttp.Handler())
	s.router = r

	return s
}

// Handler returns the router wrapped with request metrics.
func (s *Server) Handler() http.Handler {
	return middleware.NewServerMiddleware(s.router, metricsLabel)
}

func (s *Server) Run(address string) {
	log.Infof("Listening on %s", address)
	err := http.ListenAndServe(address, s.Handler())
	if errors.Is(err, http.ErrServerClosed) {
		fmt.Printf("server closed\n")
	} else if err != nil {
		fmt.Printf("error starting server: %s\n", err)
		os.Exit(1)
	}
}

func (s *Server) profileURL(handle string) string {
	return fmt.Sprintf("https://%s/profile/%s", s.webHost, handle)
}

func (s *Server) postURL(handle string, uri string) string {
	return fmt.Sprintf("%s/post/%s", s.profileURL(handle), utils.RecordKey(uri))
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

// initial is the avatar placeholder: the first letter of the display name, or
// of the handle when there is none.
func initial(displayName *string, handle string) string {
	name := strings.TrimSpace(deref(displayName))
	if name == "" {
		name = handle
	}
	r, _ := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return "?"
	}
	return string(unicode.ToUpper(r))
}

// metricsLabel keeps the label set bounded: follower routes are reported by
// pattern and unknown paths share one label.
func metricsLabel(r *http.Request) string {
	path := r.URL.Path
	switch path {
	case "/", "/login", "/logout", "/api/followers", "/metrics":
		return path
	}
	parts := strings.Split(path, "/")
	if len(parts) == 4 && parts[1] == "followers" {
		switch parts[3] {
		case "follow", "unfollow", "posts":
			return "/followers/{did}/" + parts[3]
		}
	}
	return "other"
}
