package http

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/csrf"
	"github.com/gorilla/mux"
	"golang.org/x/oauth2"

	"chatter/cache"
	"chatter/crud"
	"chatter/domain"
)

// Server provides most of the http functionality of this app, namely
// routing, request handling, and middleware. It also performs
// authentication and authorization before handing things over to one of
// the crud services.
type Server struct {
	router    *mux.Router
	us        domain.UserService
	os        domain.OAuthService
	ps        domain.PostService
	cs        domain.CommentService
	fs        domain.FollowService
	ls        domain.LikeService
	bs        domain.BookmarkService
	feeds     domain.FeedService
	is        domain.ImageService
	github    *oauth2.Config
	pageCache *cache.Cache
	clientURL string
}

// NewServer returns a new instance of the server, registers all necessary
// routes and gives their handlers access to the app services passed in.
func NewServer(isProd bool, clientURL, csrfKey string, github *oauth2.Config, services *crud.Services, pageCache *cache.Cache) *Server {
	s := &Server{
		router:    mux.NewRouter(),
		us:        services.User,
		os:        services.OAuth,
		ps:        services.Post,
		cs:        services.Comment,
		fs:        services.Follow,
		ls:        services.Like,
		bs:        services.Bookmark,
		feeds:     services.Feed,
		is:        services.Image,
		github:    github,
		pageCache: pageCache,
		clientURL: clientURL,
	}

	// Register routes of the auth system.
	s.registerAuthRoutes(s.router)
	s.registerOAuthRoutes(s.router)

	// Register routes of the content system.
	s.registerUserRoutes(s.router)
	s.registerPostRoutes(s.router)
	s.registerFeedRoutes(s.router)
	s.registerFollowRoutes(s.router)
	s.registerLikeRoutes(s.router)
	s.registerBookmarkRoutes(s.router)
	s.registerImageRoutes(s.router)

	// Set up middleware that needs to run on every request. A new CSRF
	// token is issued when the client first hits a safe route.
	csrfMw := csrf.Protect([]byte(csrfKey), csrf.Secure(isProd), csrf.Path("/"))
	s.router.Use(csrfMw, setContentTypeJSON, s.checkUser)
	return s
}

// The setContentTypeJSON middleware sets the content type to "application/json".
func setContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// Run starts to listen and serve on the specified port.
func (s *Server) Run(port int) {
	log.Printf("[http] listening on :%d", port)
	log.Fatal(http.ListenAndServe(":"+strconv.Itoa(port), s.router))
}
