package server

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/juxtarchive/juxtarchive/internal/config"
	"github.com/juxtarchive/juxtarchive/internal/database"
	"github.com/juxtarchive/juxtarchive/internal/imagehash"
	"github.com/juxtarchive/juxtarchive/internal/model"
)

// Refresher forwards re-fetch hints to the scanner.
// *refresh.Requester satisfies it; tests substitute a recorder.
type Refresher interface {
	Request(kind, id string) error
}

// Server answers archive queries over a JSON HTTP API.
//
// Design decision: The server is read-only against the archive. The only
// write path it touches is the refresh hint to the scanner, which is
// fire-and-forget: a request handler must never block on, or fail
// because of, the crawl side.
type Server struct {
	// db is the archive store queries run against.
	db *database.ArchiveDB

	// similarity ranks stored records against an uploaded image.
	similarity *imagehash.Engine

	// refresher forwards point-lookup hits to the scanner. May be nil.
	refresher Refresher

	// uiLimit is the result cap applied when a query names no limit.
	uiLimit int

	// apiLimit is the hard ceiling for explicit limit parameters.
	apiLimit int

	// maxUploadSize bounds reverse-search image uploads.
	maxUploadSize int64

	// logger records request handling failures.
	logger *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithRefresher attaches the scanner refresh path.
func WithRefresher(r Refresher) Option {
	return func(s *Server) {
		s.refresher = r
	}
}

// WithResultLimits overrides the default and maximum result caps.
func WithResultLimits(ui, api int) Option {
	return func(s *Server) {
		s.uiLimit = ui
		s.apiLimit = api
	}
}

// WithMaxUploadSize bounds reverse-search image uploads.
func WithMaxUploadSize(n int64) Option {
	return func(s *Server) {
		s.maxUploadSize = n
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithSimilarityLimit caps how many results a reverse image search returns.
func WithSimilarityLimit(n int) Option {
	return func(s *Server) {
		s.similarity = imagehash.NewEngine(s.db, n)
	}
}

// New creates a Server reading from db.
func New(db *database.ArchiveDB, opts ...Option) *Server {
	s := &Server{
		db:            db,
		similarity:    imagehash.NewEngine(db, config.DefaultSimilarityLimit),
		uiLimit:       config.DefaultUIResultLimit,
		apiLimit:      config.DefaultAPIResultLimit,
		maxUploadSize: config.DefaultMaxUploadSize,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the HTTP routing table.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.MaxMultipartMemory = s.maxUploadSize

	api := router.Group("/api")
	{
		api.GET("/communities", s.listCommunities)
		api.GET("/posts/:id", s.getPost)
		api.GET("/replies/:id", s.getReply)
		api.GET("/users/:pid", s.getUser)
		api.GET("/users/:pid/score", s.getUserScore)
		api.GET("/top", s.topContent)
		api.GET("/search/content", s.searchContent)
		api.GET("/search/users", s.searchUsers)
		api.POST("/reverse/content", s.reverseContent)
		api.POST("/reverse/miis", s.reverseMiis)
	}

	return router
}

// requestRefresh hints the scanner that a record was just viewed.
// Failures are logged and swallowed; refreshes are advisory.
func (s *Server) requestRefresh(kind, id string) {
	if s.refresher == nil {
		return
	}
	if err := s.refresher.Request(kind, id); err != nil {
		s.logger.Debug("refresh request failed", "kind", kind, "id", id, "error", err)
	}
}

// contentSlice normalizes a possibly-nil result so searches always
// serialize as a JSON array.
func contentSlice(results []model.Content) []model.Content {
	if results == nil {
		return []model.Content{}
	}
	return results
}

// userSlice normalizes a possibly-nil result so searches always
// serialize as a JSON array.
func userSlice(results []model.User) []model.User {
	if results == nil {
		return []model.User{}
	}
	return results
}
