package config

import (
	"net/url"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These values mirror the behavior of the archived platform's web frontend
// where applicable (page size, result caps) and are otherwise conservative.
const (
	// DefaultPageSize is the number of posts per listing page on the source
	// platform. The "more" endpoint advances its offset in steps of this
	// size, so the scanner must use the same stride.
	DefaultPageSize = 10

	// DefaultUIResultLimit caps search queries issued on behalf of the
	// HTML-facing endpoints. Fifty results fill a results page without
	// scanning a meaningful fraction of the corpus.
	DefaultUIResultLimit = 50

	// DefaultAPIResultLimit caps search queries issued by the JSON API.
	// API consumers paginate client-side, so the cap is more generous.
	DefaultAPIResultLimit = 500

	// DefaultSimilarityLimit is the number of nearest neighbors returned by
	// reverse image searches.
	DefaultSimilarityLimit = 50

	// DefaultTimeout is the per-request timeout for platform fetches.
	// The platform renders listings server-side and responds quickly; a
	// request that takes longer than this is not going to succeed.
	DefaultTimeout = 30 * time.Second

	// DefaultListenAddr is the query server's HTTP listen address.
	DefaultListenAddr = ":5012"

	// DefaultRefreshAddr is the UDP address of the crawler's live-update
	// listener. Loopback only: the channel carries no authentication and
	// the two processes are co-located.
	DefaultRefreshAddr = "127.0.0.1:5013"

	// DefaultMaxUploadSize limits reverse-search image uploads.
	DefaultMaxUploadSize = 10 * 1024 * 1024 // 10MB

	// DefaultMaxImageBytes limits how much of a platform image is read when
	// computing its perceptual hash at ingestion time.
	DefaultMaxImageBytes = 10 * 1024 * 1024 // 10MB

	// DefaultUserAgent identifies juxtarchive in HTTP requests.
	DefaultUserAgent = "juxtarchive/1.0 (+https://github.com/juxtarchive/juxtarchive)"

	// DefaultProbeMaxOffset is the upper bound of the pagination probe's
	// binary search. No community on the platform approaches this many posts.
	DefaultProbeMaxOffset = 100000

	// ProbeEpsilon is the interval width at which the probe's binary search
	// stops. Below one item of precision there is nothing left to learn.
	ProbeEpsilon = 0.6

	// AppName is the application name used for XDG directory paths.
	AppName = "juxtarchive"
)

// Config holds all configuration options for juxtarchive.
// This struct is populated from CLI flags and the optional YAML config file,
// then passed through the application via dependency injection rather than
// global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., CrawlConfig, ServeConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant benefit.
type Config struct {
	// BaseURL is the root URL of the platform frontend to archive.
	// All resource paths (community listings, threads, user pages) are
	// resolved relative to it.
	BaseURL string

	// DBDir is the directory holding the SQLite database file.
	// Defaults to the XDG data directory (~/.local/share/juxtarchive on Linux).
	DBDir string

	// PageSize is the listing page stride used by the scanner and the probe.
	PageSize int

	// UIResultLimit caps HTML-facing search queries.
	UIResultLimit int

	// APIResultLimit caps JSON API search queries.
	//
	// The two caps exist because the original frontend and API disagreed on
	// the limit; keeping both configurable avoids baking in either value.
	APIResultLimit int

	// SimilarityLimit is the number of results returned by reverse image search.
	SimilarityLimit int

	// Timeout is the per-request timeout for platform fetches.
	Timeout time.Duration

	// ListenAddr is the query server's HTTP listen address.
	ListenAddr string

	// RefreshAddr is the UDP address of the crawler's live-update listener.
	RefreshAddr string

	// MaxUploadSize limits reverse-search image uploads in bytes.
	MaxUploadSize int64

	// MaxImageBytes limits image downloads during hash computation.
	MaxImageBytes int64

	// UserAgent is the User-Agent header sent with platform requests.
	UserAgent string

	// ProbeMaxOffset is the upper bound for the pagination probe.
	ProbeMaxOffset int

	// Verbose enables slog.LevelDebug output. When false, Info and above.
	Verbose bool
}

// NewConfig creates a new Config with default values.
// BaseURL has no default and must be provided by a flag or the config file.
//
// Design decision: We use a constructor function instead of relying on
// zero values because most defaults are non-zero (page size, caps, ports).
// This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		DBDir:           XDGDataDir(),
		PageSize:        DefaultPageSize,
		UIResultLimit:   DefaultUIResultLimit,
		APIResultLimit:  DefaultAPIResultLimit,
		SimilarityLimit: DefaultSimilarityLimit,
		Timeout:         DefaultTimeout,
		ListenAddr:      DefaultListenAddr,
		RefreshAddr:     DefaultRefreshAddr,
		MaxUploadSize:   DefaultMaxUploadSize,
		MaxImageBytes:   DefaultMaxImageBytes,
		UserAgent:       DefaultUserAgent,
		ProbeMaxOffset:  DefaultProbeMaxOffset,
	}
}

// XDGDataDir returns the XDG data directory for juxtarchive.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.local/share/juxtarchive
// On macOS: ~/Library/Application Support/juxtarchive
// On Windows: %LOCALAPPDATA%\juxtarchive
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for juxtarchive.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before anything opens sockets
// or database files. We return the first error found rather than
// collecting all errors because fixing one often makes others irrelevant.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return ErrNoBaseURL
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidBaseURL
	}

	if c.PageSize <= 0 {
		return ErrInvalidPageSize
	}

	if c.UIResultLimit <= 0 || c.APIResultLimit <= 0 || c.SimilarityLimit <= 0 {
		return ErrInvalidResultLimit
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.ProbeMaxOffset <= 0 {
		return ErrInvalidProbeOffset
	}

	return nil
}
