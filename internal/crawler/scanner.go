package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/juxtarchive/juxtarchive/internal/config"
	"github.com/juxtarchive/juxtarchive/internal/database"
	"github.com/juxtarchive/juxtarchive/internal/extract"
	"github.com/juxtarchive/juxtarchive/internal/model"
)

// Adapter fetches platform pages and turns them into records.
// *extract.Client satisfies it; tests substitute a fake.
type Adapter interface {
	// FetchCommunities returns the platform's community directory.
	FetchCommunities(ctx context.Context) ([]model.Community, error)

	// FetchPage returns one page of a community's newest-first listing.
	// Returns extract.ErrEndOfData past the last page.
	FetchPage(ctx context.Context, communityID string, offset int) ([]model.Post, error)

	// FetchThread returns a post with its current counts and all replies.
	FetchThread(ctx context.Context, postID string) (*model.Post, []model.Reply, error)

	// FetchUser returns one user's profile record.
	FetchUser(ctx context.Context, pid int64) (*model.User, error)
}

// Scanner walks every community in an endless loop and archives what it
// finds. One Scanner owns the whole crawl: communities are scanned
// sequentially, so the database only ever has one writer.
//
// Design decision: A single sequential scanner instead of a worker pool
// because:
//  1. The platform is a static archive mirror; request ordering, not
//     throughput, is what matters for cursor correctness
//  2. Sequential passes make the stop cursor a plain per-pass value with
//     no coordination
//  3. Refresh requests can be serviced between scans on the same
//     goroutine without locking the database layer
type Scanner struct {
	// adapter fetches and parses platform pages.
	adapter Adapter

	// db is the archive store all records land in.
	db *database.ArchiveDB

	// refresh delivers out-of-band re-fetch requests. May be nil.
	refresh <-chan model.RefreshRequest

	// pageSize is the listing page stride.
	pageSize int

	// logger records scan progress and item-level failures.
	logger *slog.Logger
}

// ScannerOption configures a Scanner.
type ScannerOption func(*Scanner)

// WithPageSize overrides the listing page stride.
func WithPageSize(n int) ScannerOption {
	return func(s *Scanner) {
		s.pageSize = n
	}
}

// WithRefreshChannel attaches a channel of refresh requests. The scanner
// drains it between community scans.
func WithRefreshChannel(ch <-chan model.RefreshRequest) ScannerOption {
	return func(s *Scanner) {
		s.refresh = ch
	}
}

// WithLogger sets the scan logger.
func WithLogger(logger *slog.Logger) ScannerOption {
	return func(s *Scanner) {
		s.logger = logger
	}
}

// NewScanner creates a Scanner archiving into db.
func NewScanner(adapter Adapter, db *database.ArchiveDB, opts ...ScannerOption) *Scanner {
	s := &Scanner{
		adapter:  adapter,
		db:       db,
		pageSize: config.DefaultPageSize,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run discovers communities and scans them in an endless sequential loop
// until ctx is cancelled. Between community scans it drains any pending
// refresh requests.
func (s *Scanner) Run(ctx context.Context) error {
	if err := s.discover(ctx); err != nil {
		return err
	}

	for {
		communities, err := s.db.ListCommunities(ctx)
		if err != nil {
			return fmt.Errorf("failed to list communities: %w", err)
		}

		for i := range communities {
			if err := ctx.Err(); err != nil {
				return err
			}
			s.drainRefresh(ctx)

			if err := s.ScanCommunity(ctx, &communities[i]); err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				s.logger.Warn("community scan failed", "community", communities[i].ID, "error", err)
			}
		}

		if err := ctx.Err(); err != nil {
			return err
		}
	}
}

// discover fetches the community directory and registers any communities
// not yet known. Already-known communities keep their stored cursor.
func (s *Scanner) discover(ctx context.Context) error {
	communities, err := s.adapter.FetchCommunities(ctx)
	if err != nil {
		return fmt.Errorf("failed to discover communities: %w", err)
	}

	var added int
	for i := range communities {
		created, err := s.db.InsertCommunity(ctx, &communities[i])
		if err != nil {
			return fmt.Errorf("failed to register community %s: %w", communities[i].ID, err)
		}
		if created {
			added++
		}
	}

	s.logger.Info("community discovery complete", "known", len(communities), "new", added)
	return nil
}

// ScanCommunity walks one community's listing from the newest item until
// the feed ends or the community's stop cursor is reached, archiving every
// item seen on the way.
//
// The cursor protocol: the first item of this pass becomes the next stop
// cursor, and it is only committed once at least one item was observed.
// An aborted pass therefore never advances the cursor, and the next pass
// re-covers the same ground.
func (s *Scanner) ScanCommunity(ctx context.Context, c *model.Community) error {
	seen := make(map[string]struct{})
	var firstSeenID string
	var observed int

	s.logger.Debug("scanning community", "community", c.ID, "name", c.Name, "cursor", c.Cursor)

pass:
	for offset := 0; ; offset += s.pageSize {
		if err := ctx.Err(); err != nil {
			return err
		}

		posts, err := s.adapter.FetchPage(ctx, c.ID, offset)
		if errors.Is(err, extract.ErrEndOfData) {
			break
		}
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			// A bad page is skipped like a bad item; the walk resumes at
			// the next offset and only end of data terminates it.
			s.logger.Warn("page fetch failed, skipping", "community", c.ID, "offset", offset, "error", err)
			continue
		}

		for i := range posts {
			post := &posts[i]

			// Listing pages shift underneath the scan as the offset
			// grows; duplicates within a pass are expected.
			if _, dup := seen[post.ID]; dup {
				continue
			}
			seen[post.ID] = struct{}{}

			if firstSeenID == "" {
				firstSeenID = post.ID
			}
			if post.ID == c.Cursor {
				break pass
			}
			observed++

			s.archivePost(ctx, post)
		}
	}

	if firstSeenID == "" {
		return nil
	}

	if err := s.db.UpdateCommunityCursor(ctx, c.ID, firstSeenID); err != nil {
		return err
	}

	// The first complete pass measures the community's backlog.
	if c.Cursor == "" {
		if err := s.db.UpdateCommunityFirstScanAmount(ctx, c.ID, observed); err != nil {
			return err
		}
	}

	s.logger.Info("community scan complete", "community", c.ID, "observed", observed, "cursor", firstSeenID)
	return nil
}

// archivePost stores one post, fans out into its thread when it has
// replies, and records its author. Item failures are logged and skipped;
// they never abort the surrounding page or pass.
func (s *Scanner) archivePost(ctx context.Context, post *model.Post) {
	created, err := s.db.InsertPost(ctx, post)
	if err != nil {
		s.logger.Warn("failed to store post", "post", post.ID, "error", err)
		return
	}
	if !created {
		if err := s.db.UpdatePost(ctx, post); err != nil {
			s.logger.Warn("failed to update post", "post", post.ID, "error", err)
		}
	}

	s.archiveUser(ctx, post.AuthorPID)

	if post.ReplyCount > 0 {
		s.archiveThread(ctx, post.ID)
	}
}

// archiveThread fetches a post's thread page and stores every reply.
func (s *Scanner) archiveThread(ctx context.Context, postID string) {
	_, replies, err := s.adapter.FetchThread(ctx, postID)
	if err != nil {
		s.logger.Warn("failed to fetch thread", "post", postID, "error", err)
		return
	}

	for i := range replies {
		reply := &replies[i]
		created, err := s.db.InsertReply(ctx, reply)
		if err != nil {
			s.logger.Warn("failed to store reply", "reply", reply.ID, "error", err)
			continue
		}
		if !created {
			if err := s.db.UpdateReply(ctx, reply); err != nil {
				s.logger.Warn("failed to update reply", "reply", reply.ID, "error", err)
			}
		}
		s.archiveUser(ctx, reply.AuthorPID)
	}
}

// archiveUser fetches and stores an author's profile the first time the
// PID is encountered. Known users are left as stored; profile refreshes
// go through the refresh channel instead.
func (s *Scanner) archiveUser(ctx context.Context, pid int64) {
	known, err := s.db.GetUserByPID(ctx, pid)
	if err != nil {
		s.logger.Warn("failed to look up user", "pid", pid, "error", err)
		return
	}
	if known != nil {
		return
	}

	user, err := s.adapter.FetchUser(ctx, pid)
	if err != nil {
		s.logger.Warn("failed to fetch user", "pid", pid, "error", err)
		return
	}
	if _, err := s.db.InsertUser(ctx, user); err != nil {
		s.logger.Warn("failed to store user", "pid", pid, "error", err)
	}
}
