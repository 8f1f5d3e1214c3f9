package crawler

import (
	"context"
	"strconv"

	"github.com/juxtarchive/juxtarchive/internal/model"
)

// drainRefresh services every refresh request already queued, then
// returns. It never blocks waiting for new requests; the scan loop is the
// priority and refreshes ride between its suspension points.
func (s *Scanner) drainRefresh(ctx context.Context) {
	if s.refresh == nil {
		return
	}
	for {
		select {
		case req, ok := <-s.refresh:
			if !ok {
				s.refresh = nil
				return
			}
			s.handleRefresh(ctx, req)
		default:
			return
		}
	}
}

// handleRefresh re-fetches a single entity and writes its mutable fields
// back. Refresh failures are logged and dropped; a request carries no
// reply path.
func (s *Scanner) handleRefresh(ctx context.Context, req model.RefreshRequest) {
	if err := req.Validate(); err != nil {
		s.logger.Warn("dropping invalid refresh request", "error", err)
		return
	}

	switch req.Kind {
	case model.KindUser:
		s.refreshUser(ctx, req.ID)
	case model.KindPost:
		s.refreshThread(ctx, req.ID)
	case model.KindReply:
		s.refreshReply(ctx, req.ID)
	}
}

// refreshUser re-fetches a profile and updates the stored record.
func (s *Scanner) refreshUser(ctx context.Context, id string) {
	pid, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		s.logger.Warn("dropping refresh with non-numeric pid", "id", id)
		return
	}

	user, err := s.adapter.FetchUser(ctx, pid)
	if err != nil {
		s.logger.Warn("user refresh fetch failed", "pid", pid, "error", err)
		return
	}

	created, err := s.db.InsertUser(ctx, user)
	if err != nil {
		s.logger.Warn("user refresh store failed", "pid", pid, "error", err)
		return
	}
	if !created {
		if err := s.db.UpdateUser(ctx, user); err != nil {
			s.logger.Warn("user refresh update failed", "pid", pid, "error", err)
		}
	}
}

// refreshThread re-fetches a post's thread page, updating the post's
// counters and upserting every reply. New replies that appeared since the
// post was archived are picked up here.
func (s *Scanner) refreshThread(ctx context.Context, postID string) {
	post, replies, err := s.adapter.FetchThread(ctx, postID)
	if err != nil {
		s.logger.Warn("thread refresh fetch failed", "post", postID, "error", err)
		return
	}

	// Thread pages do not name the community, so only the post's mutable
	// fields are written back.
	if err := s.db.UpdatePost(ctx, post); err != nil {
		s.logger.Warn("thread refresh update failed", "post", postID, "error", err)
	}

	for i := range replies {
		reply := &replies[i]
		created, err := s.db.InsertReply(ctx, reply)
		if err != nil {
			s.logger.Warn("reply refresh store failed", "reply", reply.ID, "error", err)
			continue
		}
		if !created {
			if err := s.db.UpdateReply(ctx, reply); err != nil {
				s.logger.Warn("reply refresh update failed", "reply", reply.ID, "error", err)
			}
		}
	}
}

// refreshReply refreshes the whole thread a reply belongs to. A reply has
// no page of its own, so the parent thread is the fetch unit.
func (s *Scanner) refreshReply(ctx context.Context, replyID string) {
	reply, err := s.db.GetReplyByID(ctx, replyID)
	if err != nil {
		s.logger.Warn("reply refresh lookup failed", "reply", replyID, "error", err)
		return
	}
	if reply == nil {
		s.logger.Warn("dropping refresh for unknown reply", "reply", replyID)
		return
	}

	s.refreshThread(ctx, reply.ParentPostID)
}
