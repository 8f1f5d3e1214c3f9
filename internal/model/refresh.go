package model

import "fmt"

// Entity kind names used by refresh requests and the content union view.
const (
	// KindPost identifies a top-level post.
	KindPost = "post"

	// KindReply identifies a reply under a post.
	KindReply = "reply"

	// KindUser identifies a platform account.
	KindUser = "user"
)

// RefreshRequest asks the crawler to re-fetch a single entity out of band.
// It travels from the query server to the crawler over an unreliable
// one-directional channel: delivery is at-most-once, unordered, and requests
// sent while the crawler is not listening are silently lost.
type RefreshRequest struct {
	// Kind is one of KindPost, KindReply, or KindUser.
	Kind string `json:"kind"`

	// ID is the entity identifier: a post or reply ID, or a decimal PID.
	ID string `json:"id"`
}

// Validate checks that the request names a known entity kind and a non-empty ID.
func (r RefreshRequest) Validate() error {
	switch r.Kind {
	case KindPost, KindReply, KindUser:
	default:
		return fmt.Errorf("unknown refresh kind %q", r.Kind)
	}
	if r.ID == "" {
		return fmt.Errorf("empty refresh id for kind %q", r.Kind)
	}
	return nil
}
