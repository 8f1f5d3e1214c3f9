package model

// Post represents a top-level post in a community.
//
// ID, AuthorPID, CommunityID, Text, and ImageURL are fixed at first sighting.
// Reactions, ReplyCount, and ImageHash may change on the platform after we
// archive the post, so they are overwritten by the refresh path.
type Post struct {
	// ID is the unique platform identifier of the post.
	ID string `json:"id"`

	// AuthorPID is the numeric principal ID of the post author.
	AuthorPID int64 `json:"author_pid"`

	// CommunityID references the community the post belongs to.
	CommunityID string `json:"community_id"`

	// Text is the post body. May be empty for image-only posts.
	Text string `json:"text"`

	// Reactions is the reaction count at the last scan or refresh.
	Reactions int `json:"reactions"`

	// ReplyCount is the reply count at the last scan or refresh.
	// A value greater than zero triggers a thread fetch during scanning.
	ReplyCount int `json:"reply_count"`

	// ImageURL is the attached image URL, empty if the post has no image.
	ImageURL string `json:"image_url,omitempty"`

	// ImageHash is the perceptual hash of the attached image, empty when
	// there is no image or the image could not be fetched.
	ImageHash string `json:"image_hash,omitempty"`
}

// Reply represents a reply under a post.
type Reply struct {
	// ID is the unique platform identifier of the reply.
	ID string `json:"id"`

	// AuthorPID is the numeric principal ID of the reply author.
	AuthorPID int64 `json:"author_pid"`

	// ParentPostID references the post this reply belongs to.
	// The reference is best-effort: a reply whose parent was never
	// archived is stored anyway.
	ParentPostID string `json:"parent_post_id"`

	// Text is the reply body.
	Text string `json:"text"`

	// Reactions is the reaction count at the last scan or refresh.
	Reactions int `json:"reactions"`

	// ImageURL is the attached image URL, empty if the reply has no image.
	ImageURL string `json:"image_url,omitempty"`

	// ImageHash is the perceptual hash of the attached image.
	ImageHash string `json:"image_hash,omitempty"`
}

// Content is the union view over posts and replies returned by the search
// queries. The platform treats both as "content"; queries by keyword, author,
// or image hash span both kinds.
type Content struct {
	// ID is the post or reply identifier.
	ID string `json:"id"`

	// Kind is either KindPost or KindReply.
	Kind string `json:"kind"`

	// AuthorPID is the numeric principal ID of the author.
	AuthorPID int64 `json:"author_pid"`

	// ParentID is the community ID for posts and the parent post ID for replies.
	ParentID string `json:"parent_id"`

	// Text is the content body.
	Text string `json:"text"`

	// Reactions is the archived reaction count.
	Reactions int `json:"reactions"`

	// ReplyCount is the archived reply count. Always zero for replies.
	ReplyCount int `json:"reply_count"`

	// ImageURL is the attached image URL, if any.
	ImageURL string `json:"image_url,omitempty"`

	// ImageHash is the perceptual hash of the attached image, if any.
	ImageHash string `json:"image_hash,omitempty"`

	// Distance is the normalized perceptual distance to the query image.
	// Only populated by similarity searches; zero otherwise.
	Distance float64 `json:"distance,omitempty"`
}

// AsContent converts a Post to the content union view.
func (p Post) AsContent() Content {
	return Content{
		ID:         p.ID,
		Kind:       KindPost,
		AuthorPID:  p.AuthorPID,
		ParentID:   p.CommunityID,
		Text:       p.Text,
		Reactions:  p.Reactions,
		ReplyCount: p.ReplyCount,
		ImageURL:   p.ImageURL,
		ImageHash:  p.ImageHash,
	}
}

// AsContent converts a Reply to the content union view.
func (r Reply) AsContent() Content {
	return Content{
		ID:        r.ID,
		Kind:      KindReply,
		AuthorPID: r.AuthorPID,
		ParentID:  r.ParentPostID,
		Text:      r.Text,
		Reactions: r.Reactions,
		ImageURL:  r.ImageURL,
		ImageHash: r.ImageHash,
	}
}
