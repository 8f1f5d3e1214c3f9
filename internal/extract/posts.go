package extract

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/juxtarchive/juxtarchive/internal/model"
)

// authorPIDPattern extracts the numeric PID from a profile link of the form
// /users/show?pid=<pid>.
var authorPIDPattern = regexp.MustCompile(`pid=(\d+)`)

// FetchPage returns the posts on one page of a community's newest-first
// listing. offset is the absolute item offset, advancing in steps of the
// configured page size.
//
// Returns ErrEndOfData when pagination is exhausted: the platform answers
// HTTP 204 past the last page, and a 200 page with no post blocks is
// treated the same way so a markup change cannot spin the scanner forever.
// A single malformed post block is logged and skipped; the rest of the
// page still parses.
func (c *Client) FetchPage(ctx context.Context, communityID string, offset int) ([]model.Post, error) {
	query := url.Values{"offset": []string{strconv.Itoa(offset)}}
	doc, err := c.getDocument(ctx, "/titles/"+communityID+"/new/more", query)
	if err != nil {
		// ErrEndOfData passes through for errors.Is checks upstream.
		return nil, err
	}

	blocks := doc.Find(".posts-wrapper")
	if blocks.Length() == 0 {
		return nil, ErrEndOfData
	}

	var posts []model.Post
	blocks.Each(func(_ int, sel *goquery.Selection) {
		post, err := c.parsePost(ctx, sel, communityID)
		if err != nil {
			c.logger.Warn("skipping malformed post", "community", communityID, "offset", offset, "error", err)
			return
		}
		posts = append(posts, *post)
	})

	return posts, nil
}

// FetchThread returns a post's thread page: the post itself with its
// current counts, and every reply under it. Used both for reply fan-out
// during scanning and for whole-thread refreshes.
func (c *Client) FetchThread(ctx context.Context, postID string) (*model.Post, []model.Reply, error) {
	doc, err := c.getDocument(ctx, "/posts/"+postID, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch thread %s: %w", postID, err)
	}

	blocks := doc.Find("#wrapper > .posts-wrapper")
	if blocks.Length() == 0 {
		return nil, nil, fmt.Errorf("thread %s has no post block", postID)
	}

	// The first block is the parent post; community is not shown on the
	// thread page, so the parsed post carries an empty CommunityID. Only
	// the mutable fields of a thread-page post are ever written back.
	parent, err := c.parsePost(ctx, blocks.First(), "")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse thread parent %s: %w", postID, err)
	}

	var replies []model.Reply
	blocks.Slice(1, blocks.Length()).Each(func(_ int, sel *goquery.Selection) {
		reply, err := c.parseReply(ctx, sel, parent.ID)
		if err != nil {
			c.logger.Warn("skipping malformed reply", "parent", parent.ID, "error", err)
			return
		}
		replies = append(replies, *reply)
	})

	return parent, replies, nil
}

// parsePost extracts one post from a listing or thread block.
func (c *Client) parsePost(ctx context.Context, sel *goquery.Selection, communityID string) (*model.Post, error) {
	id, ok := sel.Attr("id")
	if !ok || id == "" {
		return nil, fmt.Errorf("post block without id")
	}

	pid, err := parseAuthorPID(sel)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", id, err)
	}

	reactions, err := parseCount(sel, 1)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", id, err)
	}
	replyCount, err := parseCount(sel, 2)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", id, err)
	}

	imageURL, _ := sel.Find(".post-content > img").First().Attr("src")

	return &model.Post{
		ID:          id,
		AuthorPID:   pid,
		CommunityID: communityID,
		Text:        strings.TrimSpace(sel.Find(".post-content > h4").First().Text()),
		Reactions:   reactions,
		ReplyCount:  replyCount,
		ImageURL:    imageURL,
		ImageHash:   c.imageHash(ctx, imageURL),
	}, nil
}

// parseReply extracts one reply from a thread block.
// Replies share the post block markup but carry no reply counter.
func (c *Client) parseReply(ctx context.Context, sel *goquery.Selection, parentID string) (*model.Reply, error) {
	id, ok := sel.Attr("id")
	if !ok || id == "" {
		return nil, fmt.Errorf("reply block without id")
	}

	pid, err := parseAuthorPID(sel)
	if err != nil {
		return nil, fmt.Errorf("reply %s: %w", id, err)
	}

	reactions, err := parseCount(sel, 1)
	if err != nil {
		return nil, fmt.Errorf("reply %s: %w", id, err)
	}

	imageURL, _ := sel.Find(".post-content > img").First().Attr("src")

	return &model.Reply{
		ID:           id,
		AuthorPID:    pid,
		ParentPostID: parentID,
		Text:         strings.TrimSpace(sel.Find(".post-content > h4").First().Text()),
		Reactions:    reactions,
		ImageURL:     imageURL,
		ImageHash:    c.imageHash(ctx, imageURL),
	}, nil
}

// parseAuthorPID reads the author PID from a block's profile link.
func parseAuthorPID(sel *goquery.Selection) (int64, error) {
	href, ok := sel.Find(".post-meta-wrapper > h3 > a").First().Attr("href")
	if !ok {
		return 0, fmt.Errorf("no author link")
	}
	m := authorPIDPattern.FindStringSubmatch(href)
	if m == nil {
		return 0, fmt.Errorf("author link without pid: %s", href)
	}
	pid, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid pid in %s: %w", href, err)
	}
	return pid, nil
}

// parseCount reads the reaction (n=1) or reply (n=2) counter from a block's
// button row.
func parseCount(sel *goquery.Selection, n int) (int, error) {
	text := strings.TrimSpace(sel.Find(fmt.Sprintf(".post-buttons-wrapper > span:nth-child(%d) > h4", n)).First().Text())
	if text == "" {
		return 0, fmt.Errorf("missing counter %d", n)
	}
	count, err := strconv.Atoi(text)
	if err != nil {
		return 0, fmt.Errorf("invalid counter %d: %w", n, err)
	}
	return count, nil
}
