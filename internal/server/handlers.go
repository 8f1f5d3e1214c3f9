package server

import (
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/juxtarchive/juxtarchive/internal/model"
)

// resultLimit resolves the effective cap for a list query. Absent or
// unusable limit parameters fall back to the UI default; explicit values
// are clamped to the API ceiling.
func (s *Server) resultLimit(c *gin.Context) int {
	raw := c.Query("limit")
	if raw == "" {
		return s.uiLimit
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return s.uiLimit
	}
	if n > s.apiLimit {
		return s.apiLimit
	}
	return n
}

func (s *Server) listCommunities(c *gin.Context) {
	communities, err := s.db.ListCommunities(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	if communities == nil {
		communities = []model.Community{}
	}
	c.JSON(http.StatusOK, communities)
}

func (s *Server) getPost(c *gin.Context) {
	post, err := s.db.GetPostByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	if post == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
		return
	}

	// A viewed record is a good candidate for catching up with the
	// platform's current counters.
	s.requestRefresh(model.KindPost, post.ID)
	c.JSON(http.StatusOK, post)
}

func (s *Server) getReply(c *gin.Context) {
	reply, err := s.db.GetReplyByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	if reply == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "reply not found"})
		return
	}

	s.requestRefresh(model.KindReply, reply.ID)
	c.JSON(http.StatusOK, reply)
}

func (s *Server) getUser(c *gin.Context) {
	pid, err := strconv.ParseInt(c.Param("pid"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "pid must be numeric"})
		return
	}

	user, err := s.db.GetUserByPID(c.Request.Context(), pid)
	if err != nil {
		s.fail(c, err)
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	s.requestRefresh(model.KindUser, c.Param("pid"))
	c.JSON(http.StatusOK, user)
}

// getUserScore sums the reactions across a user's archived posts and
// replies. Unknown users score zero rather than 404: a missing score and
// an empty history are the same thing.
func (s *Server) getUserScore(c *gin.Context) {
	pid, err := strconv.ParseInt(c.Param("pid"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "pid must be numeric"})
		return
	}

	score, err := s.db.SumReactionsByAuthor(c.Request.Context(), pid)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pid": pid, "score": score})
}

func (s *Server) topContent(c *gin.Context) {
	results, err := s.db.TopContent(c.Request.Context(), s.resultLimit(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, contentSlice(results))
}

// searchContent dispatches on the type parameter:
//
//	pid       content by author PID
//	community content within a community
//	keyword   substring match over content text
//	hash      exact perceptual hash match
//	parent    replies under a post
//	id        point lookup across posts and replies
//
// Searches answer an empty array, never 404: no match is a result.
func (s *Server) searchContent(c *gin.Context) {
	query := c.Query("q")
	limit := s.resultLimit(c)
	ctx := c.Request.Context()

	var results []model.Content
	var err error

	switch c.Query("type") {
	case "pid":
		pid, perr := strconv.ParseInt(query, 10, 64)
		if perr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "q must be a numeric pid"})
			return
		}
		results, err = s.db.ContentByAuthor(ctx, pid, limit)
	case "community":
		results, err = s.db.ContentByCommunity(ctx, query, limit)
	case "keyword":
		results, err = s.db.ContentByKeyword(ctx, query, limit)
	case "hash":
		results, err = s.db.ContentByImageHash(ctx, query, limit)
	case "parent":
		results, err = s.db.RepliesByParent(ctx, query, limit)
	case "id":
		results, err = s.contentByID(c, query)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown search type"})
		return
	}
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, contentSlice(results))
}

// contentByID looks one ID up across both content kinds.
func (s *Server) contentByID(c *gin.Context, id string) ([]model.Content, error) {
	ctx := c.Request.Context()

	post, err := s.db.GetPostByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post != nil {
		return []model.Content{post.AsContent()}, nil
	}

	reply, err := s.db.GetReplyByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if reply != nil {
		return []model.Content{reply.AsContent()}, nil
	}
	return nil, nil
}

// searchUsers dispatches on the type parameter:
//
//	pnid  substring match over network IDs
//	name  substring match over display names
//	hash  exact Mii hash match
//	pid   point lookup by PID
func (s *Server) searchUsers(c *gin.Context) {
	query := c.Query("q")
	limit := s.resultLimit(c)
	ctx := c.Request.Context()

	var results []model.User
	var err error

	switch c.Query("type") {
	case "pnid":
		results, err = s.db.UsersByPNID(ctx, query, limit)
	case "name":
		results, err = s.db.UsersByName(ctx, query, limit)
	case "hash":
		results, err = s.db.UsersByMiiHash(ctx, query, limit)
	case "pid":
		pid, perr := strconv.ParseInt(query, 10, 64)
		if perr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "q must be a numeric pid"})
			return
		}
		var user *model.User
		user, err = s.db.GetUserByPID(ctx, pid)
		if user != nil {
			results = []model.User{*user}
		}
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown search type"})
		return
	}
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, userSlice(results))
}

// reverseContent ranks archived content by visual similarity to an
// uploaded image.
func (s *Server) reverseContent(c *gin.Context) {
	file, ok := s.uploadedImage(c)
	if !ok {
		return
	}
	defer file.Close()

	results, err := s.similarity.SearchContent(c.Request.Context(), file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image could not be decoded"})
		return
	}
	c.JSON(http.StatusOK, contentSlice(results))
}

// reverseMiis ranks archived users by Mii avatar similarity to an
// uploaded image.
func (s *Server) reverseMiis(c *gin.Context) {
	file, ok := s.uploadedImage(c)
	if !ok {
		return
	}
	defer file.Close()

	results, err := s.similarity.SearchUsers(c.Request.Context(), file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image could not be decoded"})
		return
	}
	c.JSON(http.StatusOK, userSlice(results))
}

// uploadedImage opens the multipart "image" field, enforcing the upload
// size cap. On failure it writes the error response and reports false.
func (s *Server) uploadedImage(c *gin.Context) (multipart.File, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUploadSize)

	header, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing image upload"})
		return nil, false
	}

	file, err := header.Open()
	if err != nil {
		s.fail(c, err)
		return nil, false
	}
	return file, true
}

// fail answers a storage-level failure. The underlying error goes to the
// log, not the response body.
func (s *Server) fail(c *gin.Context, err error) {
	s.logger.Error("request failed", "path", c.FullPath(), "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
