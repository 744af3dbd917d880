package api

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/craftfolio-api/internal/comments"
)

// CommentHandler handles the comment tree endpoints, including the live
// SSE snapshot stream.
type CommentHandler struct {
	comments *comments.Service
	log      zerolog.Logger
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(commentSvc *comments.Service, log zerolog.Logger) *CommentHandler {
	return &CommentHandler{
		comments: commentSvc,
		log:      log.With().Str("handler", "comments").Logger(),
	}
}

type commentRequest struct {
	Text      string `json:"text"`
	RepliedTo string `json:"replied_to"`
}

// Tree handles GET /v1/posts/:post_id/comments
func (h *CommentHandler) Tree(c *gin.Context) {
	tree, err := h.comments.Tree(c.Request.Context(), c.Param("post_id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": tree})
}

// Stream handles GET /v1/posts/:post_id/comments/stream. Each change to
// the tree is delivered as an SSE event carrying the full snapshot. The
// subscription lives until the client disconnects.
func (h *CommentHandler) Stream(c *gin.Context) {
	postID := c.Param("post_id")

	sub, err := h.comments.Subscribe(c.Request.Context(), postID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	defer sub.Cancel()

	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	clientGone := c.Request.Context().Done()
	c.Stream(func(w io.Writer) bool {
		select {
		case snapshot, ok := <-sub.Snapshots():
			if !ok {
				return false
			}
			c.SSEvent("snapshot", gin.H{"comments": snapshot})
			return true
		case <-clientGone:
			return false
		}
	})
}

// Create handles POST /v1/posts/:post_id/comments
func (h *CommentHandler) Create(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	id, err := h.comments.SubmitComment(c.Request.Context(), c.Param("post_id"), req.Text, currentUserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// CreateReply handles POST /v1/posts/:post_id/comments/:comment_id/replies
func (h *CommentHandler) CreateReply(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	id, err := h.comments.SubmitReply(c.Request.Context(),
		c.Param("post_id"), c.Param("comment_id"), req.Text, currentUserID(c), req.RepliedTo)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// Update handles PUT /v1/posts/:post_id/comments/:comment_id
func (h *CommentHandler) Update(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	err := h.comments.EditComment(c.Request.Context(),
		c.Param("post_id"), c.Param("comment_id"), req.Text, currentUserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UpdateReply handles PUT /v1/posts/:post_id/comments/:comment_id/replies/:reply_id
func (h *CommentHandler) UpdateReply(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	err := h.comments.EditReply(c.Request.Context(),
		c.Param("post_id"), c.Param("comment_id"), c.Param("reply_id"), req.Text, currentUserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Delete handles DELETE /v1/posts/:post_id/comments/:comment_id
func (h *CommentHandler) Delete(c *gin.Context) {
	err := h.comments.DeleteComment(c.Request.Context(),
		c.Param("post_id"), c.Param("comment_id"), currentUserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteReply handles DELETE /v1/posts/:post_id/comments/:comment_id/replies/:reply_id
func (h *CommentHandler) DeleteReply(c *gin.Context) {
	err := h.comments.DeleteReply(c.Request.Context(),
		c.Param("post_id"), c.Param("comment_id"), c.Param("reply_id"), currentUserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Like handles POST /v1/posts/:post_id/comments/:comment_id/like.
// Toggling while signed out is a silent no-op, matching the UI contract
// of disabled vote buttons.
func (h *CommentHandler) Like(c *gin.Context) {
	err := h.comments.ToggleLike(c.Request.Context(),
		c.Param("post_id"), c.Param("comment_id"), currentUserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Dislike handles POST /v1/posts/:post_id/comments/:comment_id/dislike
func (h *CommentHandler) Dislike(c *gin.Context) {
	err := h.comments.ToggleDislike(c.Request.Context(),
		c.Param("post_id"), c.Param("comment_id"), currentUserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// LikeReply handles POST .../replies/:reply_id/like
func (h *CommentHandler) LikeReply(c *gin.Context) {
	err := h.comments.ToggleReplyLike(c.Request.Context(),
		c.Param("post_id"), c.Param("comment_id"), c.Param("reply_id"), currentUserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DislikeReply handles POST .../replies/:reply_id/dislike
func (h *CommentHandler) DislikeReply(c *gin.Context) {
	err := h.comments.ToggleReplyDislike(c.Request.Context(),
		c.Param("post_id"), c.Param("comment_id"), c.Param("reply_id"), currentUserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
