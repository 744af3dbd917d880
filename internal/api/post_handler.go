package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/craftfolio-api/internal/posts"
)

// PostHandler handles the public post pages and the admin editing surface
type PostHandler struct {
	posts *posts.Service
	log   zerolog.Logger
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(postSvc *posts.Service, log zerolog.Logger) *PostHandler {
	return &PostHandler{
		posts: postSvc,
		log:   log.With().Str("handler", "posts").Logger(),
	}
}

// List handles GET /v1/posts
func (h *PostHandler) List(c *gin.Context) {
	all, err := h.posts.List(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": all})
}

// Get handles GET /v1/posts/:post_id
func (h *PostHandler) Get(c *gin.Context) {
	post, err := h.posts.Get(c.Request.Context(), c.Param("post_id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// Create handles POST /v1/posts
func (h *PostHandler) Create(c *gin.Context) {
	var in posts.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	post, err := h.posts.Create(c.Request.Context(), &in, currentUser(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

// Update handles PUT /v1/posts/:post_id
func (h *PostHandler) Update(c *gin.Context) {
	var in posts.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	post, err := h.posts.Update(c.Request.Context(), c.Param("post_id"), &in, currentUser(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// Delete handles DELETE /v1/posts/:post_id
func (h *PostHandler) Delete(c *gin.Context) {
	if err := h.posts.Delete(c.Request.Context(), c.Param("post_id"), currentUser(c)); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
