package api

import (
	"net/http"
	"time"

	"github.com/blog-publishing-api/internal/models"
	"github.com/blog-publishing-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// PublicHandler serves the reader-facing endpoints
type PublicHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewPublicHandler creates a new PublicHandler
func NewPublicHandler(services *service.Services, log zerolog.Logger) *PublicHandler {
	return &PublicHandler{
		services: services,
		log:      log.With().Str("handler", "public").Logger(),
	}
}

// Home handles GET /posts
func (h *PublicHandler) Home(c *gin.Context) {
	posts, err := h.services.Posts.ListHome(c.Request.Context(), time.Time{})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

// GetPost handles GET /posts/:slug. Admin callers may preview posts that are
// not yet visible.
func (h *PublicHandler) GetPost(c *gin.Context) {
	ctx := c.Request.Context()

	post, err := h.services.Posts.GetBySlug(ctx, viewerFrom(c), c.Param("slug"), time.Time{})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	comments, err := h.services.Comments.GetTree(ctx, post.ID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"post": post, "comments": comments})
}

// GetComments handles GET /posts/:slug/comments
func (h *PublicHandler) GetComments(c *gin.Context) {
	ctx := c.Request.Context()

	post, err := h.services.Posts.GetBySlug(ctx, viewerFrom(c), c.Param("slug"), time.Time{})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	comments, err := h.services.Comments.GetTree(ctx, post.ID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

// CreateComment handles POST /posts/:slug/comments
func (h *PublicHandler) CreateComment(c *gin.Context) {
	ctx := c.Request.Context()

	var input models.CommentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}

	post, err := h.services.Posts.GetBySlug(ctx, viewerFrom(c), c.Param("slug"), time.Time{})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	comment, err := h.services.Comments.Create(ctx, post.ID, &input)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// ListByCategory handles GET /categories/:slug/posts
func (h *PublicHandler) ListByCategory(c *gin.Context) {
	category, posts, err := h.services.Posts.ListByCategorySlug(c.Request.Context(), c.Param("slug"), time.Time{})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": category, "posts": posts})
}

// ListByTag handles GET /tags/:slug/posts
func (h *PublicHandler) ListByTag(c *gin.Context) {
	tag, posts, err := h.services.Posts.ListByTagSlug(c.Request.Context(), c.Param("slug"), time.Time{})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tag": tag, "posts": posts})
}

// Archive handles GET /archive
func (h *PublicHandler) Archive(c *gin.Context) {
	buckets, err := h.services.Archive.Stats(c.Request.Context(), time.Time{})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"archive": buckets})
}

// ArchiveMonth handles GET /archive/:month
func (h *PublicHandler) ArchiveMonth(c *gin.Context) {
	month := c.Param("month")
	posts, err := h.services.Posts.ListArchiveMonth(c.Request.Context(), month, time.Time{})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"month": month, "posts": posts})
}
