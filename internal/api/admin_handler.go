package api

import (
	"net/http"
	"time"

	"github.com/blog-publishing-api/internal/models"
	"github.com/blog-publishing-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// AdminHandler serves the content management endpoints
type AdminHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(services *service.Services, log zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		services: services,
		log:      log.With().Str("handler", "admin").Logger(),
	}
}

// Dashboard handles GET /admin/dashboard
func (h *AdminHandler) Dashboard(c *gin.Context) {
	stats, err := h.services.Dashboard.Stats(c.Request.Context(), viewerFrom(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ListPosts handles GET /admin/posts
// Query: status, category_id, tag_id; newest edits first
func (h *AdminHandler) ListPosts(c *gin.Context) {
	filter := models.PostFilter{
		Status:     models.PostStatus(c.Query("status")),
		CategoryID: c.Query("category_id"),
		TagID:      c.Query("tag_id"),
		OrderBy:    models.OrderUpdatedDesc,
	}
	if filter.Status != "" && !models.ValidStatuses[filter.Status] {
		badRequest(c, "status must be one of: draft, published, scheduled")
		return
	}

	posts, err := h.services.Posts.List(c.Request.Context(), viewerFrom(c), filter, time.Time{})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

// CreatePost handles POST /admin/posts
func (h *AdminHandler) CreatePost(c *gin.Context) {
	var input models.PostInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}

	post, err := h.services.Posts.Create(c.Request.Context(), viewerFrom(c), &input)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

// GetPost handles GET /admin/posts/:id
func (h *AdminHandler) GetPost(c *gin.Context) {
	post, err := h.services.Posts.Get(c.Request.Context(), viewerFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// UpdatePost handles PUT /admin/posts/:id. The body must carry the full
// editable field set.
func (h *AdminHandler) UpdatePost(c *gin.Context) {
	var input models.PostInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}

	post, err := h.services.Posts.Update(c.Request.Context(), viewerFrom(c), c.Param("id"), &input)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// DeletePost handles DELETE /admin/posts/:id
func (h *AdminHandler) DeletePost(c *gin.Context) {
	if err := h.services.Posts.Delete(c.Request.Context(), viewerFrom(c), c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AdminHandler) ListCategories(c *gin.Context) {
	categories, err := h.services.Taxonomy.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (h *AdminHandler) CreateCategory(c *gin.Context) {
	var input models.TaxonomyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}

	category, err := h.services.Taxonomy.CreateCategory(c.Request.Context(), viewerFrom(c), &input)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

func (h *AdminHandler) DeleteCategory(c *gin.Context) {
	if err := h.services.Taxonomy.DeleteCategory(c.Request.Context(), viewerFrom(c), c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ReassignCategory handles POST /admin/categories/:id/reassign
// Body: {"category_id": "<target>"}
func (h *AdminHandler) ReassignCategory(c *gin.Context) {
	var req struct {
		CategoryID string `json:"category_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}

	moved, err := h.services.Taxonomy.ReassignPosts(c.Request.Context(), viewerFrom(c), c.Param("id"), req.CategoryID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"moved": moved})
}

func (h *AdminHandler) ListTags(c *gin.Context) {
	tags, err := h.services.Taxonomy.ListTags(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tags": tags})
}

func (h *AdminHandler) CreateTag(c *gin.Context) {
	var input models.TaxonomyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}

	tag, err := h.services.Taxonomy.CreateTag(c.Request.Context(), viewerFrom(c), &input)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, tag)
}

func (h *AdminHandler) DeleteTag(c *gin.Context) {
	if err := h.services.Taxonomy.DeleteTag(c.Request.Context(), viewerFrom(c), c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
