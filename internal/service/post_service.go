package service

import (
	"context"
	"strings"
	"time"

	"github.com/blog-publishing-api/internal/content"
	"github.com/blog-publishing-api/internal/errs"
	"github.com/blog-publishing-api/internal/models"
	"github.com/blog-publishing-api/internal/repository"
	"github.com/blog-publishing-api/internal/validation"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// postService is the concrete implementation of PostService
type postService struct {
	posts      repository.PostRepository
	categories repository.CategoryRepository
	tags       repository.TagRepository
	pageSize   int
	now        Clock
	log        zerolog.Logger
}

func newPostService(repos *repository.Repositories, pageSize int, clock Clock, log zerolog.Logger) *postService {
	return &postService{
		posts:      repos.Post,
		categories: repos.Category,
		tags:       repos.Tag,
		pageSize:   pageSize,
		now:        clock,
		log:        log.With().Str("service", "post").Logger(),
	}
}

// Create validates input, derives the slug when none is given and stores
// the post with its tag set. A slug collision is reported as DuplicateKey;
// no suffix is appended.
func (s *postService) Create(ctx context.Context, viewer models.Viewer, input *models.PostInput) (*models.Post, error) {
	if !viewer.Admin {
		return nil, errs.Forbidden("create post")
	}

	in, slug, err := prepareInput(input)
	if err != nil {
		return nil, err
	}

	now := s.now()
	post := &models.Post{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Slug:        slug,
		Excerpt:     in.Excerpt,
		Content:     in.Content,
		Status:      in.Status,
		PublishedAt: in.PublishedAt,
		CategoryID:  in.CategoryID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.posts.Create(ctx, post, in.TagIDs); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("post_id", post.ID).
		Str("slug", post.Slug).
		Str("status", string(post.Status)).
		Msg("Post created")

	return s.posts.GetByID(ctx, post.ID)
}

// Update replaces every editable field and the tag set of a post
func (s *postService) Update(ctx context.Context, viewer models.Viewer, id string, input *models.PostInput) (*models.Post, error) {
	if !viewer.Admin {
		return nil, errs.Forbidden("update post")
	}
	if !validation.ValidID(id) {
		return nil, errs.Validation("id", "invalid UUID format")
	}

	in, slug, err := prepareInput(input)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		ID:          id,
		Title:       in.Title,
		Slug:        slug,
		Excerpt:     in.Excerpt,
		Content:     in.Content,
		Status:      in.Status,
		PublishedAt: in.PublishedAt,
		CategoryID:  in.CategoryID,
		UpdatedAt:   s.now(),
	}

	if err := s.posts.Update(ctx, post, in.TagIDs); err != nil {
		return nil, err
	}

	s.log.Info().Str("post_id", id).Str("slug", slug).Msg("Post updated")

	return s.posts.GetByID(ctx, id)
}

// prepareInput normalises a post input and returns it with its final slug
func prepareInput(input *models.PostInput) (*models.PostInput, string, error) {
	in := *input
	in.Title = strings.TrimSpace(in.Title)
	in.Excerpt = strings.TrimSpace(in.Excerpt)
	if in.Status == "" {
		in.Status = models.PostStatusDraft
	}
	if in.PublishedAt != nil {
		t := in.PublishedAt.UTC()
		in.PublishedAt = &t
	}
	in.TagIDs = dedupe(in.TagIDs)

	slug := content.SlugOrDerive(in.Slug, in.Title)
	if err := validation.AsError(validation.ValidatePost(&in, slug)); err != nil {
		return nil, "", err
	}
	return &in, slug, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// Delete hard-deletes a post along with its comments and tag associations
func (s *postService) Delete(ctx context.Context, viewer models.Viewer, id string) error {
	if !viewer.Admin {
		return errs.Forbidden("delete post")
	}
	if !validation.ValidID(id) {
		return errs.Validation("id", "invalid UUID format")
	}

	if err := s.posts.Delete(ctx, id); err != nil {
		return err
	}

	s.log.Info().Str("post_id", id).Msg("Post deleted")
	return nil
}

// Get loads a post for editing, whatever its status
func (s *postService) Get(ctx context.Context, viewer models.Viewer, id string) (*models.Post, error) {
	if !viewer.Admin {
		return nil, errs.Forbidden("get post by id")
	}
	if !validation.ValidID(id) {
		return nil, errs.Validation("id", "invalid UUID format")
	}
	return s.posts.GetByID(ctx, id)
}

// GetBySlug returns the post with slug. Posts not visible at asOf are
// reported as NotFound to non-admin viewers.
func (s *postService) GetBySlug(ctx context.Context, viewer models.Viewer, slug string, asOf time.Time) (*models.Post, error) {
	now := sampleNow(s.now, asOf)

	post, err := s.posts.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !viewer.Admin && !content.IsVisible(post, now) {
		return nil, errs.NotFound("post")
	}
	return post, nil
}

// List returns posts matching filter. Non-admin viewers only ever see posts
// visible at asOf.
func (s *postService) List(ctx context.Context, viewer models.Viewer, filter models.PostFilter, asOf time.Time) ([]models.Post, error) {
	if !viewer.Admin {
		now := sampleNow(s.now, asOf)
		filter.VisibleAt = &now
	}
	return s.posts.List(ctx, filter)
}

// ListHome returns the newest visible posts for the front page
func (s *postService) ListHome(ctx context.Context, asOf time.Time) ([]models.Post, error) {
	return s.List(ctx, models.Public, models.PostFilter{
		OrderBy: models.OrderPublishedDesc,
		Limit:   s.pageSize,
	}, asOf)
}

// ListByCategorySlug returns the category and its visible posts
func (s *postService) ListByCategorySlug(ctx context.Context, slug string, asOf time.Time) (*models.Category, []models.Post, error) {
	category, err := s.categories.GetBySlug(ctx, slug)
	if err != nil {
		return nil, nil, err
	}
	posts, err := s.List(ctx, models.Public, models.PostFilter{
		CategoryID: category.ID,
		OrderBy:    models.OrderPublishedDesc,
	}, asOf)
	if err != nil {
		return nil, nil, err
	}
	return category, posts, nil
}

// ListByTagSlug returns the tag and its visible posts
func (s *postService) ListByTagSlug(ctx context.Context, slug string, asOf time.Time) (*models.Tag, []models.Post, error) {
	tag, err := s.tags.GetBySlug(ctx, slug)
	if err != nil {
		return nil, nil, err
	}
	posts, err := s.List(ctx, models.Public, models.PostFilter{
		TagID:   tag.ID,
		OrderBy: models.OrderPublishedDesc,
	}, asOf)
	if err != nil {
		return nil, nil, err
	}
	return tag, posts, nil
}

// ListArchiveMonth returns the visible posts published within the calendar
// month (UTC) given as YYYY-MM
func (s *postService) ListArchiveMonth(ctx context.Context, month string, asOf time.Time) ([]models.Post, error) {
	from, before, err := content.MonthRange(month)
	if err != nil {
		return nil, err
	}
	return s.List(ctx, models.Public, models.PostFilter{
		PublishedFrom:   &from,
		PublishedBefore: &before,
		OrderBy:         models.OrderPublishedDesc,
	}, asOf)
}
