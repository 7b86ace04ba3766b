package service

import (
	"context"
	"strings"

	"github.com/blog-publishing-api/internal/content"
	"github.com/blog-publishing-api/internal/errs"
	"github.com/blog-publishing-api/internal/models"
	"github.com/blog-publishing-api/internal/repository"
	"github.com/blog-publishing-api/internal/validation"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// taxonomyService is the concrete implementation of TaxonomyService
type taxonomyService struct {
	posts      repository.PostRepository
	categories repository.CategoryRepository
	tags       repository.TagRepository
	now        Clock
	log        zerolog.Logger
}

func newTaxonomyService(repos *repository.Repositories, clock Clock, log zerolog.Logger) *taxonomyService {
	return &taxonomyService{
		posts:      repos.Post,
		categories: repos.Category,
		tags:       repos.Tag,
		now:        clock,
		log:        log.With().Str("service", "taxonomy").Logger(),
	}
}

func prepareTaxonomy(input *models.TaxonomyInput) (name, slug string, err error) {
	name = strings.TrimSpace(input.Name)
	slug = content.SlugOrDerive(input.Slug, name)
	in := models.TaxonomyInput{Name: name, Slug: input.Slug}
	if err := validation.AsError(validation.ValidateTaxonomy(&in, slug)); err != nil {
		return "", "", err
	}
	return name, slug, nil
}

func (s *taxonomyService) CreateCategory(ctx context.Context, viewer models.Viewer, input *models.TaxonomyInput) (*models.Category, error) {
	if !viewer.Admin {
		return nil, errs.Forbidden("create category")
	}
	name, slug, err := prepareTaxonomy(input)
	if err != nil {
		return nil, err
	}

	now := s.now()
	category := &models.Category{ID: uuid.NewString(), Name: name, Slug: slug, CreatedAt: now, UpdatedAt: now}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, err
	}

	s.log.Info().Str("category_id", category.ID).Str("slug", slug).Msg("Category created")
	return category, nil
}

func (s *taxonomyService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.categories.List(ctx)
}

func (s *taxonomyService) GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	return s.categories.GetBySlug(ctx, slug)
}

// DeleteCategory removes an empty category. Posts are never moved or
// deleted implicitly; use ReassignPosts first.
func (s *taxonomyService) DeleteCategory(ctx context.Context, viewer models.Viewer, id string) error {
	if !viewer.Admin {
		return errs.Forbidden("delete category")
	}
	if !validation.ValidID(id) {
		return errs.Validation("id", "invalid UUID format")
	}
	if err := s.categories.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("category_id", id).Msg("Category deleted")
	return nil
}

// ReassignPosts moves every post of one category to another
func (s *taxonomyService) ReassignPosts(ctx context.Context, viewer models.Viewer, fromID, toID string) (int, error) {
	if !viewer.Admin {
		return 0, errs.Forbidden("reassign posts")
	}
	if !validation.ValidID(fromID) {
		return 0, errs.Validation("id", "invalid UUID format")
	}
	if !validation.ValidID(toID) {
		return 0, errs.Validation("category_id", "invalid UUID format")
	}
	if fromID == toID {
		return 0, errs.Validation("category_id", "target category must differ from source")
	}

	if _, err := s.categories.GetByID(ctx, fromID); err != nil {
		return 0, err
	}
	if _, err := s.categories.GetByID(ctx, toID); err != nil {
		if errs.IsNotFound(err) {
			return 0, errs.InvalidReference("post", "category_id", "target category does not exist")
		}
		return 0, err
	}

	n, err := s.posts.ReassignCategory(ctx, fromID, toID, s.now())
	if err != nil {
		return 0, err
	}

	s.log.Info().Str("from", fromID).Str("to", toID).Int("posts", n).Msg("Posts reassigned")
	return n, nil
}

func (s *taxonomyService) CreateTag(ctx context.Context, viewer models.Viewer, input *models.TaxonomyInput) (*models.Tag, error) {
	if !viewer.Admin {
		return nil, errs.Forbidden("create tag")
	}
	name, slug, err := prepareTaxonomy(input)
	if err != nil {
		return nil, err
	}

	now := s.now()
	tag := &models.Tag{ID: uuid.NewString(), Name: name, Slug: slug, CreatedAt: now, UpdatedAt: now}
	if err := s.tags.Create(ctx, tag); err != nil {
		return nil, err
	}

	s.log.Info().Str("tag_id", tag.ID).Str("slug", slug).Msg("Tag created")
	return tag, nil
}

func (s *taxonomyService) ListTags(ctx context.Context) ([]models.Tag, error) {
	return s.tags.List(ctx)
}

func (s *taxonomyService) GetTagBySlug(ctx context.Context, slug string) (*models.Tag, error) {
	return s.tags.GetBySlug(ctx, slug)
}

// DeleteTag removes a tag and detaches it from its posts
func (s *taxonomyService) DeleteTag(ctx context.Context, viewer models.Viewer, id string) error {
	if !viewer.Admin {
		return errs.Forbidden("delete tag")
	}
	if !validation.ValidID(id) {
		return errs.Validation("id", "invalid UUID format")
	}
	if err := s.tags.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("tag_id", id).Msg("Tag deleted")
	return nil
}
