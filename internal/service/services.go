package service

import (
	"context"
	"time"

	"github.com/blog-publishing-api/internal/config"
	"github.com/blog-publishing-api/internal/models"
	"github.com/blog-publishing-api/internal/repository"
	"github.com/rs/zerolog"
)

// PostService defines the interface for post operations. Mutations and
// unfiltered reads require an admin viewer. asOf is the instant visibility
// is evaluated at; the zero time means now.
type PostService interface {
	Create(ctx context.Context, viewer models.Viewer, input *models.PostInput) (*models.Post, error)
	Update(ctx context.Context, viewer models.Viewer, id string, input *models.PostInput) (*models.Post, error)
	Delete(ctx context.Context, viewer models.Viewer, id string) error
	Get(ctx context.Context, viewer models.Viewer, id string) (*models.Post, error)
	GetBySlug(ctx context.Context, viewer models.Viewer, slug string, asOf time.Time) (*models.Post, error)
	List(ctx context.Context, viewer models.Viewer, filter models.PostFilter, asOf time.Time) ([]models.Post, error)
	ListHome(ctx context.Context, asOf time.Time) ([]models.Post, error)
	ListByCategorySlug(ctx context.Context, slug string, asOf time.Time) (*models.Category, []models.Post, error)
	ListByTagSlug(ctx context.Context, slug string, asOf time.Time) (*models.Tag, []models.Post, error)
	ListArchiveMonth(ctx context.Context, month string, asOf time.Time) ([]models.Post, error)
}

// CommentService defines the interface for reader comments
type CommentService interface {
	Create(ctx context.Context, postID string, input *models.CommentInput) (*models.Comment, error)
	GetTree(ctx context.Context, postID string) ([]*models.CommentNode, error)
}

// TaxonomyService defines the interface for category and tag management
type TaxonomyService interface {
	CreateCategory(ctx context.Context, viewer models.Viewer, input *models.TaxonomyInput) (*models.Category, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error)
	DeleteCategory(ctx context.Context, viewer models.Viewer, id string) error
	ReassignPosts(ctx context.Context, viewer models.Viewer, fromID, toID string) (int, error)

	CreateTag(ctx context.Context, viewer models.Viewer, input *models.TaxonomyInput) (*models.Tag, error)
	ListTags(ctx context.Context) ([]models.Tag, error)
	GetTagBySlug(ctx context.Context, slug string) (*models.Tag, error)
	DeleteTag(ctx context.Context, viewer models.Viewer, id string) error
}

// ArchiveService defines the interface for the monthly archive
type ArchiveService interface {
	Stats(ctx context.Context, asOf time.Time) ([]models.ArchiveBucket, error)
}

// ViewRecorder appends page visits. It never reports failure to its caller.
type ViewRecorder interface {
	Record(ctx context.Context, path, ip string)
}

// DashboardService defines the interface for the admin overview
type DashboardService interface {
	Stats(ctx context.Context, viewer models.Viewer) (*models.DashboardStats, error)
}

// ViewCounter keeps aggregate per-path view totals alongside the raw log
type ViewCounter interface {
	Incr(ctx context.Context, path string) error
	Top(ctx context.Context, n int) ([]models.PathCount, error)
}

// Clock returns the current instant
type Clock func() time.Time

// Option customises NewServices
type Option func(*options)

type options struct {
	clock   Clock
	counter ViewCounter
}

// WithClock replaces time.Now as the source of "now"
func WithClock(clock Clock) Option {
	return func(o *options) { o.clock = clock }
}

// WithViewCounter enables aggregate view counting
func WithViewCounter(counter ViewCounter) Option {
	return func(o *options) { o.counter = counter }
}

// Services holds all service interfaces
type Services struct {
	Posts     PostService
	Comments  CommentService
	Taxonomy  TaxonomyService
	Archive   ArchiveService
	Views     ViewRecorder
	Dashboard DashboardService
}

// NewServices creates all services
func NewServices(repos *repository.Repositories, cfg *config.Config, log zerolog.Logger, opts ...Option) *Services {
	o := options{clock: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	return &Services{
		Posts:     newPostService(repos, cfg.Blog.HomePageSize, o.clock, log),
		Comments:  newCommentService(repos, o.clock, log),
		Taxonomy:  newTaxonomyService(repos, o.clock, log),
		Archive:   newArchiveService(repos.Post, o.clock),
		Views:     newViewRecorder(repos.View, o.counter, cfg.Blog.AdminPathPrefix, o.clock, log),
		Dashboard: newDashboardService(repos, o.counter, o.clock, log),
	}
}

// sampleNow returns asOf, or the clock's reading when asOf is zero. Each
// operation samples once and uses that instant throughout.
func sampleNow(clock Clock, asOf time.Time) time.Time {
	if asOf.IsZero() {
		return clock()
	}
	return asOf
}
