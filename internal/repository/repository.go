package repository

import (
	"context"
	"time"

	"github.com/blog-publishing-api/internal/database"
	"github.com/blog-publishing-api/internal/models"
)

// PostRepository defines the interface for post data operations.
//
// Create and Update write the post row and its full tag set in one unit of
// work: the previous associations are cleared and the new set written, or
// nothing changes at all.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post, tagIDs []string) error
	Update(ctx context.Context, post *models.Post, tagIDs []string) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*models.Post, error)
	GetBySlug(ctx context.Context, slug string) (*models.Post, error)
	List(ctx context.Context, filter models.PostFilter) ([]models.Post, error)
	ArchiveCounts(ctx context.Context, visibleAt time.Time) ([]models.ArchiveBucket, error)
	ReassignCategory(ctx context.Context, fromID, toID string, updatedAt time.Time) (int, error)
	Count(ctx context.Context) (int, error)
}

// CategoryRepository defines the interface for category data operations
type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, id string) (*models.Category, error)
	GetBySlug(ctx context.Context, slug string) (*models.Category, error)
	List(ctx context.Context) ([]models.Category, error)
	Delete(ctx context.Context, id string) error
}

// TagRepository defines the interface for tag data operations
type TagRepository interface {
	Create(ctx context.Context, tag *models.Tag) error
	GetByID(ctx context.Context, id string) (*models.Tag, error)
	GetBySlug(ctx context.Context, slug string) (*models.Tag, error)
	List(ctx context.Context) ([]models.Tag, error)
	Delete(ctx context.Context, id string) error
}

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id string) (*models.Comment, error)
	ListByPost(ctx context.Context, postID string) ([]models.Comment, error)
	Count(ctx context.Context) (int, error)
}

// ViewRepository is the append-only page visit log
type ViewRepository interface {
	Create(ctx context.Context, event *models.ViewEvent) error
	Count(ctx context.Context) (int, error)
}

// Repositories holds all repository interfaces
type Repositories struct {
	Post     PostRepository
	Category CategoryRepository
	Tag      TagRepository
	Comment  CommentRepository
	View     ViewRepository
}

// New creates all repositories with the given database connection
func New(db *database.DB) *Repositories {
	return &Repositories{
		Post:     NewPostRepo(db),
		Category: NewCategoryRepo(db),
		Tag:      NewTagRepo(db),
		Comment:  NewCommentRepo(db),
		View:     NewViewRepo(db),
	}
}
