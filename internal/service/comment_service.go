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

// commentService is the concrete implementation of CommentService
type commentService struct {
	posts    repository.PostRepository
	comments repository.CommentRepository
	now      Clock
	log      zerolog.Logger
}

func newCommentService(repos *repository.Repositories, clock Clock, log zerolog.Logger) *commentService {
	return &commentService{
		posts:    repos.Post,
		comments: repos.Comment,
		now:      clock,
		log:      log.With().Str("service", "comment").Logger(),
	}
}

// Create adds a comment to a post. A parent, when given, must be a comment
// on the same post.
func (s *commentService) Create(ctx context.Context, postID string, input *models.CommentInput) (*models.Comment, error) {
	if !validation.ValidID(postID) {
		return nil, errs.NotFound("post")
	}

	in := *input
	in.AuthorName = strings.TrimSpace(in.AuthorName)
	if in.ParentID != nil && strings.TrimSpace(*in.ParentID) == "" {
		in.ParentID = nil
	}
	if err := validation.AsError(validation.ValidateComment(&in)); err != nil {
		return nil, err
	}

	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return nil, err
	}

	if in.ParentID != nil {
		parent, err := s.comments.GetByID(ctx, *in.ParentID)
		if errs.IsNotFound(err) {
			return nil, errs.InvalidReference("comment", "parent_id", "parent comment does not exist")
		}
		if err != nil {
			return nil, err
		}
		if parent.PostID != postID {
			return nil, errs.InvalidReference("comment", "parent_id", "parent comment belongs to another post")
		}
	}

	now := s.now()
	comment := &models.Comment{
		ID:         uuid.NewString(),
		PostID:     postID,
		ParentID:   in.ParentID,
		AuthorName: in.AuthorName,
		Content:    in.Content,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}

	s.log.Debug().
		Str("comment_id", comment.ID).
		Str("post_id", postID).
		Bool("reply", comment.ParentID != nil).
		Msg("Comment created")

	return comment, nil
}

// GetTree returns the comment forest of a post
func (s *commentService) GetTree(ctx context.Context, postID string) ([]*models.CommentNode, error) {
	if !validation.ValidID(postID) {
		return nil, errs.NotFound("post")
	}

	comments, err := s.comments.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	tree := content.BuildThread(comments)
	if dropped := len(comments) - content.CountNodes(tree); dropped > 0 {
		s.log.Warn().Str("post_id", postID).Int("orphans", dropped).Msg("Orphaned comments left out of thread")
	}
	return tree, nil
}
