package repository

import (
	"context"
	"database/sql"

	"github.com/blog-publishing-api/internal/database"
	"github.com/blog-publishing-api/internal/models"
)

// commentRepo is the concrete implementation of CommentRepository
type commentRepo struct {
	db *database.DB
}

// NewCommentRepo creates a new comment repository
func NewCommentRepo(db *database.DB) CommentRepository {
	return &commentRepo{db: db}
}

// Create inserts a new comment
func (r *commentRepo) Create(ctx context.Context, comment *models.Comment) error {
	query := `
		INSERT INTO comments (id, post_id, parent_id, author_name, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		comment.ID, comment.PostID, comment.ParentID, comment.AuthorName, comment.Content,
		comment.CreatedAt, comment.UpdatedAt,
	)
	return classify(err, "comment")
}

// GetByID retrieves a comment by ID
func (r *commentRepo) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	query := `
		SELECT id, post_id, parent_id, author_name, content, created_at, updated_at
		FROM comments WHERE id = $1
	`
	c, err := scanComment(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "comment")
	}
	return c, nil
}

// ListByPost returns the flat comment list of a post in creation order
func (r *commentRepo) ListByPost(ctx context.Context, postID string) ([]models.Comment, error) {
	query := `
		SELECT id, post_id, parent_id, author_name, content, created_at, updated_at
		FROM comments WHERE post_id = $1
		ORDER BY created_at, id
	`
	rows, err := r.db.QueryContext(ctx, query, postID)
	if err != nil {
		return nil, classify(err, "comment")
	}
	defer rows.Close()

	comments := []models.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, *c)
	}
	return comments, rows.Err()
}

// Count returns the total number of comments
func (r *commentRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM comments").Scan(&count)
	return count, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanComment(s scanner) (*models.Comment, error) {
	var c models.Comment
	var parentID sql.NullString
	err := s.Scan(&c.ID, &c.PostID, &parentID, &c.AuthorName, &c.Content, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if parentID.Valid {
		c.ParentID = &parentID.String
	}
	return &c, nil
}
