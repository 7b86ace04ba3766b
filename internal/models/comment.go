package models

import (
	"time"
)

// Comment represents a reader comment on a post, optionally replying to
// another comment on the same post
type Comment struct {
	ID         string    `json:"id" db:"id"`
	PostID     string    `json:"post_id" db:"post_id"`
	ParentID   *string   `json:"parent_id,omitempty" db:"parent_id"`
	AuthorName string    `json:"author_name" db:"author_name"`
	Content    string    `json:"content" db:"content"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// CommentInput is the reader-supplied part of a new comment
type CommentInput struct {
	AuthorName string  `json:"author_name"`
	Content    string  `json:"content"`
	ParentID   *string `json:"parent_id,omitempty"`
}

// CommentNode is a comment with its direct replies
type CommentNode struct {
	Comment
	Replies []*CommentNode `json:"replies"`
}

// MaxAuthorNameLength mirrors the author_name column width
const MaxAuthorNameLength = 120
