package models

import (
	"time"
)

// PostStatus is the editorial state of a post
type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusPublished PostStatus = "published"
	PostStatusScheduled PostStatus = "scheduled"
)

// ValidStatuses defines allowed post statuses
var ValidStatuses = map[PostStatus]bool{
	PostStatusDraft:     true,
	PostStatusPublished: true,
	PostStatusScheduled: true,
}

// Post represents a blog post together with its category and tags
type Post struct {
	ID          string     `json:"id" db:"id"`
	Title       string     `json:"title" db:"title"`
	Slug        string     `json:"slug" db:"slug"`
	Excerpt     string     `json:"excerpt,omitempty" db:"excerpt"`
	Content     string     `json:"content" db:"content"`
	Status      PostStatus `json:"status" db:"status"`
	PublishedAt *time.Time `json:"published_at,omitempty" db:"published_at"`
	CategoryID  string     `json:"category_id" db:"category_id"`
	Category    *Category  `json:"category,omitempty" db:"-"`
	Tags        []Tag      `json:"tags" db:"-"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// TagIDs returns the ids of the post's tags in order
func (p *Post) TagIDs() []string {
	ids := make([]string, 0, len(p.Tags))
	for _, t := range p.Tags {
		ids = append(ids, t.ID)
	}
	return ids
}

// PostInput is the full editable field set of a post. Updates resend every
// field; nothing defaults to the stored value.
type PostInput struct {
	Title       string     `json:"title"`
	Slug        string     `json:"slug,omitempty"`
	Excerpt     string     `json:"excerpt,omitempty"`
	Content     string     `json:"content"`
	Status      PostStatus `json:"status"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	CategoryID  string     `json:"category_id"`
	TagIDs      []string   `json:"tag_ids,omitempty"`
}

// PostOrder selects the ordering of a post listing
type PostOrder string

const (
	OrderPublishedDesc PostOrder = "published_at_desc"
	OrderUpdatedDesc   PostOrder = "updated_at_desc"
	OrderCreatedDesc   PostOrder = "created_at_desc"
)

// PostFilter narrows a post listing. Zero values mean "no constraint".
type PostFilter struct {
	Status     PostStatus
	CategoryID string
	TagID      string

	// PublishedFrom/PublishedBefore bound published_at as [from, before)
	PublishedFrom   *time.Time
	PublishedBefore *time.Time

	// VisibleAt restricts the listing to posts visible at that instant
	VisibleAt *time.Time

	OrderBy PostOrder
	Limit   int
}
