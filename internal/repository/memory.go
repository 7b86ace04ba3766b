package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/blog-publishing-api/internal/content"
	"github.com/blog-publishing-api/internal/errs"
	"github.com/blog-publishing-api/internal/models"
)

// memStore keeps every table behind one lock so that the unique and foreign
// key rules of the SQL schema are checked and applied atomically.
type memStore struct {
	mu         sync.RWMutex
	posts      map[string]models.Post
	postTags   map[string][]string
	categories map[string]models.Category
	tags       map[string]models.Tag
	comments   map[string]models.Comment
	views      []models.ViewEvent
}

// NewInMemory creates repositories backed by process memory. They enforce
// the same constraints as the PostgreSQL schema.
func NewInMemory() *Repositories {
	s := &memStore{
		posts:      make(map[string]models.Post),
		postTags:   make(map[string][]string),
		categories: make(map[string]models.Category),
		tags:       make(map[string]models.Tag),
		comments:   make(map[string]models.Comment),
	}
	return &Repositories{
		Post:     &memPostRepo{s},
		Category: &memCategoryRepo{s},
		Tag:      &memTagRepo{s},
		Comment:  &memCommentRepo{s},
		View:     &memViewRepo{s},
	}
}

// hydrate returns a copy of the stored post with its category and tags.
// Caller holds at least the read lock.
func (s *memStore) hydrate(p models.Post) models.Post {
	if c, ok := s.categories[p.CategoryID]; ok {
		p.Category = &c
	}
	p.Tags = []models.Tag{}
	for _, id := range s.postTags[p.ID] {
		if t, ok := s.tags[id]; ok {
			p.Tags = append(p.Tags, t)
		}
	}
	sort.Slice(p.Tags, func(i, j int) bool {
		if p.Tags[i].Name != p.Tags[j].Name {
			return p.Tags[i].Name < p.Tags[j].Name
		}
		return p.Tags[i].ID < p.Tags[j].ID
	})
	if p.PublishedAt != nil {
		t := *p.PublishedAt
		p.PublishedAt = &t
	}
	return p
}

// checkPost enforces posts_slug_key and the category/tag foreign keys.
// Caller holds the write lock.
func (s *memStore) checkPost(post *models.Post, tagIDs []string) error {
	for id, other := range s.posts {
		if id != post.ID && other.Slug == post.Slug {
			return errs.Duplicate("post", "slug")
		}
	}
	if _, ok := s.categories[post.CategoryID]; !ok {
		return errs.InvalidReference("post", "category_id", "category does not exist")
	}
	seen := make(map[string]bool, len(tagIDs))
	for _, id := range tagIDs {
		if _, ok := s.tags[id]; !ok {
			return errs.InvalidReference("post", "tag_id", "tag does not exist")
		}
		if seen[id] {
			return errs.Duplicate("post", "tag_id")
		}
		seen[id] = true
	}
	return nil
}

type memPostRepo struct{ s *memStore }

func (r *memPostRepo) Create(_ context.Context, post *models.Post, tagIDs []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.posts[post.ID]; ok {
		return errs.Duplicate("post", "id")
	}
	if err := r.s.checkPost(post, tagIDs); err != nil {
		return err
	}

	stored := *post
	stored.Category, stored.Tags = nil, nil
	r.s.posts[post.ID] = stored
	r.s.postTags[post.ID] = append([]string(nil), tagIDs...)
	return nil
}

func (r *memPostRepo) Update(_ context.Context, post *models.Post, tagIDs []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.posts[post.ID]
	if !ok {
		return errs.NotFound("post")
	}
	if err := r.s.checkPost(post, tagIDs); err != nil {
		return err
	}

	stored := *post
	stored.Category, stored.Tags = nil, nil
	stored.CreatedAt = existing.CreatedAt
	r.s.posts[post.ID] = stored
	r.s.postTags[post.ID] = append([]string(nil), tagIDs...)
	return nil
}

func (r *memPostRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.posts[id]; !ok {
		return errs.NotFound("post")
	}
	for cid, c := range r.s.comments {
		if c.PostID == id {
			delete(r.s.comments, cid)
		}
	}
	delete(r.s.postTags, id)
	delete(r.s.posts, id)
	return nil
}

func (r *memPostRepo) GetByID(_ context.Context, id string) (*models.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.posts[id]
	if !ok {
		return nil, errs.NotFound("post")
	}
	out := r.s.hydrate(p)
	return &out, nil
}

func (r *memPostRepo) GetBySlug(_ context.Context, slug string) (*models.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, p := range r.s.posts {
		if p.Slug == slug {
			out := r.s.hydrate(p)
			return &out, nil
		}
	}
	return nil, errs.NotFound("post")
}

func (r *memPostRepo) List(_ context.Context, filter models.PostFilter) ([]models.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	posts := []models.Post{}
	for _, p := range r.s.posts {
		if !r.matches(&p, filter) {
			continue
		}
		posts = append(posts, r.s.hydrate(p))
	}

	sortPosts(posts, filter.OrderBy)
	if filter.Limit > 0 && len(posts) > filter.Limit {
		posts = posts[:filter.Limit]
	}
	return posts, nil
}

func (r *memPostRepo) matches(p *models.Post, f models.PostFilter) bool {
	if f.Status != "" && p.Status != f.Status {
		return false
	}
	if f.CategoryID != "" && p.CategoryID != f.CategoryID {
		return false
	}
	if f.TagID != "" && !containsString(r.s.postTags[p.ID], f.TagID) {
		return false
	}
	if f.PublishedFrom != nil && (p.PublishedAt == nil || p.PublishedAt.Before(*f.PublishedFrom)) {
		return false
	}
	if f.PublishedBefore != nil && (p.PublishedAt == nil || !p.PublishedAt.Before(*f.PublishedBefore)) {
		return false
	}
	if f.VisibleAt != nil && !content.IsVisible(p, *f.VisibleAt) {
		return false
	}
	return true
}

// sortPosts mirrors orderClause
func sortPosts(posts []models.Post, order models.PostOrder) {
	sort.Slice(posts, func(i, j int) bool {
		a, b := &posts[i], &posts[j]
		switch order {
		case models.OrderUpdatedDesc:
			if !a.UpdatedAt.Equal(b.UpdatedAt) {
				return a.UpdatedAt.After(b.UpdatedAt)
			}
		case models.OrderCreatedDesc:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
		default:
			switch {
			case a.PublishedAt != nil && b.PublishedAt == nil:
				return true
			case a.PublishedAt == nil && b.PublishedAt != nil:
				return false
			case a.PublishedAt != nil && !a.PublishedAt.Equal(*b.PublishedAt):
				return a.PublishedAt.After(*b.PublishedAt)
			}
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
		}
		return a.ID > b.ID
	})
}

func (r *memPostRepo) ArchiveCounts(_ context.Context, visibleAt time.Time) ([]models.ArchiveBucket, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	posts := make([]models.Post, 0, len(r.s.posts))
	for _, p := range r.s.posts {
		posts = append(posts, p)
	}
	return content.AggregateArchive(posts, visibleAt), nil
}

func (r *memPostRepo) ReassignCategory(_ context.Context, fromID, toID string, updatedAt time.Time) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.categories[toID]; !ok {
		return 0, errs.InvalidReference("post", "category_id", "category does not exist")
	}
	n := 0
	for id, p := range r.s.posts {
		if p.CategoryID == fromID {
			p.CategoryID = toID
			p.UpdatedAt = updatedAt
			r.s.posts[id] = p
			n++
		}
	}
	return n, nil
}

func (r *memPostRepo) Count(_ context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.posts), nil
}

type memCategoryRepo struct{ s *memStore }

func (r *memCategoryRepo) Create(_ context.Context, c *models.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.categories[c.ID]; ok {
		return errs.Duplicate("category", "id")
	}
	for _, other := range r.s.categories {
		if other.Name == c.Name {
			return errs.Duplicate("category", "name")
		}
		if other.Slug == c.Slug {
			return errs.Duplicate("category", "slug")
		}
	}
	r.s.categories[c.ID] = *c
	return nil
}

func (r *memCategoryRepo) GetByID(_ context.Context, id string) (*models.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.categories[id]
	if !ok {
		return nil, errs.NotFound("category")
	}
	return &c, nil
}

func (r *memCategoryRepo) GetBySlug(_ context.Context, slug string) (*models.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, c := range r.s.categories {
		if c.Slug == slug {
			return &c, nil
		}
	}
	return nil, errs.NotFound("category")
}

func (r *memCategoryRepo) List(_ context.Context) ([]models.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]models.Category, 0, len(r.s.categories))
	for _, c := range r.s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *memCategoryRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.categories[id]; !ok {
		return errs.NotFound("category")
	}
	for _, p := range r.s.posts {
		if p.CategoryID == id {
			return errs.InvalidReference("category", "id", "category still has posts")
		}
	}
	delete(r.s.categories, id)
	return nil
}

type memTagRepo struct{ s *memStore }

func (r *memTagRepo) Create(_ context.Context, t *models.Tag) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.tags[t.ID]; ok {
		return errs.Duplicate("tag", "id")
	}
	for _, other := range r.s.tags {
		if other.Name == t.Name {
			return errs.Duplicate("tag", "name")
		}
		if other.Slug == t.Slug {
			return errs.Duplicate("tag", "slug")
		}
	}
	r.s.tags[t.ID] = *t
	return nil
}

func (r *memTagRepo) GetByID(_ context.Context, id string) (*models.Tag, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.tags[id]
	if !ok {
		return nil, errs.NotFound("tag")
	}
	return &t, nil
}

func (r *memTagRepo) GetBySlug(_ context.Context, slug string) (*models.Tag, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, t := range r.s.tags {
		if t.Slug == slug {
			return &t, nil
		}
	}
	return nil, errs.NotFound("tag")
}

func (r *memTagRepo) List(_ context.Context) ([]models.Tag, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]models.Tag, 0, len(r.s.tags))
	for _, t := range r.s.tags {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *memTagRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.tags[id]; !ok {
		return errs.NotFound("tag")
	}
	for postID, ids := range r.s.postTags {
		r.s.postTags[postID] = removeString(ids, id)
	}
	delete(r.s.tags, id)
	return nil
}

type memCommentRepo struct{ s *memStore }

func (r *memCommentRepo) Create(_ context.Context, c *models.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.comments[c.ID]; ok {
		return errs.Duplicate("comment", "id")
	}
	if _, ok := r.s.posts[c.PostID]; !ok {
		return errs.InvalidReference("comment", "post_id", "post does not exist")
	}
	if c.ParentID != nil {
		if _, ok := r.s.comments[*c.ParentID]; !ok {
			return errs.InvalidReference("comment", "parent_id", "parent comment does not exist")
		}
	}

	stored := *c
	if c.ParentID != nil {
		parent := *c.ParentID
		stored.ParentID = &parent
	}
	r.s.comments[c.ID] = stored
	return nil
}

func (r *memCommentRepo) GetByID(_ context.Context, id string) (*models.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.comments[id]
	if !ok {
		return nil, errs.NotFound("comment")
	}
	return &c, nil
}

func (r *memCommentRepo) ListByPost(_ context.Context, postID string) ([]models.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []models.Comment{}
	for _, c := range r.s.comments {
		if c.PostID == postID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *memCommentRepo) Count(_ context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.comments), nil
}

type memViewRepo struct{ s *memStore }

func (r *memViewRepo) Create(_ context.Context, e *models.ViewEvent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.views = append(r.s.views, *e)
	return nil
}

func (r *memViewRepo) Count(_ context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.views), nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func removeString(list []string, s string) []string {
	out := list[:0]
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}
