package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/blog-publishing-api/internal/content"
	"github.com/blog-publishing-api/internal/database"
	"github.com/blog-publishing-api/internal/errs"
	"github.com/blog-publishing-api/internal/models"
	"github.com/lib/pq"
)

const postColumns = `
	p.id, p.title, p.slug, COALESCE(p.excerpt, ''), p.content, p.status, p.published_at,
	p.category_id, p.created_at, p.updated_at,
	c.id, c.name, c.slug, c.created_at, c.updated_at
	FROM posts p
	JOIN categories c ON c.id = p.category_id`

// queryer is satisfied by both *sql.DB and *sql.Tx
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// postRepo is the concrete implementation of PostRepository
type postRepo struct {
	db *database.DB
}

// NewPostRepo creates a new post repository
func NewPostRepo(db *database.DB) PostRepository {
	return &postRepo{db: db}
}

// Create inserts a post and its tag associations in one transaction
func (r *postRepo) Create(ctx context.Context, post *models.Post, tagIDs []string) error {
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO posts (id, title, slug, excerpt, content, status, published_at, category_id, created_at, updated_at)
			VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8, $9, $10)
		`
		_, err := tx.ExecContext(ctx, query,
			post.ID, post.Title, post.Slug, post.Excerpt, post.Content,
			post.Status, post.PublishedAt, post.CategoryID,
			post.CreatedAt, post.UpdatedAt,
		)
		if err != nil {
			return err
		}
		return replaceTags(ctx, tx, post.ID, tagIDs)
	})
	return classify(err, "post")
}

// Update rewrites every editable column and replaces the tag set
func (r *postRepo) Update(ctx context.Context, post *models.Post, tagIDs []string) error {
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		query := `
			UPDATE posts
			SET title = $2, slug = $3, excerpt = NULLIF($4, ''), content = $5, status = $6,
			    published_at = $7, category_id = $8, updated_at = $9
			WHERE id = $1
		`
		res, err := tx.ExecContext(ctx, query,
			post.ID, post.Title, post.Slug, post.Excerpt, post.Content,
			post.Status, post.PublishedAt, post.CategoryID, post.UpdatedAt,
		)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return errs.NotFound("post")
		}
		return replaceTags(ctx, tx, post.ID, tagIDs)
	})
	return classify(err, "post")
}

// replaceTags clears the post's associations then writes the new set
func replaceTags(ctx context.Context, tx *sql.Tx, postID string, tagIDs []string) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM post_tags WHERE post_id = $1", postID); err != nil {
		return err
	}
	if len(tagIDs) == 0 {
		return nil
	}
	_, err := tx.ExecContext(ctx,
		"INSERT INTO post_tags (post_id, tag_id) SELECT $1::uuid, unnest($2::uuid[])",
		postID, pq.Array(tagIDs),
	)
	return err
}

// Delete removes the post together with its tag associations and comments
func (r *postRepo) Delete(ctx context.Context, id string) error {
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM post_tags WHERE post_id = $1", id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM comments WHERE post_id = $1", id); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, "DELETE FROM posts WHERE id = $1", id)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return errs.NotFound("post")
		}
		return nil
	})
	return classify(err, "post")
}

// GetByID retrieves a post with its category and tags
func (r *postRepo) GetByID(ctx context.Context, id string) (*models.Post, error) {
	return r.getOne(ctx, "p.id = $1", id)
}

// GetBySlug retrieves a post with its category and tags
func (r *postRepo) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	return r.getOne(ctx, "p.slug = $1", slug)
}

func (r *postRepo) getOne(ctx context.Context, cond string, arg any) (*models.Post, error) {
	posts, err := r.query(ctx, "SELECT"+postColumns+" WHERE "+cond, arg)
	if err != nil {
		return nil, classify(err, "post")
	}
	if len(posts) == 0 {
		return nil, errs.NotFound("post")
	}
	return &posts[0], nil
}

// List returns the posts matching filter
func (r *postRepo) List(ctx context.Context, filter models.PostFilter) ([]models.Post, error) {
	var (
		conds []string
		args  []any
	)
	add := func(format string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(format, len(args)))
	}

	if filter.Status != "" {
		add("p.status = $%d", string(filter.Status))
	}
	if filter.CategoryID != "" {
		add("p.category_id = $%d", filter.CategoryID)
	}
	if filter.TagID != "" {
		add("EXISTS (SELECT 1 FROM post_tags pt WHERE pt.post_id = p.id AND pt.tag_id = $%d)", filter.TagID)
	}
	if filter.PublishedFrom != nil {
		add("p.published_at >= $%d", *filter.PublishedFrom)
	}
	if filter.PublishedBefore != nil {
		add("p.published_at < $%d", *filter.PublishedBefore)
	}
	if filter.VisibleAt != nil {
		args = append(args, *filter.VisibleAt)
		conds = append(conds, content.VisibleSQL("p.", len(args)))
	}

	var sb strings.Builder
	sb.WriteString("SELECT")
	sb.WriteString(postColumns)
	if len(conds) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(conds, " AND "))
	}
	sb.WriteString(" ORDER BY ")
	sb.WriteString(orderClause(filter.OrderBy))
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	}

	posts, err := r.query(ctx, sb.String(), args...)
	return posts, classify(err, "post")
}

func orderClause(order models.PostOrder) string {
	switch order {
	case models.OrderUpdatedDesc:
		return "p.updated_at DESC, p.id DESC"
	case models.OrderCreatedDesc:
		return "p.created_at DESC, p.id DESC"
	default:
		return "p.published_at DESC NULLS LAST, p.created_at DESC, p.id DESC"
	}
}

func (r *postRepo) query(ctx context.Context, query string, args ...any) ([]models.Post, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []models.Post{}
	for rows.Next() {
		var post models.Post
		var category models.Category
		var publishedAt sql.NullTime

		err := rows.Scan(
			&post.ID, &post.Title, &post.Slug, &post.Excerpt, &post.Content, &post.Status, &publishedAt,
			&post.CategoryID, &post.CreatedAt, &post.UpdatedAt,
			&category.ID, &category.Name, &category.Slug, &category.CreatedAt, &category.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		if publishedAt.Valid {
			post.PublishedAt = &publishedAt.Time
		}
		post.Category = &category
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := loadTags(ctx, r.db, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// loadTags fills the tag set of every post with a single statement, so a
// concurrent replacement is seen either entirely or not at all.
func loadTags(ctx context.Context, q queryer, posts []models.Post) error {
	if len(posts) == 0 {
		return nil
	}

	index := make(map[string]int, len(posts))
	ids := make([]string, 0, len(posts))
	for i := range posts {
		posts[i].Tags = []models.Tag{}
		index[posts[i].ID] = i
		ids = append(ids, posts[i].ID)
	}

	rows, err := q.QueryContext(ctx, `
		SELECT pt.post_id, t.id, t.name, t.slug, t.created_at, t.updated_at
		FROM post_tags pt
		JOIN tags t ON t.id = pt.tag_id
		WHERE pt.post_id = ANY($1::uuid[])
		ORDER BY t.name, t.id
	`, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var postID string
		var tag models.Tag
		if err := rows.Scan(&postID, &tag.ID, &tag.Name, &tag.Slug, &tag.CreatedAt, &tag.UpdatedAt); err != nil {
			return err
		}
		if i, ok := index[postID]; ok {
			posts[i].Tags = append(posts[i].Tags, tag)
		}
	}
	return rows.Err()
}

// ArchiveCounts groups the posts visible at visibleAt by UTC publish month
func (r *postRepo) ArchiveCounts(ctx context.Context, visibleAt time.Time) ([]models.ArchiveBucket, error) {
	query := `
		SELECT to_char(p.published_at AT TIME ZONE 'UTC', 'YYYY-MM') AS month, COUNT(*)
		FROM posts p
		WHERE p.published_at IS NOT NULL AND ` + content.VisibleSQL("p.", 1) + `
		GROUP BY month
		ORDER BY month DESC
	`
	rows, err := r.db.QueryContext(ctx, query, visibleAt)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	buckets := []models.ArchiveBucket{}
	for rows.Next() {
		var b models.ArchiveBucket
		if err := rows.Scan(&b.Month, &b.Count); err != nil {
			return nil, err
		}
		buckets = append(buckets, b)
	}
	return buckets, rows.Err()
}

// ReassignCategory moves every post of fromID to toID
func (r *postRepo) ReassignCategory(ctx context.Context, fromID, toID string, updatedAt time.Time) (int, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE posts SET category_id = $2, updated_at = $3 WHERE category_id = $1",
		fromID, toID, updatedAt,
	)
	if err != nil {
		return 0, classify(err, "post")
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// Count returns the total number of posts
func (r *postRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM posts").Scan(&count)
	return count, err
}

// notFound maps sql.ErrNoRows to the entity's NotFound error
func notFound(err error, entity string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return errs.NotFound(entity)
	}
	return classify(err, entity)
}
