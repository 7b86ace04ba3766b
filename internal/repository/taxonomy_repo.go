package repository

import (
	"context"
	"database/sql"

	"github.com/blog-publishing-api/internal/database"
	"github.com/blog-publishing-api/internal/errs"
	"github.com/blog-publishing-api/internal/models"
)

// categoryRepo is the concrete implementation of CategoryRepository
type categoryRepo struct {
	db *database.DB
}

// NewCategoryRepo creates a new category repository
func NewCategoryRepo(db *database.DB) CategoryRepository {
	return &categoryRepo{db: db}
}

func (r *categoryRepo) Create(ctx context.Context, c *models.Category) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO categories (id, name, slug, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)",
		c.ID, c.Name, c.Slug, c.CreatedAt, c.UpdatedAt,
	)
	return classify(err, "category")
}

func (r *categoryRepo) GetByID(ctx context.Context, id string) (*models.Category, error) {
	return r.getOne(ctx, "SELECT id, name, slug, created_at, updated_at FROM categories WHERE id = $1", id)
}

func (r *categoryRepo) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	return r.getOne(ctx, "SELECT id, name, slug, created_at, updated_at FROM categories WHERE slug = $1", slug)
}

func (r *categoryRepo) getOne(ctx context.Context, query string, arg any) (*models.Category, error) {
	var c models.Category
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&c.ID, &c.Name, &c.Slug, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, notFound(err, "category")
	}
	return &c, nil
}

// List returns every category ordered by name
func (r *categoryRepo) List(ctx context.Context) ([]models.Category, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name, slug, created_at, updated_at FROM categories ORDER BY name, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// Delete removes a category. It fails with InvalidReference while any post
// still belongs to it.
func (r *categoryRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM categories WHERE id = $1", id)
	if err != nil {
		if errs.IsInvalidReference(classify(err, "category")) {
			return errs.InvalidReference("category", "id", "category still has posts").WithCause(err)
		}
		return classify(err, "category")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errs.NotFound("category")
	}
	return nil
}

// tagRepo is the concrete implementation of TagRepository
type tagRepo struct {
	db *database.DB
}

// NewTagRepo creates a new tag repository
func NewTagRepo(db *database.DB) TagRepository {
	return &tagRepo{db: db}
}

func (r *tagRepo) Create(ctx context.Context, t *models.Tag) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO tags (id, name, slug, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)",
		t.ID, t.Name, t.Slug, t.CreatedAt, t.UpdatedAt,
	)
	return classify(err, "tag")
}

func (r *tagRepo) GetByID(ctx context.Context, id string) (*models.Tag, error) {
	return r.getOne(ctx, "SELECT id, name, slug, created_at, updated_at FROM tags WHERE id = $1", id)
}

func (r *tagRepo) GetBySlug(ctx context.Context, slug string) (*models.Tag, error) {
	return r.getOne(ctx, "SELECT id, name, slug, created_at, updated_at FROM tags WHERE slug = $1", slug)
}

func (r *tagRepo) getOne(ctx context.Context, query string, arg any) (*models.Tag, error) {
	var t models.Tag
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&t.ID, &t.Name, &t.Slug, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, notFound(err, "tag")
	}
	return &t, nil
}

// List returns every tag ordered by name
func (r *tagRepo) List(ctx context.Context) ([]models.Tag, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name, slug, created_at, updated_at FROM tags ORDER BY name, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := []models.Tag{}
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// Delete removes a tag and detaches it from every post
func (r *tagRepo) Delete(ctx context.Context, id string) error {
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM post_tags WHERE tag_id = $1", id); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, "DELETE FROM tags WHERE id = $1", id)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return errs.NotFound("tag")
		}
		return nil
	})
	return classify(err, "tag")
}
