package repository

import (
	"context"

	"github.com/blog-publishing-api/internal/database"
	"github.com/blog-publishing-api/internal/models"
)

// viewRepo is the concrete implementation of ViewRepository
type viewRepo struct {
	db *database.DB
}

// NewViewRepo creates a new view event repository
func NewViewRepo(db *database.DB) ViewRepository {
	return &viewRepo{db: db}
}

// Create appends a view event
func (r *viewRepo) Create(ctx context.Context, event *models.ViewEvent) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO view_events (id, path, ip, created_at) VALUES ($1, $2, $3, $4)",
		event.ID, event.Path, event.IP, event.CreatedAt,
	)
	return classify(err, "view_event")
}

// Count returns the total number of recorded views
func (r *viewRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM view_events").Scan(&count)
	return count, err
}
