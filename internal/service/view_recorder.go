package service

import (
	"context"
	"strings"

	"github.com/blog-publishing-api/internal/models"
	"github.com/blog-publishing-api/internal/repository"
	"github.com/blog-publishing-api/internal/validation"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// viewRecorder is the concrete implementation of ViewRecorder
type viewRecorder struct {
	views       repository.ViewRepository
	counter     ViewCounter
	adminPrefix string
	now         Clock
	log         zerolog.Logger
}

func newViewRecorder(views repository.ViewRepository, counter ViewCounter, adminPrefix string, clock Clock, log zerolog.Logger) *viewRecorder {
	return &viewRecorder{
		views:       views,
		counter:     counter,
		adminPrefix: strings.TrimSuffix(adminPrefix, "/"),
		now:         clock,
		log:         log.With().Str("service", "views").Logger(),
	}
}

// Record appends a view event for path unless it is under the admin prefix.
// Failures are logged and dropped.
func (r *viewRecorder) Record(ctx context.Context, path, ip string) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error().Interface("panic", rec).Str("path", path).Msg("View recording panicked")
		}
	}()

	if r.isAdminPath(path) {
		return
	}

	event := &models.ViewEvent{
		ID:        uuid.NewString(),
		Path:      validation.TruncateRunes(path, validation.MaxPathLength),
		IP:        validation.TruncateRunes(ip, validation.MaxIPLength),
		CreatedAt: r.now(),
	}
	if err := r.views.Create(ctx, event); err != nil {
		r.log.Warn().Err(err).Str("path", event.Path).Msg("Failed to record view")
	}

	if r.counter != nil {
		if err := r.counter.Incr(ctx, event.Path); err != nil {
			r.log.Warn().Err(err).Str("path", event.Path).Msg("Failed to increment view counter")
		}
	}
}

func (r *viewRecorder) isAdminPath(path string) bool {
	if r.adminPrefix == "" {
		return false
	}
	return path == r.adminPrefix || strings.HasPrefix(path, r.adminPrefix+"/")
}
