package service

import (
	"context"
	"fmt"

	"github.com/blog-publishing-api/internal/errs"
	"github.com/blog-publishing-api/internal/models"
	"github.com/blog-publishing-api/internal/repository"
	"github.com/rs/zerolog"
)

// topPathsLimit is how many paths the dashboard lists
const topPathsLimit = 10

// dashboardService is the concrete implementation of DashboardService
type dashboardService struct {
	repos   *repository.Repositories
	counter ViewCounter
	now     Clock
	log     zerolog.Logger
}

func newDashboardService(repos *repository.Repositories, counter ViewCounter, clock Clock, log zerolog.Logger) *dashboardService {
	return &dashboardService{
		repos:   repos,
		counter: counter,
		now:     clock,
		log:     log.With().Str("service", "dashboard").Logger(),
	}
}

// Stats returns row totals across every post regardless of visibility
func (s *dashboardService) Stats(ctx context.Context, viewer models.Viewer) (*models.DashboardStats, error) {
	if !viewer.Admin {
		return nil, errs.Forbidden("view dashboard")
	}

	stats := &models.DashboardStats{GeneratedAt: s.now()}

	var err error
	if stats.PostCount, err = s.repos.Post.Count(ctx); err != nil {
		return nil, fmt.Errorf("failed to count posts: %w", err)
	}
	if stats.CommentCount, err = s.repos.Comment.Count(ctx); err != nil {
		return nil, fmt.Errorf("failed to count comments: %w", err)
	}
	if stats.ViewCount, err = s.repos.View.Count(ctx); err != nil {
		return nil, fmt.Errorf("failed to count views: %w", err)
	}

	if s.counter != nil {
		top, err := s.counter.Top(ctx, topPathsLimit)
		if err != nil {
			s.log.Warn().Err(err).Msg("Failed to read view counter")
		} else {
			stats.TopPaths = top
		}
	}

	return stats, nil
}
