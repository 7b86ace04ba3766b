package service

import (
	"context"
	"time"

	"github.com/blog-publishing-api/internal/models"
	"github.com/blog-publishing-api/internal/repository"
)

// archiveService is the concrete implementation of ArchiveService
type archiveService struct {
	posts repository.PostRepository
	now   Clock
}

func newArchiveService(posts repository.PostRepository, clock Clock) *archiveService {
	return &archiveService{posts: posts, now: clock}
}

// Stats counts the posts visible at asOf per publish month, newest first
func (s *archiveService) Stats(ctx context.Context, asOf time.Time) ([]models.ArchiveBucket, error) {
	return s.posts.ArchiveCounts(ctx, sampleNow(s.now, asOf))
}
