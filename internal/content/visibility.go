package content

import (
	"fmt"
	"time"

	"github.com/blog-publishing-api/internal/models"
)

// IsVisible reports whether a post may be shown to non-privileged readers at
// now. Published posts are always visible, scheduled posts once their
// publish time has passed, drafts never.
func IsVisible(p *models.Post, now time.Time) bool {
	switch p.Status {
	case models.PostStatusPublished:
		return true
	case models.PostStatusScheduled:
		return p.PublishedAt != nil && !p.PublishedAt.After(now)
	default:
		return false
	}
}

// VisibleSQL renders the IsVisible predicate as a SQL condition over the
// given column prefix (e.g. "p."). The instant is bound to placeholder $argN.
// A scheduled row with NULL published_at compares to NULL and is excluded,
// matching IsVisible.
func VisibleSQL(prefix string, argN int) string {
	return fmt.Sprintf("(%[1]sstatus = '%[2]s' OR (%[1]sstatus = '%[3]s' AND %[1]spublished_at <= $%[4]d))",
		prefix, models.PostStatusPublished, models.PostStatusScheduled, argN)
}

// FilterVisible keeps the posts visible at now, preserving order
func FilterVisible(posts []models.Post, now time.Time) []models.Post {
	out := make([]models.Post, 0, len(posts))
	for i := range posts {
		if IsVisible(&posts[i], now) {
			out = append(out, posts[i])
		}
	}
	return out
}
