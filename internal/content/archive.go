package content

import (
	"sort"
	"time"

	"github.com/blog-publishing-api/internal/errs"
	"github.com/blog-publishing-api/internal/models"
)

// MonthLayout is the archive bucket key format
const MonthLayout = "2006-01"

// MonthKey returns the archive bucket of t. Buckets are calendar months in UTC.
func MonthKey(t time.Time) string {
	return t.UTC().Format(MonthLayout)
}

// MonthRange returns the half-open interval [first day of month, first day
// of next month) for a YYYY-MM key.
func MonthRange(month string) (from, before time.Time, err error) {
	start, err := time.ParseInLocation(MonthLayout, month, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, errs.Validation("month", "month must be formatted as YYYY-MM")
	}
	return start, start.AddDate(0, 1, 0), nil
}

// AggregateArchive counts the posts visible at now per publish month, most
// recent month first. Posts without a publish time are not counted.
func AggregateArchive(posts []models.Post, now time.Time) []models.ArchiveBucket {
	counts := make(map[string]int)
	for i := range posts {
		p := &posts[i]
		if p.PublishedAt == nil || !IsVisible(p, now) {
			continue
		}
		counts[MonthKey(*p.PublishedAt)]++
	}

	buckets := make([]models.ArchiveBucket, 0, len(counts))
	for month, n := range counts {
		buckets = append(buckets, models.ArchiveBucket{Month: month, Count: n})
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Month > buckets[j].Month
	})
	return buckets
}
