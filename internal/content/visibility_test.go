package content

import (
	"testing"
	"time"

	"github.com/blog-publishing-api/internal/models"
	"github.com/stretchr/testify/assert"
)

func ptrTime(t time.Time) *time.Time { return &t }

func TestIsVisible(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		post models.Post
		want bool
	}{
		{"published without date", models.Post{Status: models.PostStatusPublished}, true},
		{"published with future date", models.Post{Status: models.PostStatusPublished, PublishedAt: ptrTime(now.Add(48 * time.Hour))}, true},
		{"scheduled in the past", models.Post{Status: models.PostStatusScheduled, PublishedAt: ptrTime(now.Add(-time.Minute))}, true},
		{"scheduled exactly now", models.Post{Status: models.PostStatusScheduled, PublishedAt: ptrTime(now)}, true},
		{"scheduled in the future", models.Post{Status: models.PostStatusScheduled, PublishedAt: ptrTime(now.Add(time.Hour))}, false},
		{"scheduled without date", models.Post{Status: models.PostStatusScheduled}, false},
		{"draft with past date", models.Post{Status: models.PostStatusDraft, PublishedAt: ptrTime(now.Add(-time.Hour))}, false},
		{"draft without date", models.Post{Status: models.PostStatusDraft}, false},
		{"unknown status", models.Post{Status: "archived"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsVisible(&tt.post, now))
		})
	}
}

func TestScheduledPostBecomesVisible(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	post := models.Post{Status: models.PostStatusScheduled, PublishedAt: ptrTime(now.Add(time.Hour))}

	assert.False(t, IsVisible(&post, now))
	assert.True(t, IsVisible(&post, now.Add(2*time.Hour)))
}

func TestDraftNeverVisible(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	post := models.Post{Status: models.PostStatusDraft, PublishedAt: ptrTime(base)}
	for _, offset := range []time.Duration{-time.Hour, 0, time.Hour, 24 * 365 * time.Hour} {
		assert.False(t, IsVisible(&post, base.Add(offset)))
	}
}

func TestVisibleSQL(t *testing.T) {
	assert.Equal(t,
		"(p.status = 'published' OR (p.status = 'scheduled' AND p.published_at <= $3))",
		VisibleSQL("p.", 3))
	assert.Equal(t,
		"(status = 'published' OR (status = 'scheduled' AND published_at <= $1))",
		VisibleSQL("", 1))
}

func TestFilterVisible(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	posts := []models.Post{
		{ID: "a", Status: models.PostStatusPublished},
		{ID: "b", Status: models.PostStatusDraft},
		{ID: "c", Status: models.PostStatusScheduled, PublishedAt: ptrTime(now.Add(time.Hour))},
		{ID: "d", Status: models.PostStatusScheduled, PublishedAt: ptrTime(now.Add(-time.Hour))},
	}

	got := FilterVisible(posts, now)
	ids := make([]string, 0, len(got))
	for _, p := range got {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"a", "d"}, ids)
}
