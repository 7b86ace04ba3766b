package models

import "time"

// ViewEvent is one raw page visit; rows are append-only
type ViewEvent struct {
	ID        string    `json:"id" db:"id"`
	Path      string    `json:"path" db:"path"`
	IP        string    `json:"ip" db:"ip"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ArchiveBucket is the number of visible posts published in one month
type ArchiveBucket struct {
	Month string `json:"month"` // YYYY-MM
	Count int    `json:"count"`
}

// PathCount is a view counter entry for a single path
type PathCount struct {
	Path  string `json:"path"`
	Views int64  `json:"views"`
}

// DashboardStats is the admin overview
type DashboardStats struct {
	PostCount    int         `json:"post_count"`
	CommentCount int         `json:"comment_count"`
	ViewCount    int         `json:"view_count"`
	TopPaths     []PathCount `json:"top_paths,omitempty"`
	GeneratedAt  time.Time   `json:"generated_at"`
}

// Viewer is the capability of the caller. Admin viewers see every post
// regardless of visibility and may mutate content.
type Viewer struct {
	Admin bool
}

var (
	Public = Viewer{}
	Admin  = Viewer{Admin: true}
)
