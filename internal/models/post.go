package models

import (
	"time"
)

// Post represents a published page: a resource pack, addon or plain
// article. Posts live in the document store together with their comment
// sub-collections.
type Post struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	Category    string    `json:"category"`
	CoverURL    string    `json:"cover_url,omitempty"`
	DownloadURL string    `json:"download_url,omitempty"`
	AuthorID    string    `json:"author_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ValidCategories defines allowed post categories
var ValidCategories = map[string]bool{
	"resource-pack": true,
	"addon":         true,
	"article":       true,
}
