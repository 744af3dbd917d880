// Package posts manages the published pages (resource packs, addons and
// articles) stored in the document store. Reads are public; writes are
// restricted to admin accounts.
package posts

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/craftfolio-api/internal/docstore"
	"github.com/craftfolio-api/internal/models"
	"github.com/craftfolio-api/internal/validation"
)

const postsPath = "posts"

// Input carries the editable fields of a post
type Input struct {
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Body        string `json:"body"`
	Category    string `json:"category"`
	CoverURL    string `json:"cover_url"`
	DownloadURL string `json:"download_url"`
}

// Service owns post CRUD over the document store
type Service struct {
	store docstore.Store
	log   zerolog.Logger
}

// NewService creates a new post service
func NewService(store docstore.Store, log zerolog.Logger) *Service {
	return &Service{
		store: store,
		log:   log.With().Str("service", "posts").Logger(),
	}
}

// Create publishes a new post. Admin only.
func (s *Service) Create(ctx context.Context, in *Input, user *models.User) (*models.Post, error) {
	if user == nil {
		return nil, models.ErrAuthRequired
	}
	if !user.IsAdmin() {
		return nil, models.ErrForbidden
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	id, err := s.store.Create(ctx, postsPath, docstore.Fields{
		"slug":        in.Slug,
		"title":       strings.TrimSpace(in.Title),
		"body":        in.Body,
		"category":    in.Category,
		"coverUrl":    in.CoverURL,
		"downloadUrl": in.DownloadURL,
		"author":      user.ID,
		"createdAt":   now,
		"updatedAt":   now,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("post_id", id).Str("slug", in.Slug).Msg("Post created")
	return s.Get(ctx, id)
}

// Update overwrites the editable fields of a post. Admin only.
func (s *Service) Update(ctx context.Context, postID string, in *Input, user *models.User) (*models.Post, error) {
	if user == nil {
		return nil, models.ErrAuthRequired
	}
	if !user.IsAdmin() {
		return nil, models.ErrForbidden
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	err := s.store.Update(ctx, postsPath+"/"+postID, docstore.Fields{
		"slug":        in.Slug,
		"title":       strings.TrimSpace(in.Title),
		"body":        in.Body,
		"category":    in.Category,
		"coverUrl":    in.CoverURL,
		"downloadUrl": in.DownloadURL,
		"updatedAt":   time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, postID)
}

// Delete removes a post. Admin only. Comment and reply sub-collections
// are left behind in the store, matching comment deletion semantics.
func (s *Service) Delete(ctx context.Context, postID string, user *models.User) error {
	if user == nil {
		return models.ErrAuthRequired
	}
	if !user.IsAdmin() {
		return models.ErrForbidden
	}
	return s.store.Delete(ctx, postsPath+"/"+postID)
}

// Get fetches a single post
func (s *Service) Get(ctx context.Context, postID string) (*models.Post, error) {
	fields, err := s.store.Get(ctx, postsPath+"/"+postID)
	if err != nil {
		return nil, err
	}
	post := postFromFields(postID, fields)
	return &post, nil
}

// List returns all posts ordered by creation time
func (s *Service) List(ctx context.Context) ([]models.Post, error) {
	docs, err := s.store.List(ctx, postsPath)
	if err != nil {
		return nil, err
	}

	out := make([]models.Post, 0, len(docs))
	for _, doc := range docs {
		out = append(out, postFromFields(doc.ID, doc.Fields))
	}
	return out, nil
}

func validateInput(in *Input) error {
	if err := validation.PostTitle(in.Title); err != nil {
		return err
	}
	return validation.PostCategory(in.Category)
}

func postFromFields(id string, fields docstore.Fields) models.Post {
	str := func(key string) string {
		s, _ := fields[key].(string)
		return s
	}
	ts := func(key string) time.Time {
		t, _ := fields[key].(time.Time)
		return t
	}

	return models.Post{
		ID:          id,
		Slug:        str("slug"),
		Title:       str("title"),
		Body:        str("body"),
		Category:    str("category"),
		CoverURL:    str("coverUrl"),
		DownloadURL: str("downloadUrl"),
		AuthorID:    str("author"),
		CreatedAt:   ts("createdAt"),
		UpdatedAt:   ts("updatedAt"),
	}
}
