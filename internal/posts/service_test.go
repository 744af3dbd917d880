package posts_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/craftfolio-api/internal/mocks"
	"github.com/craftfolio-api/internal/models"
	"github.com/craftfolio-api/internal/posts"
)

var (
	admin  = &models.User{ID: "u-admin", Email: "admin@x.com", Role: "admin", Active: true}
	member = &models.User{ID: "u-member", Email: "member@x.com", Role: "member", Active: true}
)

func newTestPosts() (*posts.Service, *mocks.MockDocStore) {
	store := mocks.NewMockDocStore()
	return posts.NewService(store, zerolog.Nop()), store
}

func packInput() *posts.Input {
	return &posts.Input{
		Slug:        "emerald-pack",
		Title:       "Emerald Pack",
		Body:        "A 16x resource pack.",
		Category:    "resource-pack",
		DownloadURL: "https://example.com/emerald.zip",
	}
}

func TestCreate_AdminOnly(t *testing.T) {
	svc, _ := newTestPosts()
	ctx := context.Background()

	if _, err := svc.Create(ctx, packInput(), nil); !errors.Is(err, models.ErrAuthRequired) {
		t.Errorf("Expected ErrAuthRequired for anonymous, got %v", err)
	}
	if _, err := svc.Create(ctx, packInput(), member); !errors.Is(err, models.ErrForbidden) {
		t.Errorf("Expected ErrForbidden for member, got %v", err)
	}

	post, err := svc.Create(ctx, packInput(), admin)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if post.Title != "Emerald Pack" || post.AuthorID != admin.ID {
		t.Errorf("Unexpected post %+v", post)
	}
	if post.CreatedAt.IsZero() {
		t.Error("Expected CreatedAt to be set")
	}
}

func TestCreate_Validation(t *testing.T) {
	svc, _ := newTestPosts()
	ctx := context.Background()

	var vErr *models.ValidationError

	in := packInput()
	in.Title = "   "
	if _, err := svc.Create(ctx, in, admin); !errors.As(err, &vErr) {
		t.Errorf("Expected validation error for blank title, got %v", err)
	}

	in = packInput()
	in.Category = "shader"
	if _, err := svc.Create(ctx, in, admin); !errors.As(err, &vErr) {
		t.Errorf("Expected validation error for unknown category, got %v", err)
	}
}

func TestUpdate(t *testing.T) {
	svc, _ := newTestPosts()
	ctx := context.Background()

	post, err := svc.Create(ctx, packInput(), admin)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	in := packInput()
	in.Title = "Emerald Pack v2"
	updated, err := svc.Update(ctx, post.ID, in, admin)
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Title != "Emerald Pack v2" {
		t.Errorf("Expected updated title, got %q", updated.Title)
	}

	if _, err := svc.Update(ctx, post.ID, in, member); !errors.Is(err, models.ErrForbidden) {
		t.Errorf("Expected ErrForbidden for member update, got %v", err)
	}
}

func TestDeleteAndList(t *testing.T) {
	svc, _ := newTestPosts()
	ctx := context.Background()

	first, err := svc.Create(ctx, packInput(), admin)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	second := packInput()
	second.Slug = "ruby-addon"
	second.Title = "Ruby Addon"
	second.Category = "addon"
	if _, err := svc.Create(ctx, second, admin); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	all, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("Expected 2 posts, got %d", len(all))
	}

	if err := svc.Delete(ctx, first.ID, member); !errors.Is(err, models.ErrForbidden) {
		t.Errorf("Expected ErrForbidden for member delete, got %v", err)
	}
	if err := svc.Delete(ctx, first.ID, admin); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, err := svc.Get(ctx, first.ID); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
}
