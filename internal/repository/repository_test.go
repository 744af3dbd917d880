package repository_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/craftfolio-api/internal/mocks"
	"github.com/craftfolio-api/internal/models"
)

func TestMockUserRepository_CreateAndLookup(t *testing.T) {
	repo := mocks.NewMockUserRepository()
	ctx := context.Background()

	user := &models.User{
		ID:        "user-1",
		Email:     "creator@test.com",
		Name:      "Creator",
		Role:      "member",
		Active:    true,
		CreatedAt: time.Now(),
	}
	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	stored, err := repo.GetByID(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if stored == nil || stored.Email != "creator@test.com" {
		t.Errorf("Unexpected user %+v", stored)
	}

	// Email lookup is case-insensitive
	byEmail, err := repo.GetByEmail(ctx, "CREATOR@test.com")
	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}
	if byEmail == nil || byEmail.ID != "user-1" {
		t.Errorf("Expected user-1 by email, got %+v", byEmail)
	}
}

func TestMockUserRepository_EmailExists(t *testing.T) {
	repo := mocks.NewMockUserRepository()
	ctx := context.Background()

	user := &models.User{ID: "user-1", Email: "duplicate@test.com", Role: "member", Active: true}
	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	exists, err := repo.EmailExists(ctx, "duplicate@test.com")
	if err != nil {
		t.Fatalf("EmailExists failed: %v", err)
	}
	if !exists {
		t.Error("Email should exist")
	}

	exists, err = repo.EmailExists(ctx, "nonexistent@test.com")
	if err != nil {
		t.Fatalf("EmailExists failed: %v", err)
	}
	if exists {
		t.Error("Email should not exist")
	}
}

func TestMockUserRepository_Count(t *testing.T) {
	repo := mocks.NewMockUserRepository()
	ctx := context.Background()

	// Initially empty
	count, _ := repo.Count(ctx)
	if count != 0 {
		t.Errorf("Expected 0, got %d", count)
	}

	// Add users
	for i := 0; i < 5; i++ {
		repo.Create(ctx, &models.User{
			ID:    fmt.Sprintf("user-%d", i),
			Email: fmt.Sprintf("user%d@test.com", i),
		})
	}

	count, _ = repo.Count(ctx)
	if count != 5 {
		t.Errorf("Expected 5, got %d", count)
	}
}

func TestMockUserRepository_UnknownID(t *testing.T) {
	repo := mocks.NewMockUserRepository()

	stored, err := repo.GetByID(context.Background(), "no-such-user")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if stored != nil {
		t.Errorf("Expected nil for unknown id, got %+v", stored)
	}
}
