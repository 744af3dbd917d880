package validation_test

import (
	"errors"
	"testing"

	"github.com/craftfolio-api/internal/models"
	"github.com/craftfolio-api/internal/validation"
)

func TestCommentText(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr string
	}{
		{"valid", "great resource pack!", ""},
		{"exactly min length", "nice!", ""},
		{"padded but long enough", "  nice!  ", ""},
		{"empty", "", "comment must not be empty"},
		{"whitespace only", "   \t\n  ", "comment must not be empty"},
		{"too short", "hey", "comment too short"},
		{"too short after trim", "  hi  ", "comment too short"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validation.CommentText(tt.text, 5)

			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Expected no error, got %v", err)
				}
				return
			}

			if err == nil {
				t.Fatalf("Expected error %q, got nil", tt.wantErr)
			}
			var vErr *models.ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("Expected ValidationError, got %T", err)
			}
			if vErr.Message != tt.wantErr {
				t.Errorf("Expected message %q, got %q", tt.wantErr, vErr.Message)
			}
		})
	}
}

func TestEmail(t *testing.T) {
	valid := []string{"user@example.com", "a.b+c@sub.domain.org"}
	for _, email := range valid {
		if err := validation.Email(email); err != nil {
			t.Errorf("Expected %q to be valid, got %v", email, err)
		}
	}

	invalid := []string{"", "not-an-email", "missing@tld", "@example.com"}
	for _, email := range invalid {
		if err := validation.Email(email); err == nil {
			t.Errorf("Expected %q to be rejected", email)
		}
	}
}

func TestPassword(t *testing.T) {
	if err := validation.Password("secret1"); err != nil {
		t.Errorf("Expected password to be accepted, got %v", err)
	}
	if err := validation.Password(""); err == nil {
		t.Error("Expected empty password to be rejected")
	}
	if err := validation.Password("abc"); err == nil {
		t.Error("Expected short password to be rejected")
	}
}

func TestPostCategory(t *testing.T) {
	for _, category := range []string{"resource-pack", "addon", "article"} {
		if err := validation.PostCategory(category); err != nil {
			t.Errorf("Expected category %q to be valid, got %v", category, err)
		}
	}
	if err := validation.PostCategory("mod"); err == nil {
		t.Error("Expected unknown category to be rejected")
	}
}
