package validation

import (
	"regexp"
	"strings"

	"github.com/craftfolio-api/internal/models"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// MinPasswordLength is the minimum accepted password length
const MinPasswordLength = 6

// CommentText validates comment or reply text. Length is measured after
// trimming surrounding whitespace.
func CommentText(text string, minLen int) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return models.NewValidationError("text", "comment must not be empty")
	}
	if len(trimmed) < minLen {
		return models.NewValidationError("text", "comment too short")
	}
	return nil
}

// Email validates an email address
func Email(email string) error {
	if email == "" {
		return models.NewValidationError("email", "email is required")
	}
	if !emailRegex.MatchString(email) {
		return models.NewValidationError("email", "invalid email format")
	}
	return nil
}

// Password validates a password at sign-up
func Password(password string) error {
	if password == "" {
		return models.NewValidationError("password", "password is required")
	}
	if len(password) < MinPasswordLength {
		return models.NewValidationError("password", "password too short")
	}
	return nil
}

// PostTitle validates a post title
func PostTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return models.NewValidationError("title", "title is required")
	}
	return nil
}

// PostCategory validates a post category
func PostCategory(category string) error {
	if !models.ValidCategories[category] {
		return models.NewValidationError("category", "category must be one of: resource-pack, addon, article")
	}
	return nil
}
