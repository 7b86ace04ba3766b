package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/blog-publishing-api/internal/errs"
	"github.com/blog-publishing-api/internal/models"
	"github.com/google/uuid"
)

// Column widths from the schema
const (
	MaxTitleLength    = 255
	MaxSlugLength     = 255
	MaxTaxonomyLength = 100
	MaxPathLength     = 255
	MaxIPLength       = 64
)

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// AsError converts collected validation errors into a domain error, or nil
func AsError(errors []ValidationError) error {
	var fe errs.FieldErrors
	for _, e := range errors {
		fe = append(fe, errs.Validation(e.Field, e.Message))
	}
	return fe.OrNil()
}

// ValidatePost validates the editable fields of a post. slug is the slug
// after derivation from the title.
func ValidatePost(input *models.PostInput, slug string) []ValidationError {
	var errors []ValidationError

	// Validate title
	if strings.TrimSpace(input.Title) == "" {
		errors = append(errors, ValidationError{Field: "title", Message: "title is required"})
	} else if utf8.RuneCountInString(input.Title) > MaxTitleLength {
		errors = append(errors, ValidationError{Field: "title", Message: fmt.Sprintf("title must be at most %d characters", MaxTitleLength)})
	}

	// Validate slug
	if slug == "" {
		if strings.TrimSpace(input.Title) != "" || input.Slug != "" {
			errors = append(errors, ValidationError{Field: "slug", Message: "slug must contain at least one letter or digit", Value: input.Slug})
		}
	} else if utf8.RuneCountInString(slug) > MaxSlugLength {
		errors = append(errors, ValidationError{Field: "slug", Message: fmt.Sprintf("slug must be at most %d characters", MaxSlugLength)})
	}

	// Validate content
	if strings.TrimSpace(input.Content) == "" {
		errors = append(errors, ValidationError{Field: "content", Message: "content is required"})
	}

	// Validate status
	if !models.ValidStatuses[input.Status] {
		errors = append(errors, ValidationError{
			Field:   "status",
			Message: "invalid status, must be one of: draft, published, scheduled",
			Value:   input.Status,
		})
	}

	// Scheduled posts need a publish time
	if input.Status == models.PostStatusScheduled && input.PublishedAt == nil {
		errors = append(errors, ValidationError{Field: "published_at", Message: "scheduled posts require published_at"})
	}

	// Validate category_id (FK)
	if input.CategoryID == "" {
		errors = append(errors, ValidationError{Field: "category_id", Message: "category_id is required"})
	} else if !isValidUUID(input.CategoryID) {
		errors = append(errors, ValidationError{Field: "category_id", Message: "invalid UUID format", Value: input.CategoryID})
	}

	for _, id := range input.TagIDs {
		if !isValidUUID(id) {
			errors = append(errors, ValidationError{Field: "tag_ids", Message: "invalid UUID format", Value: id})
		}
	}

	return errors
}

// ValidateComment validates a new comment
func ValidateComment(input *models.CommentInput) []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(input.AuthorName) == "" {
		errors = append(errors, ValidationError{Field: "author_name", Message: "author_name is required"})
	} else if utf8.RuneCountInString(input.AuthorName) > models.MaxAuthorNameLength {
		errors = append(errors, ValidationError{Field: "author_name", Message: fmt.Sprintf("author_name must be at most %d characters", models.MaxAuthorNameLength)})
	}

	if strings.TrimSpace(input.Content) == "" {
		errors = append(errors, ValidationError{Field: "content", Message: "content is required"})
	}

	if input.ParentID != nil && !isValidUUID(*input.ParentID) {
		errors = append(errors, ValidationError{Field: "parent_id", Message: "invalid UUID format", Value: *input.ParentID})
	}

	return errors
}

// ValidateTaxonomy validates a category or tag. slug is the derived slug.
func ValidateTaxonomy(input *models.TaxonomyInput, slug string) []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(input.Name) == "" {
		errors = append(errors, ValidationError{Field: "name", Message: "name is required"})
	} else if utf8.RuneCountInString(input.Name) > MaxTaxonomyLength {
		errors = append(errors, ValidationError{Field: "name", Message: fmt.Sprintf("name must be at most %d characters", MaxTaxonomyLength)})
	}

	if slug == "" {
		if strings.TrimSpace(input.Name) != "" || input.Slug != "" {
			errors = append(errors, ValidationError{Field: "slug", Message: "slug must contain at least one letter or digit", Value: input.Slug})
		}
	} else if utf8.RuneCountInString(slug) > MaxTaxonomyLength {
		errors = append(errors, ValidationError{Field: "slug", Message: fmt.Sprintf("slug must be at most %d characters", MaxTaxonomyLength)})
	}

	return errors
}

// ValidID reports whether id is a well-formed entity identifier
func ValidID(id string) bool {
	return isValidUUID(id)
}

// TruncateRunes cuts s to at most n runes
func TruncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}

func isValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
