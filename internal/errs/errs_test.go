package errs

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
		msg   string
	}{
		{"not found", NotFound("post"), IsNotFound, "post not found"},
		{"duplicate", Duplicate("post", "slug"), IsDuplicateKey, "post duplicate key (slug)"},
		{"invalid reference", InvalidReference("comment", "parent_id", "parent belongs to another post"), IsInvalidReference,
			"comment invalid reference (parent_id): parent belongs to another post"},
		{"validation", Validation("title", "title is required"), IsValidation, "validation failed (title): title is required"},
		{"forbidden", Forbidden("create post"), IsForbidden, "operation not allowed: create post requires admin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.check(tt.err) {
				t.Errorf("kind check failed for %v", tt.err)
			}
			if tt.err.Error() != tt.msg {
				t.Errorf("Expected %q, got %q", tt.msg, tt.err.Error())
			}
			wrapped := fmt.Errorf("service: %w", tt.err)
			if !tt.check(wrapped) {
				t.Errorf("kind check failed through wrapping for %v", wrapped)
			}
		})
	}
}

func TestKindsAreDistinct(t *testing.T) {
	err := Duplicate("tag", "name")
	if IsNotFound(err) || IsValidation(err) || IsInvalidReference(err) {
		t.Error("duplicate error matched another kind")
	}
}

func TestFieldErrors(t *testing.T) {
	var fe FieldErrors
	if fe.OrNil() != nil {
		t.Fatal("empty FieldErrors should be nil")
	}

	fe = append(fe, Validation("title", "title is required"), Validation("content", "content is required"))
	err := fe.OrNil()
	if !IsValidation(err) {
		t.Error("FieldErrors should unwrap to ErrValidation")
	}

	var got FieldErrors
	if !errors.As(err, &got) || len(got) != 2 {
		t.Errorf("Expected 2 field errors, got %v", got)
	}
}
