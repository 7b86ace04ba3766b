package repository

import (
	"errors"
	"strings"

	"github.com/blog-publishing-api/internal/errs"
	"github.com/lib/pq"
)

// PostgreSQL SQLSTATE codes this package classifies
const (
	codeNotNullViolation    = "23502"
	codeForeignKeyViolation = "23503"
	codeUniqueViolation     = "23505"
	codeCheckViolation      = "23514"
	codeInvalidTextRepr     = "22P02"
)

// classify converts constraint violations reported by the driver into
// domain errors. Anything else is returned unchanged.
func classify(err error, entity string) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	switch pqErr.Code {
	case codeUniqueViolation:
		return errs.Duplicate(entity, constraintField(pqErr)).WithCause(err)
	case codeForeignKeyViolation:
		return errs.InvalidReference(entity, constraintField(pqErr), pqErr.Detail).WithCause(err)
	case codeNotNullViolation:
		return errs.Validation(pqErr.Column, "is required").WithCause(err)
	case codeCheckViolation:
		return errs.Validation(constraintField(pqErr), pqErr.Message).WithCause(err)
	case codeInvalidTextRepr:
		return errs.Validation("id", "must be a valid UUID").WithCause(err)
	}
	return err
}

// constraintField recovers the column from PostgreSQL's default constraint
// names, e.g. posts_slug_key -> slug, posts_category_id_fkey -> category_id.
func constraintField(pqErr *pq.Error) string {
	name := pqErr.Constraint
	if name == "" {
		return pqErr.Column
	}
	name = strings.TrimPrefix(name, pqErr.Table+"_")
	for _, suffix := range []string{"_key", "_fkey", "_check", "_pkey"} {
		if strings.HasSuffix(name, suffix) {
			return strings.TrimSuffix(name, suffix)
		}
	}
	return name
}
