package api

import (
	"errors"
	"net/http"

	"github.com/blog-publishing-api/internal/errs"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// fieldError is the JSON shape of one validation failure
type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// respondError maps a domain error to its HTTP status. Unclassified errors
// are logged and reported as a generic server error.
func respondError(c *gin.Context, log zerolog.Logger, err error) {
	switch {
	case errs.IsValidation(err):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "details": fieldErrors(err)})
	case errs.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errs.IsDuplicateKey(err):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errs.IsInvalidReference(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errs.IsForbidden(err):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func fieldErrors(err error) []fieldError {
	var fe errs.FieldErrors
	if errors.As(err, &fe) {
		out := make([]fieldError, 0, len(fe))
		for _, e := range fe {
			out = append(out, fieldError{Field: e.Field, Message: e.Details})
		}
		return out
	}

	var e *errs.Error
	if errors.As(err, &e) {
		return []fieldError{{Field: e.Field, Message: e.Details}}
	}
	return []fieldError{{Message: err.Error()}}
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}
