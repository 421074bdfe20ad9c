// Package server provides the JSON HTTP API for the SEO writer.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/seo-writer/internal/generation"
	"github.com/jonathan/seo-writer/internal/status"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// validationError converts the first validator failure into an ErrValidation.
func validationError(err error) *ErrValidation {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &ErrValidation{Field: fe.Field(), Message: fe.Tag()}
	}
	return &ErrValidation{Field: "request", Message: "invalid request"}
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		reqErr      *ErrValidation
		validErr    *generation.ValidationError
		notFoundErr *generation.NotFoundError
		busyErr     *status.BusyError
		limitErr    *generation.LimitExceededError
		noResults   *generation.NoResultsError
		pipeErr     *generation.PipelineError
	)

	switch {
	case err == nil:
		return http.StatusInternalServerError
	case errors.As(err, &reqErr), errors.As(err, &validErr):
		return http.StatusBadRequest
	case errors.As(err, &notFoundErr):
		return http.StatusNotFound
	case errors.As(err, &busyErr):
		return http.StatusConflict
	case errors.As(err, &limitErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &noResults):
		return http.StatusBadGateway
	case errors.As(err, &pipeErr):
		return pipelineStatus(pipeErr.Stage)
	default:
		return http.StatusInternalServerError
	}
}

// pipelineStatus maps upstream stages to 502 and storage stages to 500.
func pipelineStatus(stage string) int {
	switch stage {
	case generation.StageSearch, generation.StageAnalysis, generation.StageGeneration:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
