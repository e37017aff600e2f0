package apierr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/yungbote/medlibrary-backend/internal/domain/content"
	"github.com/yungbote/medlibrary-backend/internal/library/levels"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// FromContent maps library errors onto API errors. Errors it does not know
// become a 500 with code "internal".
func FromContent(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	var tierErr *content.InvalidTierError
	var filterErr *content.InvalidFilterError
	switch {
	case errors.Is(err, content.ErrNotFound):
		return New(http.StatusNotFound, "content_not_found", err)
	case errors.As(err, &tierErr):
		return New(http.StatusBadRequest, "invalid_tier", err)
	case errors.As(err, &filterErr):
		return New(http.StatusBadRequest, "invalid_filter", err)
	case errors.Is(err, levels.ErrNoLevels):
		return New(http.StatusUnprocessableEntity, "content_has_no_levels", err)
	default:
		return New(http.StatusInternalServerError, "internal", err)
	}
}
