package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/yungbote/medlibrary-backend/internal/domain/content"
	"github.com/yungbote/medlibrary-backend/internal/library/levels"
)

func TestFromContent(t *testing.T) {
	t.Parallel()

	custom := New(http.StatusConflict, "reload_in_progress", errors.New("busy"))
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", fmt.Errorf("get: %w", &content.NotFoundError{ID: "x"}), http.StatusNotFound, "content_not_found"},
		{"invalid tier", &content.InvalidTierError{Raw: "novice"}, http.StatusBadRequest, "invalid_tier"},
		{"invalid filter", &content.InvalidFilterError{Field: "relationship", Value: "cousin"}, http.StatusBadRequest, "invalid_filter"},
		{"no levels", levels.ErrNoLevels, http.StatusUnprocessableEntity, "content_has_no_levels"},
		{"passthrough", fmt.Errorf("wrap: %w", custom), http.StatusConflict, "reload_in_progress"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := FromContent(tc.err)
			if got.Status != tc.status || got.Code != tc.code {
				t.Fatalf("got=%d/%s want=%d/%s", got.Status, got.Code, tc.status, tc.code)
			}
		})
	}
	if FromContent(nil) != nil {
		t.Fatalf("nil error must map to nil")
	}
}
