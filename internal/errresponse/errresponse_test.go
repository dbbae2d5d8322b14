package errresponse

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/SergeyParamoshkin/speaksfer/internal/apperr"
)

func TestFromError(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", apperr.Validation("title", "min_length", "too short"), http.StatusBadRequest},
		{"not found", apperr.NotFound("article"), http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("load: %w", apperr.NotFound("user")), http.StatusNotFound},
		{"conflict", apperr.Conflict("dup"), http.StatusConflict},
		{"unauthorized", apperr.Unauthorized("who"), http.StatusUnauthorized},
		{"forbidden", apperr.Forbidden("no"), http.StatusForbidden},
		{"internal", errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			resp, ok := FromError(tc.err).(*ErrResponse)
			if !ok {
				t.Fatalf("expected *ErrResponse")
			}
			if resp.HTTPStatusCode != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, resp.HTTPStatusCode)
			}
		})
	}
}

func TestValidationFields(t *testing.T) {
	t.Parallel()

	resp := ErrInvalidRequest(apperr.Validation("highlight_start", "invalid_length", "too far")).(*ErrResponse)
	if resp.AppCode != "invalid_length" {
		t.Fatalf("unexpected code %q", resp.AppCode)
	}
	if got := resp.Fields["highlight_start"]; len(got) != 1 || got[0] != "too far" {
		t.Fatalf("unexpected fields %v", resp.Fields)
	}
}

func TestInternalHidesMessage(t *testing.T) {
	t.Parallel()

	resp := FromError(errors.New("password=hunter2")).(*ErrResponse)
	if resp.ErrorText != "" {
		t.Fatalf("internal errors must not leak, got %q", resp.ErrorText)
	}
}

func TestRespondWritesStatus(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/articles/x", nil)
	Respond(rec, req, apperr.NotFound("article"))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "article not found") {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}
