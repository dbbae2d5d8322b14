package tag

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/SergeyParamoshkin/speaksfer/internal/apitest"
	"github.com/SergeyParamoshkin/speaksfer/internal/store"
)

func TestListTags(t *testing.T) {
	t.Parallel()

	s := apitest.New(t, func(r chi.Router, db *store.DB) {
		r.Mount("/tags", NewHandler(db).Routes())
	})

	_, raw := s.Do(t, http.MethodGet, "/tags", "", "")
	if got := apitest.List(t, raw); len(got) != 0 {
		t.Fatalf("expected no tags, got %v", got)
	}

	a := s.Article(t, s.User(t, "author_one"), "a body that is long enough")
	if err := Reconcile(context.Background(), a, "rust, go, go", s.DB); err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	status, raw := s.Do(t, http.MethodGet, "/tags", "", "")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	got := apitest.List(t, raw)
	if len(got) != 2 || got[0]["name"] != "go" || got[1]["name"] != "rust" {
		t.Fatalf("expected tags ordered by name, got %v", got)
	}
}
