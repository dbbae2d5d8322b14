package bookmark

import (
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/metric/global"

	"github.com/SergeyParamoshkin/speaksfer/internal/apitest"
	"github.com/SergeyParamoshkin/speaksfer/internal/article"
	"github.com/SergeyParamoshkin/speaksfer/internal/config"
	"github.com/SergeyParamoshkin/speaksfer/internal/events"
	"github.com/SergeyParamoshkin/speaksfer/internal/metrics"
	"github.com/SergeyParamoshkin/speaksfer/internal/store"
	"github.com/SergeyParamoshkin/speaksfer/internal/user"
)

func newServer(t *testing.T) *apitest.Server {
	t.Helper()

	m := metrics.New(global.Meter("test"))

	return apitest.New(t, func(r chi.Router, db *store.DB) {
		h := NewHandler(db, m, events.Noop{})
		articles := article.NewHandler(db, m, events.Noop{}, config.Default().Pagination)

		r.Use(user.Authenticate(db))
		r.Mount("/articles", articles.Routes(h.ArticleRoutes))
		r.Mount("/bookmarks", h.Routes())
	})
}

func TestBookmarkLifecycle(t *testing.T) {
	t.Parallel()
	s := newServer(t)
	reader := s.User(t, "reader_one")
	other := s.User(t, "reader_two")
	a := s.Article(t, reader, "a body that is long enough")
	path := "/articles/" + a.ID + "/bookmarks"

	if status, _ := s.Do(t, http.MethodPost, path, "", ""); status != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", status)
	}
	if status, _ := s.Do(t, http.MethodGet, path, reader, ""); status != http.StatusNotFound {
		t.Fatalf("expected 404 before bookmarking, got %d", status)
	}

	for i := 0; i < 2; i++ {
		status, raw := s.Do(t, http.MethodPost, path, reader, "")
		if status != http.StatusCreated {
			t.Fatalf("bookmark %d: %d %s", i, status, raw)
		}
		if got := apitest.Object(t, raw); got["article"] != a.ID {
			t.Fatalf("unexpected bookmark %v", got)
		}
	}

	status, raw := s.Do(t, http.MethodGet, "/bookmarks", reader, "")
	if status != http.StatusOK || len(apitest.List(t, raw)) != 1 {
		t.Fatalf("expected exactly one bookmark, got %d %s", status, raw)
	}
	_, raw = s.Do(t, http.MethodGet, "/bookmarks", other, "")
	if len(apitest.List(t, raw)) != 0 {
		t.Fatalf("bookmarks are per user, got %s", raw)
	}

	if status, _ := s.Do(t, http.MethodDelete, "/bookmarks/"+a.ID, other, ""); status != http.StatusNotFound {
		t.Fatalf("deleting someone else's bookmark must 404, got %d", status)
	}
	if status, _ := s.Do(t, http.MethodDelete, "/bookmarks/"+a.ID, reader, ""); status != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", status)
	}
}
