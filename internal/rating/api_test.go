package rating_test

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
	"github.com/SergeyParamoshkin/speaksfer/internal/rating"
	"github.com/SergeyParamoshkin/speaksfer/internal/store"
	"github.com/SergeyParamoshkin/speaksfer/internal/user"
)

func newServer(t *testing.T) *apitest.Server {
	t.Helper()

	m := metrics.New(global.Meter("test"))

	return apitest.New(t, func(r chi.Router, db *store.DB) {
		h := rating.NewHandler(db, m, events.Noop{})
		articles := article.NewHandler(db, m, events.Noop{}, config.Default().Pagination)

		r.Use(user.Authenticate(db))
		r.Mount("/articles", articles.Routes(h.ArticleRoutes))
	})
}

func TestRateArticle(t *testing.T) {
	t.Parallel()
	s := newServer(t)
	author := s.User(t, "author_one")
	a := s.Article(t, author, "a body that is long enough")
	path := "/articles/" + a.ID + "/ratings"

	raters := []string{author, s.User(t, "reader_one"), s.User(t, "reader_two")}

	if status, _ := s.Do(t, http.MethodPost, path, "", `{"rating":3}`); status != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", status)
	}

	invalid := []struct {
		body string
		code string
	}{
		{`{"rating":6}`, "max_value"},
		{`{"rating":-1}`, "min_value"},
		{`{}`, "required"},
	}
	for _, tc := range invalid {
		status, raw := s.Do(t, http.MethodPost, path, raters[0], tc.body)
		if status != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", tc.body, status)
		}
		if got := apitest.Object(t, raw); got["code"] != tc.code {
			t.Fatalf("%s: expected code %s, got %v", tc.body, tc.code, got["code"])
		}
	}

	// The first rater changes their mind; only the latest value counts.
	for i, body := range []string{`{"rating":4}`, `{"rating":1}`, `{"rating":1}`, `{"rating":5}`} {
		rater := raters[0]
		if i > 1 {
			rater = raters[i-1]
		}
		status, raw := s.Do(t, http.MethodPost, path, rater, body)
		if status != http.StatusCreated {
			t.Fatalf("rate %s: %d %s", body, status, raw)
		}
	}

	_, raw := s.Do(t, http.MethodGet, path, "", "")
	if got := apitest.List(t, raw); len(got) != 3 {
		t.Fatalf("expected one rating per rater, got %v", got)
	}

	status, raw := s.Do(t, http.MethodGet, path+"/summary", "", "")
	if status != http.StatusOK {
		t.Fatalf("summary: %d %s", status, raw)
	}
	got := apitest.Object(t, raw)
	if got["avg_rating"] != float64(2) || got["total_user_rates"] != float64(3) {
		t.Fatalf("unexpected summary %v", got)
	}
	histogram, _ := got["each_rating"].(map[string]interface{})
	if histogram["1"] != float64(2) || histogram["5"] != float64(1) {
		t.Fatalf("unexpected histogram %v", histogram)
	}
}

func TestSummaryWithoutRatings(t *testing.T) {
	t.Parallel()
	s := newServer(t)
	a := s.Article(t, s.User(t, "author_one"), "a body that is long enough")

	_, raw := s.Do(t, http.MethodGet, "/articles/"+a.ID+"/ratings/summary", "", "")
	if got := apitest.Object(t, raw); got["avg_rating"] != float64(0) || got["total_user_rates"] != float64(0) {
		t.Fatalf("unexpected summary %v", got)
	}
}
