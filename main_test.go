package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/metric/global"
	"go.uber.org/zap"

	"github.com/SergeyParamoshkin/speaksfer/internal/config"
	"github.com/SergeyParamoshkin/speaksfer/internal/events"
	"github.com/SergeyParamoshkin/speaksfer/internal/metrics"
	"github.com/SergeyParamoshkin/speaksfer/internal/store"
)

func newTestApp(t *testing.T) (*App, *httptest.Server) {
	t.Helper()

	db, err := store.New(context.Background(), store.DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	cfg := config.Default()
	cfg.Admin.Usernames = []string{"site_admin"}

	a := &App{
		sugarLogger: zap.NewNop().Sugar(),
		config:      cfg,
		store:       db,
		metrics:     metrics.New(global.Meter("test")),
		events:      events.Noop{},
	}
	ts := httptest.NewServer(a.Router())
	t.Cleanup(ts.Close)

	return a, ts
}

func call(t *testing.T, ts *httptest.Server, method, path, principal, body string) (int, []byte) {
	t.Helper()

	req, err := http.NewRequest(method, ts.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if principal != "" {
		req.Header.Set("X-User-ID", principal)
	}
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}

	return resp.StatusCode, raw
}

func decode(t *testing.T, raw []byte) map[string]interface{} {
	t.Helper()

	var out map[string]interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}

	return out
}

func register(t *testing.T, ts *httptest.Server, username string) string {
	t.Helper()

	status, raw := call(t, ts, http.MethodPost, "/users", "", fmt.Sprintf(`{"username":%q,"email":"%s@example.com"}`, username, username))
	if status != http.StatusCreated {
		t.Fatalf("register %s: %d %s", username, status, raw)
	}

	return fmt.Sprint(decode(t, raw)["id"])
}

func TestPing(t *testing.T) {
	t.Parallel()
	_, ts := newTestApp(t)

	for path, want := range map[string]string{"/": "root.", "/ping": "pong"} {
		status, raw := call(t, ts, http.MethodGet, path, "", "")
		if status != http.StatusOK || string(raw) != want {
			t.Fatalf("GET %s: expected %q, got %d %q", path, want, status, raw)
		}
	}
}

func TestArticleFlow(t *testing.T) {
	t.Parallel()
	_, ts := newTestApp(t)

	author := register(t, ts, "author_anna")
	reader := register(t, ts, "reader_rick")

	status, raw := call(t, ts, http.MethodPost, "/articles", author, `{
		"title": "Writing services with chi",
		"description": "Routers, middlewares and render payloads",
		"body": "chi keeps the standard library handler signature everywhere",
		"taglist": "go, chi, go"
	}`)
	if status != http.StatusCreated {
		t.Fatalf("create article: %d %s", status, raw)
	}
	created := decode(t, raw)
	slug, _ := created["slug"].(string)
	if !strings.HasPrefix(slug, "writing-services-with-chi-") {
		t.Fatalf("unexpected slug %q", slug)
	}

	if status, raw := call(t, ts, http.MethodPut, "/articles/"+slug+"/favourite", reader, ""); status != http.StatusOK {
		t.Fatalf("favourite: %d %s", status, raw)
	}
	if status, raw := call(t, ts, http.MethodPost, "/articles/"+slug+"/ratings", reader, `{"rating":4}`); status != http.StatusCreated {
		t.Fatalf("rate: %d %s", status, raw)
	}
	if status, raw := call(t, ts, http.MethodPost, "/articles/"+slug+"/comments", reader, `{"comment":"nice"}`); status != http.StatusCreated {
		t.Fatalf("comment: %d %s", status, raw)
	}

	_, raw = call(t, ts, http.MethodGet, "/articles/"+slug, reader, "")
	got := decode(t, raw)
	if got["favourite_count"] != float64(1) || got["engagement"] != "favourited" {
		t.Fatalf("unexpected engagement in %v", got)
	}

	_, raw = call(t, ts, http.MethodGet, "/articles/"+slug+"/stats", "", "")
	stats := decode(t, raw)
	if stats["comment_count"] != float64(1) || stats["average_rating"] != float64(4) {
		t.Fatalf("unexpected stats %v", stats)
	}

	_, raw = call(t, ts, http.MethodGet, "/tags", "", "")
	var tags []map[string]interface{}
	if err := json.Unmarshal(raw, &tags); err != nil || len(tags) != 2 {
		t.Fatalf("expected two tags, got %s", raw)
	}
}

func TestAdminRoutes(t *testing.T) {
	t.Parallel()
	_, ts := newTestApp(t)

	admin := register(t, ts, "site_admin")
	reader := register(t, ts, "reader_rick")

	if status, _ := call(t, ts, http.MethodGet, "/admin/users", "", ""); status != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", status)
	}
	if status, _ := call(t, ts, http.MethodGet, "/admin/users", reader, ""); status != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", status)
	}
	status, raw := call(t, ts, http.MethodGet, "/admin/users", admin, "")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", status, raw)
	}
	var users []map[string]interface{}
	if err := json.Unmarshal(raw, &users); err != nil || len(users) != 2 {
		t.Fatalf("expected two users, got %s", raw)
	}
}
