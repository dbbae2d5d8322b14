// Package apitest runs handlers against an in-memory store for tests.
package apitest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/SergeyParamoshkin/speaksfer/internal/model"
	"github.com/SergeyParamoshkin/speaksfer/internal/store"
)

// HeaderUserID mirrors the principal header read by the user middleware.
const HeaderUserID = "X-User-ID"

type Server struct {
	*httptest.Server
	DB *store.DB
}

// New opens an in-memory store, lets mount register routes on a JSON
// router and serves it until the test ends.
func New(t *testing.T, mount func(r chi.Router, db *store.DB)) *Server {
	t.Helper()

	db, err := store.New(context.Background(), store.DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	mount(r, db)

	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)

	return &Server{Server: ts, DB: db}
}

// Do sends a JSON request as principal ("" for anonymous).
func (s *Server) Do(t *testing.T, method, path, principal, body string) (int, []byte) {
	t.Helper()

	req, err := http.NewRequest(method, s.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if principal != "" {
		req.Header.Set(HeaderUserID, principal)
	}
	resp, err := s.Client().Do(req)
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

// User creates a user and returns its id as the principal header value.
func (s *Server) User(t *testing.T, username string) string {
	t.Helper()

	u := &model.User{Username: username, Email: username + "@example.com"}
	if err := s.DB.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}

	return fmt.Sprint(u.ID)
}

// Article stores an article by author with body.
func (s *Server) Article(t *testing.T, author string, body string) *model.Article {
	t.Helper()

	var authorID int64
	if _, err := fmt.Sscan(author, &authorID); err != nil {
		t.Fatalf("author id %q: %v", author, err)
	}
	id := uuid.New().String()
	a := &model.Article{
		ID:          id,
		AuthorID:    authorID,
		Title:       "An article for testing",
		Description: "A description for testing",
		Body:        body,
		Slug:        "an-article-for-testing-" + id,
	}
	if err := s.DB.CreateArticle(context.Background(), a); err != nil {
		t.Fatalf("create article: %v", err)
	}

	return a
}

// Object decodes a JSON object.
func Object(t *testing.T, raw []byte) map[string]interface{} {
	t.Helper()

	var out map[string]interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decode object %s: %v", raw, err)
	}

	return out
}

// List decodes a JSON array of objects.
func List(t *testing.T, raw []byte) []map[string]interface{} {
	t.Helper()

	var out []map[string]interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decode list %s: %v", raw, err)
	}

	return out
}
