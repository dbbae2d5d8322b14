//go:build !integration

package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	return &Client{Addr: ts.URL, Client: *ts.Client()}
}

func TestPingStub(t *testing.T) {
	t.Parallel()
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ping" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte("pong"))
	})

	if s, err := c.Ping(); err != nil || s != "pong" {
		t.Fatalf("expected pong, got %q %v", s, err)
	}
}

func TestFavouriteSendsPrincipal(t *testing.T) {
	t.Parallel()
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/articles/some-slug/favourite" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get(headerUserID); got != "7" {
			t.Errorf("expected principal 7, got %q", got)
		}
		_, _ = w.Write([]byte(`{"article":"a1","slug":"some-slug","state":"favourited","favourite_count":1}`))
	})
	c.UserID = 7

	e, err := c.Favourite(context.Background(), "some-slug")
	if err != nil {
		t.Fatalf("favourite: %v", err)
	}
	if e.State != "favourited" || e.FavouriteCount != 1 {
		t.Fatalf("unexpected engagement %+v", e)
	}
}

func TestErrorResponse(t *testing.T) {
	t.Parallel()
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"status":"Invalid request.","code":"max_value","error":"too high","fields":{"rating":["too high"]}}`))
	})

	err := c.Rate(context.Background(), "a1", 9)
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest || apiErr.Code != "max_value" || len(apiErr.Fields["rating"]) != 1 {
		t.Fatalf("unexpected error %+v", apiErr)
	}
}
