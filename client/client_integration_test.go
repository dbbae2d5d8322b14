//go:build integration

package client

import (
	"context"
	"net/http"
	"testing"
)

var c = Client{
	Addr:   "http://localhost:3333",
	Client: http.Client{},
}

func TestPing(t *testing.T) {
	if s, err := c.Ping(); err != nil || s != "pong" {
		t.Fail()
	}
}

func TestTags(t *testing.T) {
	if _, err := c.Tags(context.Background()); err != nil {
		t.Fatalf("tags: %v", err)
	}
}
