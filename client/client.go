// Package client is a small Go client for the speaksfer HTTP API.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const headerUserID = "X-User-ID"

type Client struct {
	http.Client
	Addr string

	// UserID is sent as the acting user; zero means anonymous.
	UserID int64
}

type Article struct {
	ID               string   `json:"id"`
	AuthorID         int64    `json:"author_id"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Body             string   `json:"body"`
	Slug             string   `json:"slug"`
	ReadingTime      int      `json:"reading_time"`
	Tags             []string `json:"tags"`
	FavouriteCount   int      `json:"favourite_count"`
	UnfavouriteCount int      `json:"unfavourite_count"`
	Engagement       string   `json:"engagement,omitempty"`
}

type Engagement struct {
	Article          string `json:"article"`
	Slug             string `json:"slug"`
	State            string `json:"state"`
	FavouriteCount   int    `json:"favourite_count"`
	UnfavouriteCount int    `json:"unfavourite_count"`
}

type Tag struct {
	Name string `json:"name"`
}

// Error is a non 2xx answer of the service.
type Error struct {
	StatusCode int                 `json:"-"`
	Status     string              `json:"status"`
	Code       string              `json:"code"`
	Message    string              `json:"error"`
	Fields     map[string][]string `json:"fields"`
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%d %s: %s", e.StatusCode, e.Status, e.Message)
	}

	return fmt.Sprintf("%d %s", e.StatusCode, e.Status)
}

func (c *Client) Ping() (string, error) {
	req, err := http.NewRequest("GET", c.Addr+"/ping", nil)
	if err != nil {
		return "", err
	}

	resp, err := c.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	return string(body), err
}

// GetArticle loads an article by id or slug.
func (c *Client) GetArticle(ctx context.Context, idOrSlug string) (*Article, error) {
	var a Article
	if err := c.call(ctx, http.MethodGet, "/articles/"+url.PathEscape(idOrSlug), nil, &a); err != nil {
		return nil, err
	}

	return &a, nil
}

// Favourite toggles the favourite of the acting user.
func (c *Client) Favourite(ctx context.Context, idOrSlug string) (*Engagement, error) {
	return c.toggle(ctx, idOrSlug, "favourite")
}

// Unfavourite toggles the unfavourite of the acting user.
func (c *Client) Unfavourite(ctx context.Context, idOrSlug string) (*Engagement, error) {
	return c.toggle(ctx, idOrSlug, "unfavourite")
}

func (c *Client) Tags(ctx context.Context) ([]Tag, error) {
	var tags []Tag
	if err := c.call(ctx, http.MethodGet, "/tags", nil, &tags); err != nil {
		return nil, err
	}

	return tags, nil
}

// Rate records the acting user's rating of an article.
func (c *Client) Rate(ctx context.Context, idOrSlug string, value int) error {
	body := strings.NewReader(`{"rating":` + strconv.Itoa(value) + `}`)

	return c.call(ctx, http.MethodPost, "/articles/"+url.PathEscape(idOrSlug)+"/ratings", body, nil)
}

func (c *Client) toggle(ctx context.Context, idOrSlug, kind string) (*Engagement, error) {
	var e Engagement
	if err := c.call(ctx, http.MethodPut, "/articles/"+url.PathEscape(idOrSlug)+"/"+kind, nil, &e); err != nil {
		return nil, err
	}

	return &e, nil
}

func (c *Client) call(ctx context.Context, method, path string, body io.Reader, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.Addr+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.UserID != 0 {
		req.Header.Set(headerUserID, strconv.FormatInt(c.UserID, 10))
	}

	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &Error{StatusCode: resp.StatusCode}
		if err := json.NewDecoder(resp.Body).Decode(apiErr); err != nil {
			apiErr.Status = http.StatusText(resp.StatusCode)
		}

		return apiErr
	}
	if out == nil {
		return nil
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
