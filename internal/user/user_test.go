package user

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/SergeyParamoshkin/speaksfer/internal/store"
)

func newTestServer(t *testing.T, admins ...string) (*httptest.Server, *store.DB) {
	t.Helper()

	db, err := store.New(context.Background(), store.DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	h := NewHandler(db, admins)
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Use(Authenticate(db))
	r.Mount("/users", h.Routes())
	r.Mount("/admin", h.AdminRouter())

	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)

	return ts, db
}

func do(t *testing.T, method, url, principal, body string) (*http.Response, map[string]interface{}) {
	t.Helper()

	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if principal != "" {
		req.Header.Set(HeaderUserID, principal)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	var out map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&out)

	return resp, out
}

func register(t *testing.T, ts *httptest.Server, username string) string {
	t.Helper()

	resp, out := do(t, http.MethodPost, ts.URL+"/users", "", `{"username":"`+username+`","email":"`+username+`@example.com"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register %s: status %d, body %v", username, resp.StatusCode, out)
	}

	return strconv.FormatInt(int64(out["id"].(float64)), 10)
}

func TestRegisterValidation(t *testing.T) {
	t.Parallel()
	ts, _ := newTestServer(t)

	cases := []struct {
		name   string
		body   string
		status int
		field  string
	}{
		{"short username", `{"username":"short","email":"a@b.io"}`, http.StatusBadRequest, "username"},
		{"long username", `{"username":"waytoolongusername_123","email":"a@b.io"}`, http.StatusBadRequest, "username"},
		{"bad email", `{"username":"gooduser1","email":"nope"}`, http.StatusBadRequest, "email"},
		{"broken json", `{"username":`, http.StatusBadRequest, ""},
	}
	for _, tc := range cases {
		resp, out := do(t, http.MethodPost, ts.URL+"/users", "", tc.body)
		if resp.StatusCode != tc.status {
			t.Fatalf("%s: expected %d, got %d (%v)", tc.name, tc.status, resp.StatusCode, out)
		}
		if tc.field != "" {
			fields, _ := out["fields"].(map[string]interface{})
			if _, ok := fields[tc.field]; !ok {
				t.Fatalf("%s: expected field %q in %v", tc.name, tc.field, out)
			}
		}
	}
}

func TestRegisterAndProfile(t *testing.T) {
	t.Parallel()
	ts, _ := newTestServer(t)

	id := register(t, ts, "reader_alice")

	resp, out := do(t, http.MethodGet, ts.URL+"/users/"+id, "", "")
	if resp.StatusCode != http.StatusOK || out["username"] != "reader_alice" || out["role"] != "reader" {
		t.Fatalf("unexpected profile %d %v", resp.StatusCode, out)
	}

	resp, _ = do(t, http.MethodPost, ts.URL+"/users", "", `{"username":"reader_alice","email":"other@example.com"}`)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate username, got %d", resp.StatusCode)
	}

	resp, _ = do(t, http.MethodGet, ts.URL+"/users/9999", "", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()
	ts, _ := newTestServer(t)
	id := register(t, ts, "reader_bobby")

	resp, _ := do(t, http.MethodGet, ts.URL+"/users/"+id, "not-a-number", "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for malformed header, got %d", resp.StatusCode)
	}
	resp, _ = do(t, http.MethodGet, ts.URL+"/users/"+id, "424242", "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unknown user, got %d", resp.StatusCode)
	}
}

func TestFollow(t *testing.T) {
	t.Parallel()
	ts, _ := newTestServer(t)
	alice := register(t, ts, "follower_alice")
	bob := register(t, ts, "followee_bobby")

	resp, _ := do(t, http.MethodPut, ts.URL+"/users/"+bob+"/follow", "", "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for anonymous follow, got %d", resp.StatusCode)
	}

	resp, _ = do(t, http.MethodPut, ts.URL+"/users/"+alice+"/follow", alice, "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for self follow, got %d", resp.StatusCode)
	}

	for i := 0; i < 2; i++ {
		resp, _ = do(t, http.MethodPut, ts.URL+"/users/"+bob+"/follow", alice, "")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("follow: expected 200, got %d", resp.StatusCode)
		}
	}

	var followers []map[string]interface{}
	res, err := http.Get(ts.URL + "/users/" + bob + "/followers")
	if err != nil {
		t.Fatalf("followers: %v", err)
	}
	defer res.Body.Close()
	if err := json.NewDecoder(res.Body).Decode(&followers); err != nil {
		t.Fatalf("decode followers: %v", err)
	}
	if len(followers) != 1 || followers[0]["username"] != "follower_alice" {
		t.Fatalf("unexpected followers %v", followers)
	}

	resp, _ = do(t, http.MethodDelete, ts.URL+"/users/"+bob+"/follow", alice, "")
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("unfollow: expected 204, got %d", resp.StatusCode)
	}
}

func TestAdminOnly(t *testing.T) {
	t.Parallel()
	ts, _ := newTestServer(t, "admin_carol")
	reader := register(t, ts, "reader_dave1")
	admin := register(t, ts, "admin_carol")

	resp, _ := do(t, http.MethodGet, ts.URL+"/admin/users", "", "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	resp, _ = do(t, http.MethodGet, ts.URL+"/admin/users", reader, "")
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/admin/users", nil)
	req.Header.Set(HeaderUserID, admin)
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("admin users: %v", err)
	}
	defer res.Body.Close()
	var users []map[string]interface{}
	if err := json.NewDecoder(res.Body).Decode(&users); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.StatusCode != http.StatusOK || len(users) != 2 || users[1]["role"] != "admin" {
		t.Fatalf("unexpected admin listing %d %v", res.StatusCode, users)
	}
}
