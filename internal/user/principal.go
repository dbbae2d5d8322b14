package user

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/SergeyParamoshkin/speaksfer/internal/apperr"
	"github.com/SergeyParamoshkin/speaksfer/internal/errresponse"
	"github.com/SergeyParamoshkin/speaksfer/internal/model"
)

// HeaderUserID carries the id of the authenticated user, set by the
// gateway in front of the service.
const HeaderUserID = "X-User-ID"

type ctxKey int8

const (
	ctxKeyPrincipal ctxKey = iota
	ctxKeyUser
)

// Getter loads a user by id.
type Getter interface {
	GetUser(ctx context.Context, id int64) (*model.User, error)
}

// WithPrincipal returns a copy of ctx carrying the acting user.
func WithPrincipal(ctx context.Context, u *model.User) context.Context {
	return context.WithValue(ctx, ctxKeyPrincipal, u)
}

// Principal returns the acting user, if the request is authenticated.
func Principal(ctx context.Context) (*model.User, bool) {
	u, ok := ctx.Value(ctxKeyPrincipal).(*model.User)

	return u, ok && u != nil
}

// PrincipalID returns the acting user's id, or 0 for anonymous requests.
func PrincipalID(ctx context.Context) int64 {
	if u, ok := Principal(ctx); ok {
		return u.ID
	}

	return 0
}

// Authenticate resolves the X-User-ID header into the principal. Requests
// without the header stay anonymous; a malformed or unknown id is rejected.
func Authenticate(users Getter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get(HeaderUserID))
			if raw == "" {
				next.ServeHTTP(w, r)

				return
			}

			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || id <= 0 {
				errresponse.Respond(w, r, apperr.Unauthorized("invalid "+HeaderUserID+" header"))

				return
			}
			u, err := users.GetUser(r.Context(), id)
			if err != nil {
				if apperr.Is(err, apperr.KindNotFound) {
					err = apperr.Unauthorized("unknown user")
				}
				errresponse.Respond(w, r, err)

				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), u)))
		})
	}
}

// RequireUser rejects anonymous requests.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := Principal(r.Context()); !ok {
			errresponse.Respond(w, r, apperr.Unauthorized("authentication credentials were not provided"))

			return
		}
		next.ServeHTTP(w, r)
	})
}

// AdminOnly middleware restricts access to just administrators.
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := Principal(r.Context())
		if !ok {
			errresponse.Respond(w, r, apperr.Unauthorized("authentication credentials were not provided"))

			return
		}
		if !u.IsAdmin {
			errresponse.Respond(w, r, apperr.Forbidden("administrators only"))

			return
		}
		next.ServeHTTP(w, r)
	})
}
