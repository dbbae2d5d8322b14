package user

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/SergeyParamoshkin/speaksfer/internal/apperr"
	"github.com/SergeyParamoshkin/speaksfer/internal/errresponse"
	"github.com/SergeyParamoshkin/speaksfer/internal/logging"
	"github.com/SergeyParamoshkin/speaksfer/internal/model"
	"github.com/SergeyParamoshkin/speaksfer/internal/userpayload"
)

// Store is the persistence used by the user handlers.
type Store interface {
	Getter
	CreateUser(ctx context.Context, u *model.User) error
	ListUsers(ctx context.Context) ([]model.User, error)
	Follow(ctx context.Context, follower, followee int64) error
	Unfollow(ctx context.Context, follower, followee int64) error
	Followers(ctx context.Context, id int64) ([]model.User, error)
	Following(ctx context.Context, id int64) ([]model.User, error)
}

type Handler struct {
	store  Store
	admins map[string]struct{}
}

// NewHandler returns the user handlers. Users registering with one of the
// admin usernames get the administrator flag.
func NewHandler(store Store, admins []string) *Handler {
	h := &Handler{store: store, admins: make(map[string]struct{}, len(admins))}
	for _, name := range admins {
		h.admins[name] = struct{}{}
	}

	return h
}

// Routes mounts under /users.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Register)
	r.Route("/{userID}", func(r chi.Router) {
		r.Use(h.UserCtx)
		r.Get("/", h.GetUser)
		r.Get("/followers", h.ListFollowers)
		r.Get("/following", h.ListFollowing)
		r.With(RequireUser).Put("/follow", h.Follow)
		r.With(RequireUser).Delete("/follow", h.Unfollow)
	})

	return r
}

// AdminRouter is a completely separate router for administrator routes.
func (h *Handler) AdminRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(AdminOnly)
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, render.M{"admin": "index"})
	})
	r.Get("/users", h.ListUsers)

	return r
}

// UserCtx middleware loads the user named by the userID URL parameter.
func (h *Handler) UserCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
		if err != nil {
			errresponse.Respond(w, r, apperr.NotFound("user"))

			return
		}
		u, err := h.store.GetUser(r.Context(), id)
		if err != nil {
			errresponse.Respond(w, r, err)

			return
		}

		ctx := context.WithValue(r.Context(), ctxKeyUser, u)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func userFromContext(ctx context.Context) *model.User {
	return ctx.Value(ctxKeyUser).(*model.User)
}

// Register creates a user account.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	data := &userpayload.UserRequest{}
	if err := render.Bind(r, data); err != nil {
		errresponse.RespondInvalid(w, r, err)

		return
	}

	u := &model.User{Username: data.Username, Email: data.Email}
	if _, ok := h.admins[u.Username]; ok {
		u.IsAdmin = true
	}
	if err := h.store.CreateUser(r.Context(), u); err != nil {
		errresponse.Respond(w, r, err)

		return
	}
	logging.FromContext(r.Context()).Infow("user registered", "user", u.ID, "admin", u.IsAdmin)

	render.Status(r, http.StatusCreated)
	errresponse.Render(w, r, userpayload.NewUserPayloadResponse(u))
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	errresponse.Render(w, r, userpayload.NewUserPayloadResponse(userFromContext(r.Context())))
}

// Follow makes the principal follow the user in the URL.
func (h *Handler) Follow(w http.ResponseWriter, r *http.Request) {
	followee := userFromContext(r.Context())
	follower := PrincipalID(r.Context())
	if follower == followee.ID {
		errresponse.Respond(w, r, apperr.Validation("user", "invalid", "You cannot follow yourself."))

		return
	}
	if err := h.store.Follow(r.Context(), follower, followee.ID); err != nil {
		errresponse.Respond(w, r, err)

		return
	}

	errresponse.Render(w, r, userpayload.NewUserPayloadResponse(followee))
}

func (h *Handler) Unfollow(w http.ResponseWriter, r *http.Request) {
	followee := userFromContext(r.Context())
	if err := h.store.Unfollow(r.Context(), PrincipalID(r.Context()), followee.ID); err != nil {
		errresponse.Respond(w, r, err)

		return
	}

	render.NoContent(w, r)
}

func (h *Handler) ListFollowers(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.Followers(r.Context(), userFromContext(r.Context()).ID)
	h.renderList(w, r, users, err)
}

func (h *Handler) ListFollowing(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.Following(r.Context(), userFromContext(r.Context()).ID)
	h.renderList(w, r, users, err)
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(r.Context())
	h.renderList(w, r, users, err)
}

func (h *Handler) renderList(w http.ResponseWriter, r *http.Request, users []model.User, err error) {
	if err != nil {
		errresponse.Respond(w, r, err)

		return
	}
	errresponse.RenderList(w, r, userpayload.NewUserListResponse(users))
}
