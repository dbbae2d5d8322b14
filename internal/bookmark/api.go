// Package bookmark serves the reading list of the authenticated user.
package bookmark

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/SergeyParamoshkin/speaksfer/internal/articlectx"
	"github.com/SergeyParamoshkin/speaksfer/internal/errresponse"
	"github.com/SergeyParamoshkin/speaksfer/internal/events"
	"github.com/SergeyParamoshkin/speaksfer/internal/logging"
	"github.com/SergeyParamoshkin/speaksfer/internal/metrics"
	"github.com/SergeyParamoshkin/speaksfer/internal/model"
	"github.com/SergeyParamoshkin/speaksfer/internal/user"
)

type Store interface {
	GetOrCreateBookmark(ctx context.Context, articleID string, userID int64) (model.Bookmark, bool, error)
	GetBookmark(ctx context.Context, articleID string, userID int64) (model.Bookmark, error)
	ListBookmarks(ctx context.Context, userID int64) ([]model.Bookmark, error)
	DeleteBookmark(ctx context.Context, articleID string, userID int64) error
}

type Handler struct {
	store   Store
	metrics *metrics.Metrics
	events  events.Publisher
}

func NewHandler(store Store, m *metrics.Metrics, pub events.Publisher) *Handler {
	return &Handler{store: store, metrics: m, events: pub}
}

// Response is the bookmark payload.
type Response struct {
	model.Bookmark
}

func (b *Response) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

func newListResponse(bookmarks []model.Bookmark) []render.Renderer {
	list := []render.Renderer{}
	for _, b := range bookmarks {
		list = append(list, &Response{Bookmark: b})
	}

	return list
}

// ArticleRoutes registers the bookmark routes of one article; the article
// must already be on the request context.
func (h *Handler) ArticleRoutes(r chi.Router) {
	r.Route("/bookmarks", func(r chi.Router) {
		r.Use(user.RequireUser)
		r.Get("/", h.GetBookmark)
		r.Post("/", h.CreateBookmark)
	})
}

// Routes mounts under /bookmarks.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(user.RequireUser)
	r.Get("/", h.ListBookmarks)
	r.Delete("/{articleID}", h.DeleteBookmark)

	return r
}

// CreateBookmark bookmarks the article for the principal. Bookmarking twice
// returns the existing bookmark.
func (h *Handler) CreateBookmark(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	article := articlectx.From(ctx)
	principal := user.PrincipalID(ctx)

	b, created, err := h.store.GetOrCreateBookmark(ctx, article.ID, principal)
	if err != nil {
		errresponse.Respond(w, r, err)

		return
	}
	if created {
		h.metrics.BookmarkCreated(ctx)
		events.Emit(ctx, h.events, logging.FromContext(ctx), events.Event{
			Type:      events.TypeBookmark,
			ArticleID: article.ID,
			UserID:    principal,
		})
	}

	render.Status(r, http.StatusCreated)
	errresponse.Render(w, r, &Response{Bookmark: b})
}

func (h *Handler) GetBookmark(w http.ResponseWriter, r *http.Request) {
	b, err := h.store.GetBookmark(r.Context(), articlectx.From(r.Context()).ID, user.PrincipalID(r.Context()))
	if err != nil {
		errresponse.Respond(w, r, err)

		return
	}

	errresponse.Render(w, r, &Response{Bookmark: b})
}

func (h *Handler) ListBookmarks(w http.ResponseWriter, r *http.Request) {
	bookmarks, err := h.store.ListBookmarks(r.Context(), user.PrincipalID(r.Context()))
	if err != nil {
		errresponse.Respond(w, r, err)

		return
	}

	errresponse.RenderList(w, r, newListResponse(bookmarks))
}

func (h *Handler) DeleteBookmark(w http.ResponseWriter, r *http.Request) {
	err := h.store.DeleteBookmark(r.Context(), chi.URLParam(r, "articleID"), user.PrincipalID(r.Context()))
	if err != nil {
		errresponse.Respond(w, r, err)

		return
	}

	render.NoContent(w, r)
}
