// Package comment serves article comments.
package comment

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/SergeyParamoshkin/speaksfer/internal/apperr"
	"github.com/SergeyParamoshkin/speaksfer/internal/articlectx"
	"github.com/SergeyParamoshkin/speaksfer/internal/errresponse"
	"github.com/SergeyParamoshkin/speaksfer/internal/events"
	"github.com/SergeyParamoshkin/speaksfer/internal/logging"
	"github.com/SergeyParamoshkin/speaksfer/internal/metrics"
	"github.com/SergeyParamoshkin/speaksfer/internal/model"
	"github.com/SergeyParamoshkin/speaksfer/internal/user"
	"github.com/SergeyParamoshkin/speaksfer/internal/validation"
)

type Store interface {
	CreateComment(ctx context.Context, c *model.Comment) error
	GetComment(ctx context.Context, id string) (*model.Comment, error)
	DeleteComment(ctx context.Context, id string) error
	ListComments(ctx context.Context, articleID string) ([]model.Comment, error)
}

type Handler struct {
	store   Store
	metrics *metrics.Metrics
	events  events.Publisher
}

func NewHandler(store Store, m *metrics.Metrics, pub events.Publisher) *Handler {
	return &Handler{store: store, metrics: m, events: pub}
}

// Request is the comment payload.
type Request struct {
	Comment string `json:"comment" validate:"required"`
}

func (c *Request) Bind(r *http.Request) error {
	c.Comment = strings.TrimSpace(c.Comment)

	return validation.Struct(c)
}

type Response struct {
	*model.Comment
}

func (c *Response) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

// ArticleRoutes registers the comment routes of one article.
func (h *Handler) ArticleRoutes(r chi.Router) {
	r.Route("/comments", func(r chi.Router) {
		r.Get("/", h.ListComments)
		r.With(user.RequireUser).Post("/", h.CreateComment)
	})
}

// Routes mounts under /comments.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/{commentID}", h.GetComment)
	r.With(user.RequireUser).Delete("/{commentID}", h.DeleteComment)

	return r
}

func (h *Handler) CreateComment(w http.ResponseWriter, r *http.Request) {
	data := &Request{}
	if err := render.Bind(r, data); err != nil {
		errresponse.RespondInvalid(w, r, err)

		return
	}

	ctx := r.Context()
	c := &model.Comment{
		ID:          uuid.New().String(),
		ArticleID:   articlectx.From(ctx).ID,
		CommenterID: user.PrincipalID(ctx),
		Text:        data.Comment,
		CreatedAt:   time.Now().UTC(),
	}
	if err := h.store.CreateComment(ctx, c); err != nil {
		errresponse.Respond(w, r, err)

		return
	}
	h.metrics.CommentCreated(ctx)
	events.Emit(ctx, h.events, logging.FromContext(ctx), events.Event{
		Type:      events.TypeComment,
		ArticleID: c.ArticleID,
		UserID:    c.CommenterID,
	})

	render.Status(r, http.StatusCreated)
	errresponse.Render(w, r, &Response{Comment: c})
}

// ListComments returns the article's comments oldest first.
func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.store.ListComments(r.Context(), articlectx.From(r.Context()).ID)
	if err != nil {
		errresponse.Respond(w, r, err)

		return
	}

	list := []render.Renderer{}
	for i := range comments {
		list = append(list, &Response{Comment: &comments[i]})
	}
	errresponse.RenderList(w, r, list)
}

func (h *Handler) GetComment(w http.ResponseWriter, r *http.Request) {
	c, err := h.store.GetComment(r.Context(), chi.URLParam(r, "commentID"))
	if err != nil {
		errresponse.Respond(w, r, err)

		return
	}

	errresponse.Render(w, r, &Response{Comment: c})
}

// DeleteComment removes a comment; only its commenter may do so.
func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	c, err := h.store.GetComment(ctx, chi.URLParam(r, "commentID"))
	if err != nil {
		errresponse.Respond(w, r, err)

		return
	}
	if c.CommenterID != user.PrincipalID(ctx) {
		errresponse.Respond(w, r, apperr.Forbidden("only the commenter may delete this comment"))

		return
	}
	if err := h.store.DeleteComment(ctx, c.ID); err != nil {
		errresponse.Respond(w, r, err)

		return
	}

	render.NoContent(w, r)
}
