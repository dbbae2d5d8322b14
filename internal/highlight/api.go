package highlight

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

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
	CreateHighlight(ctx context.Context, h *model.Highlight) error
	GetHighlight(ctx context.Context, id string) (*model.Highlight, error)
	UpdateHighlight(ctx context.Context, h *model.Highlight) error
	DeleteHighlight(ctx context.Context, id string) error
	ListHighlightsByArticle(ctx context.Context, articleID string) ([]model.Highlight, error)
	ListHighlightsByUser(ctx context.Context, userID int64) ([]model.Highlight, error)
}

type Handler struct {
	store   Store
	metrics *metrics.Metrics
	events  events.Publisher
}

func NewHandler(store Store, m *metrics.Metrics, pub events.Publisher) *Handler {
	return &Handler{store: store, metrics: m, events: pub}
}

// Request is the highlight creation payload. The highlighter is always the
// principal.
type Request struct {
	Start   *int   `json:"highlight_start" validate:"required"`
	End     *int   `json:"highlight_end" validate:"required"`
	Comment string `json:"comment"`
}

func (h *Request) Bind(r *http.Request) error {
	return validation.Struct(h)
}

// CommentRequest edits the comment of a highlight.
type CommentRequest struct {
	Comment string `json:"comment"`
}

func (c *CommentRequest) Bind(r *http.Request) error {
	return nil
}

type Response struct {
	*model.Highlight
}

func (h *Response) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

func newListResponse(highlights []model.Highlight) []render.Renderer {
	list := []render.Renderer{}
	for i := range highlights {
		list = append(list, &Response{Highlight: &highlights[i]})
	}

	return list
}

// ArticleRoutes registers the highlight routes of one article.
func (h *Handler) ArticleRoutes(r chi.Router) {
	r.Route("/highlights", func(r chi.Router) {
		r.Get("/", h.ListArticleHighlights)
		r.With(user.RequireUser).Post("/", h.CreateHighlight)
	})
}

// Routes mounts under /highlights.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.With(user.RequireUser).Get("/", h.ListOwnHighlights)
	r.Route("/{highlightID}", func(r chi.Router) {
		r.Get("/", h.GetHighlight)
		r.With(user.RequireUser).Put("/", h.UpdateHighlight)
		r.With(user.RequireUser).Delete("/", h.DeleteHighlight)
	})

	return r
}

func (h *Handler) CreateHighlight(w http.ResponseWriter, r *http.Request) {
	data := &Request{}
	if err := render.Bind(r, data); err != nil {
		errresponse.RespondInvalid(w, r, err)

		return
	}

	ctx := r.Context()
	principal := user.PrincipalID(ctx)
	hl, err := Create(articlectx.From(ctx), principal, *data.Start, *data.End, data.Comment)
	if err != nil {
		errresponse.Respond(w, r, err)

		return
	}
	if err := h.store.CreateHighlight(ctx, hl); err != nil {
		errresponse.Respond(w, r, err)

		return
	}
	h.metrics.HighlightCreated(ctx)
	events.Emit(ctx, h.events, logging.FromContext(ctx), events.Event{
		Type:      events.TypeHighlight,
		ArticleID: hl.ArticleID,
		UserID:    principal,
	})

	render.Status(r, http.StatusCreated)
	errresponse.Render(w, r, &Response{Highlight: hl})
}

func (h *Handler) ListArticleHighlights(w http.ResponseWriter, r *http.Request) {
	highlights, err := h.store.ListHighlightsByArticle(r.Context(), articlectx.From(r.Context()).ID)
	h.renderList(w, r, highlights, err)
}

func (h *Handler) ListOwnHighlights(w http.ResponseWriter, r *http.Request) {
	highlights, err := h.store.ListHighlightsByUser(r.Context(), user.PrincipalID(r.Context()))
	h.renderList(w, r, highlights, err)
}

func (h *Handler) GetHighlight(w http.ResponseWriter, r *http.Request) {
	hl, err := h.store.GetHighlight(r.Context(), chi.URLParam(r, "highlightID"))
	if err != nil {
		errresponse.Respond(w, r, err)

		return
	}

	errresponse.Render(w, r, &Response{Highlight: hl})
}

// UpdateHighlight changes the comment of the principal's highlight. The
// range and text are fixed at creation.
func (h *Handler) UpdateHighlight(w http.ResponseWriter, r *http.Request) {
	hl, ok := h.ownHighlight(w, r)
	if !ok {
		return
	}

	data := &CommentRequest{}
	if err := render.Bind(r, data); err != nil {
		errresponse.RespondInvalid(w, r, err)

		return
	}
	UpdateComment(hl, data.Comment)
	if err := h.store.UpdateHighlight(r.Context(), hl); err != nil {
		errresponse.Respond(w, r, err)

		return
	}

	errresponse.Render(w, r, &Response{Highlight: hl})
}

func (h *Handler) DeleteHighlight(w http.ResponseWriter, r *http.Request) {
	hl, ok := h.ownHighlight(w, r)
	if !ok {
		return
	}
	if err := h.store.DeleteHighlight(r.Context(), hl.ID); err != nil {
		errresponse.Respond(w, r, err)

		return
	}

	render.NoContent(w, r)
}

func (h *Handler) ownHighlight(w http.ResponseWriter, r *http.Request) (*model.Highlight, bool) {
	hl, err := h.store.GetHighlight(r.Context(), chi.URLParam(r, "highlightID"))
	if err != nil {
		errresponse.Respond(w, r, err)

		return nil, false
	}
	if hl.HighlighterID != user.PrincipalID(r.Context()) {
		errresponse.Respond(w, r, apperr.Forbidden("only the highlighter may change this highlight"))

		return nil, false
	}

	return hl, true
}

func (h *Handler) renderList(w http.ResponseWriter, r *http.Request, highlights []model.Highlight, err error) {
	if err != nil {
		errresponse.Respond(w, r, err)

		return
	}

	errresponse.RenderList(w, r, newListResponse(highlights))
}
