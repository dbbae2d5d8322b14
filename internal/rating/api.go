package rating

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
	"github.com/SergeyParamoshkin/speaksfer/internal/validation"
)

type Store interface {
	UpsertRating(ctx context.Context, r model.Rating) error
	ListRatings(ctx context.Context, articleID string) ([]model.Rating, error)
}

type Handler struct {
	store   Store
	metrics *metrics.Metrics
	events  events.Publisher
}

func NewHandler(store Store, m *metrics.Metrics, pub events.Publisher) *Handler {
	return &Handler{store: store, metrics: m, events: pub}
}

type Request struct {
	Rating *int `json:"rating" validate:"required"`
}

func (rr *Request) Bind(r *http.Request) error {
	return validation.Struct(rr)
}

type Response struct {
	model.Rating
}

func (rr *Response) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

type SummaryResponse struct {
	Summary
}

func (s *SummaryResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

// ArticleRoutes registers the rating routes of one article.
func (h *Handler) ArticleRoutes(r chi.Router) {
	r.Route("/ratings", func(r chi.Router) {
		r.Get("/", h.ListRatings)
		r.With(user.RequireUser).Post("/", h.RateArticle)
		r.Get("/summary", h.GetSummary)
	})
}

// RateArticle records the principal's rating, replacing an earlier one.
func (h *Handler) RateArticle(w http.ResponseWriter, r *http.Request) {
	data := &Request{}
	if err := render.Bind(r, data); err != nil {
		errresponse.RespondInvalid(w, r, err)

		return
	}

	ctx := r.Context()
	rt, err := Record(articlectx.From(ctx).ID, user.PrincipalID(ctx), *data.Rating)
	if err != nil {
		errresponse.Respond(w, r, err)

		return
	}
	if err := h.store.UpsertRating(ctx, rt); err != nil {
		errresponse.Respond(w, r, err)

		return
	}
	h.metrics.RatingRecorded(ctx, rt.Value)
	events.Emit(ctx, h.events, logging.FromContext(ctx), events.Event{
		Type:      events.TypeRating,
		ArticleID: rt.ArticleID,
		UserID:    rt.RatedBy,
		Value:     events.IntValue(rt.Value),
	})

	render.Status(r, http.StatusCreated)
	errresponse.Render(w, r, &Response{Rating: rt})
}

func (h *Handler) ListRatings(w http.ResponseWriter, r *http.Request) {
	ratings, err := h.store.ListRatings(r.Context(), articlectx.From(r.Context()).ID)
	if err != nil {
		errresponse.Respond(w, r, err)

		return
	}

	list := []render.Renderer{}
	for i := range ratings {
		list = append(list, &Response{Rating: ratings[i]})
	}
	errresponse.RenderList(w, r, list)
}

func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	ratings, err := h.store.ListRatings(r.Context(), articlectx.From(r.Context()).ID)
	if err != nil {
		errresponse.Respond(w, r, err)

		return
	}

	errresponse.Render(w, r, &SummaryResponse{Summary: Summarize(ratings)})
}
