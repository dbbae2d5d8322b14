package article

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/SergeyParamoshkin/speaksfer/internal/apperr"
	"github.com/SergeyParamoshkin/speaksfer/internal/articlectx"
	"github.com/SergeyParamoshkin/speaksfer/internal/articlerequest"
	"github.com/SergeyParamoshkin/speaksfer/internal/articleresponse"
	"github.com/SergeyParamoshkin/speaksfer/internal/config"
	"github.com/SergeyParamoshkin/speaksfer/internal/engagement"
	"github.com/SergeyParamoshkin/speaksfer/internal/errresponse"
	"github.com/SergeyParamoshkin/speaksfer/internal/events"
	"github.com/SergeyParamoshkin/speaksfer/internal/logging"
	"github.com/SergeyParamoshkin/speaksfer/internal/metrics"
	"github.com/SergeyParamoshkin/speaksfer/internal/model"
	"github.com/SergeyParamoshkin/speaksfer/internal/tag"
	"github.com/SergeyParamoshkin/speaksfer/internal/user"
)

// Store is the persistence used by the article handlers.
type Store interface {
	tag.Upserter
	user.Getter
	CreateArticle(ctx context.Context, a *model.Article) error
	UpdateArticle(ctx context.Context, a *model.Article) error
	DeleteArticle(ctx context.Context, id string) error
	GetArticle(ctx context.Context, id string) (*model.Article, error)
	GetArticleBySlug(ctx context.Context, slug string) (*model.Article, error)
	ListArticles(ctx context.Context, f model.ArticleFilter) ([]*model.Article, error)
	ArticleStats(ctx context.Context, a *model.Article) (model.ArticleStats, error)
	UpdateEngagement(ctx context.Context, id string, mutate func(*model.Article) error) (*model.Article, error)
	ListRatings(ctx context.Context, articleID string) ([]model.Rating, error)
}

type Handler struct {
	store        Store
	metrics      *metrics.Metrics
	events       events.Publisher
	defaultLimit uint64
	maxLimit     uint64
}

func NewHandler(store Store, m *metrics.Metrics, pub events.Publisher, pagination config.PaginationConfig) *Handler {
	return &Handler{
		store:        store,
		metrics:      m,
		events:       pub,
		defaultLimit: pagination.DefaultLimit,
		maxLimit:     pagination.MaxLimit,
	}
}

// Routes mounts under /articles. nested registers further routes below
// /articles/{articleID}, after the article has been loaded.
func (h *Handler) Routes(nested ...func(r chi.Router)) chi.Router {
	r := chi.NewRouter()
	r.With(h.Paginate).Get("/", h.ListArticles)
	r.With(user.RequireUser).Post("/", h.CreateArticle)

	r.Route("/{articleID}", func(r chi.Router) {
		r.Use(h.ArticleCtx)
		r.Get("/", h.GetArticle)
		r.With(user.RequireUser, AuthorOnly).Put("/", h.UpdateArticle)
		r.With(user.RequireUser, AuthorOnly).Delete("/", h.DeleteArticle)
		r.With(user.RequireUser).Put("/favourite", h.Favourite)
		r.With(user.RequireUser).Put("/unfavourite", h.Unfavourite)
		r.Get("/stats", h.Stats)

		for _, fn := range nested {
			fn(r)
		}
	})

	return r
}

func (h *Handler) ListArticles(w http.ResponseWriter, r *http.Request) {
	articles, err := h.store.ListArticles(r.Context(), filterFromContext(r.Context()))
	if err != nil {
		errresponse.Respond(w, r, err)

		return
	}

	responses := make([]*articleresponse.ArticleResponse, 0, len(articles))
	for _, a := range articles {
		resp, err := h.newResponse(r.Context(), a)
		if err != nil {
			errresponse.Respond(w, r, err)

			return
		}
		responses = append(responses, resp)
	}

	errresponse.RenderList(w, r, articleresponse.NewArticleListResponse(responses))
}

// CreateArticle persists the posted Article and returns it
// back to the client as an acknowledgement.
func (h *Handler) CreateArticle(w http.ResponseWriter, r *http.Request) {
	data := &articlerequest.ArticleRequest{}
	if err := render.Bind(r, data); err != nil {
		errresponse.RespondInvalid(w, r, err)

		return
	}

	article := &model.Article{
		ID:       uuid.New().String(),
		AuthorID: user.PrincipalID(r.Context()),
	}
	data.Apply(article)
	if err := tag.Reconcile(r.Context(), article, data.TagList, h.store); err != nil {
		errresponse.Respond(w, r, err)

		return
	}
	article.Slug = Slugify(data.Slug)
	if article.Slug == "" {
		article.Slug = DeriveSlug(article.Title, article.ID)
	}
	article.ReadingTime = DeriveReadingTime(article.Body)

	if err := h.store.CreateArticle(r.Context(), article); err != nil {
		errresponse.Respond(w, r, err)

		return
	}
	logging.FromContext(r.Context()).Infow("article created", "article", article.ID, "slug", article.Slug)

	h.renderArticle(w, r, article, http.StatusCreated)
}

// GetArticle returns the specific Article. It just fetches the Article
// right off the context, as its understood that if we made it this far,
// the Article must be on the context.
func (h *Handler) GetArticle(w http.ResponseWriter, r *http.Request) {
	h.renderArticle(w, r, articlectx.From(r.Context()), http.StatusOK)
}

// UpdateArticle updates an existing Article in our persistent store. The
// slug is kept; reading time and tags are derived again.
func (h *Handler) UpdateArticle(w http.ResponseWriter, r *http.Request) {
	article := articlectx.From(r.Context())

	data := &articlerequest.ArticleRequest{}
	if err := render.Bind(r, data); err != nil {
		errresponse.RespondInvalid(w, r, err)

		return
	}

	data.Apply(article)
	if err := tag.Reconcile(r.Context(), article, data.TagList, h.store); err != nil {
		errresponse.Respond(w, r, err)

		return
	}
	article.ReadingTime = DeriveReadingTime(article.Body)

	if err := h.store.UpdateArticle(r.Context(), article); err != nil {
		errresponse.Respond(w, r, err)

		return
	}

	h.renderArticle(w, r, article, http.StatusOK)
}

// DeleteArticle removes an existing Article from our persistent store.
func (h *Handler) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	article := articlectx.From(r.Context())

	if err := h.store.DeleteArticle(r.Context(), article.ID); err != nil {
		errresponse.Respond(w, r, err)

		return
	}
	logging.FromContext(r.Context()).Infow("article deleted", "article", article.ID)

	render.NoContent(w, r)
}

// Favourite toggles the principal's favourite on the article.
func (h *Handler) Favourite(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, events.TypeFavourite, engagement.ToggleFavourite)
}

// Unfavourite toggles the principal's unfavourite on the article.
func (h *Handler) Unfavourite(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, events.TypeUnfavourite, engagement.ToggleUnfavourite)
}

func (h *Handler) toggle(w http.ResponseWriter, r *http.Request, kind string, toggle func(*model.Article, int64) engagement.State) {
	ctx := r.Context()
	article := articlectx.From(ctx)
	principal := user.PrincipalID(ctx)

	var state engagement.State
	updated, err := h.store.UpdateEngagement(ctx, article.ID, func(a *model.Article) error {
		state = toggle(a, principal)

		return nil
	})
	if err != nil {
		errresponse.Respond(w, r, err)

		return
	}

	h.metrics.EngagementToggled(ctx, kind, string(state))
	events.Emit(ctx, h.events, logging.FromContext(ctx), events.Event{
		Type:      kind,
		ArticleID: updated.ID,
		UserID:    principal,
		State:     string(state),
	})

	errresponse.Render(w, r, articleresponse.NewEngagementResponse(updated, state))
}

// Stats returns the reading statistics of the article.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.ArticleStats(r.Context(), articlectx.From(r.Context()))
	if err != nil {
		errresponse.Respond(w, r, err)

		return
	}

	errresponse.Render(w, r, &articleresponse.StatsResponse{ArticleStats: stats})
}

func (h *Handler) renderArticle(w http.ResponseWriter, r *http.Request, a *model.Article, status int) {
	resp, err := h.newResponse(r.Context(), a)
	if err != nil {
		errresponse.Respond(w, r, err)

		return
	}

	render.Status(r, status)
	errresponse.Render(w, r, resp)
}

func (h *Handler) newResponse(ctx context.Context, a *model.Article) (*articleresponse.ArticleResponse, error) {
	var author *model.User
	if a.AuthorID != 0 {
		u, err := h.store.GetUser(ctx, a.AuthorID)
		if err != nil && !apperr.Is(err, apperr.KindNotFound) {
			return nil, err
		}
		author = u
	}

	ratings, err := h.store.ListRatings(ctx, a.ID)
	if err != nil {
		return nil, err
	}

	return articleresponse.NewArticleResponse(a, author, ratings, user.PrincipalID(ctx)), nil
}
