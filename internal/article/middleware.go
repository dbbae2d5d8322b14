package article

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/SergeyParamoshkin/speaksfer/internal/apperr"
	"github.com/SergeyParamoshkin/speaksfer/internal/articlectx"
	"github.com/SergeyParamoshkin/speaksfer/internal/errresponse"
	"github.com/SergeyParamoshkin/speaksfer/internal/model"
	"github.com/SergeyParamoshkin/speaksfer/internal/user"
)

type ctxKey int8

const ctxKeyFilter ctxKey = iota

// ArticleCtx middleware is used to load an Article object from
// the URL parameters passed through as the request. The parameter is tried
// as an id first and as a slug second. In case the Article could not be
// found, we stop here and return a 404.
func (h *Handler) ArticleCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, "articleID")
		if key == "" {
			errresponse.Respond(w, r, apperr.NotFound("article"))

			return
		}

		article, err := h.store.GetArticle(r.Context(), key)
		if apperr.Is(err, apperr.KindNotFound) {
			article, err = h.store.GetArticleBySlug(r.Context(), key)
		}
		if err != nil {
			errresponse.Respond(w, r, err)

			return
		}

		next.ServeHTTP(w, r.WithContext(articlectx.With(r.Context(), article)))
	})
}

// AuthorOnly restricts writes to the author of the article on the context.
func AuthorOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		article := articlectx.From(r.Context())
		if user.PrincipalID(r.Context()) != article.AuthorID {
			errresponse.Respond(w, r, apperr.Forbidden("only the author may change this article"))

			return
		}
		next.ServeHTTP(w, r)
	})
}

// Paginate reads limit, offset and the author, tag and title filters from
// the query string.
func (h *Handler) Paginate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		f := model.ArticleFilter{
			Author: q.Get("author"),
			Tag:    q.Get("tag"),
			Title:  q.Get("title"),
			Limit:  h.defaultLimit,
		}
		if f.Tag == "" {
			f.Tag = q.Get("tags")
		}

		if v := q.Get("limit"); v != "" {
			limit, err := strconv.ParseUint(v, 10, 64)
			if err != nil || limit == 0 {
				errresponse.Respond(w, r, apperr.Validation("limit", "invalid", "A positive integer is required."))

				return
			}
			f.Limit = limit
		}
		if f.Limit > h.maxLimit {
			f.Limit = h.maxLimit
		}
		if v := q.Get("offset"); v != "" {
			offset, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				errresponse.Respond(w, r, apperr.Validation("offset", "invalid", "A non-negative integer is required."))

				return
			}
			f.Offset = offset
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKeyFilter, f)))
	})
}

func filterFromContext(ctx context.Context) model.ArticleFilter {
	f, _ := ctx.Value(ctxKeyFilter).(model.ArticleFilter)

	return f
}
