// Package articlectx carries the article loaded for a request.
package articlectx

import (
	"context"

	"github.com/SergeyParamoshkin/speaksfer/internal/model"
)

type ctxKey int8

const ctxKeyArticle ctxKey = iota

func With(ctx context.Context, a *model.Article) context.Context {
	return context.WithValue(ctx, ctxKeyArticle, a)
}

// From returns the article put on ctx by the article middleware. Handlers
// mounted below that middleware may assume it is present; a missing value
// panics and is caught by the Recoverer.
func From(ctx context.Context) *model.Article {
	return ctx.Value(ctxKeyArticle).(*model.Article)
}
