package store

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/SergeyParamoshkin/speaksfer/internal/apperr"
	"github.com/SergeyParamoshkin/speaksfer/internal/engagement"
	"github.com/SergeyParamoshkin/speaksfer/internal/model"
)

const (
	kindFavourite   = "favourite"
	kindUnfavourite = "unfavourite"
)

var errStaleVersion = errors.New("article version changed")

// UpdateEngagement loads the article, applies mutate to it and writes the
// resulting engagement delta. The write only succeeds if the article version
// is unchanged since the load; otherwise the whole step is retried.
func (db *DB) UpdateEngagement(ctx context.Context, id string, mutate func(*model.Article) error) (*model.Article, error) {
	for attempt := 0; attempt < db.maxRetries; attempt++ {
		var updated *model.Article
		err := db.withTx(ctx, func(q querier) error {
			a, err := db.getArticle(ctx, q, sq.Eq{"a.id": id})
			if err != nil {
				return err
			}
			before := engagement.Snapshot(a)
			if err := mutate(a); err != nil {
				return err
			}

			res, err := db.exec(ctx, q, db.sb.Update("articles").
				Set("version", sq.Expr("version + 1")).
				Where(sq.Eq{"id": a.ID, "version": a.Version}))
			if err != nil {
				return fmt.Errorf("bump article version: %w", err)
			}
			if n, _ := res.RowsAffected(); n == 0 {
				return errStaleVersion
			}
			a.Version++

			for _, c := range engagement.Diff(before, a) {
				if err := db.applyEngagement(ctx, q, a.ID, c); err != nil {
					return err
				}
			}
			updated = a

			return nil
		})
		if errors.Is(err, errStaleVersion) {
			continue
		}
		if err != nil {
			return nil, err
		}

		return updated, nil
	}

	return nil, apperr.Conflict("article was modified concurrently, retry the request")
}

func (db *DB) applyEngagement(ctx context.Context, q querier, articleID string, c engagement.Change) error {
	var kind string
	switch c.After {
	case engagement.Favourited:
		kind = kindFavourite
	case engagement.Unfavourited:
		kind = kindUnfavourite
	default:
		_, err := db.exec(ctx, q, db.sb.Delete("article_engagements").
			Where(sq.Eq{"article_id": articleID, "user_id": c.UserID}))
		if err != nil {
			return fmt.Errorf("delete engagement: %w", err)
		}

		return nil
	}

	_, err := db.exec(ctx, q, db.sb.Insert("article_engagements").
		Columns("article_id", "user_id", "kind").
		Values(articleID, c.UserID, kind).
		Suffix("ON CONFLICT (article_id, user_id) DO UPDATE SET kind = excluded.kind"))
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperr.NotFound("user")
		}

		return fmt.Errorf("upsert engagement: %w", err)
	}

	return nil
}

func (db *DB) loadEngagement(ctx context.Context, q querier, a *model.Article) error {
	rows, err := db.query(ctx, q, db.sb.Select("user_id", "kind").
		From("article_engagements").
		Where(sq.Eq{"article_id": a.ID}))
	if err != nil {
		return fmt.Errorf("query engagement: %w", err)
	}
	defer rows.Close()

	a.FavouritedBy = model.UserSet{}
	a.UnfavouritedBy = model.UserSet{}
	for rows.Next() {
		var (
			userID int64
			kind   string
		)
		if err := rows.Scan(&userID, &kind); err != nil {
			return fmt.Errorf("scan engagement: %w", err)
		}
		switch kind {
		case kindFavourite:
			a.FavouritedBy.Add(userID)
		case kindUnfavourite:
			a.UnfavouritedBy.Add(userID)
		}
	}

	return rows.Err()
}
