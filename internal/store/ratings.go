package store

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/SergeyParamoshkin/speaksfer/internal/apperr"
	"github.com/SergeyParamoshkin/speaksfer/internal/model"
)

// UpsertRating stores r, replacing an earlier rating by the same rater.
func (db *DB) UpsertRating(ctx context.Context, r model.Rating) error {
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = now()
	}
	_, err := db.exec(ctx, db.conn, db.sb.Insert("ratings").
		Columns("article_id", "rated_by", "rating", "updated_at").
		Values(r.ArticleID, r.RatedBy, r.Value, r.UpdatedAt).
		Suffix("ON CONFLICT (article_id, rated_by) DO UPDATE SET rating = excluded.rating, updated_at = excluded.updated_at"))
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperr.NotFound("article")
		}

		return fmt.Errorf("upsert rating: %w", err)
	}

	return nil
}

// ListRatings returns every rating of the article.
func (db *DB) ListRatings(ctx context.Context, articleID string) ([]model.Rating, error) {
	rows, err := db.query(ctx, db.conn, db.sb.Select("article_id", "rated_by", "rating", "updated_at").
		From("ratings").
		Where(sq.Eq{"article_id": articleID}).
		OrderBy("rated_by"))
	if err != nil {
		return nil, fmt.Errorf("query ratings: %w", err)
	}
	defer rows.Close()

	ratings := []model.Rating{}
	for rows.Next() {
		var r model.Rating
		if err := rows.Scan(&r.ArticleID, &r.RatedBy, &r.Value, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		ratings = append(ratings, r)
	}

	return ratings, rows.Err()
}
