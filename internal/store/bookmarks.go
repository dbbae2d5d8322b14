package store

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/SergeyParamoshkin/speaksfer/internal/apperr"
	"github.com/SergeyParamoshkin/speaksfer/internal/model"
)

// GetOrCreateBookmark returns the user's bookmark of the article, creating
// it when absent. created reports whether a new row was written.
func (db *DB) GetOrCreateBookmark(ctx context.Context, articleID string, userID int64) (model.Bookmark, bool, error) {
	res, err := db.exec(ctx, db.conn, db.sb.Insert("bookmarks").
		Columns("article_id", "user_id", "created_at").
		Values(articleID, userID, now()).
		Suffix("ON CONFLICT (article_id, user_id) DO NOTHING"))
	if err != nil {
		if isForeignKeyViolation(err) {
			return model.Bookmark{}, false, apperr.NotFound("article")
		}

		return model.Bookmark{}, false, fmt.Errorf("insert bookmark: %w", err)
	}
	n, _ := res.RowsAffected()

	b, err := db.GetBookmark(ctx, articleID, userID)
	if err != nil {
		return model.Bookmark{}, false, err
	}

	return b, n > 0, nil
}

func (db *DB) GetBookmark(ctx context.Context, articleID string, userID int64) (model.Bookmark, error) {
	row, err := db.queryRow(ctx, db.conn, db.sb.Select("article_id", "user_id", "created_at").
		From("bookmarks").
		Where(sq.Eq{"article_id": articleID, "user_id": userID}))
	if err != nil {
		return model.Bookmark{}, err
	}
	var b model.Bookmark
	if err := row.Scan(&b.ArticleID, &b.UserID, &b.CreatedAt); err != nil {
		return model.Bookmark{}, notFound(err, "bookmark")
	}

	return b, nil
}

// ListBookmarks returns the user's bookmarks newest first.
func (db *DB) ListBookmarks(ctx context.Context, userID int64) ([]model.Bookmark, error) {
	rows, err := db.query(ctx, db.conn, db.sb.Select("article_id", "user_id", "created_at").
		From("bookmarks").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC", "article_id"))
	if err != nil {
		return nil, fmt.Errorf("query bookmarks: %w", err)
	}
	defer rows.Close()

	bookmarks := []model.Bookmark{}
	for rows.Next() {
		var b model.Bookmark
		if err := rows.Scan(&b.ArticleID, &b.UserID, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan bookmark: %w", err)
		}
		bookmarks = append(bookmarks, b)
	}

	return bookmarks, rows.Err()
}

func (db *DB) DeleteBookmark(ctx context.Context, articleID string, userID int64) error {
	res, err := db.exec(ctx, db.conn, db.sb.Delete("bookmarks").
		Where(sq.Eq{"article_id": articleID, "user_id": userID}))
	if err != nil {
		return fmt.Errorf("delete bookmark: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("bookmark")
	}

	return nil
}
