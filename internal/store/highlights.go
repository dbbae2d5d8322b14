package store

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/SergeyParamoshkin/speaksfer/internal/apperr"
	"github.com/SergeyParamoshkin/speaksfer/internal/model"
)

var highlightColumns = []string{
	"id", "article_id", "highlighter_id", "highlight_start", "highlight_end",
	"highlight_text", "comment", "created_at", "updated_at",
}

func (db *DB) CreateHighlight(ctx context.Context, h *model.Highlight) error {
	_, err := db.exec(ctx, db.conn, db.sb.Insert("highlights").
		Columns(highlightColumns...).
		Values(h.ID, h.ArticleID, h.HighlighterID, h.Start, h.End, h.Text, h.Comment, h.CreatedAt, h.UpdatedAt))
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperr.NotFound("article")
		}

		return fmt.Errorf("insert highlight: %w", err)
	}

	return nil
}

func (db *DB) GetHighlight(ctx context.Context, id string) (*model.Highlight, error) {
	row, err := db.queryRow(ctx, db.conn, db.sb.Select(highlightColumns...).From("highlights").Where(sq.Eq{"id": id}))
	if err != nil {
		return nil, err
	}
	h, err := scanHighlight(row)
	if err != nil {
		return nil, notFound(err, "highlight")
	}

	return h, nil
}

// UpdateHighlight saves the comment of h.
func (db *DB) UpdateHighlight(ctx context.Context, h *model.Highlight) error {
	res, err := db.exec(ctx, db.conn, db.sb.Update("highlights").
		Set("comment", h.Comment).
		Set("updated_at", h.UpdatedAt).
		Where(sq.Eq{"id": h.ID}))
	if err != nil {
		return fmt.Errorf("update highlight: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("highlight")
	}

	return nil
}

func (db *DB) DeleteHighlight(ctx context.Context, id string) error {
	res, err := db.exec(ctx, db.conn, db.sb.Delete("highlights").Where(sq.Eq{"id": id}))
	if err != nil {
		return fmt.Errorf("delete highlight: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("highlight")
	}

	return nil
}

// ListHighlightsByArticle returns the article's highlights newest first.
func (db *DB) ListHighlightsByArticle(ctx context.Context, articleID string) ([]model.Highlight, error) {
	return db.listHighlights(ctx, sq.Eq{"article_id": articleID})
}

// ListHighlightsByUser returns the user's highlights newest first.
func (db *DB) ListHighlightsByUser(ctx context.Context, userID int64) ([]model.Highlight, error) {
	return db.listHighlights(ctx, sq.Eq{"highlighter_id": userID})
}

func (db *DB) listHighlights(ctx context.Context, pred sq.Sqlizer) ([]model.Highlight, error) {
	rows, err := db.query(ctx, db.conn, db.sb.Select(highlightColumns...).
		From("highlights").
		Where(pred).
		OrderBy("created_at DESC", "id"))
	if err != nil {
		return nil, fmt.Errorf("query highlights: %w", err)
	}
	defer rows.Close()

	highlights := []model.Highlight{}
	for rows.Next() {
		h, err := scanHighlight(rows)
		if err != nil {
			return nil, fmt.Errorf("scan highlight: %w", err)
		}
		highlights = append(highlights, *h)
	}

	return highlights, rows.Err()
}

func scanHighlight(s scanner) (*model.Highlight, error) {
	var h model.Highlight
	err := s.Scan(&h.ID, &h.ArticleID, &h.HighlighterID, &h.Start, &h.End, &h.Text, &h.Comment, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		return nil, err
	}

	return &h, nil
}
