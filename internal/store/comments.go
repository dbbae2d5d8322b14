package store

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/SergeyParamoshkin/speaksfer/internal/apperr"
	"github.com/SergeyParamoshkin/speaksfer/internal/model"
)

func (db *DB) CreateComment(ctx context.Context, c *model.Comment) error {
	_, err := db.exec(ctx, db.conn, db.sb.Insert("comments").
		Columns("id", "article_id", "commenter_id", "comment", "created_at").
		Values(c.ID, c.ArticleID, c.CommenterID, c.Text, c.CreatedAt))
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperr.NotFound("article")
		}

		return fmt.Errorf("insert comment: %w", err)
	}

	return nil
}

func (db *DB) GetComment(ctx context.Context, id string) (*model.Comment, error) {
	row, err := db.queryRow(ctx, db.conn, db.sb.Select("id", "article_id", "commenter_id", "comment", "created_at").
		From("comments").
		Where(sq.Eq{"id": id}))
	if err != nil {
		return nil, err
	}
	var c model.Comment
	if err := row.Scan(&c.ID, &c.ArticleID, &c.CommenterID, &c.Text, &c.CreatedAt); err != nil {
		return nil, notFound(err, "comment")
	}

	return &c, nil
}

func (db *DB) DeleteComment(ctx context.Context, id string) error {
	res, err := db.exec(ctx, db.conn, db.sb.Delete("comments").Where(sq.Eq{"id": id}))
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("comment")
	}

	return nil
}

// ListComments returns the article's comments oldest first.
func (db *DB) ListComments(ctx context.Context, articleID string) ([]model.Comment, error) {
	rows, err := db.query(ctx, db.conn, db.sb.Select("id", "article_id", "commenter_id", "comment", "created_at").
		From("comments").
		Where(sq.Eq{"article_id": articleID}).
		OrderBy("created_at", "id"))
	if err != nil {
		return nil, fmt.Errorf("query comments: %w", err)
	}
	defer rows.Close()

	comments := []model.Comment{}
	for rows.Next() {
		var c model.Comment
		if err := rows.Scan(&c.ID, &c.ArticleID, &c.CommenterID, &c.Text, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, c)
	}

	return comments, rows.Err()
}
