package store

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/SergeyParamoshkin/speaksfer/internal/model"
)

// GetOrCreateTag returns the tag named name, inserting it when absent.
func (db *DB) GetOrCreateTag(ctx context.Context, name string) (model.Tag, error) {
	_, err := db.exec(ctx, db.conn, db.sb.Insert("tags").
		Columns("name").
		Values(name).
		Suffix("ON CONFLICT (name) DO NOTHING"))
	if err != nil {
		return model.Tag{}, fmt.Errorf("insert tag: %w", err)
	}

	t := model.Tag{Name: name}
	row, err := db.queryRow(ctx, db.conn, db.sb.Select("id").From("tags").Where(sq.Eq{"name": name}))
	if err != nil {
		return model.Tag{}, err
	}
	if err := row.Scan(&t.ID); err != nil {
		return model.Tag{}, fmt.Errorf("select tag: %w", err)
	}

	return t, nil
}

// ListTags returns every tag ordered by name.
func (db *DB) ListTags(ctx context.Context) ([]model.Tag, error) {
	rows, err := db.query(ctx, db.conn, db.sb.Select("id", "name").From("tags").OrderBy("name"))
	if err != nil {
		return nil, fmt.Errorf("query tags: %w", err)
	}
	defer rows.Close()

	return scanTags(rows)
}

func (db *DB) articleTags(ctx context.Context, q querier, articleID string) ([]model.Tag, error) {
	rows, err := db.query(ctx, q, db.sb.Select("t.id", "t.name").
		From("article_tags art").
		Join("tags t ON t.id = art.tag_id").
		Where(sq.Eq{"art.article_id": articleID}).
		OrderBy("art.position"))
	if err != nil {
		return nil, fmt.Errorf("query article tags: %w", err)
	}
	defer rows.Close()

	return scanTags(rows)
}

// replaceTags sets the article's tag rows to exactly tags.
func (db *DB) replaceTags(ctx context.Context, q querier, articleID string, tags []model.Tag) error {
	if _, err := db.exec(ctx, q, db.sb.Delete("article_tags").Where(sq.Eq{"article_id": articleID})); err != nil {
		return fmt.Errorf("clear article tags: %w", err)
	}
	if len(tags) == 0 {
		return nil
	}

	b := db.sb.Insert("article_tags").Columns("article_id", "tag_id", "position")
	for i, t := range tags {
		b = b.Values(articleID, t.ID, i)
	}
	if _, err := db.exec(ctx, q, b); err != nil {
		return fmt.Errorf("insert article tags: %w", err)
	}

	return nil
}

type rowsScanner interface {
	Next() bool
	Err() error
	scanner
}

func scanTags(rows rowsScanner) ([]model.Tag, error) {
	tags := []model.Tag{}
	for rows.Next() {
		var t model.Tag
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, t)
	}

	return tags, rows.Err()
}
