package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/SergeyParamoshkin/speaksfer/internal/apperr"
	"github.com/SergeyParamoshkin/speaksfer/internal/model"
)

var articleColumns = []string{
	"a.id", "a.author_id", "a.title", "a.description", "a.body", "a.slug",
	"a.reading_time", "a.version", "a.created_at", "a.updated_at",
}

// CreateArticle inserts a together with its tag set.
func (db *DB) CreateArticle(ctx context.Context, a *model.Article) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now()
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = a.CreatedAt
	}

	return db.withTx(ctx, func(q querier) error {
		_, err := db.exec(ctx, q, db.sb.Insert("articles").
			Columns("id", "author_id", "title", "description", "body", "slug", "reading_time", "version", "created_at", "updated_at").
			Values(a.ID, a.AuthorID, a.Title, a.Description, a.Body, a.Slug, a.ReadingTime, a.Version, a.CreatedAt, a.UpdatedAt))
		if err != nil {
			if isUniqueViolation(err) {
				return apperr.Conflict("an article with that slug already exists")
			}

			return fmt.Errorf("insert article: %w", err)
		}

		return db.replaceTags(ctx, q, a.ID, a.Tags)
	})
}

// UpdateArticle saves the content fields and tag set of a and bumps its
// version. It fails with a conflict if a.Version is no longer current.
func (db *DB) UpdateArticle(ctx context.Context, a *model.Article) error {
	a.UpdatedAt = now()

	return db.withTx(ctx, func(q querier) error {
		res, err := db.exec(ctx, q, db.sb.Update("articles").
			Set("title", a.Title).
			Set("description", a.Description).
			Set("body", a.Body).
			Set("reading_time", a.ReadingTime).
			Set("updated_at", a.UpdatedAt).
			Set("version", sq.Expr("version + 1")).
			Where(sq.Eq{"id": a.ID, "version": a.Version}))
		if err != nil {
			return fmt.Errorf("update article: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			n, err := db.count(ctx, q, db.sb.Select("COUNT(*)").From("articles").Where(sq.Eq{"id": a.ID}))
			if err != nil {
				return fmt.Errorf("check article: %w", err)
			}
			if n == 0 {
				return apperr.NotFound("article")
			}

			return apperr.Conflict("article was modified concurrently, reload it and retry")
		}
		a.Version++

		return db.replaceTags(ctx, q, a.ID, a.Tags)
	})
}

// DeleteArticle removes the article and everything attached to it.
func (db *DB) DeleteArticle(ctx context.Context, id string) error {
	res, err := db.exec(ctx, db.conn, db.sb.Delete("articles").Where(sq.Eq{"id": id}))
	if err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("article")
	}

	return nil
}

// GetArticle loads the article aggregate by id.
func (db *DB) GetArticle(ctx context.Context, id string) (*model.Article, error) {
	return db.getArticle(ctx, db.conn, sq.Eq{"a.id": id})
}

// GetArticleBySlug loads the article aggregate by slug.
func (db *DB) GetArticleBySlug(ctx context.Context, slug string) (*model.Article, error) {
	return db.getArticle(ctx, db.conn, sq.Eq{"a.slug": slug})
}

// ListArticles returns articles newest first, narrowed by f.
func (db *DB) ListArticles(ctx context.Context, f model.ArticleFilter) ([]*model.Article, error) {
	b := db.sb.Select(articleColumns...).From("articles a").OrderBy("a.created_at DESC", "a.id")
	if f.Author != "" {
		b = b.Join("users u ON u.id = a.author_id").
			Where(sq.Like{"LOWER(u.username)": "%" + strings.ToLower(f.Author) + "%"})
	}
	if f.Tag != "" {
		b = b.Where(sq.Expr(
			"EXISTS (SELECT 1 FROM article_tags art JOIN tags t ON t.id = art.tag_id WHERE art.article_id = a.id AND LOWER(t.name) LIKE ?)",
			"%"+strings.ToLower(f.Tag)+"%",
		))
	}
	if f.Title != "" {
		b = b.Where(sq.Eq{"LOWER(a.title)": strings.ToLower(f.Title)})
	}
	if f.Limit > 0 {
		b = b.Limit(f.Limit)
	}
	if f.Offset > 0 {
		b = b.Offset(f.Offset)
	}

	rows, err := db.query(ctx, db.conn, b)
	if err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}
	articles := []*model.Article{}
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan article: %w", err)
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	rows.Close()

	for _, a := range articles {
		if err := db.loadRelations(ctx, db.conn, a); err != nil {
			return nil, err
		}
	}

	return articles, nil
}

// ArticleStats counts the engagement attached to an article.
func (db *DB) ArticleStats(ctx context.Context, a *model.Article) (model.ArticleStats, error) {
	stats := model.ArticleStats{
		Slug:             a.Slug,
		Title:            a.Title,
		FavouriteCount:   a.FavouritedBy.Len(),
		UnfavouriteCount: a.UnfavouritedBy.Len(),
	}

	var err error
	if stats.CommentCount, err = db.count(ctx, db.conn, db.sb.Select("COUNT(*)").From("comments").Where(sq.Eq{"article_id": a.ID})); err != nil {
		return stats, fmt.Errorf("count comments: %w", err)
	}
	if stats.BookmarkCount, err = db.count(ctx, db.conn, db.sb.Select("COUNT(*)").From("bookmarks").Where(sq.Eq{"article_id": a.ID})); err != nil {
		return stats, fmt.Errorf("count bookmarks: %w", err)
	}

	row, err := db.queryRow(ctx, db.conn, db.sb.Select("COALESCE(AVG(rating), 0)").From("ratings").Where(sq.Eq{"article_id": a.ID}))
	if err != nil {
		return stats, err
	}
	if err := row.Scan(&stats.AverageRating); err != nil {
		return stats, fmt.Errorf("average rating: %w", err)
	}

	return stats, nil
}

func (db *DB) getArticle(ctx context.Context, q querier, pred sq.Sqlizer) (*model.Article, error) {
	row, err := db.queryRow(ctx, q, db.sb.Select(articleColumns...).From("articles a").Where(pred))
	if err != nil {
		return nil, err
	}
	a, err := scanArticle(row)
	if err != nil {
		return nil, notFound(err, "article")
	}
	if err := db.loadRelations(ctx, q, a); err != nil {
		return nil, err
	}

	return a, nil
}

func (db *DB) loadRelations(ctx context.Context, q querier, a *model.Article) error {
	tags, err := db.articleTags(ctx, q, a.ID)
	if err != nil {
		return err
	}
	a.Tags = tags

	return db.loadEngagement(ctx, q, a)
}

func scanArticle(s scanner) (*model.Article, error) {
	var (
		a        model.Article
		authorID sql.NullInt64
	)
	err := s.Scan(&a.ID, &authorID, &a.Title, &a.Description, &a.Body, &a.Slug,
		&a.ReadingTime, &a.Version, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	a.AuthorID = authorID.Int64
	a.FavouritedBy = model.UserSet{}
	a.UnfavouritedBy = model.UserSet{}

	return &a, nil
}
