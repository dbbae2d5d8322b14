package store

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/SergeyParamoshkin/speaksfer/internal/apperr"
	"github.com/SergeyParamoshkin/speaksfer/internal/model"
)

var userColumns = []string{"u.id", "u.username", "u.email", "u.is_admin", "u.created_at"}

// CreateUser inserts u and sets its ID.
func (db *DB) CreateUser(ctx context.Context, u *model.User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now()
	}
	row, err := db.queryRow(ctx, db.conn, db.sb.Insert("users").
		Columns("username", "email", "is_admin", "created_at").
		Values(u.Username, u.Email, u.IsAdmin, u.CreatedAt).
		Suffix("RETURNING id"))
	if err != nil {
		return err
	}
	if err := row.Scan(&u.ID); err != nil {
		if isUniqueViolation(err) {
			return apperr.Conflict("a user with that username or email already exists")
		}

		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

// GetUser returns the user with id.
func (db *DB) GetUser(ctx context.Context, id int64) (*model.User, error) {
	row, err := db.queryRow(ctx, db.conn, db.sb.Select(userColumns...).From("users u").Where(sq.Eq{"u.id": id}))
	if err != nil {
		return nil, err
	}
	u, err := scanUser(row)
	if err != nil {
		return nil, notFound(err, "user")
	}

	return u, nil
}

// ListUsers returns all users ordered by id.
func (db *DB) ListUsers(ctx context.Context) ([]model.User, error) {
	return db.listUsers(ctx, db.sb.Select(userColumns...).From("users u").OrderBy("u.id"))
}

// Follow makes follower follow followee. Following twice is a no-op.
func (db *DB) Follow(ctx context.Context, follower, followee int64) error {
	_, err := db.exec(ctx, db.conn, db.sb.Insert("follows").
		Columns("follower_id", "followee_id", "created_at").
		Values(follower, followee, now()).
		Suffix("ON CONFLICT (follower_id, followee_id) DO NOTHING"))
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperr.NotFound("user")
		}

		return fmt.Errorf("insert follow: %w", err)
	}

	return nil
}

// Unfollow removes the relation if present.
func (db *DB) Unfollow(ctx context.Context, follower, followee int64) error {
	_, err := db.exec(ctx, db.conn, db.sb.Delete("follows").
		Where(sq.Eq{"follower_id": follower, "followee_id": followee}))
	if err != nil {
		return fmt.Errorf("delete follow: %w", err)
	}

	return nil
}

// Followers returns the users following id.
func (db *DB) Followers(ctx context.Context, id int64) ([]model.User, error) {
	return db.listUsers(ctx, db.sb.Select(userColumns...).
		From("follows f").
		Join("users u ON u.id = f.follower_id").
		Where(sq.Eq{"f.followee_id": id}).
		OrderBy("u.id"))
}

// Following returns the users id follows.
func (db *DB) Following(ctx context.Context, id int64) ([]model.User, error) {
	return db.listUsers(ctx, db.sb.Select(userColumns...).
		From("follows f").
		Join("users u ON u.id = f.followee_id").
		Where(sq.Eq{"f.follower_id": id}).
		OrderBy("u.id"))
}

func (db *DB) listUsers(ctx context.Context, b sq.SelectBuilder) ([]model.User, error) {
	rows, err := db.query(ctx, db.conn, b)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}

	return users, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(s scanner) (*model.User, error) {
	var u model.User
	if err := s.Scan(&u.ID, &u.Username, &u.Email, &u.IsAdmin, &u.CreatedAt); err != nil {
		return nil, err
	}

	return &u, nil
}

var _ scanner = (*sql.Row)(nil)
