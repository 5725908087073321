package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"usermgr/internal/domain"
	"usermgr/internal/repository"
)

const userColumns = `id, username, email, password`

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// UserRepository runs user queries against the transaction of one session.
type UserRepository struct {
	db      querier
	dialect dialect
}

func (r *UserRepository) Reset(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DROP TABLE IF EXISTS users`); err != nil {
		return fmt.Errorf("drop users table: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, r.dialect.createUsersTable); err != nil {
		return fmt.Errorf("create users table: %w", err)
	}
	return nil
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (int64, error) {
	row := r.db.QueryRowContext(ctx, r.dialect.rebind(`
INSERT INTO users (username, email, password)
VALUES (?, ?, ?)
RETURNING id`),
		user.Username,
		user.Email,
		user.Password,
	)

	var id int64
	if err := row.Scan(&id); err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("insert user %s: %w", user.Username, repository.ErrUserAlreadyExists)
		}
		return 0, fmt.Errorf("insert user: %w", err)
	}
	user.ID = id
	return id, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, r.dialect.rebind(`
SELECT `+userColumns+`
FROM users
WHERE username = ?`),
		username,
	)
	return scanUser(row)
}

func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	return r.query(ctx, `
SELECT `+userColumns+`
FROM users
ORDER BY id ASC`)
}

func (r *UserRepository) Search(ctx context.Context, query string) ([]domain.User, error) {
	return r.query(ctx, `
SELECT `+userColumns+`
FROM users
WHERE username LIKE '%' || CAST(? AS TEXT) || '%'
   OR email LIKE '%' || CAST(? AS TEXT) || '%'
ORDER BY id ASC`,
		query, query,
	)
}

func (r *UserRepository) Page(ctx context.Context, limit, offset int) ([]domain.User, error) {
	return r.query(ctx, `
SELECT `+userColumns+`
FROM users
ORDER BY id ASC
LIMIT ? OFFSET ?`,
		limit, offset,
	)
}

func (r *UserRepository) UpdateEmail(ctx context.Context, id int64, email string) error {
	res, err := r.db.ExecContext(ctx, r.dialect.rebind(`UPDATE users SET email=? WHERE id=?`), email, id)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("update email of user %d: %w", id, repository.ErrUserAlreadyExists)
		}
		return fmt.Errorf("update email: %w", err)
	}
	return expectOneRow(res)
}

func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, r.dialect.rebind(`DELETE FROM users WHERE id=?`), id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return expectOneRow(res)
}

func (r *UserRepository) query(ctx context.Context, query string, args ...any) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, r.dialect.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return repository.ErrUserNotFound
	}
	return nil
}

func scanUser(row interface {
	Scan(dest ...any) error
}) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.Password,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrUserNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &user, nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
