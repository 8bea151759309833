package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aussiebroadwan/deskauth/internal/auth/domain"
	"github.com/aussiebroadwan/deskauth/internal/auth/store"
)

type usersRepo struct {
	q querier
}

func (r *usersRepo) GetUserByID(ctx context.Context, id int64) (domain.User, error) {
	query :=
		`SELECT id, username, password_hash, role, created_at FROM users
		 WHERE id = $1`

	return r.getOne(ctx, query, id)
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	query :=
		`SELECT id, username, password_hash, role, created_at FROM users
		 WHERE username = $1`

	return r.getOne(ctx, query, username)
}

func (r *usersRepo) getOne(ctx context.Context, query string, arg any) (domain.User, error) {
	var (
		id             int64
		username, hash string
		role           string
		createdAt      time.Time
	)
	err := r.q.QueryRowContext(ctx, query, arg).Scan(&id, &username, &hash, &role, &createdAt)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return mapUser(id, username, hash, role, createdAt)
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) (domain.User, error) {
	query :=
		`INSERT INTO users (username, password_hash, role)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`

	err := r.q.QueryRowContext(ctx, query, u.Username, u.PasswordHash, string(u.Role)).
		Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		return domain.User{}, mapConflict(err)
	}

	u.CreatedAt = u.CreatedAt.UTC()
	return u, nil
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, username string, newHash string) error {
	query := `UPDATE users SET password_hash = $1 WHERE username = $2`

	res, err := r.q.ExecContext(ctx, query, newHash, username)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectAffected(res)
}

func (r *usersRepo) DeleteUser(ctx context.Context, username string) error {
	query := `DELETE FROM users WHERE username = $1`

	res, err := r.q.ExecContext(ctx, query, username)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectAffected(res)
}

func (r *usersRepo) ListUsers(ctx context.Context) ([]domain.User, error) {
	query :=
		`SELECT id, username, password_hash, role, created_at FROM users
		 ORDER BY id`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []domain.User
	for rows.Next() {
		var (
			id             int64
			username, hash string
			role           string
			createdAt      time.Time
		)
		if err := rows.Scan(&id, &username, &hash, &role, &createdAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		u, err := mapUser(id, username, hash, role, createdAt)
		if err != nil {
			return nil, fmt.Errorf("user %d: %w", id, err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *usersRepo) IsEmpty(ctx context.Context) (bool, error) {
	var exists bool
	err := r.q.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM users)`).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return !exists, nil
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
