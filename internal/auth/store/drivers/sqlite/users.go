package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/aussiebroadwan/deskauth/internal/auth/domain"
	"github.com/aussiebroadwan/deskauth/internal/auth/store"
)

type usersRepo struct {
	q querier
}

const selectUserColumns = `SELECT id, username, password_hash, role, created_at FROM users`

func (r *usersRepo) GetUserByID(ctx context.Context, id int64) (domain.User, error) {
	return r.getOne(ctx, selectUserColumns+` WHERE id = ?`, id)
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	return r.getOne(ctx, selectUserColumns+` WHERE username = ?`, username)
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
	createdAt := u.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	var id int64
	err := r.q.QueryRowContext(ctx,
		`INSERT INTO users (username, password_hash, role, created_at) VALUES (?, ?, ?, ?) RETURNING id`,
		u.Username, u.PasswordHash, string(u.Role), createdAt,
	).Scan(&id)
	if err != nil {
		return domain.User{}, mapConflict(err)
	}

	u.ID = id
	u.CreatedAt = createdAt
	return u, nil
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, username string, newHash string) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE users SET password_hash = ? WHERE username = ?`, newHash, username)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

func (r *usersRepo) DeleteUser(ctx context.Context, username string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM users WHERE username = ?`, username)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

func (r *usersRepo) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := r.q.QueryContext(ctx, selectUserColumns+` ORDER BY id`)
	if err != nil {
		return nil, err
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
			return nil, err
		}
		u, err := mapUser(id, username, hash, role, createdAt)
		if err != nil {
			return nil, fmt.Errorf("user %d: %w", id, err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *usersRepo) IsEmpty(ctx context.Context) (bool, error) {
	var count int64
	if err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return false, err
	}
	return count == 0, nil
}

type rowsAffected interface {
	RowsAffected() (int64, error)
}

func expectAffected(res rowsAffected) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
