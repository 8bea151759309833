package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aussiebroadwan/deskauth/internal/auth/domain"
	"github.com/aussiebroadwan/deskauth/internal/auth/store"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func newStoreWithMock(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return NewStoreFromDB(db), mock
}

var userColumns = []string{"id", "username", "password_hash", "role", "created_at"}

func TestGetUserByUsername(t *testing.T) {
	q := `(?s)^SELECT\s+id,\s*username,\s*password_hash,\s*role,\s*created_at\s+FROM\s+users\s+WHERE\s+username\s*=\s*\$1\s*$`
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("found", func(t *testing.T) {
		st, mock := newStoreWithMock(t)
		mock.ExpectQuery(q).
			WithArgs("alice").
			WillReturnRows(sqlmock.NewRows(userColumns).AddRow(int64(2), "alice", "$2b$10$h", "user", created))

		got, err := st.Users().GetUserByUsername(context.Background(), "alice")
		require.NoError(t, err)
		require.Equal(t, domain.User{
			ID:           2,
			Username:     "alice",
			PasswordHash: "$2b$10$h",
			Role:         domain.RoleUser,
			CreatedAt:    created,
		}, got)
	})

	t.Run("not found", func(t *testing.T) {
		st, mock := newStoreWithMock(t)
		mock.ExpectQuery(q).WithArgs("ghost").WillReturnError(sql.ErrNoRows)

		_, err := st.Users().GetUserByUsername(context.Background(), "ghost")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("db error is wrapped", func(t *testing.T) {
		st, mock := newStoreWithMock(t)
		mock.ExpectQuery(q).WithArgs("alice").WillReturnError(errors.New("db down"))

		_, err := st.Users().GetUserByUsername(context.Background(), "alice")
		require.ErrorContains(t, err, "db error: db down")
		require.NotErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("unknown role in row", func(t *testing.T) {
		st, mock := newStoreWithMock(t)
		mock.ExpectQuery(q).
			WithArgs("eve").
			WillReturnRows(sqlmock.NewRows(userColumns).AddRow(int64(9), "eve", "$2b$10$h", "superuser", created))

		_, err := st.Users().GetUserByUsername(context.Background(), "eve")
		require.ErrorIs(t, err, domain.ErrUnknownRole)
	})
}

func TestCreateUser(t *testing.T) {
	q := `(?s)^INSERT\s+INTO\s+users\s*\(username,\s*password_hash,\s*role\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3\)\s*RETURNING\s+id,\s*created_at\s*$`
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("success", func(t *testing.T) {
		st, mock := newStoreWithMock(t)
		mock.ExpectQuery(q).
			WithArgs("bob", "$2b$10$h", "admin").
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(42), created))

		got, err := st.Users().CreateUser(context.Background(), domain.User{
			Username:     "bob",
			PasswordHash: "$2b$10$h",
			Role:         domain.RoleAdmin,
		})
		require.NoError(t, err)
		require.Equal(t, int64(42), got.ID)
		require.Equal(t, created, got.CreatedAt)
		require.Equal(t, domain.RoleAdmin, got.Role)
	})

	t.Run("unique violation", func(t *testing.T) {
		st, mock := newStoreWithMock(t)
		mock.ExpectQuery(q).
			WithArgs("bob", "$2b$10$h", "user").
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"})

		_, err := st.Users().CreateUser(context.Background(), domain.User{
			Username:     "bob",
			PasswordHash: "$2b$10$h",
			Role:         domain.RoleUser,
		})
		require.ErrorIs(t, err, store.ErrDuplicateUsername)
	})

	t.Run("other pg error", func(t *testing.T) {
		st, mock := newStoreWithMock(t)
		mock.ExpectQuery(q).
			WithArgs("bob", "$2b$10$h", "user").
			WillReturnError(&pgconn.PgError{Code: "23514", Message: "check violation"})

		_, err := st.Users().CreateUser(context.Background(), domain.User{
			Username:     "bob",
			PasswordHash: "$2b$10$h",
			Role:         domain.RoleUser,
		})
		require.Error(t, err)
		require.NotErrorIs(t, err, store.ErrDuplicateUsername)
	})
}

func TestUpdatePasswordHash(t *testing.T) {
	q := `(?s)^UPDATE\s+users\s+SET\s+password_hash\s*=\s*\$1\s+WHERE\s+username\s*=\s*\$2\s*$`

	t.Run("updated", func(t *testing.T) {
		st, mock := newStoreWithMock(t)
		mock.ExpectExec(q).WithArgs("$2b$10$new", "alice").WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, st.Users().UpdatePasswordHash(context.Background(), "alice", "$2b$10$new"))
	})

	t.Run("no such user", func(t *testing.T) {
		st, mock := newStoreWithMock(t)
		mock.ExpectExec(q).WithArgs("$2b$10$new", "ghost").WillReturnResult(sqlmock.NewResult(0, 0))

		err := st.Users().UpdatePasswordHash(context.Background(), "ghost", "$2b$10$new")
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestDeleteUser(t *testing.T) {
	q := `(?s)^DELETE\s+FROM\s+users\s+WHERE\s+username\s*=\s*\$1\s*$`

	t.Run("deleted", func(t *testing.T) {
		st, mock := newStoreWithMock(t)
		mock.ExpectExec(q).WithArgs("alice").WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, st.Users().DeleteUser(context.Background(), "alice"))
	})

	t.Run("no such user", func(t *testing.T) {
		st, mock := newStoreWithMock(t)
		mock.ExpectExec(q).WithArgs("ghost").WillReturnResult(sqlmock.NewResult(0, 0))

		require.ErrorIs(t, st.Users().DeleteUser(context.Background(), "ghost"), store.ErrNotFound)
	})

	t.Run("db error", func(t *testing.T) {
		st, mock := newStoreWithMock(t)
		mock.ExpectExec(q).WithArgs("alice").WillReturnError(errors.New("conn reset"))

		require.ErrorContains(t, st.Users().DeleteUser(context.Background(), "alice"), "db error: conn reset")
	})
}

func TestListUsers(t *testing.T) {
	q := `(?s)^SELECT\s+id,\s*username,\s*password_hash,\s*role,\s*created_at\s+FROM\s+users\s+ORDER\s+BY\s+id\s*$`
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	st, mock := newStoreWithMock(t)
	mock.ExpectQuery(q).WillReturnRows(sqlmock.NewRows(userColumns).
		AddRow(int64(1), "root", "$2b$10$a", "admin", created).
		AddRow(int64(2), "alice", "$2b$10$b", "user", created.Add(time.Minute)))

	users, err := st.Users().ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	require.Equal(t, "root", users[0].Username)
	require.Equal(t, domain.RoleAdmin, users[0].Role)
	require.Equal(t, "alice", users[1].Username)
}

func TestIsEmpty(t *testing.T) {
	q := `(?s)^SELECT\s+EXISTS\s*\(SELECT\s+1\s+FROM\s+users\)\s*$`

	st, mock := newStoreWithMock(t)
	mock.ExpectQuery(q).WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	empty, err := st.Users().IsEmpty(context.Background())
	require.NoError(t, err)
	require.True(t, empty)
}

func TestWithTx(t *testing.T) {
	q := `(?s)^DELETE\s+FROM\s+users\s+WHERE\s+username\s*=\s*\$1\s*$`

	t.Run("commit", func(t *testing.T) {
		st, mock := newStoreWithMock(t)
		mock.ExpectBegin()
		mock.ExpectExec(q).WithArgs("alice").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := st.WithTx(context.Background(), func(tx store.Tx) error {
			return tx.Users().DeleteUser(context.Background(), "alice")
		})
		require.NoError(t, err)
	})

	t.Run("rollback on error", func(t *testing.T) {
		st, mock := newStoreWithMock(t)
		mock.ExpectBegin()
		mock.ExpectExec(q).WithArgs("ghost").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := st.WithTx(context.Background(), func(tx store.Tx) error {
			return tx.Users().DeleteUser(context.Background(), "ghost")
		})
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("nested tx refused", func(t *testing.T) {
		st, mock := newStoreWithMock(t)
		mock.ExpectBegin()
		mock.ExpectRollback()

		err := st.WithTx(context.Background(), func(tx store.Tx) error {
			_, err := tx.Tx(context.Background())
			return err
		})
		require.ErrorIs(t, err, sql.ErrTxDone)
	})
}
