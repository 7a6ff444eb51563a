// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Identor Contributors

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/identor/identor/internal/user"
)

func newMockRepo(t *testing.T) (*UserRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewUserRepository(mock), mock
}

func sampleUser() *user.User {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &user.User{
		ID:           ulid.Make(),
		Name:         "Alice Example",
		Email:        "alice@example.com",
		PasswordHash: "$argon2id$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA",
		Role:         user.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func userRows(users ...*user.User) *pgxmock.Rows {
	rows := pgxmock.NewRows([]string{"id", "name", "email", "password_hash", "role", "created_at", "updated_at"})
	for _, u := range users {
		rows.AddRow(u.ID.String(), u.Name, u.Email, u.PasswordHash, string(u.Role), u.CreatedAt, u.UpdatedAt)
	}
	return rows
}

func TestUserRepository_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("inserts user", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		u := sampleUser()

		mock.ExpectExec(`INSERT INTO users`).
			WithArgs(u.ID.String(), u.Name, u.Email, u.PasswordHash, string(u.Role), u.CreatedAt, u.UpdatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		require.NoError(t, repo.Create(ctx, u))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps unique violation to ErrDuplicateEmail", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		u := sampleUser()

		mock.ExpectExec(`INSERT INTO users`).
			WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})

		err := repo.Create(ctx, u)
		assert.ErrorIs(t, err, user.ErrDuplicateEmail)
	})

	t.Run("wraps other database errors", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		u := sampleUser()

		mock.ExpectExec(`INSERT INTO users`).
			WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnError(errors.New("connection refused"))

		err := repo.Create(ctx, u)
		require.Error(t, err)
		assert.NotErrorIs(t, err, user.ErrDuplicateEmail)
	})
}

func TestUserRepository_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("returns user", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		u := sampleUser()

		mock.ExpectQuery(`SELECT .+ FROM users WHERE id =`).
			WithArgs(u.ID.String()).
			WillReturnRows(userRows(u))

		got, err := repo.GetByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, u, got)
	})

	t.Run("missing user returns ErrNotFound", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		id := ulid.Make()

		mock.ExpectQuery(`SELECT .+ FROM users WHERE id =`).
			WithArgs(id.String()).
			WillReturnRows(userRows())

		_, err := repo.GetByID(ctx, id)
		assert.ErrorIs(t, err, user.ErrNotFound)
	})

	t.Run("corrupt id in database is an error", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		id := ulid.Make()
		now := time.Now()

		rows := pgxmock.NewRows([]string{"id", "name", "email", "password_hash", "role", "created_at", "updated_at"}).
			AddRow("not-a-ulid", "n", "e@x.io", "h", "user", now, now)
		mock.ExpectQuery(`SELECT .+ FROM users WHERE id =`).
			WithArgs(id.String()).
			WillReturnRows(rows)

		_, err := repo.GetByID(ctx, id)
		require.Error(t, err)
		assert.NotErrorIs(t, err, user.ErrNotFound)
	})
}

func TestUserRepository_GetByEmail(t *testing.T) {
	ctx := context.Background()

	t.Run("lookup is case-insensitive", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		u := sampleUser()

		mock.ExpectQuery(`SELECT .+ FROM users WHERE LOWER\(email\) = LOWER\(\$1\)`).
			WithArgs("Alice@Example.COM").
			WillReturnRows(userRows(u))

		got, err := repo.GetByEmail(ctx, "Alice@Example.COM")
		require.NoError(t, err)
		assert.Equal(t, u.Email, got.Email)
	})

	t.Run("missing email returns ErrNotFound", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectQuery(`SELECT .+ FROM users WHERE LOWER\(email\) = LOWER\(\$1\)`).
			WithArgs("ghost@example.com").
			WillReturnRows(userRows())

		_, err := repo.GetByEmail(ctx, "ghost@example.com")
		assert.ErrorIs(t, err, user.ErrNotFound)
	})
}

func TestUserRepository_List(t *testing.T) {
	ctx := context.Background()

	t.Run("returns all users", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		u1, u2 := sampleUser(), sampleUser()
		u2.Email = "second@example.com"

		mock.ExpectQuery(`SELECT .+ FROM users ORDER BY created_at`).
			WillReturnRows(userRows(u1, u2))

		got, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, u1.Email, got[0].Email)
		assert.Equal(t, u2.Email, got[1].Email)
	})

	t.Run("empty table returns empty list", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectQuery(`SELECT .+ FROM users ORDER BY created_at`).
			WillReturnRows(userRows())

		got, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("query error is wrapped", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectQuery(`SELECT .+ FROM users ORDER BY created_at`).
			WillReturnError(errors.New("connection refused"))

		_, err := repo.List(ctx)
		assert.Error(t, err)
	})
}

func TestUserRepository_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("updates row", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		u := sampleUser()

		mock.ExpectExec(`UPDATE users SET`).
			WithArgs(u.ID.String(), u.Name, u.Email, u.PasswordHash, string(u.Role), u.UpdatedAt).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		require.NoError(t, repo.Update(ctx, u))
	})

	t.Run("zero rows affected returns ErrNotFound", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		u := sampleUser()

		mock.ExpectExec(`UPDATE users SET`).
			WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.Update(ctx, u)
		assert.ErrorIs(t, err, user.ErrNotFound)
	})

	t.Run("email collision returns ErrDuplicateEmail", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		u := sampleUser()

		mock.ExpectExec(`UPDATE users SET`).
			WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})

		err := repo.Update(ctx, u)
		assert.ErrorIs(t, err, user.ErrDuplicateEmail)
	})
}

func TestUserRepository_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("returns deleted row", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		u := sampleUser()

		mock.ExpectQuery(`DELETE FROM users WHERE id = \$1`).
			WithArgs(u.ID.String()).
			WillReturnRows(userRows(u))

		got, err := repo.Delete(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)
	})

	t.Run("missing user returns ErrNotFound", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		id := ulid.Make()

		mock.ExpectQuery(`DELETE FROM users WHERE id = \$1`).
			WithArgs(id.String()).
			WillReturnRows(userRows())

		_, err := repo.Delete(ctx, id)
		assert.ErrorIs(t, err, user.ErrNotFound)
	})
}
