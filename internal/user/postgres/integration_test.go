// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Identor Contributors

//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/identor/identor/internal/store"
	"github.com/identor/identor/internal/user"
	"github.com/identor/identor/internal/user/postgres"
)

func TestUserRepository(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "User Repository Integration Suite")
}

// setupPostgresContainer starts a migrated PostgreSQL container.
func setupPostgresContainer() (*pgxpool.Pool, func(), error) {
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("identor_test"),
		tcpostgres.WithUsername("identor"),
		tcpostgres.WithPassword("identor"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, nil, err
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, nil, err
	}

	migrator, err := store.NewMigrator(connStr)
	if err != nil {
		return nil, nil, err
	}
	if err := migrator.Up(); err != nil {
		return nil, nil, err
	}
	_ = migrator.Close()

	pool, err := store.Connect(ctx, connStr)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		pool.Close()
		_ = container.Terminate(ctx)
	}

	return pool, cleanup, nil
}

func newStoredUser(email string) *user.User {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &user.User{
		ID:           ulid.Make(),
		Name:         "Ada Lovelace",
		Email:        email,
		PasswordHash: "$argon2id$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA",
		Role:         user.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

var _ = Describe("UserRepository", func() {
	var pool *pgxpool.Pool
	var repo *postgres.UserRepository
	var cleanup func()

	BeforeEach(func() {
		var err error
		pool, cleanup, err = setupPostgresContainer()
		Expect(err).NotTo(HaveOccurred())
		repo = postgres.NewUserRepository(pool)
	})

	AfterEach(func() {
		cleanup()
	})

	Describe("Create", func() {
		It("persists a user and retrieves it by id", func() {
			ctx := context.Background()
			u := newStoredUser("ada@example.com")

			Expect(repo.Create(ctx, u)).To(Succeed())

			got, err := repo.GetByID(ctx, u.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Email).To(Equal("ada@example.com"))
			Expect(got.Role).To(Equal(user.RoleUser))
			Expect(got.PasswordHash).To(Equal(u.PasswordHash))
		})

		It("maps the unique email constraint to ErrDuplicateEmail", func() {
			ctx := context.Background()

			Expect(repo.Create(ctx, newStoredUser("ada@example.com"))).To(Succeed())

			err := repo.Create(ctx, newStoredUser("ada@example.com"))
			Expect(err).To(MatchError(user.ErrDuplicateEmail))
		})

		It("rejects duplicates differing only in case", func() {
			ctx := context.Background()

			Expect(repo.Create(ctx, newStoredUser("ada@example.com"))).To(Succeed())

			err := repo.Create(ctx, newStoredUser("ADA@example.com"))
			Expect(err).To(MatchError(user.ErrDuplicateEmail))
		})

		It("wins exactly once under concurrent signups with the same email", func() {
			ctx := context.Background()

			results := make(chan error, 2)
			for range 2 {
				go func() {
					results <- repo.Create(ctx, newStoredUser("race@example.com"))
				}()
			}

			var failures int
			for range 2 {
				if err := <-results; err != nil {
					Expect(err).To(MatchError(user.ErrDuplicateEmail))
					failures++
				}
			}
			Expect(failures).To(Equal(1))
		})
	})

	Describe("GetByEmail", func() {
		It("looks up case-insensitively", func() {
			ctx := context.Background()
			u := newStoredUser("ada@example.com")
			Expect(repo.Create(ctx, u)).To(Succeed())

			got, err := repo.GetByEmail(ctx, "ADA@EXAMPLE.COM")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ID).To(Equal(u.ID))
		})

		It("returns ErrNotFound for unknown emails", func() {
			_, err := repo.GetByEmail(context.Background(), "ghost@example.com")
			Expect(err).To(MatchError(user.ErrNotFound))
		})
	})

	Describe("Update", func() {
		It("persists changed fields", func() {
			ctx := context.Background()
			u := newStoredUser("ada@example.com")
			Expect(repo.Create(ctx, u)).To(Succeed())

			u.Name = "Countess Lovelace"
			u.Role = user.RoleAdmin
			u.UpdatedAt = time.Now().UTC().Truncate(time.Microsecond)
			Expect(repo.Update(ctx, u)).To(Succeed())

			got, err := repo.GetByID(ctx, u.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Name).To(Equal("Countess Lovelace"))
			Expect(got.Role).To(Equal(user.RoleAdmin))
		})
	})

	Describe("Delete", func() {
		It("returns the deleted row and makes later reads fail", func() {
			ctx := context.Background()
			u := newStoredUser("ada@example.com")
			Expect(repo.Create(ctx, u)).To(Succeed())

			deleted, err := repo.Delete(ctx, u.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(deleted.ID).To(Equal(u.ID))

			_, err = repo.GetByID(ctx, u.ID)
			Expect(err).To(MatchError(user.ErrNotFound))
		})

		It("returns ErrNotFound for an unknown id", func() {
			_, err := repo.Delete(context.Background(), ulid.Make())
			Expect(err).To(MatchError(user.ErrNotFound))
		})
	})

	Describe("List", func() {
		It("returns all rows", func() {
			ctx := context.Background()
			Expect(repo.Create(ctx, newStoredUser("a@example.com"))).To(Succeed())
			Expect(repo.Create(ctx, newStoredUser("b@example.com"))).To(Succeed())

			users, err := repo.List(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(users).To(HaveLen(2))
		})
	})
})
