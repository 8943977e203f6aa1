package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/fabiandiazmartinez20/backend-raicesmx/internal/core/domain"
	"github.com/fabiandiazmartinez20/backend-raicesmx/internal/repository"
)

func testUser() domain.User {
	now := time.Now().UTC()
	return domain.User{
		ID:           "user-1",
		Email:        "ana@example.com",
		FullName:     "Ana López",
		PasswordHash: "$2a$10$abcdefghijklmnopqrstuv",
		IsSeller:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestUserRepository_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)
	user := testUser()

	mock.ExpectExec(`INSERT INTO users`).
		WithArgs(
			user.ID,
			user.Email,
			user.FullName,
			user.PasswordHash,
			user.IsSeller,
			user.CreatedAt,
			user.UpdatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_CreateDuplicateEmail(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)
	user := testUser()

	mock.ExpectExec(`INSERT INTO users`).
		WithArgs(
			user.ID,
			user.Email,
			user.FullName,
			user.PasswordHash,
			user.IsSeller,
			user.CreatedAt,
			user.UpdatedAt,
		).
		WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})

	if err := repo.Create(context.Background(), user); !errors.Is(err, repository.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_GetByEmail(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)
	user := testUser()

	rows := pgxmock.NewRows([]string{
		"id", "email", "full_name", "password_hash", "is_seller", "created_at", "updated_at",
	}).AddRow(
		user.ID, user.Email, user.FullName, user.PasswordHash, user.IsSeller, user.CreatedAt, user.UpdatedAt,
	)

	mock.ExpectQuery(`SELECT .+ FROM users WHERE email =`).
		WithArgs(user.Email).
		WillReturnRows(rows)

	found, err := repo.GetByEmail(context.Background(), user.Email)
	if err != nil {
		t.Fatalf("GetByEmail returned error: %v", err)
	}

	if found.ID != user.ID || found.Email != user.Email || !found.IsSeller {
		t.Fatalf("unexpected user %+v", found)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_GetByIDNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)

	mock.ExpectQuery(`SELECT .+ FROM users WHERE id =`).
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "email", "full_name", "password_hash", "is_seller", "created_at", "updated_at",
		}))

	if _, err := repo.GetByID(context.Background(), "missing"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_UpdatePasswordHash(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)
	changedAt := time.Now().UTC()

	mock.ExpectExec(`UPDATE users SET password_hash =`).
		WithArgs("new-hash", changedAt, "user-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := repo.UpdatePasswordHash(context.Background(), "user-1", "new-hash", changedAt); err != nil {
		t.Fatalf("UpdatePasswordHash returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_UpdatePasswordHashMissingUser(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)
	changedAt := time.Now().UTC()

	mock.ExpectExec(`UPDATE users SET password_hash =`).
		WithArgs("new-hash", changedAt, "ghost").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	if err := repo.UpdatePasswordHash(context.Background(), "ghost", "new-hash", changedAt); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
