package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fabiandiazmartinez20/backend-raicesmx/internal/core/domain"
	"github.com/fabiandiazmartinez20/backend-raicesmx/internal/infra/security"
	"github.com/fabiandiazmartinez20/backend-raicesmx/internal/repository"
)

func newTestTokenManager(t *testing.T) *security.TokenManager {
	t.Helper()
	mgr, err := security.NewTokenManager("unit-test-secret", "test", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager returned error: %v", err)
	}
	return mgr
}

func seedUser(t *testing.T, email, password string, isSeller bool) domain.User {
	t.Helper()
	hash, err := security.HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	return domain.User{
		ID:           "user-" + email,
		Email:        email,
		FullName:     "Seed User",
		PasswordHash: hash,
		IsSeller:     isSeller,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
}

func TestRegisterSuccess(t *testing.T) {
	users := newMemUserRepo()
	svc := NewAuthService(users, newTestTokenManager(t), nil)

	result, err := svc.Register(context.Background(), RegisterInput{
		Email:    " Ana@Example.COM ",
		FullName: "Ana López",
		Password: "secret-password",
		IsSeller: true,
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	if result.User.Email != "ana@example.com" {
		t.Fatalf("expected normalized email, got %q", result.User.Email)
	}
	if result.User.PasswordHash != "" {
		t.Fatal("expected sanitized user without password hash")
	}
	if !result.User.IsSeller {
		t.Fatal("expected seller flag to persist")
	}

	stored, err := users.GetByEmail(context.Background(), "ana@example.com")
	if err != nil {
		t.Fatalf("stored user lookup failed: %v", err)
	}
	if stored.PasswordHash == "secret-password" {
		t.Fatal("expected password to be stored hashed")
	}
	if !security.VerifyPassword("secret-password", stored.PasswordHash) {
		t.Fatal("expected stored hash to verify the original password")
	}

	claims, err := svc.ParseAccessToken(result.AccessToken)
	if err != nil {
		t.Fatalf("issued token failed to parse: %v", err)
	}
	if claims.UserID != stored.ID || claims.Email != stored.Email || !claims.IsSeller {
		t.Fatalf("claims do not mirror the account: %+v", claims)
	}
}

func TestRegisterEmailConflict(t *testing.T) {
	existing := seedUser(t, "taken@example.com", "password", false)
	users := newMemUserRepo(existing)
	svc := NewAuthService(users, newTestTokenManager(t), nil)

	_, err := svc.Register(context.Background(), RegisterInput{
		Email:    "taken@example.com",
		FullName: "Someone Else",
		Password: "password",
	})
	if !errors.Is(err, ErrEmailConflict) {
		t.Fatalf("expected ErrEmailConflict, got %v", err)
	}
}

func TestRegisterConflictOnConcurrentInsert(t *testing.T) {
	users := newMemUserRepo()
	users.createErr = repository.ErrDuplicate
	svc := NewAuthService(users, newTestTokenManager(t), nil)

	_, err := svc.Register(context.Background(), RegisterInput{
		Email:    "race@example.com",
		FullName: "Race",
		Password: "password",
	})
	if !errors.Is(err, ErrEmailConflict) {
		t.Fatalf("expected ErrEmailConflict from unique violation, got %v", err)
	}
}

func TestRegisterRequiredFields(t *testing.T) {
	svc := NewAuthService(newMemUserRepo(), newTestTokenManager(t), nil)

	cases := []RegisterInput{
		{FullName: "Name", Password: "password"},
		{Email: "a@b.c", Password: "password"},
		{Email: "a@b.c", FullName: "Name"},
	}
	for i, input := range cases {
		if _, err := svc.Register(context.Background(), input); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
}

func TestLoginSuccess(t *testing.T) {
	existing := seedUser(t, "login@example.com", "hunter2hunter2", false)
	svc := NewAuthService(newMemUserRepo(existing), newTestTokenManager(t), nil)

	result, err := svc.Login(context.Background(), "Login@Example.com", "hunter2hunter2")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if result.AccessToken == "" {
		t.Fatal("expected access token")
	}
	if result.User.PasswordHash != "" {
		t.Fatal("expected sanitized user")
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	existing := seedUser(t, "known@example.com", "correct-password", false)
	svc := NewAuthService(newMemUserRepo(existing), newTestTokenManager(t), nil)

	_, wrongPassword := svc.Login(context.Background(), "known@example.com", "wrong-password")
	_, unknownEmail := svc.Login(context.Background(), "nobody@example.com", "whatever")

	if !errors.Is(wrongPassword, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", wrongPassword)
	}
	if !errors.Is(unknownEmail, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", unknownEmail)
	}
	if wrongPassword.Error() != unknownEmail.Error() {
		t.Fatal("expected identical errors for wrong password and unknown email")
	}
}

func TestOAuthLoginCreatesAccount(t *testing.T) {
	users := newMemUserRepo()
	svc := NewAuthService(users, newTestTokenManager(t), nil)

	identity := domain.OAuthIdentity{
		Provider:   "google",
		ExternalID: "google-sub-1",
		Email:      "oauth@example.com",
		FullName:   "OAuth User",
	}

	result, err := svc.OAuthLogin(context.Background(), identity)
	if err != nil {
		t.Fatalf("OAuthLogin returned error: %v", err)
	}

	stored, err := users.GetByEmail(context.Background(), "oauth@example.com")
	if err != nil {
		t.Fatalf("created account lookup failed: %v", err)
	}
	if stored.IsSeller {
		t.Fatal("oauth-created accounts must not be sellers")
	}
	if stored.PasswordHash == "" {
		t.Fatal("expected a throwaway credential hash")
	}
	if security.VerifyPassword("", stored.PasswordHash) {
		t.Fatal("throwaway credential must not verify an empty password")
	}

	claims, err := svc.ParseAccessToken(result.AccessToken)
	if err != nil {
		t.Fatalf("issued token failed to parse: %v", err)
	}
	if claims.UserID != stored.ID {
		t.Fatalf("expected session for created account, got uid %q", claims.UserID)
	}
}

func TestOAuthLoginExistingAccount(t *testing.T) {
	existing := seedUser(t, "returning@example.com", "password", true)
	users := newMemUserRepo(existing)
	svc := NewAuthService(users, newTestTokenManager(t), nil)

	result, err := svc.OAuthLogin(context.Background(), domain.OAuthIdentity{
		Provider:   "google",
		ExternalID: "google-sub-2",
		Email:      "Returning@Example.com",
		FullName:   "Different Name",
	})
	if err != nil {
		t.Fatalf("OAuthLogin returned error: %v", err)
	}

	if result.User.ID != existing.ID {
		t.Fatalf("expected existing account, got %q", result.User.ID)
	}
	if !result.User.IsSeller {
		t.Fatal("existing seller flag must survive oauth login")
	}
	if len(users.users) != 1 {
		t.Fatalf("expected no new account, have %d", len(users.users))
	}
}

func TestOAuthLoginIncompleteIdentity(t *testing.T) {
	svc := NewAuthService(newMemUserRepo(), newTestTokenManager(t), nil)

	cases := []domain.OAuthIdentity{
		{Provider: "google", Email: "no-sub@example.com"},
		{Provider: "google", ExternalID: "sub-only"},
	}
	for i, identity := range cases {
		if _, err := svc.OAuthLogin(context.Background(), identity); !errors.Is(err, ErrOAuthFailure) {
			t.Fatalf("case %d: expected ErrOAuthFailure, got %v", i, err)
		}
	}
}

func TestValidateUser(t *testing.T) {
	existing := seedUser(t, "valid@example.com", "password", false)
	svc := NewAuthService(newMemUserRepo(existing), newTestTokenManager(t), nil)

	user, err := svc.ValidateUser(context.Background(), existing.ID)
	if err != nil {
		t.Fatalf("ValidateUser returned error: %v", err)
	}
	if user.PasswordHash != "" {
		t.Fatal("expected sanitized user")
	}

	if _, err := svc.ValidateUser(context.Background(), "deleted-user"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := svc.ValidateUser(context.Background(), "  "); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound for blank id, got %v", err)
	}
}

func TestParseAccessTokenInvalid(t *testing.T) {
	svc := NewAuthService(newMemUserRepo(), newTestTokenManager(t), nil)

	if _, err := svc.ParseAccessToken("garbage"); !errors.Is(err, ErrInvalidAccessToken) {
		t.Fatalf("expected ErrInvalidAccessToken, got %v", err)
	}
}
