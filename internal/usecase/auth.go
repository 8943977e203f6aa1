package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fabiandiazmartinez20/backend-raicesmx/internal/core/domain"
	"github.com/fabiandiazmartinez20/backend-raicesmx/internal/core/port"
	"github.com/fabiandiazmartinez20/backend-raicesmx/internal/infra/logger"
	"github.com/fabiandiazmartinez20/backend-raicesmx/internal/infra/security"
	"github.com/fabiandiazmartinez20/backend-raicesmx/internal/repository"
)

var (
	// ErrInvalidCredentials indicates the provided email or password are
	// incorrect. Unknown email and wrong password are indistinguishable.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailConflict indicates the email is already registered.
	ErrEmailConflict = errors.New("email already registered")
	// ErrUserNotFound indicates the session subject no longer exists.
	ErrUserNotFound = errors.New("user not found")
	// ErrOAuthFailure indicates the external provider handshake failed or
	// produced an incomplete identity.
	ErrOAuthFailure = errors.New("oauth authentication failed")
	// ErrInvalidAccessToken indicates the session token is malformed or
	// failed signature validation.
	ErrInvalidAccessToken = errors.New("invalid access token")
	// ErrExpiredAccessToken indicates the session token has expired.
	ErrExpiredAccessToken = errors.New("access token expired")
)

const oauthPasswordBytes = 32

// AuthService coordinates registration, login and session validation.
type AuthService struct {
	users  port.UserRepository
	tokens *security.TokenManager
	log    *zap.Logger
	now    func() time.Time
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(users port.UserRepository, tokens *security.TokenManager, log *zap.Logger) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{
		users:  users,
		tokens: tokens,
		log:    log,
		now:    time.Now,
	}
}

// WithClock overrides the time source. Intended for tests.
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	if now != nil {
		s.now = now
	}
	return s
}

// RegisterInput carries the fields for local account creation.
type RegisterInput struct {
	Email    string
	FullName string
	Password string
	IsSeller bool
}

// AuthResult pairs the sanitized account with its freshly issued token.
type AuthResult struct {
	User        domain.User
	AccessToken string
}

// Register creates a local account and opens a session for it.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	email := NormalizeEmail(input.Email)
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}
	if strings.TrimSpace(input.FullName) == "" {
		return nil, fmt.Errorf("full name is required")
	}
	if input.Password == "" {
		return nil, fmt.Errorf("password is required")
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailConflict
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := security.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	user := domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		FullName:     strings.TrimSpace(input.FullName),
		PasswordHash: hash,
		IsSeller:     input.IsSeller,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		// Races with a concurrent registration land on the unique index.
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailConflict
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.Info("user registered",
		zap.String("user_id", user.ID),
		zap.String("email", logger.MaskEmail(user.Email)),
		zap.Bool("is_seller", user.IsSeller),
	)

	return s.openSession(user)
}

// Login validates local credentials and opens a session.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if !security.VerifyPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return s.openSession(*user)
}

// OAuthLogin resolves an external identity to a local account, creating
// one on first login, and opens a session.
func (s *AuthService) OAuthLogin(ctx context.Context, identity domain.OAuthIdentity) (*AuthResult, error) {
	if !identity.Complete() {
		return nil, ErrOAuthFailure
	}

	email := NormalizeEmail(identity.Email)
	user, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return s.openSession(*user)
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	created, err := s.createOAuthUser(ctx, email, identity)
	if err != nil {
		return nil, err
	}

	return s.openSession(*created)
}

func (s *AuthService) createOAuthUser(ctx context.Context, email string, identity domain.OAuthIdentity) (*domain.User, error) {
	// The account still needs a local credential column; a random
	// throwaway keeps it unusable for password login.
	throwaway, err := security.GenerateSecureToken(oauthPasswordBytes)
	if err != nil {
		return nil, fmt.Errorf("generate oauth password: %w", err)
	}
	hash, err := security.HashPassword(throwaway)
	if err != nil {
		return nil, fmt.Errorf("hash oauth password: %w", err)
	}

	now := s.now().UTC()
	user := domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		FullName:     strings.TrimSpace(identity.FullName),
		PasswordHash: hash,
		IsSeller:     false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		// Lost the race against a concurrent first login: use the
		// existing row.
		if errors.Is(err, repository.ErrDuplicate) {
			existing, lookupErr := s.users.GetByEmail(ctx, email)
			if lookupErr != nil {
				return nil, fmt.Errorf("lookup user after conflict: %w", lookupErr)
			}
			return existing, nil
		}
		return nil, fmt.Errorf("create oauth user: %w", err)
	}

	s.log.Info("user created via oauth",
		zap.String("user_id", user.ID),
		zap.String("provider", identity.Provider),
		zap.String("email", logger.MaskEmail(user.Email)),
	)

	return &user, nil
}

// ValidateUser confirms the session subject still exists and returns the
// sanitized account.
func (s *AuthService) ValidateUser(ctx context.Context, id string) (*domain.User, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrUserNotFound
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	sanitized := user.Sanitized()
	return &sanitized, nil
}

// ParseAccessToken validates a session token and returns its claims.
func (s *AuthService) ParseAccessToken(token string) (*security.SessionClaims, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		if errors.Is(err, security.ErrExpiredToken) {
			return nil, ErrExpiredAccessToken
		}
		return nil, ErrInvalidAccessToken
	}
	return claims, nil
}

// TokenTTL exposes the configured session lifetime for cookie emission.
func (s *AuthService) TokenTTL() time.Duration {
	return s.tokens.TTL()
}

func (s *AuthService) openSession(user domain.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(user.ID, user.Email, user.IsSeller)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &AuthResult{
		User:        user.Sanitized(),
		AccessToken: token,
	}, nil
}

// NormalizeEmail lower-cases and trims an email address so lookups and
// uniqueness are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
