package usecase

import (
	"context"
	"errors"
	"fmt"
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
	// ErrResetCodeInvalid indicates no live code matches the email/code
	// pair. Unknown email, wrong code and spent code all land here.
	ErrResetCodeInvalid = errors.New("reset code invalid")
	// ErrResetCodeExpired indicates the code matched but is past its
	// lifetime.
	ErrResetCodeExpired = errors.New("reset code expired")
	// ErrResetDeliveryFailed indicates the recovery email could not be sent.
	ErrResetDeliveryFailed = errors.New("reset code delivery failed")
)

const defaultResetCodeTTL = 15 * time.Minute

// PasswordResetService drives the three-step recovery protocol:
// request a code by email, verify it, then reset the password with it.
type PasswordResetService struct {
	users   port.UserRepository
	codes   port.ResetCodeRepository
	mailer  port.Mailer
	log     *zap.Logger
	now     func() time.Time
	codeTTL time.Duration
}

// NewPasswordResetService constructs the reset workflow service.
func NewPasswordResetService(users port.UserRepository, codes port.ResetCodeRepository, mailer port.Mailer, log *zap.Logger) *PasswordResetService {
	if log == nil {
		log = zap.NewNop()
	}
	return &PasswordResetService{
		users:   users,
		codes:   codes,
		mailer:  mailer,
		log:     log,
		now:     time.Now,
		codeTTL: defaultResetCodeTTL,
	}
}

// WithClock overrides the time source. Intended for tests.
func (s *PasswordResetService) WithClock(now func() time.Time) *PasswordResetService {
	if now != nil {
		s.now = now
	}
	return s
}

// WithTTL overrides the code lifetime.
func (s *PasswordResetService) WithTTL(ttl time.Duration) *PasswordResetService {
	if ttl > 0 {
		s.codeTTL = ttl
	}
	return s
}

// RequestReset issues a fresh recovery code and emails it. An unknown
// email returns nil so callers cannot probe for registered addresses.
func (s *PasswordResetService) RequestReset(ctx context.Context, email string) error {
	email = NormalizeEmail(email)
	if email == "" {
		return fmt.Errorf("email is required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.log.Info("reset requested for unknown email",
				zap.String("email", logger.MaskEmail(email)),
			)
			return nil
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	code, err := security.GenerateResetCode()
	if err != nil {
		return fmt.Errorf("generate reset code: %w", err)
	}

	now := s.now().UTC()
	record := domain.PasswordResetCode{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Code:      code,
		ExpiresAt: now.Add(s.codeTTL),
		Used:      false,
		CreatedAt: now,
	}
	if err := s.codes.Issue(ctx, record); err != nil {
		return fmt.Errorf("issue reset code: %w", err)
	}

	if err := s.mailer.SendPasswordResetCode(ctx, user.Email, user.FullName, code); err != nil {
		s.log.Error("reset code delivery failed",
			zap.String("user_id", user.ID),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %v", ErrResetDeliveryFailed, err)
	}

	s.log.Info("reset code issued",
		zap.String("user_id", user.ID),
		zap.Time("expires_at", record.ExpiresAt),
	)

	return nil
}

// VerifyCode checks an email/code pair without consuming the code, so the
// subsequent reset call can still spend it.
func (s *PasswordResetService) VerifyCode(ctx context.Context, email, code string) error {
	_, _, err := s.findValidCode(ctx, email, code)
	return err
}

// ResetPassword spends a verified code and replaces the user's credential.
// The consume happens first: of two concurrent resets holding the same
// code exactly one passes the unused guard, and a crash after consuming
// burns the code instead of leaving it replayable.
func (s *PasswordResetService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	if newPassword == "" {
		return fmt.Errorf("new password is required")
	}

	record, user, err := s.findValidCode(ctx, email, code)
	if err != nil {
		return err
	}

	hash, err := security.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.codes.Consume(ctx, record.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrResetCodeInvalid
		}
		return fmt.Errorf("consume reset code: %w", err)
	}

	if err := s.users.UpdatePasswordHash(ctx, user.ID, hash, s.now().UTC()); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	s.log.Info("password reset completed",
		zap.String("user_id", user.ID),
	)

	return nil
}

// CleanupExpiredCodes deletes codes past their lifetime. Run periodically;
// expiry is independently enforced at verification time.
func (s *PasswordResetService) CleanupExpiredCodes(ctx context.Context) error {
	removed, err := s.codes.DeleteExpired(ctx, s.now().UTC())
	if err != nil {
		return fmt.Errorf("delete expired reset codes: %w", err)
	}

	if removed > 0 {
		s.log.Info("expired reset codes removed", zap.Int64("count", removed))
	}

	return nil
}

func (s *PasswordResetService) findValidCode(ctx context.Context, email, code string) (*domain.PasswordResetCode, *domain.User, error) {
	email = NormalizeEmail(email)
	if email == "" || code == "" {
		return nil, nil, ErrResetCodeInvalid
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrResetCodeInvalid
		}
		return nil, nil, fmt.Errorf("lookup user: %w", err)
	}

	record, err := s.codes.GetValid(ctx, user.ID, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrResetCodeInvalid
		}
		return nil, nil, fmt.Errorf("lookup reset code: %w", err)
	}

	if record.Expired(s.now().UTC()) {
		return nil, nil, ErrResetCodeExpired
	}

	return record, user, nil
}
