package mail

import (
	"context"

	"go.uber.org/zap"

	"github.com/fabiandiazmartinez20/backend-raicesmx/internal/core/port"
	"github.com/fabiandiazmartinez20/backend-raicesmx/internal/infra/logger"
)

// LoggingMailer writes email payloads to the log instead of delivering
// them. Development profile only.
type LoggingMailer struct {
	log *zap.Logger
}

// NewLoggingMailer builds a mailer that only logs.
func NewLoggingMailer(log *zap.Logger) *LoggingMailer {
	if log == nil {
		log = zap.NewNop()
	}
	return &LoggingMailer{log: log}
}

// SendPasswordResetCode logs the recovery code instead of mailing it.
func (m *LoggingMailer) SendPasswordResetCode(_ context.Context, email, fullName, code string) error {
	m.log.Info("password reset code (not delivered, logging mailer)",
		zap.String("email", logger.MaskEmail(email)),
		zap.String("full_name", fullName),
		zap.String("code", code),
	)
	return nil
}

var _ port.Mailer = (*LoggingMailer)(nil)
