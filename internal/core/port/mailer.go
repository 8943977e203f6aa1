package port

import "context"

// Mailer delivers transactional email.
type Mailer interface {
	SendPasswordResetCode(ctx context.Context, email, fullName, code string) error
}
