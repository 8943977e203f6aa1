package usecase

import (
	"context"
	"time"

	"github.com/fabiandiazmartinez20/backend-raicesmx/internal/core/domain"
	"github.com/fabiandiazmartinez20/backend-raicesmx/internal/repository"
)

// memUserRepo is an in-memory port.UserRepository for unit tests.
type memUserRepo struct {
	users     map[string]domain.User
	createErr error
	lookupErr error
}

func newMemUserRepo(seed ...domain.User) *memUserRepo {
	repo := &memUserRepo{users: make(map[string]domain.User)}
	for _, user := range seed {
		repo.users[user.ID] = user
	}
	return repo
}

func (r *memUserRepo) Create(_ context.Context, user domain.User) error {
	if r.createErr != nil {
		return r.createErr
	}
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	r.users[user.ID] = user
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	if r.lookupErr != nil {
		return nil, r.lookupErr
	}
	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := user
	return &copied, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	if r.lookupErr != nil {
		return nil, r.lookupErr
	}
	for _, user := range r.users {
		if user.Email == email {
			copied := user
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memUserRepo) UpdatePasswordHash(_ context.Context, id, passwordHash string, changedAt time.Time) error {
	user, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.PasswordHash = passwordHash
	user.UpdatedAt = changedAt
	r.users[id] = user
	return nil
}

// memCodeRepo is an in-memory port.ResetCodeRepository for unit tests.
type memCodeRepo struct {
	codes      map[string]domain.PasswordResetCode
	issueErr   error
	consumeErr error
}

func newMemCodeRepo(seed ...domain.PasswordResetCode) *memCodeRepo {
	repo := &memCodeRepo{codes: make(map[string]domain.PasswordResetCode)}
	for _, code := range seed {
		repo.codes[code.ID] = code
	}
	return repo
}

func (r *memCodeRepo) Issue(_ context.Context, code domain.PasswordResetCode) error {
	if r.issueErr != nil {
		return r.issueErr
	}
	for id, prior := range r.codes {
		if prior.UserID == code.UserID && !prior.Used {
			prior.Used = true
			r.codes[id] = prior
		}
	}
	r.codes[code.ID] = code
	return nil
}

func (r *memCodeRepo) GetValid(_ context.Context, userID, code string) (*domain.PasswordResetCode, error) {
	for _, record := range r.codes {
		if record.UserID == userID && record.Code == code && !record.Used {
			copied := record
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memCodeRepo) Consume(_ context.Context, id string) error {
	if r.consumeErr != nil {
		return r.consumeErr
	}
	record, ok := r.codes[id]
	if !ok || record.Used {
		return repository.ErrNotFound
	}
	record.Used = true
	r.codes[id] = record
	return nil
}

func (r *memCodeRepo) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	var removed int64
	for id, record := range r.codes {
		if record.ExpiresAt.Before(before) {
			delete(r.codes, id)
			removed++
		}
	}
	return removed, nil
}

func (r *memCodeRepo) unusedCount(userID string) int {
	count := 0
	for _, record := range r.codes {
		if record.UserID == userID && !record.Used {
			count++
		}
	}
	return count
}

// recordedMail captures a delivered reset code email.
type recordedMail struct {
	Email    string
	FullName string
	Code     string
}

// stubMailer records deliveries and optionally fails them.
type stubMailer struct {
	sent    []recordedMail
	sendErr error
}

func (m *stubMailer) SendPasswordResetCode(_ context.Context, email, fullName, code string) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, recordedMail{Email: email, FullName: fullName, Code: code})
	return nil
}
