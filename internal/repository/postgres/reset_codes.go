package postgres

import (
	"context"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/fabiandiazmartinez20/backend-raicesmx/internal/core/domain"
	"github.com/fabiandiazmartinez20/backend-raicesmx/internal/core/port"
	"github.com/fabiandiazmartinez20/backend-raicesmx/internal/repository"
)

// ResetCodeRepository implements port.ResetCodeRepository using PostgreSQL.
type ResetCodeRepository struct {
	beginner pgTxBeginner
	exec     pgExecutor
	builder  squirrel.StatementBuilderType
}

// NewResetCodeRepository wires a PostgreSQL-backed reset code repository.
func NewResetCodeRepository(exec pgExecutor) *ResetCodeRepository {
	repo := &ResetCodeRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	if beginner, ok := exec.(pgTxBeginner); ok {
		repo.beginner = beginner
	}
	return repo
}

// WithTx returns a repository instance operating within the supplied transaction.
func (r *ResetCodeRepository) WithTx(tx pgx.Tx) *ResetCodeRepository {
	if tx == nil {
		return r
	}
	return &ResetCodeRepository{
		exec:    tx,
		builder: r.builder,
	}
}

// Issue invalidates the user's prior unused codes and inserts the new one
// in a single transaction, so two interleaved requests cannot both leave a
// live code behind and the at-most-one-unused-row-per-user invariant holds.
func (r *ResetCodeRepository) Issue(ctx context.Context, code domain.PasswordResetCode) error {
	if r.beginner == nil {
		// Already inside a transaction; run on the current executor.
		if err := r.InvalidateUnused(ctx, code.UserID); err != nil {
			return err
		}
		return r.Create(ctx, code)
	}

	tx, err := r.beginner.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin issue reset code tx: %w", err)
	}

	txRepo := r.WithTx(tx)
	if err := txRepo.InvalidateUnused(ctx, code.UserID); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := txRepo.Create(ctx, code); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit issue reset code tx: %w", err)
	}

	return nil
}

// InvalidateUnused marks every unused code for the user as used. Zero
// affected rows is fine: the user may have no outstanding code.
func (r *ResetCodeRepository) InvalidateUnused(ctx context.Context, userID string) error {
	stmt, args, err := r.builder.Update("password_reset_codes").
		Set("used", true).
		Where(squirrel.Eq{"user_id": userID}).
		Where(squirrel.Eq{"used": false}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build invalidate reset codes sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("invalidate reset codes: %w", err)
	}

	return nil
}

// Create inserts a new reset code row.
func (r *ResetCodeRepository) Create(ctx context.Context, code domain.PasswordResetCode) error {
	stmt, args, err := r.builder.Insert("password_reset_codes").
		Columns("id", "user_id", "code", "expires_at", "used", "created_at").
		Values(code.ID, code.UserID, code.Code, code.ExpiresAt, code.Used, code.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert reset code sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert reset code: %w", err)
	}

	return nil
}

// GetValid returns the unused row matching user and code.
func (r *ResetCodeRepository) GetValid(ctx context.Context, userID, code string) (*domain.PasswordResetCode, error) {
	stmt, args, err := r.builder.
		Select("id", "user_id", "code", "expires_at", "used", "created_at").
		From("password_reset_codes").
		Where(squirrel.Eq{"user_id": userID}).
		Where(squirrel.Eq{"code": code}).
		Where(squirrel.Eq{"used": false}).
		OrderBy("created_at DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select reset code sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)

	var record domain.PasswordResetCode
	if err := row.Scan(
		&record.ID,
		&record.UserID,
		&record.Code,
		&record.ExpiresAt,
		&record.Used,
		&record.CreatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan reset code: %w", err)
	}

	return &record, nil
}

// Consume marks the code as used, guarded on it still being unused. The
// affected-row check is what guarantees a code spends at most once even
// under concurrent resets.
func (r *ResetCodeRepository) Consume(ctx context.Context, id string) error {
	stmt, args, err := r.builder.Update("password_reset_codes").
		Set("used", true).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"used": false}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build consume reset code sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("consume reset code: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// DeleteExpired removes rows whose lifetime ended before the given instant.
func (r *ResetCodeRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	stmt, args, err := r.builder.Delete("password_reset_codes").
		Where(squirrel.Lt{"expires_at": before}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete expired reset codes sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return 0, fmt.Errorf("delete expired reset codes: %w", err)
	}

	return ct.RowsAffected(), nil
}

var _ port.ResetCodeRepository = (*ResetCodeRepository)(nil)
