package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"epiwatch/internal/models"
)

type PhoneVerificationRepository interface {
	Replace(ctx context.Context, userID int, phone, codeHash string, expiresAt time.Time) (*models.PhoneVerification, error)
	GetLatestByUserID(ctx context.Context, userID int) (*models.PhoneVerification, error)
	IncrementAttempts(ctx context.Context, id int64) (int, error)
	Delete(ctx context.Context, id int64) error
	ConfirmAndLink(ctx context.Context, v *models.PhoneVerification) error
}

type phoneVerificationRepository struct {
	DB *sql.DB
}

func NewPhoneVerificationRepository(db *sql.DB) PhoneVerificationRepository {
	return &phoneVerificationRepository{DB: db}
}

// Replace: delete any prior pending verification for the user and insert the
// fresh one in a single transaction, so at most one row exists per user.
func (r *phoneVerificationRepository) Replace(ctx context.Context, userID int, phone, codeHash string, expiresAt time.Time) (*models.PhoneVerification, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("phone_verification replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM phone_verifications WHERE user_id=$1`, userID); err != nil {
		return nil, fmt.Errorf("phone_verification delete prior: %w", err)
	}

	const q = `
		INSERT INTO phone_verifications (user_id, phone_number, code_hash, expires_at, attempts)
		VALUES ($1, $2, $3, $4, 0)
		RETURNING id, created_at
	`
	v := &models.PhoneVerification{
		UserID:      userID,
		PhoneNumber: phone,
		CodeHash:    codeHash,
		ExpiresAt:   expiresAt,
	}
	if err := tx.QueryRowContext(ctx, q, userID, phone, codeHash, expiresAt).
		Scan(&v.ID, &v.CreatedAt); err != nil {
		return nil, fmt.Errorf("phone_verification create: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("phone_verification replace commit: %w", err)
	}
	return v, nil
}

func (r *phoneVerificationRepository) GetLatestByUserID(ctx context.Context, userID int) (*models.PhoneVerification, error) {
	const q = `
		SELECT id, user_id, phone_number, code_hash, created_at, expires_at, attempts
		FROM phone_verifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	row := r.DB.QueryRowContext(ctx, q, userID)
	var v models.PhoneVerification
	if err := row.Scan(&v.ID, &v.UserID, &v.PhoneNumber, &v.CodeHash, &v.CreatedAt, &v.ExpiresAt, &v.Attempts); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("phone_verification latest: %w", err)
	}
	return &v, nil
}

// IncrementAttempts: +1, returns the new counter value.
func (r *phoneVerificationRepository) IncrementAttempts(ctx context.Context, id int64) (int, error) {
	const q = `
		UPDATE phone_verifications
		SET attempts = attempts + 1
		WHERE id = $1
		RETURNING attempts
	`
	var attempts int
	if err := r.DB.QueryRowContext(ctx, q, id).Scan(&attempts); err != nil {
		return 0, fmt.Errorf("phone_verification increment attempts: %w", err)
	}
	return attempts, nil
}

func (r *phoneVerificationRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.DB.ExecContext(ctx, `DELETE FROM phone_verifications WHERE id = $1`, id); err != nil {
		return fmt.Errorf("phone_verification delete: %w", err)
	}
	return nil
}

// ConfirmAndLink: the success transition: set the user's verified phone and
// WhatsApp opt-in, and delete the pending row, all-or-nothing.
func (r *phoneVerificationRepository) ConfirmAndLink(ctx context.Context, v *models.PhoneVerification) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("phone_verification confirm: %w", err)
	}
	defer tx.Rollback()

	const upd = `
		UPDATE users
		SET phone_number=$1, phone_verified=TRUE,
		    whatsapp_opt_in=TRUE, whatsapp_opt_in_at=NOW()
		WHERE id=$2
	`
	if _, err := tx.ExecContext(ctx, upd, v.PhoneNumber, v.UserID); err != nil {
		return fmt.Errorf("phone_verification link user: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM phone_verifications WHERE id=$1`, v.ID); err != nil {
		return fmt.Errorf("phone_verification consume: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("phone_verification confirm commit: %w", err)
	}
	return nil
}
