package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"epiwatch/internal/models"
)

type TelegramLinkRepository interface {
	// Replace deletes any prior code for the user and creates a fresh one.
	Replace(ctx context.Context, userID int, code string, ttl time.Duration) (*models.TelegramLinkCode, error)
	// ConsumeByCode links the chat identity to the code's user and deletes the
	// code in one transaction. Unknown and expired codes both return (nil, nil):
	// the webhook treats them as silent no-ops. Expired codes are deleted on read.
	ConsumeByCode(ctx context.Context, code string, chatID int64, username string) (*models.TelegramLinkCode, error)
}

type telegramLinkRepository struct{ db *sql.DB }

func NewTelegramLinkRepository(db *sql.DB) TelegramLinkRepository {
	return &telegramLinkRepository{db: db}
}

func (r *telegramLinkRepository) Replace(ctx context.Context, userID int, code string, ttl time.Duration) (*models.TelegramLinkCode, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("telegram_link replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM telegram_link_codes WHERE user_id=$1`, userID); err != nil {
		return nil, fmt.Errorf("telegram_link delete prior: %w", err)
	}

	expiresAt := time.Now().Add(ttl)
	row := tx.QueryRowContext(ctx, `
		INSERT INTO telegram_link_codes (user_id, code, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, code, created_at, expires_at
	`, userID, code, expiresAt)

	var l models.TelegramLinkCode
	if err := row.Scan(&l.ID, &l.UserID, &l.Code, &l.CreatedAt, &l.ExpiresAt); err != nil {
		return nil, fmt.Errorf("telegram_link create: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("telegram_link replace commit: %w", err)
	}
	return &l, nil
}

func (r *telegramLinkRepository) ConsumeByCode(ctx context.Context, code string, chatID int64, username string) (*models.TelegramLinkCode, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("telegram_link consume: %w", err)
	}
	defer tx.Rollback()

	var l models.TelegramLinkCode
	err = tx.QueryRowContext(ctx, `
		SELECT id, user_id, code, created_at, expires_at
		FROM telegram_link_codes
		WHERE code=$1
		FOR UPDATE
	`, code).Scan(&l.ID, &l.UserID, &l.Code, &l.CreatedAt, &l.ExpiresAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("telegram_link lookup: %w", err)
	}

	if !time.Now().Before(l.ExpiresAt) {
		// cleanup-on-read; an expired code is as good as absent
		if _, err := tx.ExecContext(ctx, `DELETE FROM telegram_link_codes WHERE id=$1`, l.ID); err != nil {
			return nil, fmt.Errorf("telegram_link expire cleanup: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("telegram_link expire commit: %w", err)
		}
		return nil, nil
	}

	const upd = `
		UPDATE users
		SET telegram_chat_id=$1,
		    telegram_username=NULLIF($2,''),
		    telegram_opt_in=TRUE,
		    telegram_opt_in_at=NOW()
		WHERE id=$3
	`
	if _, err := tx.ExecContext(ctx, upd, chatID, username, l.UserID); err != nil {
		return nil, fmt.Errorf("telegram_link link user: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM telegram_link_codes WHERE id=$1`, l.ID); err != nil {
		return nil, fmt.Errorf("telegram_link consume delete: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("telegram_link consume commit: %w", err)
	}
	return &l, nil
}
