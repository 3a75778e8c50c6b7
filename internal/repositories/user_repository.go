package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"epiwatch/internal/models"
)

type UserRepository interface {
	Create(user *models.User) error
	GetByID(id int) (*models.User, error)
	GetByEmail(email string) (*models.User, error)

	// refresh helpers
	UpdateRefresh(userID int, token string, expiresAt time.Time) error
	RotateRefresh(oldToken, newToken string, newExpiresAt time.Time) (*models.User, error)
	GetByRefreshToken(token string) (*models.User, error)

	// explicit opt-out / opt-in toggle (identity fields stay linked)
	SetWhatsAppOptIn(userID int, optIn bool) error
}

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{DB: db}
}

const userColumns = `
	id, email, COALESCE(name,''), password_hash,
	COALESCE(phone_number,''), phone_verified, whatsapp_opt_in, whatsapp_opt_in_at,
	COALESCE(telegram_chat_id,0), COALESCE(telegram_username,''), telegram_opt_in, telegram_opt_in_at,
	refresh_token, refresh_expires_at, refresh_revoked, created_at
`

func scanUser(row *sql.Row) (*models.User, error) {
	u := &models.User{}
	var (
		waOptInAt sql.NullTime
		tgOptInAt sql.NullTime
		rt        sql.NullString
		rte       sql.NullTime
		rr        sql.NullBool
	)
	err := row.Scan(
		&u.ID, &u.Email, &u.Name, &u.PasswordHash,
		&u.PhoneNumber, &u.PhoneVerified, &u.WhatsAppOptIn, &waOptInAt,
		&u.TelegramChatID, &u.TelegramUsername, &u.TelegramOptIn, &tgOptInAt,
		&rt, &rte, &rr, &u.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("user scan: %w", err)
	}
	if waOptInAt.Valid {
		t := waOptInAt.Time
		u.WhatsAppOptInAt = &t
	}
	if tgOptInAt.Valid {
		t := tgOptInAt.Time
		u.TelegramOptInAt = &t
	}
	if rt.Valid {
		s := rt.String
		u.RefreshToken = &s
	}
	if rte.Valid {
		t := rte.Time
		u.RefreshExpiresAt = &t
	}
	if rr.Valid {
		u.RefreshRevoked = rr.Bool
	}
	return u, nil
}

func (r *userRepository) Create(user *models.User) error {
	const q = `
		INSERT INTO users (email, name, password_hash)
		VALUES ($1, NULLIF($2,''), $3)
		RETURNING id, created_at
	`
	if err := r.DB.QueryRow(q, user.Email, user.Name, user.PasswordHash).
		Scan(&user.ID, &user.CreatedAt); err != nil {
		return fmt.Errorf("user create: %w", err)
	}
	return nil
}

func (r *userRepository) GetByID(id int) (*models.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.DB.QueryRow(q, id))
}

func (r *userRepository) GetByEmail(email string) (*models.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`
	return scanUser(r.DB.QueryRow(q, email))
}

func (r *userRepository) UpdateRefresh(userID int, token string, expiresAt time.Time) error {
	const q = `
		UPDATE users
		SET refresh_token=$1, refresh_expires_at=$2, refresh_revoked=FALSE
		WHERE id=$3
	`
	if _, err := r.DB.Exec(q, token, expiresAt, userID); err != nil {
		return fmt.Errorf("user update refresh: %w", err)
	}
	return nil
}

// RotateRefresh swaps the old token for a new one in a single statement so a
// stolen-but-already-rotated token cannot be replayed.
func (r *userRepository) RotateRefresh(oldToken, newToken string, newExpiresAt time.Time) (*models.User, error) {
	q := `
		UPDATE users
		SET refresh_token=$1, refresh_expires_at=$2
		WHERE refresh_token=$3 AND refresh_revoked=FALSE AND refresh_expires_at > NOW()
		RETURNING ` + userColumns
	return scanUser(r.DB.QueryRow(q, newToken, newExpiresAt, oldToken))
}

func (r *userRepository) GetByRefreshToken(token string) (*models.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE refresh_token = $1`
	return scanUser(r.DB.QueryRow(q, token))
}

func (r *userRepository) SetWhatsAppOptIn(userID int, optIn bool) error {
	const q = `
		UPDATE users
		SET whatsapp_opt_in=$1,
		    whatsapp_opt_in_at=CASE WHEN $1 THEN NOW() ELSE NULL END
		WHERE id=$2
	`
	if _, err := r.DB.Exec(q, optIn, userID); err != nil {
		return fmt.Errorf("user set whatsapp opt-in: %w", err)
	}
	return nil
}
