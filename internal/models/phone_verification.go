package models

import "time"

// PhoneVerification: one outstanding OTP for one user. We store only the
// keyed hash of the code, its TTL and the attempt counter. At most one row
// exists per user (delete-before-create on every send).
type PhoneVerification struct {
	ID          int64     `json:"id"`
	UserID      int       `json:"user_id"`
	PhoneNumber string    `json:"phone_number"`
	CodeHash    string    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
	Attempts    int       `json:"attempts"`
}
