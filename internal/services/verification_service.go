package services

import (
	"context"
	"log"
	"regexp"
	"strconv"
	"time"

	"epiwatch/internal/repositories"
	"epiwatch/internal/utils"
)

const (
	otpTTL             = 10 * time.Minute
	maxConfirmAttempts = 5
)

var otpFormat = regexp.MustCompile(`^\d{6}$`)

// VerificationService drives a phone number through request → verify → link.
// At most one pending code exists per user; every state transition that
// mutates the user is a single repository transaction.
type VerificationService struct {
	Repo               repositories.PhoneVerificationRepository
	OTP                *OTPService
	WhatsApp           *WhatsAppService
	OTPTemplateName    string
	DefaultCountryCode string
}

func NewVerificationService(
	repo repositories.PhoneVerificationRepository,
	otp *OTPService,
	wa *WhatsAppService,
	otpTemplateName, defaultCountryCode string,
) *VerificationService {
	return &VerificationService{
		Repo:               repo,
		OTP:                otp,
		WhatsApp:           wa,
		OTPTemplateName:    otpTemplateName,
		DefaultCountryCode: defaultCountryCode,
	}
}

// RequestOTP normalizes the phone, supersedes any prior pending code, stores
// the hash of a fresh one and sends it over WhatsApp. Returns the normalized
// number and the code TTL.
func (s *VerificationService) RequestOTP(ctx context.Context, userID int, rawPhone string) (string, time.Duration, error) {
	normalized := utils.NormalizePhoneNumber(rawPhone, s.DefaultCountryCode)
	if normalized == "" {
		return "", 0, ErrInvalidPhone
	}
	if s.OTPTemplateName == "" {
		return "", 0, &ConfigurationError{Missing: "whatsapp otp template"}
	}

	code, err := s.OTP.GenerateCode()
	if err != nil {
		return "", 0, err
	}
	expiresAt := time.Now().Add(otpTTL)

	// delete-before-create keeps the one-pending-per-user invariant
	if _, err := s.Repo.Replace(ctx, userID, normalized, s.OTP.HashCode(code), expiresAt); err != nil {
		return "", 0, err
	}

	// template body: {{1}} = code, {{2}} = expiry minutes
	ttlMinutes := strconv.Itoa(int(otpTTL / time.Minute))
	if err := s.WhatsApp.SendTemplate(ctx, normalized, s.OTPTemplateName, []string{code, ttlMinutes}); err != nil {
		return "", 0, err
	}

	log.Printf("[otp][send] user_id=%d phone=%s", userID, normalized)
	return normalized, otpTTL, nil
}

// VerifyOTP checks the submitted code against the user's pending record.
// Expired and exhausted records are deleted as a side effect of being read;
// a mismatch increments the attempt counter and keeps the record pending.
// On success the user's phone fields and the pending row change in one
// transaction, so a repeated call lands on ErrNoPending.
func (s *VerificationService) VerifyOTP(ctx context.Context, userID int, code string) (string, error) {
	if !otpFormat.MatchString(code) {
		return "", ErrInvalidCode
	}

	v, err := s.Repo.GetLatestByUserID(ctx, userID)
	if err != nil {
		return "", err
	}
	if v == nil {
		return "", ErrNoPending
	}

	if !time.Now().Before(v.ExpiresAt) {
		if err := s.Repo.Delete(ctx, v.ID); err != nil {
			return "", err
		}
		return "", ErrCodeExpired
	}

	if v.Attempts >= maxConfirmAttempts {
		if err := s.Repo.Delete(ctx, v.ID); err != nil {
			return "", err
		}
		return "", ErrTooManyAttempts
	}

	if !s.OTP.Compare(v.CodeHash, code) {
		if _, err := s.Repo.IncrementAttempts(ctx, v.ID); err != nil {
			return "", err
		}
		return "", ErrCodeMismatch
	}

	if err := s.Repo.ConfirmAndLink(ctx, v); err != nil {
		return "", err
	}
	log.Printf("[otp][confirm] OK user_id=%d phone=%s", userID, v.PhoneNumber)
	return v.PhoneNumber, nil
}
