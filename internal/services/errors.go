package services

import (
	"errors"
	"fmt"
)

// Verification flow sentinels. Handlers map these to specific, actionable
// responses so the client knows whether to prompt for re-entry or a resend.
var (
	ErrInvalidPhone    = errors.New("invalid phone number")
	ErrInvalidCode     = errors.New("invalid code format")
	ErrNoPending       = errors.New("no pending verification")
	ErrCodeExpired     = errors.New("code expired")
	ErrTooManyAttempts = errors.New("too many attempts")
	ErrCodeMismatch    = errors.New("incorrect code")
)

// ConfigurationError: missing credentials/template/secret. Fails the whole
// operation (or sweep) before anything is sent.
type ConfigurationError struct {
	Missing string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("missing configuration: %s", e.Missing)
}

// DeliveryError: the remote messaging API rejected or failed the send.
// Isolated per recipient inside the sweep; surfaced directly in
// single-recipient flows.
type DeliveryError struct {
	Channel string
	Status  int
	Detail  string
	Err     error
}

func (e *DeliveryError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s delivery failed (%d): %s", e.Channel, e.Status, e.Detail)
	}
	return fmt.Sprintf("%s delivery failed: %v", e.Channel, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

func IsDeliveryError(err error) bool {
	var de *DeliveryError
	return errors.As(err, &de)
}
