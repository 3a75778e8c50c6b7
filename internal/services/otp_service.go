package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	"epiwatch/internal/utils"
)

// OTPService generates one-time codes and owns the keyed hashing of them.
// Only the hash is ever persisted; the raw code exists once, in the outbound
// message.
type OTPService struct {
	secret []byte
}

// NewOTPService panics on an empty secret: config.Validate checks it first,
// this is the last line of defense against wiring mistakes.
func NewOTPService(secret string) *OTPService {
	if secret == "" {
		panic("otp: secret must not be empty")
	}
	return &OTPService{secret: []byte(secret)}
}

func (s *OTPService) GenerateCode() (string, error) {
	return utils.NewOTPCode(6)
}

// HashCode: HMAC-SHA256 of the code under the server secret, hex-encoded.
func (s *OTPService) HashCode(code string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(code))
	return hex.EncodeToString(mac.Sum(nil))
}

// Compare: true when the submitted code hashes to storedHash. Both inputs
// are re-digested before comparison so the running time does not depend on
// where the first differing byte sits, nor on a length mismatch.
func (s *OTPService) Compare(storedHash, code string) bool {
	a := sha256.Sum256([]byte(storedHash))
	b := sha256.Sum256([]byte(s.HashCode(code)))
	return subtle.ConstantTimeCompare(a[:], b[:]) == 1
}
