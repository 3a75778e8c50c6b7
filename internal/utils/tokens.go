package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
)

const linkCodeAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewToken: opaque random token, hex-encoded (refresh tokens).
func NewToken(nBytes int) (string, error) {
	if nBytes <= 0 {
		nBytes = 32 // 256 bit default
	}
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// NewOTPCode: fixed-length numeric code, uniform over 000000–999999 for
// length 6.
func NewOTPCode(length int) (string, error) {
	if length <= 0 {
		length = 6
	}
	max := big.NewInt(1)
	for i := 0; i < length; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", length, n), nil
}

// NewLinkCode: URL-safe code over a 36-symbol alphabet. 16 characters give
// ~82 bits, enough that guessing within the 15-minute window is negligible.
func NewLinkCode(length int) (string, error) {
	if length < 16 {
		length = 16
	}
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(linkCodeAlphabet))))
		if err != nil {
			return "", err
		}
		out[i] = linkCodeAlphabet[n.Int64()]
	}
	return string(out), nil
}
