package utils

import "strings"

// NormalizePhoneNumber brings user input to E.164.
//
//	"+..."            -> keep the plus, strip everything that is not a digit
//	10 digits, no "+" -> prepend the configured default country code
//	11–15 digits      -> assume country code without "+", prepend it
//
// Returns "" for anything else.
func NormalizePhoneNumber(input, defaultCountryCode string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return ""
	}

	hasPlus := strings.HasPrefix(trimmed, "+")
	var digits strings.Builder
	for _, r := range trimmed {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	if d == "" {
		return ""
	}

	if hasPlus {
		return "+" + d
	}
	if len(d) == 10 && isCountryCode(defaultCountryCode) {
		return defaultCountryCode + d
	}
	if len(d) >= 11 && len(d) <= 15 {
		return "+" + d
	}
	return ""
}

func isCountryCode(cc string) bool {
	if len(cc) < 2 || cc[0] != '+' {
		return false
	}
	for _, r := range cc[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
