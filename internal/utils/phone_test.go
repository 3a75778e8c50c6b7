package utils_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"epiwatch/internal/utils"
)

func TestNormalizePhoneNumber(t *testing.T) {
	cases := []struct {
		name  string
		input string
		cc    string
		want  string
	}{
		{"plus with separators", " +91 123-456-7890", "+91", "+911234567890"},
		{"ten digits get default cc", "9876543210", "+91", "+919876543210"},
		{"eleven digits assume cc", "919876543210", "+91", "+919876543210"},
		{"fifteen digits pass", "123456789012345", "+91", "+123456789012345"},
		{"plus kept even when short", "+1234", "+91", "+1234"},
		{"ten digits without default cc", "9876543210", "", ""},
		{"ten digits bad default cc", "9876543210", "91", ""},
		{"sixteen digits rejected", "1234567890123456", "+91", ""},
		{"nine digits rejected", "987654321", "+91", ""},
		{"letters only rejected", "call-me", "+91", ""},
		{"empty", "", "+91", ""},
		{"whitespace only", "   ", "+91", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, utils.NormalizePhoneNumber(tc.input, tc.cc))
		})
	}
}
