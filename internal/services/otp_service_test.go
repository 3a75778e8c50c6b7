package services_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"epiwatch/internal/services"
)

func TestOTPServiceRequiresSecret(t *testing.T) {
	require.Panics(t, func() { services.NewOTPService("") })
}

func TestOTPHashDeterministic(t *testing.T) {
	svc := services.NewOTPService("test-secret")

	h1 := svc.HashCode("123456")
	h2 := svc.HashCode("123456")
	require.Equal(t, h1, h2)
	require.Len(t, h1, 64)

	require.NotEqual(t, h1, svc.HashCode("123457"))
}

func TestOTPHashSecretDependent(t *testing.T) {
	a := services.NewOTPService("secret-a")
	b := services.NewOTPService("secret-b")
	require.NotEqual(t, a.HashCode("123456"), b.HashCode("123456"))
}

func TestOTPCompare(t *testing.T) {
	svc := services.NewOTPService("test-secret")
	stored := svc.HashCode("654321")

	require.True(t, svc.Compare(stored, "654321"))
	require.False(t, svc.Compare(stored, "654320"))
	require.False(t, svc.Compare(stored, ""))
	require.False(t, svc.Compare("", "654321"))
	// raw code handed in where a hash belongs must not pass
	require.False(t, svc.Compare("654321", "654321"))
}

func TestOTPGenerateCodeFormat(t *testing.T) {
	svc := services.NewOTPService("test-secret")
	code, err := svc.GenerateCode()
	require.NoError(t, err)
	require.Regexp(t, `^\d{6}$`, code)
}
