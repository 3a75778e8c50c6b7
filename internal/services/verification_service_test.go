package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"epiwatch/internal/models"
	"epiwatch/internal/services"
)

type pvRepoMock struct {
	latest      *models.PhoneVerification
	deleted     []int64
	confirmed   *models.PhoneVerification
	replaceErr  error
	lastReplace *models.PhoneVerification
}

func (m *pvRepoMock) Replace(_ context.Context, userID int, phone, codeHash string, expiresAt time.Time) (*models.PhoneVerification, error) {
	if m.replaceErr != nil {
		return nil, m.replaceErr
	}
	v := &models.PhoneVerification{
		ID:          1,
		UserID:      userID,
		PhoneNumber: phone,
		CodeHash:    codeHash,
		CreatedAt:   time.Now(),
		ExpiresAt:   expiresAt,
	}
	m.latest = v
	m.lastReplace = v
	return v, nil
}

func (m *pvRepoMock) GetLatestByUserID(_ context.Context, userID int) (*models.PhoneVerification, error) {
	if m.latest == nil || m.latest.UserID != userID {
		return nil, nil
	}
	cp := *m.latest
	return &cp, nil
}

func (m *pvRepoMock) IncrementAttempts(_ context.Context, id int64) (int, error) {
	m.latest.Attempts++
	return m.latest.Attempts, nil
}

func (m *pvRepoMock) Delete(_ context.Context, id int64) error {
	m.deleted = append(m.deleted, id)
	m.latest = nil
	return nil
}

func (m *pvRepoMock) ConfirmAndLink(_ context.Context, v *models.PhoneVerification) error {
	m.confirmed = v
	m.latest = nil
	return nil
}

func newVerificationFixture(repo *pvRepoMock) (*services.VerificationService, *services.OTPService) {
	otp := services.NewOTPService("test-secret")
	wa := services.NewWhatsAppService("", "", "en_US", true) // dry-run
	svc := services.NewVerificationService(repo, otp, wa, "otp_template", "+91")
	return svc, otp
}

func TestRequestOTPInvalidPhone(t *testing.T) {
	repo := &pvRepoMock{}
	svc, _ := newVerificationFixture(repo)

	_, _, err := svc.RequestOTP(context.Background(), 1, "12")
	require.ErrorIs(t, err, services.ErrInvalidPhone)
	require.Nil(t, repo.lastReplace)
}

func TestRequestOTPMissingTemplate(t *testing.T) {
	repo := &pvRepoMock{}
	otp := services.NewOTPService("test-secret")
	wa := services.NewWhatsAppService("", "", "en_US", true)
	svc := services.NewVerificationService(repo, otp, wa, "", "+91")

	_, _, err := svc.RequestOTP(context.Background(), 1, "+911234567890")
	require.True(t, services.IsConfigurationError(err))
}

func TestRequestOTPStoresHashNotCode(t *testing.T) {
	repo := &pvRepoMock{}
	svc, _ := newVerificationFixture(repo)

	phone, ttl, err := svc.RequestOTP(context.Background(), 1, " +91 123-456-7890")
	require.NoError(t, err)
	require.Equal(t, "+911234567890", phone)
	require.Equal(t, 10*time.Minute, ttl)

	require.NotNil(t, repo.lastReplace)
	require.Len(t, repo.lastReplace.CodeHash, 64)
	require.NotRegexp(t, `^\d{6}$`, repo.lastReplace.CodeHash)
	require.Equal(t, 0, repo.lastReplace.Attempts)
}

func TestRequestOTPSupersedesPrior(t *testing.T) {
	repo := &pvRepoMock{}
	svc, _ := newVerificationFixture(repo)

	_, _, err := svc.RequestOTP(context.Background(), 1, "+911234567890")
	require.NoError(t, err)
	first := repo.lastReplace.CodeHash

	_, _, err = svc.RequestOTP(context.Background(), 1, "+911234567890")
	require.NoError(t, err)
	require.NotEqual(t, first, repo.lastReplace.CodeHash)
}

func TestVerifyOTPMalformedCode(t *testing.T) {
	repo := &pvRepoMock{}
	svc, _ := newVerificationFixture(repo)

	for _, code := range []string{"", "12345", "1234567", "12345a"} {
		_, err := svc.VerifyOTP(context.Background(), 1, code)
		require.ErrorIs(t, err, services.ErrInvalidCode, "code=%q", code)
	}
}

func TestVerifyOTPNoPending(t *testing.T) {
	repo := &pvRepoMock{}
	svc, _ := newVerificationFixture(repo)

	_, err := svc.VerifyOTP(context.Background(), 1, "123456")
	require.ErrorIs(t, err, services.ErrNoPending)
}

func TestVerifyOTPExpiredAtBoundary(t *testing.T) {
	repo := &pvRepoMock{}
	svc, otp := newVerificationFixture(repo)

	// expiry instant has already been reached when the check runs
	repo.latest = &models.PhoneVerification{
		ID:          9,
		UserID:      1,
		PhoneNumber: "+911234567890",
		CodeHash:    otp.HashCode("123456"),
		ExpiresAt:   time.Now(),
	}

	_, err := svc.VerifyOTP(context.Background(), 1, "123456")
	require.ErrorIs(t, err, services.ErrCodeExpired)
	require.Contains(t, repo.deleted, int64(9))
	require.Nil(t, repo.latest)
}

func TestVerifyOTPAttemptExhaustion(t *testing.T) {
	repo := &pvRepoMock{}
	svc, otp := newVerificationFixture(repo)

	repo.latest = &models.PhoneVerification{
		ID:          3,
		UserID:      1,
		PhoneNumber: "+911234567890",
		CodeHash:    otp.HashCode("123456"),
		ExpiresAt:   time.Now().Add(5 * time.Minute),
	}

	for i := 0; i < 5; i++ {
		_, err := svc.VerifyOTP(context.Background(), 1, "000000")
		require.ErrorIs(t, err, services.ErrCodeMismatch)
	}
	require.Equal(t, 5, repo.latest.Attempts)

	// correct code on the sixth try: the record is already burned
	_, err := svc.VerifyOTP(context.Background(), 1, "123456")
	require.ErrorIs(t, err, services.ErrTooManyAttempts)
	require.Contains(t, repo.deleted, int64(3))
	require.Nil(t, repo.latest)
}

func TestVerifyOTPSuccessThenNoPending(t *testing.T) {
	repo := &pvRepoMock{}
	svc, otp := newVerificationFixture(repo)

	repo.latest = &models.PhoneVerification{
		ID:          4,
		UserID:      1,
		PhoneNumber: "+919876543210",
		CodeHash:    otp.HashCode("555555"),
		ExpiresAt:   time.Now().Add(5 * time.Minute),
	}

	phone, err := svc.VerifyOTP(context.Background(), 1, "555555")
	require.NoError(t, err)
	require.Equal(t, "+919876543210", phone)
	require.NotNil(t, repo.confirmed)
	require.Equal(t, "+919876543210", repo.confirmed.PhoneNumber)

	// the success transition consumed the record
	_, err = svc.VerifyOTP(context.Background(), 1, "555555")
	require.ErrorIs(t, err, services.ErrNoPending)
}
