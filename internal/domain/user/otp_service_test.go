package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/veggiefresh/grocery-backend/internal/pkg/apperror"
	"github.com/veggiefresh/grocery-backend/internal/pkg/auth"
	"github.com/veggiefresh/grocery-backend/internal/pkg/logger"
)

type otpFixture struct {
	svc   *OTPService
	users *memUsers
	otps  *memOTPs
	sms   *MockSMSSender
	clock time.Time
}

func newOTPFixture(t *testing.T, seed ...*User) *otpFixture {
	t.Helper()
	f := &otpFixture{
		users: newMemUsers(seed...),
		otps:  &memOTPs{},
		sms:   new(MockSMSSender),
		clock: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	f.svc = NewOTPService(f.users, f.otps, f.sms, testConfig(), logger.Discard())
	f.svc.now = func() time.Time { return f.clock }
	return f
}

func (f *otpFixture) codes(codes ...string) {
	i := 0
	f.svc.generate = func() (string, error) {
		c := codes[i]
		i++
		return c, nil
	}
}

func TestGenerateOTPRange(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := GenerateOTP()
		require.NoError(t, err)
		require.Len(t, code, 4)
		assert.GreaterOrEqual(t, code, "1000")
		assert.LessOrEqual(t, code, "9999")
	}
}

func TestSendOTPStoresCodeAndSends(t *testing.T) {
	f := newOTPFixture(t)
	f.codes("4321")
	f.sms.On("SendOTP", mock.Anything, "9876543210", "4321").Return(nil).Once()

	require.NoError(t, f.svc.SendOTP(context.Background(), &SendOTPRequest{Phone: "9876543210"}))

	require.Len(t, f.otps.codes, 1)
	assert.Equal(t, f.clock.Add(5*time.Minute), f.otps.codes[0].ExpiresAt)
	f.sms.AssertExpectations(t)
}

func TestSendOTPDeliveryFailure(t *testing.T) {
	f := newOTPFixture(t)
	f.codes("4321")
	f.sms.On("SendOTP", mock.Anything, "9876543210", "4321").Return(errors.New("twilio down"))

	err := f.svc.SendOTP(context.Background(), &SendOTPRequest{Phone: "9876543210"})
	assert.ErrorIs(t, err, ErrSMSDeliveryFailed)
	assert.True(t, apperror.IsKind(err, apperror.KindGateway))
}

func TestResendInvalidatesEarlierCode(t *testing.T) {
	f := newOTPFixture(t)
	f.codes("1111", "2222")
	f.sms.On("SendOTP", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	ctx := context.Background()

	require.NoError(t, f.svc.SendOTP(ctx, &SendOTPRequest{Phone: "9876543210"}))
	require.NoError(t, f.svc.SendOTP(ctx, &SendOTPRequest{Phone: "9876543210"}))

	_, err := f.svc.VerifyOTP(ctx, &VerifyOTPRequest{Phone: "9876543210", OTP: "1111"})
	assert.ErrorIs(t, err, ErrInvalidOTP)

	resp, err := f.svc.VerifyOTP(ctx, &VerifyOTPRequest{Phone: "9876543210", OTP: "2222"})
	require.NoError(t, err)
	assert.True(t, resp.IsNewUser)
}

func TestVerifyOTPNewUserFlow(t *testing.T) {
	f := newOTPFixture(t)
	f.codes("5555")
	f.sms.On("SendOTP", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	ctx := context.Background()

	require.NoError(t, f.svc.SendOTP(ctx, &SendOTPRequest{Phone: "9876543210"}))

	resp, err := f.svc.VerifyOTP(ctx, &VerifyOTPRequest{Phone: "9876543210", OTP: "5555"})
	require.NoError(t, err)
	assert.True(t, resp.IsNewUser)
	assert.NotEmpty(t, resp.TempToken)
	assert.Empty(t, resp.AccessToken)

	// single use
	_, err = f.svc.VerifyOTP(ctx, &VerifyOTPRequest{Phone: "9876543210", OTP: "5555"})
	assert.ErrorIs(t, err, ErrInvalidOTP)

	created, err := f.svc.CompleteProfile(ctx, resp.TempToken, &CompleteProfileRequest{
		Name:  "Ravi",
		Email: "ravi@example.com",
		City:  "Pune",
	})
	require.NoError(t, err)
	assert.Equal(t, "9876543210", created.User.PhoneValue())
	assert.True(t, created.User.IsPhoneVerified)
	assert.Equal(t, "Pune", created.User.City)
	assert.NotEmpty(t, created.AccessToken)

	// the same temp token cannot create a second account for the phone
	_, err = f.svc.CompleteProfile(ctx, resp.TempToken, &CompleteProfileRequest{Name: "Ravi", City: "Pune"})
	assert.ErrorIs(t, err, ErrPhoneExists)
}

func TestVerifyOTPExistingUser(t *testing.T) {
	f := newOTPFixture(t, &User{Name: "Meera", Phone: stringPtr("9876543210"), Role: RoleUser})
	f.codes("7777")
	f.sms.On("SendOTP", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	ctx := context.Background()

	require.NoError(t, f.svc.SendOTP(ctx, &SendOTPRequest{Phone: "9876543210"}))

	resp, err := f.svc.VerifyOTP(ctx, &VerifyOTPRequest{Phone: "9876543210", OTP: "7777"})
	require.NoError(t, err)
	assert.False(t, resp.IsNewUser)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Empty(t, resp.TempToken)
	assert.True(t, resp.User.IsPhoneVerified)

	stored, err := f.users.FindByPhone(ctx, "9876543210")
	require.NoError(t, err)
	assert.True(t, stored.IsPhoneVerified)
}

func TestVerifyOTPExpired(t *testing.T) {
	f := newOTPFixture(t)
	f.codes("8888")
	f.sms.On("SendOTP", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	ctx := context.Background()

	require.NoError(t, f.svc.SendOTP(ctx, &SendOTPRequest{Phone: "9876543210"}))
	f.clock = f.clock.Add(5*time.Minute + time.Second)

	_, err := f.svc.VerifyOTP(ctx, &VerifyOTPRequest{Phone: "9876543210", OTP: "8888"})
	assert.ErrorIs(t, err, ErrInvalidOTP)
}

func TestCompleteProfileRejectsNonTempToken(t *testing.T) {
	f := newOTPFixture(t)
	access, err := auth.NewJWTManager(testConfig()).GenerateAccessToken(1, "a@b.c", "user")
	require.NoError(t, err)

	_, err = f.svc.CompleteProfile(context.Background(), access, &CompleteProfileRequest{Name: "Ravi", City: "Pune"})
	assert.True(t, apperror.IsKind(err, apperror.KindInvalidToken))
}

func TestCompleteProfileDuplicateEmail(t *testing.T) {
	f := newOTPFixture(t, &User{Name: "Taken", Email: stringPtr("ravi@example.com")})
	temp, err := auth.NewJWTManager(testConfig()).GenerateTempToken("9876543210")
	require.NoError(t, err)

	_, err = f.svc.CompleteProfile(context.Background(), temp, &CompleteProfileRequest{
		Name:  "Ravi",
		Email: "Ravi@example.com",
		City:  "Pune",
	})
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestMaskPhone(t *testing.T) {
	assert.Equal(t, "******3210", maskPhone("9876543210"))
	assert.Equal(t, "123", maskPhone("123"))
}
