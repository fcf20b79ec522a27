package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-identity-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockVerificationStore struct{ mock.Mock }

func (m *mockVerificationStore) Put(ctx context.Context, v *domain.ContactVerification) error {
	return m.Called(ctx, v).Error(0)
}
func (m *mockVerificationStore) Get(ctx context.Context, contact string) (*domain.ContactVerification, error) {
	args := m.Called(ctx, contact)
	if v, _ := args.Get(0).(*domain.ContactVerification); v != nil {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockVerificationStore) SetVerified(ctx context.Context, contact string, verified bool) error {
	return m.Called(ctx, contact, verified).Error(0)
}

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	args := m.Called(ctx, phone)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockSMSSender struct{ mock.Mock }

func (m *mockSMSSender) SendSMS(ctx context.Context, to, message string) error {
	return m.Called(ctx, to, message).Error(0)
}

type mockNotifyLog struct{ mock.Mock }

func (m *mockNotifyLog) Put(ctx context.Context, n *domain.NotificationLog) error {
	return m.Called(ctx, n).Error(0)
}

type mockJWTSigner struct{ mock.Mock }

func (m *mockJWTSigner) Sign(userID int64, name string, phone *string) (string, error) {
	args := m.Called(userID, name, phone)
	return args.String(0), args.Error(1)
}

// --- builder ---

func newService(pr *mockVerificationStore, us *mockUserStore, sms *mockSMSSender, nl *mockNotifyLog, jwt *mockJWTSigner) Service {
	return NewService(ServiceDeps{
		PhoneRepo:     pr,
		UserRepo:      us,
		SMSSender:     sms,
		NotifyLog:     nl,
		JWTProvider:   jwt,
		OTPLength:     6,
		OTPTTL:        10 * time.Minute,
		NotifyTimeout: time.Second,
	})
}

func strPtr(s string) *string { return &s }

// --- RequestLoginOTP ---

func TestRequestLoginOTP_UnregisteredPhone(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByPhone", mock.Anything, "5550001").Return(nil, domain.ErrNotFound)

	svc := newService(nil, us, nil, nil, nil)
	_, err := svc.RequestLoginOTP(context.Background(), "5550001")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestRequestLoginOTP_HappyPath(t *testing.T) {
	us := &mockUserStore{}
	pr := &mockVerificationStore{}
	sms := &mockSMSSender{}
	nl := &mockNotifyLog{}

	us.On("GetByPhone", mock.Anything, "5550001").Return(&domain.User{UserID: 1}, nil)
	pr.On("Put", mock.Anything, mock.AnythingOfType("*domain.ContactVerification")).Return(nil)
	sms.On("SendSMS", mock.Anything, "5550001", mock.MatchedBy(func(msg string) bool {
		return len(msg) == len("Your login OTP is ")+6
	})).Return(nil)
	nl.On("Put", mock.Anything, mock.MatchedBy(func(n *domain.NotificationLog) bool {
		return n.Status == domain.DeliverySent
	})).Return(nil)

	svc := newService(pr, us, sms, nl, nil)
	code, err := svc.RequestLoginOTP(context.Background(), "5550001")

	require.NoError(t, err)
	assert.Len(t, code, 6)
	pr.AssertExpectations(t)
	sms.AssertExpectations(t)
	nl.AssertExpectations(t)
}

func TestRequestLoginOTP_DeliveryFailure(t *testing.T) {
	us := &mockUserStore{}
	pr := &mockVerificationStore{}
	sms := &mockSMSSender{}
	nl := &mockNotifyLog{}

	us.On("GetByPhone", mock.Anything, "5550001").Return(&domain.User{UserID: 1}, nil)
	pr.On("Put", mock.Anything, mock.Anything).Return(nil)
	sms.On("SendSMS", mock.Anything, "5550001", mock.Anything).Return(errors.New("publish failed"))
	nl.On("Put", mock.Anything, mock.MatchedBy(func(n *domain.NotificationLog) bool {
		return n.Status == domain.DeliveryFailed && n.Error != ""
	})).Return(nil)

	svc := newService(pr, us, sms, nl, nil)
	_, err := svc.RequestLoginOTP(context.Background(), "5550001")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDelivery))
	nl.AssertExpectations(t)
}

// --- ValidateLoginOTP ---

func TestValidateLoginOTP_NoRow(t *testing.T) {
	pr := &mockVerificationStore{}
	pr.On("Get", mock.Anything, "5550001").Return(nil, domain.ErrNotFound)

	svc := newService(pr, nil, nil, nil, nil)
	_, _, err := svc.ValidateLoginOTP(context.Background(), "5550001", "123456")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestValidateLoginOTP_WrongCode(t *testing.T) {
	pr := &mockVerificationStore{}
	pr.On("Get", mock.Anything, "5550001").Return(&domain.ContactVerification{
		Contact:   "5550001",
		OTP:       "111111",
		ExpiresAt: time.Now().Add(time.Minute).Unix(),
	}, nil)

	svc := newService(pr, nil, nil, nil, nil)
	_, _, err := svc.ValidateLoginOTP(context.Background(), "5550001", "999999")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidCode))
}

func TestValidateLoginOTP_Expired(t *testing.T) {
	pr := &mockVerificationStore{}
	pr.On("Get", mock.Anything, "5550001").Return(&domain.ContactVerification{
		Contact:   "5550001",
		OTP:       "111111",
		ExpiresAt: time.Now().Add(-time.Second).Unix(),
	}, nil)

	svc := newService(pr, nil, nil, nil, nil)
	_, _, err := svc.ValidateLoginOTP(context.Background(), "5550001", "111111")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrCodeExpired))
}

func TestValidateLoginOTP_UserGone(t *testing.T) {
	pr := &mockVerificationStore{}
	us := &mockUserStore{}
	pr.On("Get", mock.Anything, "5550001").Return(&domain.ContactVerification{
		Contact:   "5550001",
		OTP:       "111111",
		ExpiresAt: time.Now().Add(time.Minute).Unix(),
	}, nil)
	pr.On("SetVerified", mock.Anything, "5550001", true).Return(nil)
	us.On("GetByPhone", mock.Anything, "5550001").Return(nil, domain.ErrNotFound)

	svc := newService(pr, us, nil, nil, nil)
	_, _, err := svc.ValidateLoginOTP(context.Background(), "5550001", "111111")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestValidateLoginOTP_HappyPath(t *testing.T) {
	pr := &mockVerificationStore{}
	us := &mockUserStore{}
	jwt := &mockJWTSigner{}

	user := &domain.User{UserID: 3, Name: "Ana", Phone: strPtr("5550001")}
	pr.On("Get", mock.Anything, "5550001").Return(&domain.ContactVerification{
		Contact:   "5550001",
		OTP:       "111111",
		ExpiresAt: time.Now().Add(time.Minute).Unix(),
	}, nil)
	pr.On("SetVerified", mock.Anything, "5550001", true).Return(nil)
	us.On("GetByPhone", mock.Anything, "5550001").Return(user, nil)
	jwt.On("Sign", int64(3), "Ana", user.Phone).Return("tok456", nil)

	svc := newService(pr, us, nil, nil, jwt)
	token, u, err := svc.ValidateLoginOTP(context.Background(), "5550001", "111111")

	require.NoError(t, err)
	assert.Equal(t, "tok456", token)
	assert.Equal(t, int64(3), u.UserID)
	pr.AssertExpectations(t)
	jwt.AssertExpectations(t)
}
