package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/go-identity-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mock ---

type mockAuthSvc struct{ mock.Mock }

func (m *mockAuthSvc) RequestLoginOTP(ctx context.Context, phone string) (string, error) {
	args := m.Called(ctx, phone)
	return args.String(0), args.Error(1)
}
func (m *mockAuthSvc) ValidateLoginOTP(ctx context.Context, phone, code string) (string, *domain.User, error) {
	args := m.Called(ctx, phone, code)
	if u, _ := args.Get(1).(*domain.User); u != nil {
		return args.String(0), u, args.Error(2)
	}
	return "", nil, args.Error(2)
}

// --- SendOTP ---

func TestLoginSendOTP_MissingPhone(t *testing.T) {
	h := NewLoginHandler(&mockAuthSvc{})
	rr := postJSON(t, h.SendOTP, "/v1/login/sendotp", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestLoginSendOTP_UnregisteredPhone(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("RequestLoginOTP", mock.Anything, "5550001").Return("", domain.ErrNotFound)
	h := NewLoginHandler(svc)

	rr := postJSON(t, h.SendOTP, "/v1/login/sendotp", map[string]string{"phone": "5550001"})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestLoginSendOTP_HappyPath_NeverEchoes(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("RequestLoginOTP", mock.Anything, "5550001").Return("123456", nil)
	h := NewLoginHandler(svc)

	rr := postJSON(t, h.SendOTP, "/v1/login/sendotp", map[string]string{"phone": "5550001"})

	require.Equal(t, http.StatusOK, rr.Code)
	var resp OTPEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "5550001", resp.Phone)
	assert.Empty(t, resp.OTP)
}

// --- VerifyOTP ---

func TestLoginVerifyOTP_WrongCode(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("ValidateLoginOTP", mock.Anything, "5550001", "000000").
		Return("", nil, domain.ErrInvalidCode)
	h := NewLoginHandler(svc)

	rr := postJSON(t, h.VerifyOTP, "/v1/login/verifyOtp", map[string]string{
		"phone": "5550001", "otp": "000000",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestLoginVerifyOTP_HappyPath(t *testing.T) {
	svc := &mockAuthSvc{}
	phone := "5550001"
	user := &domain.User{UserID: 3, Name: "Ana", Phone: &phone}
	svc.On("ValidateLoginOTP", mock.Anything, "5550001", "123456").
		Return("tok456", user, nil)
	h := NewLoginHandler(svc)

	rr := postJSON(t, h.VerifyOTP, "/v1/login/verifyOtp", map[string]string{
		"phone": "5550001", "otp": "123456",
	})

	require.Equal(t, http.StatusOK, rr.Code)
	var resp AuthEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "Login successful", resp.Message)
	assert.Equal(t, "tok456", resp.Bearer)
	require.NotNil(t, resp.User)
	assert.Equal(t, int64(3), resp.User.UserID)
	svc.AssertExpectations(t)
}
