package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-identity-api/internal/domain"
	"github.com/go-identity-api/internal/pkg/id"
	"github.com/go-identity-api/internal/pkg/otp"
)

// Service implements phone-OTP login for already-registered users.
type Service interface {
	RequestLoginOTP(ctx context.Context, phone string) (string, error)
	ValidateLoginOTP(ctx context.Context, phone, code string) (string, *domain.User, error)
}

type verificationStore interface {
	Put(ctx context.Context, v *domain.ContactVerification) error
	Get(ctx context.Context, contact string) (*domain.ContactVerification, error)
	SetVerified(ctx context.Context, contact string, verified bool) error
}

type userStore interface {
	GetByPhone(ctx context.Context, phone string) (*domain.User, error)
}

type smsSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

type notificationLogStore interface {
	Put(ctx context.Context, n *domain.NotificationLog) error
}

type jwtSigner interface {
	Sign(userID int64, name string, phone *string) (string, error)
}

type service struct {
	phoneRepo     verificationStore
	userRepo      userStore
	smsSender     smsSender
	notifyLog     notificationLogStore
	jwt           jwtSigner
	otpLength     int
	otpTTL        time.Duration
	notifyTimeout time.Duration
}

type ServiceDeps struct {
	PhoneRepo     verificationStore
	UserRepo      userStore
	SMSSender     smsSender
	NotifyLog     notificationLogStore
	JWTProvider   jwtSigner
	OTPLength     int
	OTPTTL        time.Duration
	NotifyTimeout time.Duration
}

func NewService(deps ServiceDeps) Service {
	return &service{
		phoneRepo:     deps.PhoneRepo,
		userRepo:      deps.UserRepo,
		smsSender:     deps.SMSSender,
		notifyLog:     deps.NotifyLog,
		jwt:           deps.JWTProvider,
		otpLength:     deps.OTPLength,
		otpTTL:        deps.OTPTTL,
		notifyTimeout: deps.NotifyTimeout,
	}
}

// RequestLoginOTP sends a login code to a registered phone. Unregistered
// phones get ErrNotFound so clients can prompt a signup instead.
func (s *service) RequestLoginOTP(ctx context.Context, phone string) (string, error) {
	if _, err := s.userRepo.GetByPhone(ctx, phone); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", fmt.Errorf("phone not registered, sign up first: %w", domain.ErrNotFound)
		}
		return "", fmt.Errorf("lookup phone: %w", err)
	}

	code, err := otp.Generate(s.otpLength)
	if err != nil {
		return "", err
	}
	now := time.Now().UTC()
	v := &domain.ContactVerification{
		Contact:   phone,
		OTP:       code,
		ExpiresAt: now.Add(s.otpTTL).Unix(),
		Verified:  false,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.phoneRepo.Put(ctx, v); err != nil {
		return "", fmt.Errorf("store otp: %w", err)
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.notifyTimeout)
	defer cancel()
	sendErr := s.smsSender.SendSMS(sendCtx, phone, "Your login OTP is "+code)
	s.logAttempt(ctx, phone, sendErr)
	if sendErr != nil {
		return "", fmt.Errorf("send login otp: %v: %w", sendErr, domain.ErrDelivery)
	}
	return code, nil
}

// ValidateLoginOTP checks the code and mints a session token for the phone's
// owner.
func (s *service) ValidateLoginOTP(ctx context.Context, phone, code string) (string, *domain.User, error) {
	v, err := s.phoneRepo.Get(ctx, phone)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil, fmt.Errorf("otp not requested: %w", domain.ErrNotFound)
		}
		return "", nil, err
	}
	if v.OTP != code {
		return "", nil, fmt.Errorf("otp mismatch: %w", domain.ErrInvalidCode)
	}
	if v.Expired(time.Now()) {
		return "", nil, fmt.Errorf("otp expired: %w", domain.ErrCodeExpired)
	}
	if err := s.phoneRepo.SetVerified(ctx, phone, true); err != nil {
		return "", nil, fmt.Errorf("mark verified: %w", err)
	}

	u, err := s.userRepo.GetByPhone(ctx, phone)
	if err != nil {
		return "", nil, err
	}
	token, err := s.jwt.Sign(u.UserID, u.Name, u.Phone)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}

	slog.Info("login", "user_id", u.UserID)
	return token, u, nil
}

func (s *service) logAttempt(ctx context.Context, phone string, sendErr error) {
	entry := &domain.NotificationLog{
		LogID:       id.New(),
		Channel:     domain.ChannelPhone,
		Destination: phone,
		Status:      domain.DeliverySent,
		CreatedAt:   time.Now().UTC(),
	}
	if sendErr != nil {
		entry.Status = domain.DeliveryFailed
		entry.Error = sendErr.Error()
	}
	if err := s.notifyLog.Put(ctx, entry); err != nil {
		slog.Warn("failed to write notification log", "destination", phone, "err", err)
	}
}
