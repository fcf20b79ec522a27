package verification

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

// Service drives the OTP lifecycle for both contact channels.
//
// Standalone mode (pre-signup) is keyed by the raw contact value and uses the
// longer TTL; user-scoped mode resolves the contact from an existing User row
// and uses the shorter TTL. Both write the same per-channel verification rows.
type Service interface {
	RequestContactOTP(ctx context.Context, channel domain.Channel, contact string) (string, error)
	VerifyContactOTP(ctx context.Context, channel domain.Channel, contact, code string) error
	RequestUserOTP(ctx context.Context, userID int64, channel domain.Channel) (string, error)
	VerifyUserOTP(ctx context.Context, userID int64, channel domain.Channel, code string) error
}

type verificationStore interface {
	Put(ctx context.Context, v *domain.ContactVerification) error
	Get(ctx context.Context, contact string) (*domain.ContactVerification, error)
	SetVerified(ctx context.Context, contact string, verified bool) error
}

type userStore interface {
	Get(ctx context.Context, userID int64) (*domain.User, error)
	GetByPhone(ctx context.Context, phone string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type smsSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

type mailer interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

type notificationLogStore interface {
	Put(ctx context.Context, n *domain.NotificationLog) error
}

type service struct {
	phoneRepo     verificationStore
	emailRepo     verificationStore
	userRepo      userStore
	smsSender     smsSender
	mailer        mailer
	notifyLog     notificationLogStore
	otpLength     int
	contactTTL    time.Duration
	userTTL       time.Duration
	notifyTimeout time.Duration
}

type ServiceDeps struct {
	PhoneRepo     verificationStore
	EmailRepo     verificationStore
	UserRepo      userStore
	SMSSender     smsSender
	Mailer        mailer
	NotifyLog     notificationLogStore
	OTPLength     int
	ContactTTL    time.Duration
	UserTTL       time.Duration
	NotifyTimeout time.Duration
}

func NewService(deps ServiceDeps) Service {
	return &service{
		phoneRepo:     deps.PhoneRepo,
		emailRepo:     deps.EmailRepo,
		userRepo:      deps.UserRepo,
		smsSender:     deps.SMSSender,
		mailer:        deps.Mailer,
		notifyLog:     deps.NotifyLog,
		otpLength:     deps.OTPLength,
		contactTTL:    deps.ContactTTL,
		userTTL:       deps.UserTTL,
		notifyTimeout: deps.NotifyTimeout,
	}
}

// RequestContactOTP issues an OTP for a contact that is not yet bound to any
// user. The returned code is only surfaced to clients behind the debug flag.
func (s *service) RequestContactOTP(ctx context.Context, channel domain.Channel, contact string) (string, error) {
	taken, err := s.contactRegistered(ctx, channel, contact)
	if err != nil {
		return "", err
	}
	if taken {
		return "", fmt.Errorf("%s already registered: %w", channel, domain.ErrConflict)
	}
	code, err := s.issue(ctx, channel, contact, s.contactTTL)
	if err != nil {
		return "", err
	}
	if err := s.deliver(ctx, channel, contact, "Your OTP is "+code); err != nil {
		return "", err
	}
	return code, nil
}

func (s *service) VerifyContactOTP(ctx context.Context, channel domain.Channel, contact, code string) error {
	repo := s.storeFor(channel)
	v, err := repo.Get(ctx, contact)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("otp not requested: %w", domain.ErrNotFound)
		}
		return err
	}
	if v.OTP != code {
		return fmt.Errorf("otp mismatch: %w", domain.ErrInvalidCode)
	}
	if v.Expired(time.Now()) {
		return fmt.Errorf("otp expired: %w", domain.ErrCodeExpired)
	}
	// The code itself is not rotated; re-submitting it keeps succeeding.
	return repo.SetVerified(ctx, contact, true)
}

// RequestUserOTP issues an OTP against an existing user's stored contact
// value (the user-scoped flow, with its shorter TTL).
func (s *service) RequestUserOTP(ctx context.Context, userID int64, channel domain.Channel) (string, error) {
	contact, err := s.resolveContact(ctx, userID, channel)
	if err != nil {
		return "", err
	}
	code, err := s.issue(ctx, channel, contact, s.userTTL)
	if err != nil {
		return "", err
	}
	if err := s.deliver(ctx, channel, contact, "Your OTP is "+code); err != nil {
		return "", err
	}
	return code, nil
}

func (s *service) VerifyUserOTP(ctx context.Context, userID int64, channel domain.Channel, code string) error {
	contact, err := s.resolveContact(ctx, userID, channel)
	if err != nil {
		return err
	}
	return s.VerifyContactOTP(ctx, channel, contact, code)
}

func (s *service) storeFor(channel domain.Channel) verificationStore {
	if channel == domain.ChannelEmail {
		return s.emailRepo
	}
	return s.phoneRepo
}

func (s *service) contactRegistered(ctx context.Context, channel domain.Channel, contact string) (bool, error) {
	var err error
	if channel == domain.ChannelEmail {
		_, err = s.userRepo.GetByEmail(ctx, contact)
	} else {
		_, err = s.userRepo.GetByPhone(ctx, contact)
	}
	if err == nil {
		return true, nil
	}
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	return false, fmt.Errorf("lookup %s: %w", channel, err)
}

func (s *service) resolveContact(ctx context.Context, userID int64, channel domain.Channel) (string, error) {
	u, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", fmt.Errorf("user not found: %w", domain.ErrNotFound)
		}
		return "", err
	}
	switch channel {
	case domain.ChannelEmail:
		if u.Email == nil || *u.Email == "" {
			return "", fmt.Errorf("user has no email: %w", domain.ErrBadRequest)
		}
		return *u.Email, nil
	default:
		if u.Phone == nil || *u.Phone == "" {
			return "", fmt.Errorf("user has no phone: %w", domain.ErrBadRequest)
		}
		return *u.Phone, nil
	}
}

// issue upserts the verification row: a repeated request overwrites the code
// and expiry and resets the verified flag, invalidating the previous code.
func (s *service) issue(ctx context.Context, channel domain.Channel, contact string, ttl time.Duration) (string, error) {
	code, err := otp.Generate(s.otpLength)
	if err != nil {
		return "", err
	}
	now := time.Now().UTC()
	v := &domain.ContactVerification{
		Contact:   contact,
		OTP:       code,
		ExpiresAt: now.Add(ttl).Unix(),
		Verified:  false,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.storeFor(channel).Put(ctx, v); err != nil {
		return "", fmt.Errorf("store otp: %w", err)
	}
	return code, nil
}

// deliver pushes the message through the channel's sender under a bounded
// timeout and records the attempt. The OTP row stays persisted on failure;
// the caller simply re-requests, which overwrites it.
func (s *service) deliver(ctx context.Context, channel domain.Channel, contact, message string) error {
	sendCtx, cancel := context.WithTimeout(ctx, s.notifyTimeout)
	defer cancel()

	var err error
	if channel == domain.ChannelEmail {
		err = s.mailer.SendEmail(sendCtx, contact, "Your OTP Code", message)
	} else {
		err = s.smsSender.SendSMS(sendCtx, contact, message)
	}

	s.logAttempt(ctx, channel, contact, err)
	if err != nil {
		return fmt.Errorf("send %s otp: %v: %w", channel, err, domain.ErrDelivery)
	}
	return nil
}

func (s *service) logAttempt(ctx context.Context, channel domain.Channel, destination string, sendErr error) {
	entry := &domain.NotificationLog{
		LogID:       id.New(),
		Channel:     channel,
		Destination: destination,
		Status:      domain.DeliverySent,
		CreatedAt:   time.Now().UTC(),
	}
	if sendErr != nil {
		entry.Status = domain.DeliveryFailed
		entry.Error = sendErr.Error()
	}
	if err := s.notifyLog.Put(ctx, entry); err != nil {
		slog.Warn("failed to write notification log", "destination", destination, "err", err)
	}
}
