package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-identity-api/internal/domain"
)

type Service interface {
	Create(ctx context.Context, req domain.CreateUserRequest) (*domain.User, string, error)
	LinkEmail(ctx context.Context, userID int64, email string) (*domain.User, error)
	Get(ctx context.Context, userID int64) (*domain.User, error)
}

type userStore interface {
	Put(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, userID int64) (*domain.User, error)
	GetByPhone(ctx context.Context, phone string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, userID int64, updates map[string]interface{}) error
}

type verificationStore interface {
	Get(ctx context.Context, contact string) (*domain.ContactVerification, error)
	SetVerified(ctx context.Context, contact string, verified bool) error
}

type counterStore interface {
	Next(ctx context.Context, name string) (int64, error)
}

type jwtSigner interface {
	Sign(userID int64, name string, phone *string) (string, error)
}

type service struct {
	userRepo    userStore
	phoneVerifs verificationStore
	emailVerifs verificationStore
	counters    counterStore
	jwt         jwtSigner
}

type ServiceDeps struct {
	UserRepo    userStore
	PhoneVerifs verificationStore
	EmailVerifs verificationStore
	Counters    counterStore
	JWTProvider jwtSigner
}

func NewService(deps ServiceDeps) Service {
	return &service{
		userRepo:    deps.UserRepo,
		phoneVerifs: deps.PhoneVerifs,
		emailVerifs: deps.EmailVerifs,
		counters:    deps.Counters,
		jwt:         deps.JWTProvider,
	}
}

// Create registers a user whose phone already passed OTP verification and
// hands back a signed session token alongside the stored record.
func (s *service) Create(ctx context.Context, req domain.CreateUserRequest) (*domain.User, string, error) {
	if req.Phone == "" {
		return nil, "", fmt.Errorf("phone is required: %w", domain.ErrBadRequest)
	}

	v, err := s.phoneVerifs.Get(ctx, req.Phone)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, "", fmt.Errorf("phone not verified: %w", domain.ErrConflict)
		}
		return nil, "", err
	}
	if !v.Verified {
		return nil, "", fmt.Errorf("phone not verified: %w", domain.ErrConflict)
	}

	if _, err := s.userRepo.GetByPhone(ctx, req.Phone); err == nil {
		return nil, "", fmt.Errorf("phone already registered: %w", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, "", fmt.Errorf("lookup phone: %w", err)
	}

	var dob time.Time
	var age int
	if req.DOB != "" {
		parsed, err := time.Parse("2006-01-02", req.DOB)
		if err != nil {
			return nil, "", fmt.Errorf("invalid dob: %w", domain.ErrBadRequest)
		}
		dob = parsed
		age = domain.AgeAt(dob, time.Now())
	}

	userID, err := s.counters.Next(ctx, "users")
	if err != nil {
		return nil, "", fmt.Errorf("allocate user id: %w", err)
	}

	now := time.Now().UTC()
	phone := req.Phone
	u := &domain.User{
		UserID:      userID,
		UserCode:    domain.UserCode(userID),
		Phone:       &phone,
		Name:        req.Name,
		Gender:      req.Gender,
		DateOfBirth: dob,
		Age:         age,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.userRepo.Put(ctx, u); err != nil {
		return nil, "", fmt.Errorf("store user: %w", err)
	}

	token, err := s.jwt.Sign(u.UserID, u.Name, u.Phone)
	if err != nil {
		return nil, "", fmt.Errorf("sign token: %w", err)
	}

	slog.Info("user created", "user_id", u.UserID, "user_code", u.UserCode)
	return u, token, nil
}

// LinkEmail attaches a verified email to an existing user and clears the
// verified flag so the address must be re-verified if it is ever reused.
func (s *service) LinkEmail(ctx context.Context, userID int64, email string) (*domain.User, error) {
	u, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	v, err := s.emailVerifs.Get(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("email not verified: %w", domain.ErrConflict)
		}
		return nil, err
	}
	if !v.Verified {
		return nil, fmt.Errorf("email not verified: %w", domain.ErrConflict)
	}

	if other, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		if other.UserID != userID {
			return nil, fmt.Errorf("email already in use: %w", domain.ErrConflict)
		}
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	if err := s.userRepo.Update(ctx, userID, map[string]interface{}{"email": email}); err != nil {
		return nil, fmt.Errorf("update email: %w", err)
	}
	if err := s.emailVerifs.SetVerified(ctx, email, false); err != nil {
		slog.Warn("failed to reset email verification", "email", email, "err", err)
	}

	u.Email = &email
	u.UpdatedAt = time.Now().UTC()
	return u, nil
}

func (s *service) Get(ctx context.Context, userID int64) (*domain.User, error) {
	return s.userRepo.Get(ctx, userID)
}
