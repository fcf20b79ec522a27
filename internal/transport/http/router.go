package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-identity-api/internal/application/auth"
	"github.com/go-identity-api/internal/application/user"
	"github.com/go-identity-api/internal/application/verification"
	"github.com/go-identity-api/internal/config"
	"github.com/go-identity-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/go-identity-api/internal/infrastructure/jwt"
	"github.com/go-identity-api/internal/infrastructure/smtp"
	"github.com/go-identity-api/internal/infrastructure/sns"
	"github.com/go-identity-api/internal/transport/http/handler"
	appmiddleware "github.com/go-identity-api/internal/transport/http/middleware"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo            *dynamo.UserRepo
	PhoneVerifRepo      *dynamo.VerificationRepo
	EmailVerifRepo      *dynamo.VerificationRepo
	NotificationLogRepo *dynamo.NotificationLogRepo
	CounterRepo         *dynamo.CounterRepo
	Mailer              smtp.Mailer
	SMSSender           sns.SMSSender
	JWTProvider         *jwtinfra.Provider
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	var authMw func(http.Handler) http.Handler
	if deps.JWTProvider != nil {
		authMw = appmiddleware.Auth(deps.JWTProvider)
	} else {
		authMw = func(next http.Handler) http.Handler { return next }
	}

	verifSvc := verification.NewService(verification.ServiceDeps{
		PhoneRepo:     deps.PhoneVerifRepo,
		EmailRepo:     deps.EmailVerifRepo,
		UserRepo:      deps.UserRepo,
		SMSSender:     deps.SMSSender,
		Mailer:        deps.Mailer,
		NotifyLog:     deps.NotificationLogRepo,
		OTPLength:     cfg.OTPLength,
		ContactTTL:    cfg.ContactOTPTTL,
		UserTTL:       cfg.UserOTPTTL,
		NotifyTimeout: cfg.NotifyTimeout,
	})
	userSvc := user.NewService(user.ServiceDeps{
		UserRepo:    deps.UserRepo,
		PhoneVerifs: deps.PhoneVerifRepo,
		EmailVerifs: deps.EmailVerifRepo,
		Counters:    deps.CounterRepo,
		JWTProvider: deps.JWTProvider,
	})
	authSvc := auth.NewService(auth.ServiceDeps{
		PhoneRepo:     deps.PhoneVerifRepo,
		UserRepo:      deps.UserRepo,
		SMSSender:     deps.SMSSender,
		NotifyLog:     deps.NotificationLogRepo,
		JWTProvider:   deps.JWTProvider,
		OTPLength:     cfg.OTPLength,
		OTPTTL:        cfg.ContactOTPTTL,
		NotifyTimeout: cfg.NotifyTimeout,
	})

	healthH := handler.NewHealthHandler()
	userH := handler.NewUserHandler(userSvc)
	verifH := handler.NewVerificationHandler(verifSvc, cfg.DebugEchoOTP)
	loginH := handler.NewLoginHandler(authSvc)
	notifH := handler.NewNotificationHandler(deps.NotificationLogRepo)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.Post("/health-check/{action}", healthH.Ping)

		r.Post("/users", userH.Create)
		r.Post("/users/create", userH.Create)
		r.Get("/users/{id}", userH.Get)

		r.Post("/verifications/send-phone-otp", verifH.SendPhoneOTP)
		r.Post("/verifications/send-email-otp", verifH.SendEmailOTP)
		r.Post("/verifications/verify-phone-otp", verifH.VerifyPhoneOTP)
		r.Post("/verifications/verify-email-otp", verifH.VerifyEmailOTP)
		r.Post("/verifications/send", verifH.SendUserOTP)
		r.Post("/verifications/signup", verifH.SendSignupOTP)
		r.Post("/verifications/verify", verifH.VerifyUserOTP)

		r.Post("/login/sendotp", loginH.SendOTP)
		r.Post("/login/verifyOtp", loginH.VerifyOTP)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Post("/users/updateemail", userH.UpdateEmail)
			r.Get("/notifications", notifH.ListMine)
		})
	})

	return r
}
