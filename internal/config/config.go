package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables

	JWTSecret     string
	JWTExpiryDays int

	SMTPHost     string
	SMTPPort     string
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string

	SNSRegion string

	OTPLength     int
	ContactOTPTTL time.Duration // standalone pre-signup verification
	UserOTPTTL    time.Duration // user-scoped verification
	NotifyTimeout time.Duration
	DebugEchoOTP  bool

	AllowedOrigins []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users              string
	PhoneVerifications string
	EmailVerifications string
	NotificationLog    string
	Counters           string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Users:              getEnv("DYNAMO_TABLE_USERS", "users"),
			PhoneVerifications: getEnv("DYNAMO_TABLE_PHONE_VERIFICATIONS", "phone_verifications"),
			EmailVerifications: getEnv("DYNAMO_TABLE_EMAIL_VERIFICATIONS", "email_verifications"),
			NotificationLog:    getEnv("DYNAMO_TABLE_NOTIFICATION_LOG", "notification_log"),
			Counters:           getEnv("DYNAMO_TABLE_COUNTERS", "counters"),
		},

		JWTSecret:     getEnv("JWT_SECRET", ""),
		JWTExpiryDays: getEnvInt("JWT_EXPIRY_DAYS", 7),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnv("SMTP_PORT", "587"),
		SMTPFrom:     getEnv("SMTP_FROM", ""),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),

		SNSRegion: getEnv("SNS_REGION", getEnv("AWS_REGION", "us-east-1")),

		OTPLength:     getEnvInt("OTP_LENGTH", 6),
		ContactOTPTTL: getEnvDuration("CONTACT_OTP_TTL", 10*time.Minute),
		UserOTPTTL:    getEnvDuration("USER_OTP_TTL", 5*time.Minute),
		NotifyTimeout: getEnvDuration("NOTIFY_TIMEOUT", 10*time.Second),
		DebugEchoOTP:  getEnvBool("APP_DEBUG_ECHO_OTP", false),

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

// Validate rejects configurations that would only fail at request time.
// The signing secret and delivery credentials are required up front; there is
// deliberately no built-in default secret.
func (c *Config) Validate() error {
	var missing []string
	if c.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if c.SMTPHost == "" {
		missing = append(missing, "SMTP_HOST")
	}
	if c.SMTPFrom == "" {
		missing = append(missing, "SMTP_FROM")
	}
	if c.SNSRegion == "" {
		missing = append(missing, "SNS_REGION")
	}
	if len(missing) > 0 {
		return errors.New("missing required configuration: " + strings.Join(missing, ", "))
	}
	if c.OTPLength < 4 || c.OTPLength > 10 {
		return errors.New("OTP_LENGTH must be between 4 and 10")
	}
	return nil
}

// JWTExpiry returns the session token validity window.
func (c *Config) JWTExpiry() time.Duration {
	return time.Duration(c.JWTExpiryDays) * 24 * time.Hour
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
