package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-identity-api/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
	ErrorCode int    `json:"error_code,omitempty"`
}

// AuthEnvelope wraps signup/login responses that carry a session token.
type AuthEnvelope struct {
	Message string       `json:"message,omitempty"`
	Bearer  string       `json:"token,omitempty"`
	User    *domain.User `json:"user,omitempty"`
	Error   string       `json:"error,omitempty"`
}

// UserEnvelope wraps single-user responses.
type UserEnvelope struct {
	Message string       `json:"message,omitempty"`
	User    *domain.User `json:"user,omitempty"`
	Error   string       `json:"error,omitempty"`
}

// OTPEnvelope wraps OTP request responses. OTP is populated only when the
// debug echo flag is enabled.
type OTPEnvelope struct {
	Message string `json:"message,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	OTP     string `json:"otp,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}
