package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-identity-api/internal/application/auth"
)

// LoginHandler handles phone-OTP login endpoints.
type LoginHandler struct {
	svc auth.Service
}

func NewLoginHandler(svc auth.Service) *LoginHandler { return &LoginHandler{svc: svc} }

func (h *LoginHandler) SendOTP(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Phone string `json:"phone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Phone == "" {
		writeError(w, http.StatusBadRequest, "phone is required")
		return
	}
	if _, err := h.svc.RequestLoginOTP(r.Context(), body.Phone); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, OTPEnvelope{Message: "OTP sent", Phone: body.Phone})
}

func (h *LoginHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Phone string `json:"phone"`
		OTP   string `json:"otp"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Phone == "" || body.OTP == "" {
		writeError(w, http.StatusBadRequest, "phone and otp are required")
		return
	}
	token, u, err := h.svc.ValidateLoginOTP(r.Context(), body.Phone, body.OTP)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AuthEnvelope{
		Message: "Login successful",
		Bearer:  token,
		User:    u,
	})
}
