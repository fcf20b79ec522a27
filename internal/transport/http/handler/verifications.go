package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-identity-api/internal/application/verification"
	"github.com/go-identity-api/internal/domain"
)

// VerificationHandler handles OTP request and verification endpoints.
type VerificationHandler struct {
	svc     verification.Service
	echoOTP bool
}

func NewVerificationHandler(svc verification.Service, echoOTP bool) *VerificationHandler {
	return &VerificationHandler{svc: svc, echoOTP: echoOTP}
}

func (h *VerificationHandler) SendPhoneOTP(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Phone string `json:"phone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Phone == "" {
		writeError(w, http.StatusBadRequest, "phone is required")
		return
	}
	code, err := h.svc.RequestContactOTP(r.Context(), domain.ChannelPhone, body.Phone)
	if err != nil {
		httpError(w, err)
		return
	}
	resp := OTPEnvelope{Message: "OTP sent", Phone: body.Phone}
	if h.echoOTP {
		resp.OTP = code
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *VerificationHandler) SendEmailOTP(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}
	code, err := h.svc.RequestContactOTP(r.Context(), domain.ChannelEmail, body.Email)
	if err != nil {
		httpError(w, err)
		return
	}
	resp := OTPEnvelope{Message: "OTP sent", Email: body.Email}
	if h.echoOTP {
		resp.OTP = code
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *VerificationHandler) VerifyPhoneOTP(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Phone string `json:"phone"`
		OTP   string `json:"otp"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Phone == "" || body.OTP == "" {
		writeError(w, http.StatusBadRequest, "phone and otp are required")
		return
	}
	if err := h.svc.VerifyContactOTP(r.Context(), domain.ChannelPhone, body.Phone, body.OTP); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "Phone verified successfully"})
}

func (h *VerificationHandler) VerifyEmailOTP(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
		OTP   string `json:"otp"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Email == "" || body.OTP == "" {
		writeError(w, http.StatusBadRequest, "email and otp are required")
		return
	}
	if err := h.svc.VerifyContactOTP(r.Context(), domain.ChannelEmail, body.Email, body.OTP); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "Email verified successfully"})
}

// SendUserOTP serves the user-scoped request flow: the contact value is read
// from the stored User record rather than the request body.
func (h *VerificationHandler) SendUserOTP(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID int64  `json:"user_id"`
		Type   string `json:"type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.UserID == 0 {
		writeError(w, http.StatusBadRequest, "user_id and type are required")
		return
	}
	channel, ok := domain.ParseChannel(body.Type)
	if !ok {
		writeError(w, http.StatusBadRequest, "type must be phone or email")
		return
	}
	code, err := h.svc.RequestUserOTP(r.Context(), body.UserID, channel)
	if err != nil {
		httpError(w, err)
		return
	}
	resp := OTPEnvelope{Message: "OTP sent"}
	if h.echoOTP {
		resp.OTP = code
	}
	writeJSON(w, http.StatusOK, resp)
}

// SendSignupOTP accepts a raw contact value ahead of registration.
func (h *VerificationHandler) SendSignupOTP(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Phone string `json:"phone"`
		Email string `json:"email"`
		Type  string `json:"type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	channel, ok := domain.ParseChannel(body.Type)
	if !ok {
		writeError(w, http.StatusBadRequest, "type must be phone or email")
		return
	}
	contact := body.Phone
	if channel == domain.ChannelEmail {
		contact = body.Email
	}
	if contact == "" {
		writeError(w, http.StatusBadRequest, "contact is required")
		return
	}
	code, err := h.svc.RequestContactOTP(r.Context(), channel, contact)
	if err != nil {
		httpError(w, err)
		return
	}
	resp := OTPEnvelope{Message: "OTP sent"}
	if channel == domain.ChannelEmail {
		resp.Email = contact
	} else {
		resp.Phone = contact
	}
	if h.echoOTP {
		resp.OTP = code
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *VerificationHandler) VerifyUserOTP(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID int64  `json:"user_id"`
		Type   string `json:"type"`
		OTP    string `json:"otp"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.UserID == 0 || body.OTP == "" {
		writeError(w, http.StatusBadRequest, "user_id, type and otp are required")
		return
	}
	channel, ok := domain.ParseChannel(body.Type)
	if !ok {
		writeError(w, http.StatusBadRequest, "type must be phone or email")
		return
	}
	if err := h.svc.VerifyUserOTP(r.Context(), body.UserID, channel, body.OTP); err != nil {
		httpError(w, err)
		return
	}
	msg := "Phone verified successfully"
	if channel == domain.ChannelEmail {
		msg = "Email verified successfully"
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: msg})
}
