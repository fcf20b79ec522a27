package domain

import "time"

// Channel is the contact medium an OTP verifies.
type Channel string

const (
	ChannelPhone Channel = "phone"
	ChannelEmail Channel = "email"
)

// ParseChannel maps the wire value ("phone" | "email") to a Channel.
func ParseChannel(s string) (Channel, bool) {
	switch Channel(s) {
	case ChannelPhone, ChannelEmail:
		return Channel(s), true
	}
	return "", false
}

// ContactVerification is one OTP row keyed by the contact value (phone number
// or email address). A new OTP request overwrites the row in place and resets
// Verified; rows are never deleted by the application.
// ExpiresAt is a Unix timestamp used as the DynamoDB TTL attribute.
type ContactVerification struct {
	Contact   string    `json:"contact" dynamodbav:"contact"`
	OTP       string    `json:"-" dynamodbav:"otp"`
	ExpiresAt int64     `json:"expires_at" dynamodbav:"expires_at"`
	Verified  bool      `json:"verified" dynamodbav:"verified"`
	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt time.Time `json:"updated" dynamodbav:"updated_at"`
}

// Expired reports whether the code's validity window has elapsed at now.
func (v *ContactVerification) Expired(now time.Time) bool {
	return now.Unix() > v.ExpiresAt
}
