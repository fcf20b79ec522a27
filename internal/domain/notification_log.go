package domain

import "time"

// Delivery outcomes recorded in the notification log.
const (
	DeliverySent   = "sent"
	DeliveryFailed = "failed"
)

// NotificationLog is an audit row written after every OTP delivery attempt.
type NotificationLog struct {
	LogID       string    `json:"id" dynamodbav:"log_id"`
	Channel     Channel   `json:"channel" dynamodbav:"channel"`
	Destination string    `json:"destination" dynamodbav:"destination"`
	Status      string    `json:"status" dynamodbav:"status"`
	Error       string    `json:"error,omitempty" dynamodbav:"error"`
	CreatedAt   time.Time `json:"created" dynamodbav:"created_at"`
}
