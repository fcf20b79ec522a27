package domain

import (
	"fmt"
	"time"
)

type User struct {
	UserID      int64     `json:"id" dynamodbav:"user_id"`
	UserCode    string    `json:"user_code" dynamodbav:"user_code"`
	Phone       *string   `json:"phone" dynamodbav:"phone"`
	Email       *string   `json:"email" dynamodbav:"email"`
	Name        string    `json:"name" dynamodbav:"name"`
	Gender      string    `json:"gender" dynamodbav:"gender"`
	DateOfBirth time.Time `json:"date_of_birth" dynamodbav:"date_of_birth"`
	Age         int       `json:"age" dynamodbav:"age"`
	CreatedAt   time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt   time.Time `json:"updated" dynamodbav:"updated_at"`
}

type CreateUserRequest struct {
	Phone  string `json:"phone" validate:"required"`
	Name   string `json:"name" validate:"required"`
	Gender string `json:"gender"`
	DOB    string `json:"dob"` // expected format: YYYY-MM-DD
}

type UpdateEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// UserCode formats a numeric user id as the public user code, e.g. 1 -> "U0001".
func UserCode(userID int64) string {
	return fmt.Sprintf("U%04d", userID)
}

// AgeAt computes whole years between dob and now, decrementing by one when
// the month/day of now precedes the birth month/day.
func AgeAt(dob, now time.Time) int {
	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	if age < 0 {
		age = 0
	}
	return age
}
