package models

import "errors"

var (
	ErrNoRecord = errors.New("models: no matching record found")

	// ErrInvalidCredentials is returned when a user tries to login with an incorrect email address or password.
	ErrInvalidCredentials = errors.New("models: invalid credentials")

	// ErrDuplicateEmail is returned when a user tries to signup with an email address that's already in use.
	ErrDuplicateEmail = errors.New("models: duplicate email")

	// ErrInvalidOTP is returned when no code is pending or the submitted code does not match.
	ErrInvalidOTP = errors.New("models: invalid otp")

	ErrOTPExpired = errors.New("models: otp has expired")
)
