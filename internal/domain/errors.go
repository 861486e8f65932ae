package domain

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrEmailInUse         = errors.New("email already registered")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrCooldownActive     = errors.New("already checked in this week")
	ErrCouponNotFound     = errors.New("coupon not found")
	ErrInvalidQRPayload   = errors.New("invalid qr payload")
	ErrWriteConflict      = errors.New("concurrent update conflict")
)
