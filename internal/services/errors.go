package services

import "errors"

// Sentinel errors used across services; handlers map these to HTTP statuses
var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrNotFound           = errors.New("not found")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidSignature   = errors.New("invalid signature")
	ErrInvalidPayload     = errors.New("invalid payload")
	ErrEmailTaken         = errors.New("user already exists with this email")
	ErrInvalidCredentials = errors.New("invalid email or password")
)
