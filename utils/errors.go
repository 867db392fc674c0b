package utils

import "errors"

var (
	ErrEmptyURL            = errors.New("URL cannot be empty")
	ErrInvalidURL          = errors.New("invalid URL format")
	ErrInvalidScheme       = errors.New("URL scheme must be http or https")
	ErrEmptyHost           = errors.New("URL host cannot be empty")
	ErrLocalhostNotAllowed = errors.New("localhost URLs are not allowed")
	ErrPrivateIPNotAllowed = errors.New("private IP addresses are not allowed")

	ErrInvalidShortCode = errors.New("short code can only contain letters, numbers, and hyphens")
	ErrCodeTooShort     = errors.New("short code is too short")
	ErrCodeTooLong      = errors.New("short code is too long")
	ErrCodeInvalidEdge  = errors.New("short code must start and end with a letter or number")
	ErrCodeReserved     = errors.New("short code is reserved")

	ErrWeakPassword = errors.New("password does not meet requirements")
)
