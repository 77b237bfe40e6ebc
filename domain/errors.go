package domain

import "errors"

// Challenge errors. Expected verification failures are not errors: they
// travel as VerifyReason values inside the result.
var (
	ErrInvalidPurpose = errors.New("invalid verification purpose")
)

// Infrastructure errors
var (
	ErrStoreUnavailable = errors.New("challenge store unavailable")
)

// Token errors
var (
	ErrTokenInvalid   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token has expired")
	ErrTokenMalformed = errors.New("malformed token")
)

// Account errors
var (
	ErrAccountNotFound      = errors.New("account not found")
	ErrAccountAlreadyExists = errors.New("account already exists")
)
