package identity

import "errors"

var (
	ErrNotFound           = errors.New("identity.not_found")
	ErrInactive           = errors.New("identity.inactive")
	ErrInvalidCredentials = errors.New("identity.invalid_credentials")
	ErrDuplicateEmail     = errors.New("identity.duplicate_email")
	ErrPasswordHash       = errors.New("identity.password_hash_failed")
)
