package service

import (
	"errors"
	"fmt"
)

// Failure kinds. The texts are stable and double as wire error codes.
var (
	ErrAlreadyRegistered    = errors.New("already_registered")
	ErrInvalidCredential    = errors.New("invalid_credential")
	ErrNotVerified          = errors.New("not_verified")
	ErrCodeInvalidOrExpired = errors.New("code_invalid_or_expired")
	ErrAccountNotFound      = errors.New("account_not_found")
	ErrTokenInvalid         = errors.New("token_invalid")
	ErrInvalidRequest       = errors.New("invalid_request")

	// ErrTransient wraps storage and connectivity faults. Callers may retry.
	ErrTransient = errors.New("transient")
)

var kinds = []error{
	ErrAlreadyRegistered,
	ErrInvalidCredential,
	ErrNotVerified,
	ErrCodeInvalidOrExpired,
	ErrAccountNotFound,
	ErrTokenInvalid,
	ErrInvalidRequest,
	ErrTransient,
}

// transient wraps err as ErrTransient unless it already carries a failure kind.
func transient(err error) error {
	if err == nil {
		return nil
	}
	for _, k := range kinds {
		if errors.Is(err, k) {
			return err
		}
	}
	return fmt.Errorf("%w: %w", ErrTransient, err)
}
