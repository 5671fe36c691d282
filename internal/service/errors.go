package service

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidCredentials deliberately covers both unknown email and wrong
// password, so responses cannot be used for account enumeration.
var ErrInvalidCredentials = errors.New("invalid credentials")

// SocialLoginError is returned when a password login hits an account that
// only has linked providers; the message names them so the caller can prompt
// correctly.
type SocialLoginError struct {
	Providers []string
}

func (e *SocialLoginError) Error() string {
	return fmt.Sprintf("this account uses social login (%s); please sign in with your existing social account",
		strings.Join(e.Providers, " and "))
}

// ConflictError is returned on duplicate-email signup. When the existing
// account has linked providers the message enumerates them instead of a
// generic duplicate error.
type ConflictError struct {
	Providers []string
}

func (e *ConflictError) Error() string {
	if len(e.Providers) > 0 {
		return fmt.Sprintf("this email is already associated with %s; please sign in using your existing social account",
			strings.Join(e.Providers, " and "))
	}
	return "this email is already registered; please sign in with your password"
}
