package identity

import (
	"errors"
	"fmt"
)

// ErrAuthFlow is returned when the identity provider answers in a way the
// login flow does not understand.
var ErrAuthFlow = errors.New("unexpected response from identity provider")

var ErrUnsupportedLoginFlow = fmt.Errorf("%w: login did not lead to an email verification challenge", ErrAuthFlow)
var ErrChallengeTriggerFailed = fmt.Errorf("%w: failed to trigger 2FA", ErrAuthFlow)

// ErrInvalidCredential is returned when the one-time code was rejected.
var ErrInvalidCredential = errors.New("invalid credential")

// ErrTokenRefreshFailed is returned when no new access token could be
// obtained from the stored cookies, callers should log in again.
var ErrTokenRefreshFailed = errors.New("token refresh failed")
