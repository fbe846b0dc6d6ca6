package credstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// SessionBundle is everything needed to resume an authenticated session
// without logging in again.
type SessionBundle struct {
	AccessToken       string `validate:"required"`
	AccessTokenExpiry time.Time
	// raw value of a Cookie request header
	Cookie string
	// expiry of the cookie that decides whether the token can still
	// be refreshed, zero when unknown
	CookieExpiry time.Time
}

// TokenExpired reports whether the access token can no longer be used.
// A bundle without an expiry is treated as valid.
func (b SessionBundle) TokenExpired(now time.Time) bool {
	return !b.AccessTokenExpiry.IsZero() && !now.Before(b.AccessTokenExpiry)
}

// CanRefresh reports whether the stored cookies may be used to refresh
// the access token.
func (b SessionBundle) CanRefresh(now time.Time) bool {
	if b.Cookie == "" {
		return false
	}
	return b.CookieExpiry.IsZero() || now.Before(b.CookieExpiry)
}

// Store persists exactly one SessionBundle.
type Store interface {
	// Load returns (nil, nil) when nothing has been stored yet, and a
	// *ParseError when the stored value cannot be understood.
	Load(ctx context.Context) (*SessionBundle, error)
	Save(ctx context.Context, bundle SessionBundle) error
}

// ParseError is returned by Load when the persisted bundle is malformed.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed session bundle in %s: %s", e.Source, e.Err.Error())
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func IsParseError(err error) bool {
	var parseErr *ParseError
	return errors.As(err, &parseErr)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func (b SessionBundle) Validate() error {
	return validate.Struct(b)
}

func fromUnixMilli(ms int64) time.Time {
	if ms <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

func toUnixMilli(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}
