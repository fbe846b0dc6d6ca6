package oauth

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Values is a flat key/value parameter set, as carried by the fragment
// of an implicit grant redirect. Values are kept exactly as they were
// found, without conversion.
type Values map[string]string

// ParseFragment extracts the parameters after the first '#' of location.
// Pairs without '=' map to an empty value, a location without a fragment
// yields an empty (non-nil) set.
func ParseFragment(location string) Values {
	out := Values{}
	_, fragment, found := strings.Cut(location, "#")
	if !found || fragment == "" {
		return out
	}
	for _, pair := range strings.Split(fragment, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		if unescaped, err := url.QueryUnescape(value); err == nil {
			value = unescaped
		}
		out[key] = value
	}
	return out
}

func (v Values) AccessToken() string {
	return v["access_token"]
}

// Token is an access token with an absolute expiry.
type Token struct {
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
}

// Token converts the raw parameters into a Token, `expires_in` is read
// as a count of seconds after `now`.
func (v Values) Token(now time.Time) (Token, error) {
	accessToken := v.AccessToken()
	if accessToken == "" {
		return Token{}, fmt.Errorf("missing access_token")
	}
	expiresIn, err := strconv.ParseInt(v["expires_in"], 10, 64)
	if err != nil {
		return Token{}, fmt.Errorf("invalid expires_in %q: %w", v["expires_in"], err)
	}
	return Token{
		AccessToken: accessToken,
		TokenType:   v["token_type"],
		ExpiresAt:   now.Add(time.Duration(expiresIn) * time.Second),
	}, nil
}
