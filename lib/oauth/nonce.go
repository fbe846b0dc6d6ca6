package oauth

import "github.com/mazen160/go-random"

// GenerateClientNonce returns a 32 character random string used as
// the per-request `cid` field of a credential form.
func GenerateClientNonce() (string, error) {
	return random.String(32)
}
