package restyutil

import (
	"net/http"

	"github.com/go-resty/resty/v2"
)

// NoRedirects makes the client hand back the first 3xx response as-is,
// so that its Location header can be inspected.
func NoRedirects() resty.RedirectPolicy {
	return resty.RedirectPolicyFunc(func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	})
}

// FinalURL is the url of the last request made while following
// redirects to produce res.
func FinalURL(res *resty.Response) string {
	if res.RawResponse != nil && res.RawResponse.Request != nil {
		return res.RawResponse.Request.URL.String()
	}
	return res.Request.URL
}
