package identity

import (
	"crypto/tls"
	"fmt"
	"futassist/lib/chrono"
	"futassist/lib/restyutil"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/net/publicsuffix"
)

const (
	DefaultAuthURL       = "https://accounts.ea.com/connect/auth"
	DefaultClientID      = "FIFA23_JS_WEB_APP"
	DefaultRedirectURI   = "https://www.ea.com/fifa/ultimate-team/web-app/auth.html"
	DefaultScope         = "basic.identity offline signin basic.entitlement basic.persona"
	DefaultRefreshCookie = "remid"
	DefaultUserAgent     = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"
)

type ClientOptions struct {
	AuthURL     string
	ClientID    string
	RedirectURI string
	Scope       string
	// name of the cookie whose expiry bounds how long the access
	// token can be refreshed
	RefreshCookie string
	UserAgent     string
	Timeout       time.Duration
	// some of the provider's hosts present certificates that do not
	// verify
	InsecureSkipVerify bool
	Clock              chrono.Clock
}

func (o ClientOptions) withDefaults() ClientOptions {
	if o.AuthURL == "" {
		o.AuthURL = DefaultAuthURL
	}
	if o.ClientID == "" {
		o.ClientID = DefaultClientID
	}
	if o.RedirectURI == "" {
		o.RedirectURI = DefaultRedirectURI
	}
	if o.Scope == "" {
		o.Scope = DefaultScope
	}
	if o.RefreshCookie == "" {
		o.RefreshCookie = DefaultRefreshCookie
	}
	if o.UserAgent == "" {
		o.UserAgent = DefaultUserAgent
	}
	if o.Timeout == 0 {
		o.Timeout = time.Second * 30
	}
	if o.Clock == nil {
		o.Clock = chrono.SystemClock{}
	}
	return o
}

// Client drives the identity provider's login pages. It holds no session
// state of its own, everything needed between calls is handed back to the
// caller.
type Client struct {
	opts ClientOptions
}

func NewClient(opts ClientOptions) (*Client, error) {
	opts = opts.withDefaults()
	_, err := url.ParseRequestURI(opts.AuthURL)
	if err != nil {
		return nil, fmt.Errorf("invalid auth url: %w", err)
	}
	return &Client{opts: opts}, nil
}

func (c *Client) Options() ClientOptions {
	return c.opts
}

func newJar() (http.CookieJar, error) {
	return cookiejar.New(&cookiejar.Options{
		PublicSuffixList: publicsuffix.List,
	})
}

// newHttp creates a client for a single step of a flow. jar may be nil,
// in which case cookies are only sent when set explicitly.
func (c *Client) newHttp(jar http.CookieJar, followRedirects bool) *resty.Client {
	client := resty.New()
	// resty installs its own jar by default
	client.SetCookieJar(jar)
	if !followRedirects {
		client.SetRedirectPolicy(restyutil.NoRedirects())
	}
	if c.opts.InsecureSkipVerify {
		client.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	client.SetHeader("user-agent", c.opts.UserAgent)
	client.SetTimeout(c.opts.Timeout)
	restyutil.InstrumentClient(client, tracer, restyInstrumentOutput)
	return client
}
