package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"futassist/lib/chrono"
	"futassist/lib/oauth"
	"futassist/lib/testutil"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const (
	testEmail    = "manager@example.com"
	testPassword = "hunter2"
	testCode     = "123456"
	loginPath    = "/p/juno/login"
)

var testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// mockProvider imitates the identity provider's login pages.
type mockProvider struct {
	t           *testing.T
	srv         *httptest.Server
	omitCookies bool
	noChallenge bool
	tokenAsJSON bool
}

func newMockProvider(t *testing.T) *mockProvider {
	p := &mockProvider{t: t}
	mux := http.NewServeMux()
	mux.HandleFunc("/connect/auth", p.handleAuth)
	mux.HandleFunc(loginPath, p.handleLogin)
	p.srv = httptest.NewServer(mux)
	t.Cleanup(p.srv.Close)
	return p
}

func (p *mockProvider) client() *Client {
	client, err := NewClient(ClientOptions{
		AuthURL: p.srv.URL + "/connect/auth",
		Clock:   chrono.FixedClock(testNow),
	})
	require.NoError(p.t, err)
	return client
}

func (p *mockProvider) handleAuth(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	switch {
	case q.Get("release_type") == "prod":
		require.Equal(p.t, DefaultClientID, q.Get("client_id"))
		require.Equal(p.t, "token", q.Get("response_type"))
		if !p.omitCookies {
			http.SetCookie(w, &http.Cookie{Name: "_nx_mpcid", Value: "abc", Path: "/"})
		}
		w.Header().Set("selflocation", p.srv.URL+loginPath+"?execution=e1s1")
		w.WriteHeader(http.StatusOK)
	case q.Get("exchange") == "granted":
		http.SetCookie(w, &http.Cookie{Name: "remid", Value: "R1", Path: "/", MaxAge: 30 * 24 * 3600})
		http.SetCookie(w, &http.Cookie{Name: "sid", Value: "S1", Path: "/"})
		if p.tokenAsJSON {
			w.Header().Set("content-type", "application/json")
			fmt.Fprint(w, `{"access_token": "ABC", "token_type": "Bearer", "expires_in": 3600}`)
			return
		}
		w.Header().Set("location", DefaultRedirectURI+"#access_token=ABC&token_type=Bearer&expires_in=3600")
		w.WriteHeader(http.StatusFound)
	case q.Get("hide_create") == "true":
		require.Equal(p.t, DefaultScope, q.Get("scope"))
		require.Equal(p.t, DefaultRedirectURI, q.Get("redirect_uri"))
		require.Equal(p.t, "OLD", q.Get("accessToken"))
		if strings.Contains(r.Header.Get("cookie"), "remid=R1") {
			w.Header().Set("location", DefaultRedirectURI+"#access_token=ABC&token_type=Bearer&expires_in=3600")
		} else {
			w.Header().Set("location", "https://signin.example.com/login")
		}
		w.WriteHeader(http.StatusFound)
	default:
		w.WriteHeader(http.StatusBadRequest)
	}
}

func (p *mockProvider) handleLogin(w http.ResponseWriter, r *http.Request) {
	require.Contains(p.t, r.Header.Get("cookie"), "_nx_mpcid=abc")

	execution := r.URL.Query().Get("execution")
	switch {
	case execution == "e1s1" && r.Method == http.MethodPost:
		require.NoError(p.t, r.ParseForm())
		require.Equal(p.t, testEmail, r.PostForm.Get("email"))
		require.Equal(p.t, testPassword, r.PostForm.Get("password"))
		require.Len(p.t, r.PostForm.Get("cid"), 32)
		require.Equal(p.t, "emailPassword", r.PostForm.Get("loginMethod"))
		http.Redirect(w, r, loginPath+"?execution=e1s2", http.StatusFound)
	case execution == "e1s2" && r.Method == http.MethodGet:
		if p.noChallenge {
			fmt.Fprint(w, "<html><body>Please solve the captcha</body></html>")
			return
		}
		fmt.Fprint(w, "<html><body>We'll send a verification code to m*****r@example.com</body></html>")
	case execution == "e1s2" && r.Method == http.MethodPost:
		require.NoError(p.t, r.ParseForm())
		require.Equal(p.t, "EMAIL", r.PostForm.Get("codeType"))
		http.Redirect(w, r, loginPath+"?execution=e1s3", http.StatusFound)
	case execution == "e1s3" && r.Method == http.MethodGet:
		fmt.Fprint(w, "<html><body>Enter your code below.</body></html>")
	case execution == "e1s3" && r.Method == http.MethodPost:
		require.NoError(p.t, r.ParseForm())
		require.Equal(p.t, "on", r.PostForm.Get("trustThisDevice"))
		if r.PostForm.Get("oneTimeCode") != testCode {
			fmt.Fprint(w, "<html><body>Invalid code, try again.</body></html>")
			return
		}
		fmt.Fprintf(
			w,
			`<html><head><script type="text/javascript">window.location = "%s/connect/auth?exchange=granted";</script></head></html>`,
			p.srv.URL,
		)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func testContext(t *testing.T) context.Context {
	cleanup := testutil.SetupServiceNoDB(t, "identity")
	t.Cleanup(cleanup)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	t.Cleanup(cancel)
	return ctx
}

func TestLogin(t *testing.T) {
	for _, tokenAsJSON := range []bool{false, true} {
		t.Run(fmt.Sprintf("json=%v", tokenAsJSON), func(t *testing.T) {
			ctx := testContext(t)
			provider := newMockProvider(t)
			provider.tokenAsJSON = tokenAsJSON
			client := provider.client()

			challenge, err := client.BeginLogin(ctx, Credentials{Email: testEmail, Password: testPassword})
			require.NoError(t, err)
			require.Equal(t, provider.srv.URL+loginPath+"?execution=e1s3", challenge.URL)
			require.Equal(t, "_nx_mpcid=abc", challenge.Cookies)

			result, err := client.CompleteLogin(ctx, testCode, challenge)
			require.NoError(t, err)
			require.Equal(t, "ABC", result.Token.AccessToken)
			require.Equal(t, testNow.Add(time.Hour), result.Token.ExpiresAt)
			require.Contains(t, result.Cookie, "remid=R1")
			require.Contains(t, result.Cookie, "sid=S1")
			require.Equal(t, testNow.Add(30*24*time.Hour), result.CookieExpiry)
		})
	}
}

func TestBeginLoginFailures(t *testing.T) {
	ctx := testContext(t)

	t.Run("no cookies", func(t *testing.T) {
		provider := newMockProvider(t)
		provider.omitCookies = true
		_, err := provider.client().BeginLogin(ctx, Credentials{Email: testEmail, Password: testPassword})
		require.ErrorIs(t, err, ErrAuthFlow)
	})

	t.Run("no challenge", func(t *testing.T) {
		provider := newMockProvider(t)
		provider.noChallenge = true
		_, err := provider.client().BeginLogin(ctx, Credentials{Email: testEmail, Password: testPassword})
		require.ErrorIs(t, err, ErrUnsupportedLoginFlow)
		require.ErrorIs(t, err, ErrAuthFlow)
	})

	t.Run("invalid credentials", func(t *testing.T) {
		provider := newMockProvider(t)
		_, err := provider.client().BeginLogin(ctx, Credentials{Email: "not an email", Password: testPassword})
		require.Error(t, err)
	})
}

func TestCompleteLoginWrongCode(t *testing.T) {
	ctx := testContext(t)
	provider := newMockProvider(t)
	client := provider.client()

	challenge, err := client.BeginLogin(ctx, Credentials{Email: testEmail, Password: testPassword})
	require.NoError(t, err)

	_, err = client.CompleteLogin(ctx, "000000", challenge)
	require.ErrorIs(t, err, ErrInvalidCredential)
}

func TestRefreshToken(t *testing.T) {
	ctx := testContext(t)
	provider := newMockProvider(t)
	client := provider.client()

	values, err := client.RefreshToken(ctx, "OLD", "remid=R1; sid=S1")
	require.NoError(t, err)
	require.Equal(t, oauth.Values{
		"access_token": "ABC",
		"token_type":   "Bearer",
		"expires_in":   "3600",
	}, values)

	values, err = client.RefreshToken(ctx, "OLD", "sid=S1")
	require.ErrorIs(t, err, ErrTokenRefreshFailed)
	require.Empty(t, values)
}

func TestFindRedirect(t *testing.T) {
	location, found := findRedirect([]byte(`<script>window.location = "https://a.example/x?y=1";</script>`))
	require.True(t, found)
	require.Equal(t, "https://a.example/x?y=1", location)

	// not inside a script element
	location, found = findRedirect([]byte(`<div>window.location = "https://b.example/"</div>`))
	require.True(t, found)
	require.Equal(t, "https://b.example/", location)

	_, found = findRedirect([]byte(`<p>Invalid code</p>`))
	require.False(t, found)
}

func TestValuesFromJSON(t *testing.T) {
	values, err := valuesFromJSON([]byte(`{"access_token": "T", "expires_in": 3600, "refresh_token": null}`))
	require.NoError(t, err)
	require.Equal(t, oauth.Values{"access_token": "T", "expires_in": "3600"}, values)

	_, err = valuesFromJSON([]byte(`<html>`))
	require.Error(t, err)

	raw, _ := json.Marshal(map[string]any{"expires_in": 1.5})
	values, err = valuesFromJSON(raw)
	require.NoError(t, err)
	require.Equal(t, "1.5", values["expires_in"])
}
