package autolist

import (
	"context"
	"errors"
	"fmt"
	"futassist/lib/chrono"
	"futassist/lib/credstore"
	"futassist/lib/oauth"
	"futassist/lib/platforms/ea/identity"
	"futassist/lib/platforms/ea/utas"
	"futassist/lib/testutil"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeIdentity struct {
	calls      []string
	refreshErr error
}

func (f *fakeIdentity) BeginLogin(_ context.Context, creds identity.Credentials) (identity.LoginChallenge, error) {
	f.calls = append(f.calls, "begin:"+creds.Email)
	return identity.LoginChallenge{URL: "https://signin.example.com/challenge", Cookies: "a=b"}, nil
}

func (f *fakeIdentity) CompleteLogin(_ context.Context, code string, challenge identity.LoginChallenge) (identity.LoginResult, error) {
	f.calls = append(f.calls, "complete:"+code)
	if code != "123456" {
		return identity.LoginResult{}, identity.ErrInvalidCredential
	}
	return identity.LoginResult{
		Token: oauth.Token{
			AccessToken: "LOGIN",
			ExpiresAt:   testNow.Add(time.Hour),
		},
		Cookie:       "remid=R2",
		CookieExpiry: testNow.Add(30 * 24 * time.Hour),
	}, nil
}

func (f *fakeIdentity) RefreshToken(_ context.Context, accessToken, cookieHeader string) (oauth.Values, error) {
	f.calls = append(f.calls, fmt.Sprintf("refresh:%s:%s", accessToken, cookieHeader))
	if f.refreshErr != nil {
		return oauth.Values{}, f.refreshErr
	}
	return oauth.Values{"access_token": "REFRESHED", "expires_in": "3600"}, nil
}

type sessionFixture struct {
	identity *fakeIdentity
	store    credstore.FileStore
	session  *Session
	prompts  int
}

func newSessionFixture(t *testing.T, stored *credstore.SessionBundle) *sessionFixture {
	cleanup := testutil.SetupServiceNoDB(t, "autolist")
	t.Cleanup(cleanup)

	f := &sessionFixture{
		identity: &fakeIdentity{},
		store:    credstore.NewFileStore(filepath.Join(t.TempDir(), "cookies.json")),
	}
	if stored != nil {
		require.NoError(t, f.store.Save(context.Background(), *stored))
	}
	f.session = NewSession(SessionOptions{
		Identity:    f.identity,
		Store:       f.store,
		Credentials: identity.Credentials{Email: "manager@example.com", Password: "hunter2"},
		Prompt: func(context.Context) (string, error) {
			f.prompts++
			return "123456", nil
		},
		Clock: chrono.FixedClock(testNow),
	})
	return f
}

func (f *sessionFixture) saved(t *testing.T) credstore.SessionBundle {
	bundle, err := f.store.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, bundle)
	return *bundle
}

var loginBundle = credstore.SessionBundle{
	AccessToken:       "LOGIN",
	AccessTokenExpiry: testNow.Add(time.Hour),
	Cookie:            "remid=R2",
	CookieExpiry:      testNow.Add(30 * 24 * time.Hour),
}

var loginCalls = []string{"begin:manager@example.com", "complete:123456"}

func TestAuthenticateWithoutStoredSession(t *testing.T) {
	f := newSessionFixture(t, nil)

	bundle, err := f.session.Authenticate(context.Background())
	require.NoError(t, err)
	require.Equal(t, loginBundle, bundle)
	require.Equal(t, loginCalls, f.identity.calls)
	require.Equal(t, 1, f.prompts)
	require.Equal(t, loginBundle, f.saved(t))
}

func TestAuthenticateValidToken(t *testing.T) {
	stored := credstore.SessionBundle{
		AccessToken:       "STORED",
		AccessTokenExpiry: testNow.Add(time.Minute),
		Cookie:            "remid=R1",
	}
	f := newSessionFixture(t, &stored)

	bundle, err := f.session.Authenticate(context.Background())
	require.NoError(t, err)
	require.Equal(t, stored, bundle)
	require.Empty(t, f.identity.calls)
}

func TestAuthenticateRefresh(t *testing.T) {
	stored := credstore.SessionBundle{
		AccessToken:       "STORED",
		AccessTokenExpiry: testNow.Add(-time.Minute),
		Cookie:            "remid=R1",
		CookieExpiry:      testNow.Add(time.Hour),
	}
	f := newSessionFixture(t, &stored)

	bundle, err := f.session.Authenticate(context.Background())
	require.NoError(t, err)
	expected := credstore.SessionBundle{
		AccessToken:       "REFRESHED",
		AccessTokenExpiry: testNow.Add(time.Hour),
		Cookie:            "remid=R1",
		CookieExpiry:      testNow.Add(time.Hour),
	}
	require.Equal(t, expected, bundle)
	require.Equal(t, []string{"refresh:STORED:remid=R1"}, f.identity.calls)
	require.Equal(t, 0, f.prompts)
	require.Equal(t, expected, f.saved(t))
}

func TestAuthenticateRefreshFailureLogsIn(t *testing.T) {
	stored := credstore.SessionBundle{
		AccessToken:       "STORED",
		AccessTokenExpiry: testNow.Add(-time.Minute),
		Cookie:            "remid=R1",
	}
	f := newSessionFixture(t, &stored)
	f.identity.refreshErr = identity.ErrTokenRefreshFailed

	bundle, err := f.session.Authenticate(context.Background())
	require.NoError(t, err)
	require.Equal(t, loginBundle, bundle)
	require.Equal(t, append([]string{"refresh:STORED:remid=R1"}, loginCalls...), f.identity.calls)
	require.Equal(t, loginBundle, f.saved(t))
}

func TestAuthenticateUnusableCookies(t *testing.T) {
	cases := map[string]credstore.SessionBundle{
		"no cookies": {
			AccessToken:       "STORED",
			AccessTokenExpiry: testNow.Add(-time.Minute),
		},
		"expired cookie": {
			AccessToken:       "STORED",
			AccessTokenExpiry: testNow.Add(-time.Minute),
			Cookie:            "remid=R1",
			CookieExpiry:      testNow.Add(-time.Second),
		},
	}
	for name, stored := range cases {
		t.Run(name, func(t *testing.T) {
			f := newSessionFixture(t, &stored)
			bundle, err := f.session.Authenticate(context.Background())
			require.NoError(t, err)
			require.Equal(t, loginBundle, bundle)
			require.Equal(t, loginCalls, f.identity.calls, "refresh should not be attempted")
		})
	}
}

func TestAuthenticateMalformedStore(t *testing.T) {
	f := newSessionFixture(t, nil)
	require.NoError(t, os.WriteFile(f.store.Path(), []byte("{not json"), 0600))

	bundle, err := f.session.Authenticate(context.Background())
	require.NoError(t, err)
	require.Equal(t, loginBundle, bundle)
}

func TestLoginErrors(t *testing.T) {
	f := newSessionFixture(t, nil)
	promptErr := errors.New("stdin closed")
	f.session.prompt = func(context.Context) (string, error) {
		return "", promptErr
	}
	_, err := f.session.Authenticate(context.Background())
	require.ErrorIs(t, err, promptErr)

	f.session.prompt = func(context.Context) (string, error) {
		return "000000", nil
	}
	_, err = f.session.Authenticate(context.Background())
	require.ErrorIs(t, err, identity.ErrInvalidCredential)

	loaded, err := f.store.Load(context.Background())
	require.NoError(t, err)
	require.Nil(t, loaded, "nothing should be saved after a failed login")
}

func TestLoad(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/connect/auth", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "STORED", r.URL.Query().Get("access_token"))
		fmt.Fprint(w, `{"code": "C"}`)
	})
	mux.HandleFunc("/pids/me", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"pid": {"pidId": 1}}`)
	})
	mux.HandleFunc("/accountinfo", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"userAccountInfo": {"personas": [{"personaId": 2}]}}`)
	})
	mux.HandleFunc("/ut/auth", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"sid": "SID"}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	stored := credstore.SessionBundle{
		AccessToken:       "STORED",
		AccessTokenExpiry: testNow.Add(time.Minute),
	}
	f := newSessionFixture(t, &stored)
	endpoints := utas.DefaultEndpoints()
	endpoints.Auth = srv.URL + "/connect/auth"
	endpoints.Pids = srv.URL + "/pids/me"
	endpoints.AccountInfo = srv.URL + "/accountinfo"
	endpoints.SessionAuth = srv.URL + "/ut/auth"
	f.session.game = utas.NewClient(utas.ClientOptions{Endpoints: endpoints})

	game, err := f.session.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, "SID", game.Session())
}
