package autolist

import (
	"context"
	"fmt"
	"futassist/lib/chrono"
	"futassist/lib/credstore"
	"futassist/lib/oauth"
	"futassist/lib/platforms/ea/identity"
	"futassist/lib/platforms/ea/utas"
	"log/slog"

	"go.opentelemetry.io/otel/codes"
)

// Authenticator is implemented by *identity.Client.
type Authenticator interface {
	BeginLogin(ctx context.Context, creds identity.Credentials) (identity.LoginChallenge, error)
	CompleteLogin(ctx context.Context, code string, challenge identity.LoginChallenge) (identity.LoginResult, error)
	RefreshToken(ctx context.Context, accessToken, cookieHeader string) (oauth.Values, error)
}

// CodePrompt asks whoever is running the program for the emailed 2FA
// code.
type CodePrompt func(ctx context.Context) (string, error)

type SessionOptions struct {
	Identity    Authenticator
	Game        *utas.Client
	Store       credstore.Store
	Credentials identity.Credentials
	Prompt      CodePrompt
	Clock       chrono.Clock
}

// Session owns the credential lifecycle of a single run.
type Session struct {
	identity Authenticator
	game     *utas.Client
	store    credstore.Store
	creds    identity.Credentials
	prompt   CodePrompt
	clock    chrono.Clock
}

func NewSession(opts SessionOptions) *Session {
	clock := opts.Clock
	if clock == nil {
		clock = chrono.SystemClock{}
	}
	return &Session{
		identity: opts.Identity,
		game:     opts.Game,
		store:    opts.Store,
		creds:    opts.Credentials,
		prompt:   opts.Prompt,
		clock:    clock,
	}
}

// Load makes sure a usable access token exists and exchanges it for a game
// session, the returned client is bound to that session.
func (s *Session) Load(ctx context.Context) (*utas.Client, error) {
	ctx, span := tracer.Start(ctx, "Session:Load")
	defer span.End()

	bundle, err := s.Authenticate(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to authenticate")
		return nil, err
	}

	slog.InfoContext(ctx, "fetched tokens, getting session id")
	sid, err := s.game.ExchangeSession(ctx, bundle.AccessToken)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to exchange session")
		return nil, err
	}
	s.game.SetSession(sid)
	return s.game, nil
}

// Authenticate returns the stored bundle if its token is still valid,
// refreshing or logging in again otherwise. Every new bundle is saved
// before it is returned.
func (s *Session) Authenticate(ctx context.Context) (credstore.SessionBundle, error) {
	ctx, span := tracer.Start(ctx, "Session:Authenticate")
	defer span.End()

	bundle, err := s.store.Load(ctx)
	if credstore.IsParseError(err) {
		slog.WarnContext(ctx, "ignoring unreadable stored session", "err", err)
		bundle = nil
	} else if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to load stored session")
		return credstore.SessionBundle{}, err
	}

	if bundle == nil {
		slog.InfoContext(ctx, "no access token found")
		return s.Login(ctx)
	}

	now := s.clock.Now()
	if !bundle.TokenExpired(now) {
		return *bundle, nil
	}
	if !bundle.CanRefresh(now) {
		slog.WarnContext(ctx, "token expired and stored cookies are unusable, logging in again")
		return s.Login(ctx)
	}

	slog.InfoContext(ctx, "token expired, refreshing")
	refreshed, err := s.refresh(ctx, *bundle)
	if err != nil {
		slog.WarnContext(ctx, "token refresh failed, logging in again", "err", err)
		return s.Login(ctx)
	}
	return refreshed, nil
}

func (s *Session) refresh(ctx context.Context, bundle credstore.SessionBundle) (credstore.SessionBundle, error) {
	values, err := s.identity.RefreshToken(ctx, bundle.AccessToken, bundle.Cookie)
	if err != nil {
		return credstore.SessionBundle{}, err
	}
	token, err := values.Token(s.clock.Now())
	if err != nil {
		return credstore.SessionBundle{}, fmt.Errorf("%w: %s", identity.ErrTokenRefreshFailed, err.Error())
	}

	bundle.AccessToken = token.AccessToken
	bundle.AccessTokenExpiry = token.ExpiresAt
	err = s.store.Save(ctx, bundle)
	if err != nil {
		return credstore.SessionBundle{}, err
	}
	slog.InfoContext(ctx, "access token refreshed")
	return bundle, nil
}

// Login performs the full interactive login and saves its result.
func (s *Session) Login(ctx context.Context) (credstore.SessionBundle, error) {
	ctx, span := tracer.Start(ctx, "Session:Login")
	defer span.End()

	if s.prompt == nil {
		return credstore.SessionBundle{}, fmt.Errorf("login requires a 2FA code prompt")
	}

	challenge, err := s.identity.BeginLogin(ctx, s.creds)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to begin login")
		return credstore.SessionBundle{}, err
	}

	slog.InfoContext(ctx, "two factor authentication requested")
	code, err := s.prompt(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to read 2FA code")
		return credstore.SessionBundle{}, err
	}

	result, err := s.identity.CompleteLogin(ctx, code, challenge)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to complete login")
		return credstore.SessionBundle{}, err
	}

	bundle := credstore.SessionBundle{
		AccessToken:       result.Token.AccessToken,
		AccessTokenExpiry: result.Token.ExpiresAt,
		Cookie:            result.Cookie,
		CookieExpiry:      result.CookieExpiry,
	}
	err = s.store.Save(ctx, bundle)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to save session")
		return credstore.SessionBundle{}, err
	}
	return bundle, nil
}
