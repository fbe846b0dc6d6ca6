package utas

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel/codes"
)

type authCodeResponse struct {
	Code string `json:"code"`
}

func (c *Client) authCode(ctx context.Context, accessToken string) (string, error) {
	ctx, span := tracer.Start(ctx, "authCode")
	defer span.End()

	var out authCodeResponse
	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"client_id":     c.opts.Game.ClientID,
			"redirect_uri":  nucleusRedirect,
			"response_type": "code",
			"access_token":  accessToken,
		}).
		Get(c.opts.Endpoints.Auth)
	err = decode(res, err, &out)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch auth code")
		return "", err
	}
	if out.Code == "" {
		span.SetStatus(codes.Error, "missing auth code")
		return "", fmt.Errorf("response did not contain an auth code")
	}
	return out.Code, nil
}

type pidsResponse struct {
	Pid struct {
		PidID json.Number `json:"pidId"`
	} `json:"pid"`
}

func (c *Client) pidID(ctx context.Context, accessToken string) (string, error) {
	ctx, span := tracer.Start(ctx, "pidID")
	defer span.End()

	var out pidsResponse
	res, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		Get(c.opts.Endpoints.Pids)
	err = decode(res, err, &out)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch pid")
		return "", err
	}
	if out.Pid.PidID == "" {
		span.SetStatus(codes.Error, "missing pid")
		return "", fmt.Errorf("response did not contain a pidId")
	}
	return out.Pid.PidID.String(), nil
}

type accountInfoResponse struct {
	UserAccountInfo struct {
		Personas []struct {
			PersonaID json.Number `json:"personaId"`
		} `json:"personas"`
	} `json:"userAccountInfo"`
}

func (c *Client) personaID(ctx context.Context, pidID, code string) (json.Number, error) {
	ctx, span := tracer.Start(ctx, "personaID")
	defer span.End()

	var out accountInfoResponse
	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"filterConsoleLogin":    "true",
			"sku":                   c.opts.Game.Sku,
			"returningUserGameYear": c.opts.Game.ReturningUserGameYear,
			"clientVersion":         "1",
		}).
		SetHeaders(map[string]string{
			"Easw-Session-Data-Nucleus-Id": pidID,
			"Nucleus-Access-Code":          code,
			"Nucleus-Redirect-Url":         nucleusRedirect,
		}).
		Get(c.opts.Endpoints.AccountInfo)
	err = decode(res, err, &out)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch account info")
		return "", err
	}
	personas := out.UserAccountInfo.Personas
	if len(personas) == 0 || personas[0].PersonaID == "" {
		span.SetStatus(codes.Error, "no persona")
		return "", fmt.Errorf("account has no persona")
	}
	return personas[0].PersonaID, nil
}

type sessionIdentification struct {
	AuthCode    string `json:"authCode"`
	RedirectURL string `json:"redirectUrl"`
}

type sessionAuthRequest struct {
	ClientVersion    int                   `json:"clientVersion"`
	GameSku          string                `json:"gameSku"`
	Identification   sessionIdentification `json:"identification"`
	IsReadOnly       bool                  `json:"isReadOnly"`
	Locale           string                `json:"locale"`
	Method           string                `json:"method"`
	NucleusPersonaID json.Number           `json:"nucleusPersonaId"`
	PriorityLevel    int                   `json:"priorityLevel"`
	Sku              string                `json:"sku"`
}

func (c *Client) sessionAuth(ctx context.Context, code string, personaID json.Number) (string, error) {
	ctx, span := tracer.Start(ctx, "sessionAuth")
	defer span.End()

	var out struct {
		Sid string `json:"sid"`
	}
	res, err := c.http.R().
		SetContext(ctx).
		SetBody(sessionAuthRequest{
			ClientVersion: 1,
			GameSku:       c.opts.Game.GameSku,
			Identification: sessionIdentification{
				AuthCode:    code,
				RedirectURL: nucleusRedirect,
			},
			IsReadOnly:       false,
			Locale:           c.opts.Game.Locale,
			Method:           "authcode",
			NucleusPersonaID: personaID,
			PriorityLevel:    4,
			Sku:              c.opts.Game.Sku,
		}).
		Post(c.opts.Endpoints.SessionAuth)
	err = decode(res, err, &out)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to authenticate session")
		return "", err
	}
	if out.Sid == "" {
		span.SetStatus(codes.Error, "missing sid")
		return "", fmt.Errorf("response did not contain a sid")
	}
	return out.Sid, nil
}

// both runs a and b concurrently and waits for the two of them.
func both(a, b func()) {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		a()
	}()
	go func() {
		defer wg.Done()
		b()
	}()
	wg.Wait()
}

// ExchangeSession trades an access token for a game session id.
func (c *Client) ExchangeSession(ctx context.Context, accessToken string) (string, error) {
	ctx, span := tracer.Start(ctx, "Client:ExchangeSession")
	defer span.End()

	var (
		code     string
		codeErr  error
		pidID    string
		pidIDErr error
	)
	both(
		func() { code, codeErr = c.authCode(ctx, accessToken) },
		func() { pidID, pidIDErr = c.pidID(ctx, accessToken) },
	)
	if codeErr != nil {
		span.SetStatus(codes.Error, "failed to fetch auth code")
		return "", fmt.Errorf("%w: auth code: %w", ErrSessionExchange, codeErr)
	}
	if pidIDErr != nil {
		span.SetStatus(codes.Error, "failed to fetch pid")
		return "", fmt.Errorf("%w: pid: %w", ErrSessionExchange, pidIDErr)
	}
	slog.DebugContext(ctx, "code and pid received", "pid", pidID)

	var (
		newCode      string
		newCodeErr   error
		personaID    json.Number
		personaIDErr error
	)
	both(
		func() { newCode, newCodeErr = c.authCode(ctx, accessToken) },
		func() { personaID, personaIDErr = c.personaID(ctx, pidID, code) },
	)
	if newCodeErr != nil {
		span.SetStatus(codes.Error, "failed to fetch second auth code")
		return "", fmt.Errorf("%w: auth code: %w", ErrSessionExchange, newCodeErr)
	}
	if personaIDErr != nil {
		span.SetStatus(codes.Error, "failed to fetch persona")
		return "", fmt.Errorf("%w: account info: %w", ErrSessionExchange, personaIDErr)
	}
	slog.DebugContext(ctx, "account info and new code received", "persona", personaID.String())

	sid, err := c.sessionAuth(ctx, newCode, personaID)
	if err != nil {
		span.SetStatus(codes.Error, "failed to authenticate session")
		return "", fmt.Errorf("%w: %w", ErrSessionExchange, err)
	}
	slog.InfoContext(ctx, "game session obtained")
	return sid, nil
}
