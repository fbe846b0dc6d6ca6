package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"futassist/lib/htmlutil"
	"futassist/lib/oauth"
	"futassist/lib/restyutil"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-playground/validator/v10"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
)

const (
	verificationMarker = "We'll send a verification code to"
	codeSentMarker     = "Enter your code below"
)

type Credentials struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

var validate = validator.New()

// LoginChallenge is the state between triggering the 2FA email and
// submitting the code from it.
type LoginChallenge struct {
	URL     string
	Cookies string
}

type LoginResult struct {
	Token oauth.Token
	// Cookie request header for subsequent token refreshes
	Cookie string
	// zero when the provider did not say
	CookieExpiry time.Time
}

// BeginLogin submits the credentials and asks for a verification code to
// be sent by email.
func (c *Client) BeginLogin(ctx context.Context, creds Credentials) (LoginChallenge, error) {
	ctx, span := tracer.Start(ctx, "Client:BeginLogin")
	defer span.End()

	err := validate.Struct(creds)
	if err != nil {
		span.SetStatus(codes.Error, "invalid credentials")
		return LoginChallenge{}, err
	}

	loginURL, cookies, err := c.loginLocation(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get login location")
		return LoginChallenge{}, err
	}
	slog.DebugContext(ctx, "got login location", "url", loginURL)

	nonce, err := oauth.GenerateClientNonce()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to generate client nonce")
		return LoginChallenge{}, err
	}

	client := c.newHttp(nil, true)
	res, err := client.R().
		SetContext(ctx).
		SetHeader("cookie", cookies).
		SetFormData(map[string]string{
			"email":                     creds.Email,
			"password":                  creds.Password,
			"cid":                       nonce,
			"showAgeUp":                 "true",
			"loginMethod":               "emailPassword",
			"_eventId":                  "submit",
			"_rememberMe":               "on",
			"rememberMe":                "on",
			"thirdPartyCaptchaResponse": "",
		}).
		Post(loginURL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to submit credentials")
		return LoginChallenge{}, err
	}
	if !strings.Contains(res.String(), verificationMarker) {
		span.SetStatus(codes.Error, "no verification challenge")
		return LoginChallenge{}, ErrUnsupportedLoginFlow
	}

	challengeURL, err := c.triggerChallenge(ctx, client, restyutil.FinalURL(res), cookies)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to trigger 2FA")
		return LoginChallenge{}, err
	}
	slog.InfoContext(ctx, "2FA code requested")

	return LoginChallenge{
		URL:     challengeURL,
		Cookies: cookies,
	}, nil
}

func (c *Client) loginLocation(ctx context.Context) (string, string, error) {
	jar, err := newJar()
	if err != nil {
		return "", "", err
	}
	res, err := c.newHttp(jar, true).R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"response_type": "token",
			"client_id":     c.opts.ClientID,
			"release_type":  "prod",
		}).
		Get(c.opts.AuthURL)
	if err != nil {
		return "", "", err
	}

	location := res.Header().Get("selflocation")
	if location == "" {
		return "", "", fmt.Errorf("%w: missing selflocation header", ErrAuthFlow)
	}
	locationURL, err := url.Parse(location)
	if err != nil {
		return "", "", fmt.Errorf("%w: invalid selflocation header: %s", ErrAuthFlow, err.Error())
	}
	cookies := oauth.CookieHeader(jar.Cookies(locationURL))
	if cookies == "" {
		return "", "", fmt.Errorf("%w: no cookies for login location", ErrAuthFlow)
	}
	return location, cookies, nil
}

func (c *Client) triggerChallenge(ctx context.Context, client *resty.Client, postLoginURL, cookies string) (string, error) {
	ctx, span := tracer.Start(ctx, "triggerChallenge")
	defer span.End()

	res, err := client.R().
		SetContext(ctx).
		SetHeader("cookie", cookies).
		SetFormData(map[string]string{
			"codeType": "EMAIL",
			"_eventId": "submit",
		}).
		Post(postLoginURL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to request code")
		return "", err
	}
	if !strings.Contains(res.String(), codeSentMarker) {
		span.SetStatus(codes.Error, ErrChallengeTriggerFailed.Error())
		return "", ErrChallengeTriggerFailed
	}
	return restyutil.FinalURL(res), nil
}

var windowLocationRegex = regexp.MustCompile(`window\.location = "(.*)"`)

func findRedirect(body []byte) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err == nil {
		location, found := htmlutil.FindInScripts(doc, windowLocationRegex)
		if found {
			return location, true
		}
	}
	groups := windowLocationRegex.FindSubmatch(body)
	if len(groups) < 2 || len(groups[1]) == 0 {
		return "", false
	}
	return string(groups[1]), true
}

// CompleteLogin submits the emailed code and exchanges the resulting
// redirect for an access token and refresh cookies.
func (c *Client) CompleteLogin(ctx context.Context, code string, challenge LoginChallenge) (LoginResult, error) {
	ctx, span := tracer.Start(ctx, "Client:CompleteLogin")
	defer span.End()

	res, err := c.newHttp(nil, true).R().
		SetContext(ctx).
		SetHeader("cookie", challenge.Cookies).
		SetFormData(map[string]string{
			"oneTimeCode":      strings.TrimSpace(code),
			"_eventId":         "submit",
			"_trustThisDevice": "on",
			"trustThisDevice":  "on",
		}).
		Post(challenge.URL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to submit code")
		return LoginResult{}, err
	}

	tokenURL, found := findRedirect(res.Body())
	if !found {
		slog.WarnContext(ctx, "verification code was not accepted")
		span.SetStatus(codes.Error, ErrInvalidCredential.Error())
		return LoginResult{}, ErrInvalidCredential
	}

	result, err := c.fetchToken(ctx, tokenURL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch access token")
		return LoginResult{}, err
	}
	loginCounter.Add(ctx, 1)
	slog.InfoContext(
		ctx, "logged in",
		"token_expires_at", result.Token.ExpiresAt,
		"cookie_expires_at", result.CookieExpiry,
	)
	return result, nil
}

func (c *Client) fetchToken(ctx context.Context, tokenURL string) (LoginResult, error) {
	ctx, span := tracer.Start(ctx, "fetchToken")
	defer span.End()

	parsed, err := url.Parse(tokenURL)
	if err != nil {
		return LoginResult{}, fmt.Errorf("%w: invalid token url: %s", ErrAuthFlow, err.Error())
	}
	jar, err := newJar()
	if err != nil {
		return LoginResult{}, err
	}
	res, err := c.newHttp(jar, false).R().
		SetContext(ctx).
		Get(tokenURL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to request token")
		return LoginResult{}, err
	}

	var values oauth.Values
	location := res.Header().Get("location")
	span.SetAttributes(attribute.Bool("redirected", location != ""))
	if location != "" {
		values = oauth.ParseFragment(location)
	} else {
		values, err = valuesFromJSON(res.Body())
		if err != nil {
			span.SetStatus(codes.Error, "unparsable token response")
			return LoginResult{}, fmt.Errorf("%w: unparsable token response: %s", ErrAuthFlow, err.Error())
		}
	}

	now := c.opts.Clock.Now()
	token, err := values.Token(now)
	if err != nil {
		span.SetStatus(codes.Error, "no token in response")
		return LoginResult{}, fmt.Errorf("%w: %s", ErrAuthFlow, err.Error())
	}

	return LoginResult{
		Token:        token,
		Cookie:       oauth.CookieHeader(jar.Cookies(parsed)),
		CookieExpiry: oauth.CookieExpiry(res.Cookies(), c.opts.RefreshCookie, now),
	}, nil
}

// valuesFromJSON flattens a json object into string values, numbers are
// kept in their literal form.
func valuesFromJSON(body []byte) (oauth.Values, error) {
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()
	var raw map[string]any
	err := decoder.Decode(&raw)
	if err != nil {
		return nil, err
	}
	values := oauth.Values{}
	for key, value := range raw {
		if value == nil {
			continue
		}
		values[key] = fmt.Sprint(value)
	}
	return values, nil
}

func refreshOutcome(ok bool) metric.AddOption {
	return metric.WithAttributes(attribute.Bool("ok", ok))
}
