package identity

import (
	"context"
	"futassist/lib/oauth"
	"log/slog"

	"go.opentelemetry.io/otel/codes"
)

// RefreshToken trades the stored cookies for a new access token. The
// parameters of the redirect fragment are returned exactly as found, on
// failure the returned Values are empty.
func (c *Client) RefreshToken(ctx context.Context, accessToken, cookieHeader string) (oauth.Values, error) {
	ctx, span := tracer.Start(ctx, "Client:RefreshToken")
	defer span.End()

	res, err := c.newHttp(nil, false).R().
		SetContext(ctx).
		SetHeader("cookie", cookieHeader).
		SetQueryParams(map[string]string{
			"client_id":     c.opts.ClientID,
			"response_type": "token",
			"hide_create":   "true",
			"redirect_uri":  c.opts.RedirectURI,
			"scope":         c.opts.Scope,
			"accessToken":   accessToken,
		}).
		Get(c.opts.AuthURL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to request refresh")
		refreshCounter.Add(ctx, 1, refreshOutcome(false))
		return oauth.Values{}, err
	}

	location := res.Header().Get("location")
	values := oauth.ParseFragment(location)
	if values.AccessToken() == "" {
		slog.WarnContext(ctx, "token refresh failed", "status", res.StatusCode(), "has_location", location != "")
		span.SetStatus(codes.Error, ErrTokenRefreshFailed.Error())
		refreshCounter.Add(ctx, 1, refreshOutcome(false))
		return oauth.Values{}, ErrTokenRefreshFailed
	}

	refreshCounter.Add(ctx, 1, refreshOutcome(true))
	slog.InfoContext(ctx, "access token refreshed")
	return values, nil
}
