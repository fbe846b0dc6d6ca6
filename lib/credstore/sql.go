package credstore

import (
	"context"
	"database/sql"
	"errors"
	"futassist/lib/credstore/db"
	"time"

	"go.opentelemetry.io/otel/codes"
)

// SQLStore keeps the bundle in a single row of a sqlite or libsql
// database.
type SQLStore struct {
	db *sql.DB
}

// NewSQLStore creates the schema if it does not exist yet.
func NewSQLStore(ctx context.Context, database *sql.DB) (SQLStore, error) {
	_, err := database.ExecContext(ctx, db.Schema)
	if err != nil {
		return SQLStore{}, err
	}
	return SQLStore{db: database}, nil
}

func (s SQLStore) Load(ctx context.Context) (*SessionBundle, error) {
	ctx, span := tracer.Start(ctx, "SQLStore:Load")
	defer span.End()

	var (
		bundle         SessionBundle
		tokenExpiresAt int64
		cookieExpires  int64
	)
	err := s.db.QueryRowContext(
		ctx,
		`select access_token, access_token_expires_at, cookie, cookie_expires_at
		from session_bundle where id = 1`,
	).Scan(&bundle.AccessToken, &tokenExpiresAt, &bundle.Cookie, &cookieExpires)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to query session bundle")
		return nil, err
	}

	bundle.AccessTokenExpiry = fromUnixMilli(tokenExpiresAt)
	bundle.CookieExpiry = fromUnixMilli(cookieExpires)
	err = bundle.Validate()
	if err != nil {
		span.SetStatus(codes.Error, "invalid stored bundle")
		return nil, &ParseError{Source: "session_bundle", Err: err}
	}
	return &bundle, nil
}

func (s SQLStore) Save(ctx context.Context, bundle SessionBundle) error {
	ctx, span := tracer.Start(ctx, "SQLStore:Save")
	defer span.End()

	err := bundle.Validate()
	if err != nil {
		span.SetStatus(codes.Error, "refusing to save invalid bundle")
		return err
	}

	_, err = s.db.ExecContext(
		ctx,
		`insert into session_bundle (
			id, access_token, access_token_expires_at, cookie, cookie_expires_at, updated_at
		) values (1, ?, ?, ?, ?, ?)
		on conflict (id) do update set
			access_token = excluded.access_token,
			access_token_expires_at = excluded.access_token_expires_at,
			cookie = excluded.cookie,
			cookie_expires_at = excluded.cookie_expires_at,
			updated_at = excluded.updated_at`,
		bundle.AccessToken,
		toUnixMilli(bundle.AccessTokenExpiry),
		bundle.Cookie,
		toUnixMilli(bundle.CookieExpiry),
		time.Now().Unix(),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to upsert session bundle")
		return err
	}
	return nil
}
