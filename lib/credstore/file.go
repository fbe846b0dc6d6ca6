package credstore

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// on-disk layout: token expiry in epoch milliseconds, cookie expiry in
// (possibly fractional) epoch seconds
type fileBundle struct {
	AccessToken struct {
		Token     string      `json:"token" validate:"required"`
		ExpiresIn json.Number `json:"expires_in" validate:"omitempty,numeric"`
	} `json:"access_token"`
	Cookies struct {
		Cookie    string      `json:"cookie"`
		ExpiresIn json.Number `json:"expires_in" validate:"omitempty,numeric"`
	} `json:"cookies"`
}

func parseNumber(n json.Number) (float64, error) {
	if n == "" {
		return 0, nil
	}
	return strconv.ParseFloat(n.String(), 64)
}

func (f fileBundle) bundle() (SessionBundle, error) {
	err := validate.Struct(f)
	if err != nil {
		return SessionBundle{}, err
	}
	tokenMs, err := parseNumber(f.AccessToken.ExpiresIn)
	if err != nil {
		return SessionBundle{}, err
	}
	cookieSeconds, err := parseNumber(f.Cookies.ExpiresIn)
	if err != nil {
		return SessionBundle{}, err
	}
	return SessionBundle{
		AccessToken:       f.AccessToken.Token,
		AccessTokenExpiry: fromUnixMilli(int64(tokenMs)),
		Cookie:            f.Cookies.Cookie,
		CookieExpiry:      fromUnixMilli(int64(math.Round(cookieSeconds * 1000))),
	}, nil
}

func newFileBundle(b SessionBundle) fileBundle {
	var f fileBundle
	f.AccessToken.Token = b.AccessToken
	f.AccessToken.ExpiresIn = json.Number(strconv.FormatInt(toUnixMilli(b.AccessTokenExpiry), 10))
	f.Cookies.Cookie = b.Cookie
	f.Cookies.ExpiresIn = json.Number(strconv.FormatFloat(
		float64(toUnixMilli(b.CookieExpiry))/1000, 'f', -1, 64,
	))
	return f
}

// FileStore keeps the bundle in a json file.
type FileStore struct {
	path string
}

func NewFileStore(path string) FileStore {
	return FileStore{path: path}
}

func (s FileStore) Path() string {
	return s.path
}

func (s FileStore) Load(ctx context.Context) (*SessionBundle, error) {
	ctx, span := tracer.Start(ctx, "FileStore:Load")
	defer span.End()
	span.SetAttributes(attribute.String("path", s.path))

	contents, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		slog.DebugContext(ctx, "no stored session", "path", s.path)
		return nil, nil
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to read session file")
		return nil, err
	}

	var stored fileBundle
	err = json.Unmarshal(contents, &stored)
	if err != nil {
		span.SetStatus(codes.Error, "failed to parse session file")
		return nil, &ParseError{Source: s.path, Err: err}
	}
	bundle, err := stored.bundle()
	if err != nil {
		span.SetStatus(codes.Error, "invalid session file")
		return nil, &ParseError{Source: s.path, Err: err}
	}
	return &bundle, nil
}

// Save replaces the stored bundle, a reader never observes a partially
// written file.
func (s FileStore) Save(ctx context.Context, bundle SessionBundle) error {
	ctx, span := tracer.Start(ctx, "FileStore:Save")
	defer span.End()
	span.SetAttributes(attribute.String("path", s.path))

	err := bundle.Validate()
	if err != nil {
		span.SetStatus(codes.Error, "refusing to save invalid bundle")
		return err
	}

	data, err := json.MarshalIndent(newFileBundle(bundle), "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	err = writeAtomic(s.path, data)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to write session file")
		return err
	}
	slog.DebugContext(ctx, "session saved", "path", s.path, "token_expires_at", bundle.AccessTokenExpiry.Format(time.RFC3339))
	return nil
}

// writeAtomic writes to a temp file in the same directory, fsyncs it and
// renames it over path.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	err := os.MkdirAll(dir, 0700)
	if err != nil {
		return err
	}

	f, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := f.Name()
	cleanup := func() {
		_ = f.Close()
		_ = os.Remove(tmpPath)
	}

	_, err = f.Write(data)
	if err != nil {
		cleanup()
		return fmt.Errorf("write temp file: %w", err)
	}
	err = f.Sync()
	if err != nil {
		cleanup()
		return fmt.Errorf("sync temp file: %w", err)
	}
	err = f.Chmod(0600)
	if err != nil {
		cleanup()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	err = f.Close()
	if err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}

	err = os.Rename(tmpPath, path)
	if err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
