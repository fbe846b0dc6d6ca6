package utas

import (
	"context"
	"errors"
	"fmt"
	"futassist/lib/chrono"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// ClubSource is what the Fetcher reads the club from, *Client
// implements it.
type ClubSource interface {
	Catalog(ctx context.Context) (Catalog, error)
	ActiveSquadIDs(ctx context.Context) ([]int64, error)
	ClubPage(ctx context.Context, page ClubPageRequest) ([]ItemData, error)
}

const (
	DefaultPageSize   = 250
	DefaultMaxRetries = 3
)

// Fetcher pages through every player in the club that is not part of the
// active squad.
type Fetcher struct {
	Source     ClubSource
	PageSize   int
	MaxRetries int
	// wait between a failed page and its retry, zero retries at once
	RetryDelay time.Duration
}

type FetchReport struct {
	Players []Player
	// successfully fetched pages
	Pages int
	// consecutive failures at the time the fetch ended
	Retries int
	// true when the fetch gave up after MaxRetries failures, Players
	// then holds what was fetched up to that point
	Abandoned bool
	// the last page failure, set when Abandoned
	Err error
}

func (f Fetcher) pageSize() int {
	if f.PageSize <= 0 {
		return DefaultPageSize
	}
	return f.PageSize
}

func (f Fetcher) maxRetries() int {
	if f.MaxRetries <= 0 {
		return DefaultMaxRetries
	}
	return f.MaxRetries
}

// FetchClubPlayers downloads the catalog and the active squad once, then
// requests pages until one comes back short. A page that fails is retried
// at the same offset, the retry budget is shared by the whole run and
// restored after every successful page.
func (f Fetcher) FetchClubPlayers(ctx context.Context) (FetchReport, error) {
	ctx, span := tracer.Start(ctx, "Fetcher:FetchClubPlayers")
	defer span.End()

	catalog, err := f.Source.Catalog(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to fetch static players", "err", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch catalog")
		return FetchReport{}, fmt.Errorf("%w: %w", ErrMissingStaticCatalog, err)
	}

	exclude, err := f.Source.ActiveSquadIDs(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to fetch active squad", "err", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch active squad")
		return FetchReport{}, fmt.Errorf("fetch active squad: %w", err)
	}
	slog.DebugContext(ctx, "active squad fetched", "excluded", len(exclude))

	pageSize := f.pageSize()
	maxRetries := f.maxRetries()

	report := FetchReport{Players: []Player{}}
	offset := 0
	for {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}

		items, err := f.Source.ClubPage(ctx, ClubPageRequest{
			Exclude: exclude,
			Start:   offset,
			Count:   pageSize,
		})
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return report, err
			}

			report.Retries++
			batchErr := &FetchBatchError{Offset: offset, Attempt: report.Retries, Err: err}
			pageRetryCounter.Add(ctx, 1)
			slog.WarnContext(ctx, "failed to fetch club page", "page", report.Pages, "err", batchErr)

			if report.Retries >= maxRetries {
				report.Abandoned = true
				report.Err = batchErr
				span.RecordError(batchErr)
				span.SetAttributes(attribute.Bool("abandoned", true))
				slog.ErrorContext(
					ctx, "giving up on club pages",
					"fetched", len(report.Players),
					"err", batchErr,
				)
				return report, nil
			}
			err = chrono.Sleep(ctx, f.RetryDelay)
			if err != nil {
				return report, err
			}
			continue
		}

		for _, item := range items {
			if item.OnLoan() {
				continue
			}
			entry, ok := catalog.Lookup(item.AssetID)
			if !ok {
				continue
			}
			report.Players = append(report.Players, newPlayer(item, entry))
		}
		offset += len(items)
		report.Pages++
		report.Retries = 0

		slog.DebugContext(
			ctx, "club page processed",
			"page", report.Pages,
			"count", len(items),
			"total", len(report.Players),
		)

		if len(items) < pageSize {
			break
		}
	}

	span.SetAttributes(
		attribute.Int("pages", report.Pages),
		attribute.Int("players", len(report.Players)),
	)
	return report, nil
}
