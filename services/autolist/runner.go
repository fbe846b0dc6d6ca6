package autolist

import (
	"context"
	"errors"
	"futassist/lib/chrono"
	"futassist/lib/platforms/ea/utas"
	"futassist/lib/pricing"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const DefaultListingDelay = 10 * time.Second

// Market is implemented by a session-bound *utas.Client.
type Market interface {
	Catalog(ctx context.Context) (utas.Catalog, error)
	Tradepile(ctx context.Context) ([]utas.AuctionInfo, error)
	Relist(ctx context.Context) error
	ListItem(ctx context.Context, listing utas.ListingRequest) error
}

type Runner struct {
	Market Market
	Prices pricing.PriceSource
	Policy PricePolicy
	// wait between two submissions
	Delay time.Duration
}

type RunOptions struct {
	// price every player but do not submit anything
	DryRun bool
	// stop after this many submissions, 0 for no limit
	Limit int
}

// Outcome is what happened to a single player of the transfer list.
type Outcome struct {
	Player  utas.Player
	Listing utas.ListingRequest
	Err     error
}

type RunReport struct {
	Relisted bool
	Listed   []Outcome
	// no usable price was found
	Skipped []Outcome
	// the listing was rejected
	Failed []Outcome
}

// ListTradepile relists expired items and lists every unlisted player of
// the transfer list at its market price. A player that cannot be priced or
// listed does not stop the run.
func (r Runner) ListTradepile(ctx context.Context, opts RunOptions) (RunReport, error) {
	ctx, span := tracer.Start(ctx, "Runner:ListTradepile")
	defer span.End()

	var report RunReport

	catalog, err := r.Market.Catalog(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch catalog")
		return report, errors.Join(utas.ErrMissingStaticCatalog, err)
	}
	entries, err := r.Market.Tradepile(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch tradepile")
		return report, err
	}

	if utas.HasExpired(entries) {
		err = r.Market.Relist(ctx)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to relist")
			return report, err
		}
		report.Relisted = true
	}

	players := utas.AvailablePlayers(entries, catalog)
	slog.InfoContext(ctx, "available players on transfer list", "count", len(players))
	span.SetAttributes(attribute.Int("available", len(players)))

	submitted := 0
	for _, player := range players {
		if opts.Limit > 0 && submitted >= opts.Limit {
			break
		}
		if ctx.Err() != nil {
			return report, ctx.Err()
		}

		outcome := Outcome{Player: player}
		price, err := r.Prices.PlayerPrice(ctx, pricing.PriceQuery{
			Name:     player.Name,
			Rating:   player.Rating,
			Position: player.Position,
		})
		if err == nil {
			outcome.Listing, err = r.Policy.Listing(player.ID, price)
		}
		if err != nil {
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			slog.WarnContext(ctx, "skipping player", "player", player.String(), "err", err)
			outcome.Err = err
			report.Skipped = append(report.Skipped, outcome)
			continue
		}

		if opts.DryRun {
			report.Listed = append(report.Listed, outcome)
			continue
		}

		if submitted > 0 {
			slog.DebugContext(ctx, "waiting before next listing", "delay", r.Delay)
			err = chrono.Sleep(ctx, r.Delay)
			if err != nil {
				return report, err
			}
		}
		submitted++

		err = r.Market.ListItem(ctx, outcome.Listing)
		var submitErr *utas.ListingSubmitError
		if errors.As(err, &submitErr) {
			slog.WarnContext(ctx, "listing rejected", "player", player.String(), "err", err)
			outcome.Err = err
			report.Failed = append(report.Failed, outcome)
			continue
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to list item")
			return report, err
		}
		report.Listed = append(report.Listed, outcome)
	}

	slog.InfoContext(
		ctx, "listing run finished",
		"listed", len(report.Listed),
		"skipped", len(report.Skipped),
		"failed", len(report.Failed),
	)
	return report, nil
}
