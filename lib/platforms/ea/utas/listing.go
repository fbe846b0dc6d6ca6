package utas

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
)

const DefaultListingDuration = 3600

type listingItem struct {
	ID int64 `json:"id"`
}

type listingBody struct {
	BuyNowPrice int         `json:"buyNowPrice"`
	StartingBid int         `json:"startingBid"`
	Duration    int         `json:"duration"`
	ItemData    listingItem `json:"itemData"`
}

// ListItem puts an item on the transfer market. It is not retried.
// Failures of the submission are returned as a *ListingSubmitError. A
// client without a session returns ErrNoSession unwrapped instead, since
// it is not specific to the item and every later listing would fail the
// same way.
func (c *Client) ListItem(ctx context.Context, listing ListingRequest) error {
	ctx, span := tracer.Start(ctx, "Client:ListItem")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("item_id", listing.ItemID),
		attribute.Int("buy_now_price", listing.BuyNowPrice),
	)

	req, err := c.game()
	if err != nil {
		return err
	}
	duration := listing.Duration
	if duration <= 0 {
		duration = DefaultListingDuration
	}

	res, err := req.
		SetContext(ctx).
		SetBody(listingBody{
			BuyNowPrice: listing.BuyNowPrice,
			StartingBid: listing.StartingBid,
			Duration:    duration,
			ItemData:    listingItem{ID: listing.ItemID},
		}).
		Post(c.opts.Endpoints.AuctionHouse)
	err = decode(res, err, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to submit listing")
		listingCounter.Add(ctx, 1, metric.WithAttributes(attribute.Bool("ok", false)))
		return &ListingSubmitError{ItemID: listing.ItemID, Err: err}
	}

	listingCounter.Add(ctx, 1, metric.WithAttributes(attribute.Bool("ok", true)))
	slog.InfoContext(
		ctx, "listed item",
		"item_id", listing.ItemID,
		"starting_bid", listing.StartingBid,
		"buy_now_price", listing.BuyNowPrice,
	)
	return nil
}
