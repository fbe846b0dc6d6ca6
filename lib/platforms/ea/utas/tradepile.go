package utas

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/codes"
)

// Tradepile returns every entry of the transfer list.
func (c *Client) Tradepile(ctx context.Context) ([]AuctionInfo, error) {
	ctx, span := tracer.Start(ctx, "Client:Tradepile")
	defer span.End()

	req, err := c.game()
	if err != nil {
		return nil, err
	}
	var out struct {
		AuctionInfo []AuctionInfo `json:"auctionInfo"`
	}
	res, err := req.SetContext(ctx).Get(c.opts.Endpoints.Tradepile)
	err = decode(res, err, &out)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch tradepile")
		return nil, err
	}
	return out.AuctionInfo, nil
}

func HasExpired(entries []AuctionInfo) bool {
	for _, e := range entries {
		if e.Expired() {
			return true
		}
	}
	return false
}

// AvailablePlayers are the unlisted players of the transfer list that
// have a catalog entry.
func AvailablePlayers(entries []AuctionInfo, catalog Catalog) []Player {
	items := make([]ItemData, 0, len(entries))
	for _, e := range entries {
		if e.Available() {
			items = append(items, e.ItemData)
		}
	}
	return Join(items, catalog)
}

func (c *Client) AvailableTradepilePlayers(ctx context.Context, catalog Catalog) ([]Player, error) {
	entries, err := c.Tradepile(ctx)
	if err != nil {
		return nil, err
	}
	return AvailablePlayers(entries, catalog), nil
}

// Relist puts every expired item of the transfer list back on the market
// with its previous prices.
func (c *Client) Relist(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "Client:Relist")
	defer span.End()

	req, err := c.game()
	if err != nil {
		return err
	}
	res, err := req.SetContext(ctx).Put(c.opts.Endpoints.AuctionHouse + "/relist")
	err = decode(res, err, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to relist")
		return err
	}
	slog.InfoContext(ctx, "relisted expired items")
	return nil
}
