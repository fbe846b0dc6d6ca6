package utas

import (
	"context"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type squadResponse struct {
	Players []struct {
		ItemData ItemData `json:"itemData"`
	} `json:"players"`
}

// ActiveSquadIDs returns the resource ids of the players in the active
// squad.
func (c *Client) ActiveSquadIDs(ctx context.Context) ([]int64, error) {
	ctx, span := tracer.Start(ctx, "Client:ActiveSquadIDs")
	defer span.End()

	req, err := c.game()
	if err != nil {
		return nil, err
	}
	var out squadResponse
	res, err := req.SetContext(ctx).Get(c.opts.Endpoints.Squad)
	err = decode(res, err, &out)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch active squad")
		return nil, err
	}

	ids := make([]int64, 0, len(out.Players))
	for _, p := range out.Players {
		ids = append(ids, p.ItemData.ResourceID)
	}
	return ids, nil
}

type ClubPageRequest struct {
	// excluded from the results by definition id
	Exclude []int64
	Start   int
	Count   int
}

type clubRequest struct {
	Type    string `json:"type"`
	Excldef string `json:"excldef"`
	Count   int    `json:"count"`
	Start   int    `json:"start"`
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}

// ClubPage fetches a single page of the player items in the club.
func (c *Client) ClubPage(ctx context.Context, page ClubPageRequest) ([]ItemData, error) {
	ctx, span := tracer.Start(ctx, "Client:ClubPage")
	defer span.End()
	span.SetAttributes(
		attribute.Int("start", page.Start),
		attribute.Int("count", page.Count),
	)

	req, err := c.game()
	if err != nil {
		return nil, err
	}
	var out struct {
		ItemData []ItemData `json:"itemData"`
	}
	res, err := req.
		SetContext(ctx).
		SetBody(clubRequest{
			Type:    "player",
			Excldef: joinIDs(page.Exclude),
			Count:   page.Count,
			Start:   page.Start,
		}).
		Post(c.opts.Endpoints.Club)
	err = decode(res, err, &out)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch club page")
		return nil, err
	}
	return out.ItemData, nil
}
