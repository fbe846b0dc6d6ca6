package utas

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type catalogResponse struct {
	LegendsPlayers []CatalogEntry `json:"LegendsPlayers"`
	Players        []CatalogEntry `json:"Players"`
}

// Catalog downloads the static player catalog, it does not need a game
// session.
func (c *Client) Catalog(ctx context.Context) (Catalog, error) {
	ctx, span := tracer.Start(ctx, "Client:Catalog")
	defer span.End()

	var out catalogResponse
	res, err := c.http.R().
		SetContext(ctx).
		Get(c.opts.Endpoints.Catalog)
	err = decode(res, err, &out)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch catalog")
		return nil, err
	}

	catalog := NewCatalog(out.LegendsPlayers, out.Players)
	span.SetAttributes(attribute.Int("entries", len(catalog)))
	return catalog, nil
}
