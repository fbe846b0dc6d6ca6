package autolist

import (
	"context"
	"errors"
	"futassist/lib/platforms/ea/utas"
	"futassist/lib/pricing"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func state(s string) *string {
	return &s
}

type fakeMarket struct {
	entries  []utas.AuctionInfo
	rejected map[int64]bool
	relisted int
	listings []utas.ListingRequest
	// the game session was never exchanged
	noSession bool
}

func (m *fakeMarket) Catalog(context.Context) (utas.Catalog, error) {
	return utas.NewCatalog([]utas.CatalogEntry{
		{ID: 1, FirstName: "Erling", LastName: "Haaland"},
		{ID: 2, FirstName: "Kevin", LastName: "De Bruyne"},
		{ID: 3, FirstName: "Vinícius", LastName: "Júnior", CommonName: "Vini Jr."},
		{ID: 4, FirstName: "Unknown", LastName: "Player"},
	}), nil
}

func (m *fakeMarket) Tradepile(context.Context) ([]utas.AuctionInfo, error) {
	return m.entries, nil
}

func (m *fakeMarket) Relist(context.Context) error {
	m.relisted++
	return nil
}

func (m *fakeMarket) ListItem(_ context.Context, listing utas.ListingRequest) error {
	if m.noSession {
		return utas.ErrNoSession
	}
	if m.rejected[listing.ItemID] {
		return &utas.ListingSubmitError{ItemID: listing.ItemID, Err: errors.New("409 conflict")}
	}
	m.listings = append(m.listings, listing)
	return nil
}

func tradepileEntry(id, assetID int64, rating int, tradeState *string) utas.AuctionInfo {
	return utas.AuctionInfo{
		TradeState: tradeState,
		ItemData: utas.ItemData{
			ID:                id,
			AssetID:           assetID,
			Rating:            rating,
			PreferredPosition: "ST",
			ItemType:          "player",
		},
	}
}

var testPrices = pricing.NewSheetSource([]pricing.SheetEntry{
	{Name: "Haaland", Rating: 91, Price: 3_210_000},
	{Name: "De Bruyne", Rating: 91, Price: 1_234},
	{Name: "Vini Jr.", Rating: 89, Price: 160},
})

func newMarket() *fakeMarket {
	return &fakeMarket{
		entries: []utas.AuctionInfo{
			tradepileEntry(10, 1, 91, nil),
			tradepileEntry(11, 2, 91, nil),
			tradepileEntry(12, 3, 89, nil),
			// no price
			tradepileEntry(13, 4, 80, nil),
			tradepileEntry(14, 1, 91, state("active")),
		},
		rejected: map[int64]bool{},
	}
}

func itemIDs(outcomes []Outcome) []int64 {
	ids := make([]int64, len(outcomes))
	for i, o := range outcomes {
		ids[i] = o.Player.ID
	}
	return ids
}

func TestListTradepile(t *testing.T) {
	market := newMarket()
	market.rejected[11] = true

	runner := Runner{Market: market, Prices: testPrices}
	report, err := runner.ListTradepile(context.Background(), RunOptions{})
	require.NoError(t, err)

	require.False(t, report.Relisted)
	require.Equal(t, []int64{10, 12}, itemIDs(report.Listed))
	require.Equal(t, []int64{13}, itemIDs(report.Skipped))
	require.ErrorIs(t, report.Skipped[0].Err, pricing.ErrPriceNotFound)
	require.Equal(t, []int64{11}, itemIDs(report.Failed))

	expected := []utas.ListingRequest{
		{ItemID: 10, StartingBid: 3_209_000, BuyNowPrice: 3_210_000},
		{ItemID: 12, StartingBid: 150, BuyNowPrice: 200},
	}
	if diff := cmp.Diff(expected, market.listings); diff != "" {
		t.Fatalf("unexpected listings (-want +got):\n%s", diff)
	}
}

func TestListTradepileRelistsExpired(t *testing.T) {
	market := newMarket()
	market.entries = append(market.entries, tradepileEntry(15, 2, 91, state(utas.TradeStateExpired)))

	report, err := Runner{Market: market, Prices: testPrices}.ListTradepile(context.Background(), RunOptions{})
	require.NoError(t, err)
	require.True(t, report.Relisted)
	require.Equal(t, 1, market.relisted)
	require.Len(t, report.Listed, 3)
}

func TestListTradepileOptions(t *testing.T) {
	market := newMarket()
	report, err := Runner{Market: market, Prices: testPrices}.ListTradepile(
		context.Background(), RunOptions{DryRun: true},
	)
	require.NoError(t, err)
	require.Len(t, report.Listed, 3)
	require.Empty(t, market.listings)

	market = newMarket()
	report, err = Runner{Market: market, Prices: testPrices}.ListTradepile(
		context.Background(), RunOptions{Limit: 2},
	)
	require.NoError(t, err)
	require.Equal(t, []int64{10, 11}, itemIDs(report.Listed))
	require.Len(t, market.listings, 2)
}

func TestListTradepileCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Runner{Market: newMarket(), Prices: testPrices}.ListTradepile(ctx, RunOptions{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestListTradepileWithoutSession(t *testing.T) {
	market := newMarket()
	market.noSession = true

	report, err := Runner{Market: market, Prices: testPrices}.ListTradepile(context.Background(), RunOptions{})
	require.ErrorIs(t, err, utas.ErrNoSession)
	require.Empty(t, report.Listed)
	require.Empty(t, report.Failed)
	require.Empty(t, market.listings)
}
