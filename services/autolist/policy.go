package autolist

import (
	"fmt"
	"futassist/lib/platforms/ea/utas"
)

const (
	MinListingPrice = 150
	MaxListingPrice = 15_000_000
)

// BandStep is the smallest price increment the market accepts at price.
func BandStep(price int) int {
	switch {
	case price < 1_000:
		return 50
	case price < 10_000:
		return 100
	case price < 50_000:
		return 250
	case price < 100_000:
		return 500
	default:
		return 1_000
	}
}

// SnapToBand rounds price down to the nearest accepted value.
func SnapToBand(price int) int {
	step := BandStep(price)
	return price - price%step
}

// PricePolicy turns a market price estimate into listing prices.
type PricePolicy struct {
	// how many price steps to list below the estimate
	Undercut int
	MinPrice int
	Duration int
}

func (p PricePolicy) minPrice() int {
	if p.MinPrice < MinListingPrice {
		return MinListingPrice
	}
	return p.MinPrice
}

// Listing computes the buy now price (the estimate snapped to a valid
// value, less Undercut steps) and a starting bid one step below it.
func (p PricePolicy) Listing(itemID int64, marketPrice int) (utas.ListingRequest, error) {
	if marketPrice <= 0 {
		return utas.ListingRequest{}, fmt.Errorf("invalid market price %d", marketPrice)
	}

	minPrice := p.minPrice()
	buyNow := SnapToBand(min(marketPrice, MaxListingPrice))
	for i := 0; i < p.Undercut; i++ {
		buyNow -= BandStep(buyNow - 1)
	}
	// the starting bid must stay above the minimum
	floor := minPrice + BandStep(minPrice)
	if buyNow < floor {
		buyNow = floor
	}

	startingBid := buyNow - BandStep(buyNow-1)
	if startingBid < minPrice {
		startingBid = minPrice
	}

	return utas.ListingRequest{
		ItemID:      itemID,
		StartingBid: startingBid,
		BuyNowPrice: buyNow,
		Duration:    p.Duration,
	}, nil
}
