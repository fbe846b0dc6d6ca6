package utas

import (
	"fmt"
	"strings"
)

// CatalogEntry is a player of the static catalog all items refer to.
type CatalogEntry struct {
	ID         int64  `json:"id"`
	FirstName  string `json:"f"`
	LastName   string `json:"l"`
	CommonName string `json:"c"`
	Rating     int    `json:"r"`
}

// DisplayName is the name shown in game.
func (e CatalogEntry) DisplayName() string {
	if e.CommonName != "" {
		return e.CommonName
	}
	return e.LastName
}

// Catalog indexes catalog entries by asset id.
type Catalog map[int64]CatalogEntry

func NewCatalog(entries ...[]CatalogEntry) Catalog {
	catalog := Catalog{}
	for _, list := range entries {
		for _, e := range list {
			if _, exists := catalog[e.ID]; exists {
				continue
			}
			catalog[e.ID] = e
		}
	}
	return catalog
}

func (c Catalog) Lookup(assetID int64) (CatalogEntry, bool) {
	e, ok := c[assetID]
	return e, ok
}

// ItemData is an item as held in the club or on the transfer list.
type ItemData struct {
	ID                int64  `json:"id"`
	AssetID           int64  `json:"assetId"`
	ResourceID        int64  `json:"resourceId"`
	Rating            int    `json:"rating"`
	PreferredPosition string `json:"preferredPosition"`
	ItemType          string `json:"itemType"`
	// remaining matches of a loan, absent for owned items
	Loans int `json:"loans"`
}

func (i ItemData) OnLoan() bool {
	return i.Loans > 0
}

// Player is an owned item joined with its catalog entry.
type Player struct {
	ID        int64
	AssetID   int64
	FirstName string
	LastName  string
	FullName  string
	Name      string
	Rating    int
	Position  string
}

func (p Player) String() string {
	return fmt.Sprintf("%s (%d %s)", p.Name, p.Rating, p.Position)
}

func newPlayer(item ItemData, entry CatalogEntry) Player {
	return Player{
		ID:        item.ID,
		AssetID:   item.AssetID,
		FirstName: entry.FirstName,
		LastName:  entry.LastName,
		FullName:  strings.TrimSpace(entry.FirstName + " " + entry.LastName),
		Name:      entry.DisplayName(),
		Rating:    item.Rating,
		Position:  item.PreferredPosition,
	}
}

// Join pairs items with their catalog entries, items without one are
// dropped.
func Join(items []ItemData, catalog Catalog) []Player {
	players := make([]Player, 0, len(items))
	for _, item := range items {
		entry, ok := catalog.Lookup(item.AssetID)
		if !ok {
			continue
		}
		players = append(players, newPlayer(item, entry))
	}
	return players
}

const TradeStateExpired = "expired"

// AuctionInfo is an entry of the transfer list.
type AuctionInfo struct {
	TradeID int64 `json:"tradeId"`
	// nil when the item is not listed
	TradeState *string  `json:"tradeState"`
	ItemData   ItemData `json:"itemData"`
}

func (a AuctionInfo) Expired() bool {
	return a.TradeState != nil && *a.TradeState == TradeStateExpired
}

func (a AuctionInfo) Available() bool {
	return a.TradeState == nil && a.ItemData.ItemType == "player"
}

// ListingRequest is a single transfer market listing. Duration is in
// seconds.
type ListingRequest struct {
	ItemID      int64
	StartingBid int
	BuyNowPrice int
	Duration    int
}
