package pricing

import (
	"context"
	"fmt"
	"futassist/lib/textutil"
	"os"
	"strings"

	"github.com/titanous/json5"
)

type SheetEntry struct {
	Name   string `json:"name"`
	Rating int    `json:"rating"`
	// empty matches any position
	Position string `json:"position"`
	Price    int    `json:"price"`
}

// SheetSource answers from a hand-maintained list of prices.
type SheetSource struct {
	entries []SheetEntry
}

func NewSheetSource(entries []SheetEntry) SheetSource {
	return SheetSource{entries: entries}
}

// ReadSheet loads a json5 array of SheetEntry.
func ReadSheet(path string) (SheetSource, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return SheetSource{}, err
	}
	var entries []SheetEntry
	err = json5.Unmarshal(contents, &entries)
	if err != nil {
		return SheetSource{}, fmt.Errorf("parse price sheet %s: %w", path, err)
	}
	return NewSheetSource(entries), nil
}

func (s SheetSource) PlayerPrice(ctx context.Context, query PriceQuery) (int, error) {
	_, span := tracer.Start(ctx, "SheetSource:PlayerPrice")
	defer span.End()

	name := textutil.NormalizeName(query.Name)
	for _, e := range s.entries {
		if e.Rating != query.Rating || textutil.NormalizeName(e.Name) != name {
			continue
		}
		if e.Position != "" && !strings.EqualFold(e.Position, query.Position) {
			continue
		}
		return e.Price, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrPriceNotFound, query.String())
}
