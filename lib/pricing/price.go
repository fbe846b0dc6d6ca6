package pricing

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var ErrPriceNotFound = errors.New("no price found for player")

type PriceQuery struct {
	Name     string
	Rating   int
	Position string
}

func (q PriceQuery) String() string {
	return fmt.Sprintf("%s (%d %s)", q.Name, q.Rating, q.Position)
}

// PriceSource estimates the market price of a player in coins.
type PriceSource interface {
	PlayerPrice(ctx context.Context, query PriceQuery) (int, error)
}

var compactMultipliers = map[byte]float64{
	'k': 1e3,
	'm': 1e6,
	'b': 1e9,
}

// ParseCompactPrice reads prices as they are displayed on market sites,
// "1.2K", "15M", "12,500" or "850".
func ParseCompactPrice(s string) (int, error) {
	cleaned := strings.ToLower(strings.TrimSpace(s))
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	if cleaned == "" {
		return 0, fmt.Errorf("empty price")
	}

	multiplier := 1.0
	if m, ok := compactMultipliers[cleaned[len(cleaned)-1]]; ok {
		multiplier = m
		cleaned = cleaned[:len(cleaned)-1]
	}
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q: %w", s, err)
	}
	if value < 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("invalid price %q", s)
	}
	return int(math.Round(value * multiplier)), nil
}
