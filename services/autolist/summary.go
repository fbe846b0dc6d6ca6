package autolist

import (
	"futassist/lib/platforms/ea/utas"
	"slices"
)

type RatingCount struct {
	Rating int
	Count  int
}

// RatingSummary counts players per rating, highest rating first.
func RatingSummary(players []utas.Player) []RatingCount {
	counts := map[int]int{}
	for _, p := range players {
		counts[p.Rating]++
	}
	summary := make([]RatingCount, 0, len(counts))
	for rating, count := range counts {
		summary = append(summary, RatingCount{Rating: rating, Count: count})
	}
	slices.SortFunc(summary, func(a, b RatingCount) int {
		return b.Rating - a.Rating
	})
	return summary
}
