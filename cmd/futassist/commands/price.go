package commands

import (
	"fmt"
	"futassist/lib/pricing"
	"futassist/lib/serviceutil"
	"futassist/services/autolist"
	"strconv"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(priceCmd)
}

var priceCmd = &cobra.Command{
	Use:   "price <name> <rating> [position]",
	Short: "Looks up the market price of a player and the listing it would get.",
	Args:  cobra.RangeArgs(2, 3),
	Run: func(cmd *cobra.Command, args []string) {
		config, err := ReadConfig(*configPath)
		if err != nil {
			serviceutil.Fatal("failed to read config", err)
		}
		rating, err := strconv.Atoi(args[1])
		if err != nil {
			serviceutil.Fatal("invalid rating", err)
		}
		query := pricing.PriceQuery{Name: args[0], Rating: rating}
		if len(args) == 3 {
			query.Position = args[2]
		}

		source, err := newPriceSource(config)
		if err != nil {
			serviceutil.Fatal("failed to setup price source", err)
		}
		price, err := source.PlayerPrice(cmd.Context(), query)
		if err != nil {
			serviceutil.Fatal("failed to get price", err)
		}
		policy := autolist.PricePolicy{
			Undercut: config.Listing.Undercut,
			MinPrice: config.Listing.MinPrice,
		}
		listing, err := policy.Listing(0, price)
		if err != nil {
			serviceutil.Fatal("failed to compute listing", err)
		}
		fmt.Printf("%s: %d coins, would list at %d (buy now %d)\n", query, price, listing.StartingBid, listing.BuyNowPrice)
	},
}
