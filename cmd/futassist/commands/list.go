package commands

import (
	"futassist/lib/serviceutil"
	"futassist/services/autolist"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var dryRun *bool
var listLimit *int

func init() {
	dryRun = listCmd.Flags().Bool("dry-run", false, "Only print the prices that would be used.")
	listLimit = listCmd.Flags().Int("limit", 0, "The maximum amount of players to list, 0 lists all of them.")
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list [--dry-run] [--limit <n>]",
	Short: "Lists every unlisted player of the transfer list at its market price.",
	Run: func(cmd *cobra.Command, args []string) {
		a, err := newApp(cmd.Context())
		if err != nil {
			serviceutil.Fatal("failed to initialize", err)
		}
		defer a.close()

		prices, err := newPriceSource(a.config)
		if err != nil {
			serviceutil.Fatal("failed to setup price source", err)
		}
		game, err := a.session.Load(cmd.Context())
		if err != nil {
			serviceutil.Fatal("failed to load session", err)
		}

		runner := autolist.Runner{
			Market: game,
			Prices: prices,
			Policy: autolist.PricePolicy{
				Undercut: a.config.Listing.Undercut,
				MinPrice: a.config.Listing.MinPrice,
				Duration: a.config.Listing.Duration,
			},
			Delay: seconds(a.config.Listing.DelaySeconds),
		}
		report, err := runner.ListTradepile(cmd.Context(), autolist.RunOptions{
			DryRun: *dryRun,
			Limit:  *listLimit,
		})
		if err != nil {
			serviceutil.Fatal("listing run failed", err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Item", "Name", "Rating", "Start", "Buy now", "Result"})
		appendOutcomes := func(outcomes []autolist.Outcome, result func(autolist.Outcome) string) {
			for _, o := range outcomes {
				t.AppendRow(table.Row{
					o.Player.ID,
					o.Player.Name,
					o.Player.Rating,
					o.Listing.StartingBid,
					o.Listing.BuyNowPrice,
					result(o),
				})
			}
		}
		appendOutcomes(report.Listed, func(autolist.Outcome) string {
			if *dryRun {
				return "dry run"
			}
			return "listed"
		})
		appendOutcomes(report.Skipped, func(o autolist.Outcome) string { return "skipped: " + o.Err.Error() })
		appendOutcomes(report.Failed, func(o autolist.Outcome) string { return "failed: " + o.Err.Error() })
		if report.Relisted {
			t.AppendFooter(table.Row{"", "expired items were relisted"})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
