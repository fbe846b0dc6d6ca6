package commands

import (
	"futassist/lib/platforms/ea/utas"
	"futassist/lib/serviceutil"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(tradepileCmd)
}

func tradeState(e utas.AuctionInfo) string {
	if e.TradeState == nil {
		return "-"
	}
	return *e.TradeState
}

var tradepileCmd = &cobra.Command{
	Use:   "tradepile",
	Short: "Prints the transfer list.",
	Run: func(cmd *cobra.Command, args []string) {
		a, err := newApp(cmd.Context())
		if err != nil {
			serviceutil.Fatal("failed to initialize", err)
		}
		defer a.close()

		game, err := a.session.Load(cmd.Context())
		if err != nil {
			serviceutil.Fatal("failed to load session", err)
		}
		catalog, err := game.Catalog(cmd.Context())
		if err != nil {
			serviceutil.Fatal("failed to fetch static players", err)
		}
		entries, err := game.Tradepile(cmd.Context())
		if err != nil {
			serviceutil.Fatal("failed to fetch tradepile", err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Item", "Name", "Rating", "Position", "Type", "State"})
		for _, e := range entries {
			name := ""
			if entry, ok := catalog.Lookup(e.ItemData.AssetID); ok {
				name = entry.DisplayName()
			}
			t.AppendRow(table.Row{
				e.ItemData.ID,
				name,
				e.ItemData.Rating,
				e.ItemData.PreferredPosition,
				e.ItemData.ItemType,
				tradeState(e),
			})
		}
		t.AppendFooter(table.Row{"Available", len(utas.AvailablePlayers(entries, catalog))})
		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
