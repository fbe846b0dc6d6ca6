package commands

import (
	"fmt"
	"futassist/lib/platforms/ea/utas"
	"futassist/lib/serviceutil"
	"futassist/services/autolist"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var listPlayers *bool

func init() {
	listPlayers = clubCmd.Flags().Bool("players", false, "Print every player instead of counts per rating.")
	rootCmd.AddCommand(clubCmd)
}

var clubCmd = &cobra.Command{
	Use:   "club [--players]",
	Short: "Prints the players of the club that are not in the active squad.",
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

		fetcher := utas.Fetcher{
			Source:     game,
			PageSize:   a.config.Fetch.PageSize,
			MaxRetries: a.config.Fetch.MaxRetries,
			RetryDelay: seconds(a.config.Fetch.RetryDelaySeconds),
		}
		report, err := fetcher.FetchClubPlayers(cmd.Context())
		if err != nil {
			serviceutil.Fatal("failed to fetch club players", err)
		}
		if report.Abandoned {
			fmt.Fprintf(os.Stderr, "warning: stopped after %d pages, the list is incomplete: %s\n", report.Pages, report.Err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		if *listPlayers {
			t.AppendHeader(table.Row{"Item", "Name", "Rating", "Position"})
			for _, p := range report.Players {
				t.AppendRow(table.Row{p.ID, p.FullName, p.Rating, p.Position})
			}
		} else {
			t.AppendHeader(table.Row{"Rating", "Players"})
			for _, r := range autolist.RatingSummary(report.Players) {
				t.AppendRow(table.Row{r.Rating, r.Count})
			}
		}
		t.AppendFooter(table.Row{"Total", len(report.Players)})
		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
