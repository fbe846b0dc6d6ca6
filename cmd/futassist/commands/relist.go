package commands

import (
	"fmt"
	"futassist/lib/serviceutil"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(relistCmd)
}

var relistCmd = &cobra.Command{
	Use:   "relist",
	Short: "Puts every expired item of the transfer list back on the market.",
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
		err = game.Relist(cmd.Context())
		if err != nil {
			serviceutil.Fatal("failed to relist", err)
		}
		fmt.Println("relisted expired items")
	},
}
