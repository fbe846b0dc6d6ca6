package commands

import (
	"fmt"
	"futassist/lib/serviceutil"
	"time"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(loginCmd)
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Logs in with FUT_EMAIL and FUT_PASSWORD and saves the session, even if a stored one is still valid.",
	Run: func(cmd *cobra.Command, args []string) {
		a, err := newApp(cmd.Context())
		if err != nil {
			serviceutil.Fatal("failed to initialize", err)
		}
		defer a.close()

		bundle, err := a.session.Login(cmd.Context())
		if err != nil {
			serviceutil.Fatal("failed to login", err)
		}
		fmt.Printf("logged in, access token valid until %s\n", bundle.AccessTokenExpiry.Local().Format(time.RFC1123))
		if !bundle.CookieExpiry.IsZero() {
			fmt.Printf("token can be refreshed until %s\n", bundle.CookieExpiry.Local().Format(time.RFC1123))
		}
	},
}
