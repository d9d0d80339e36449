package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the session and clear stored credentials",
	Long: `End the current session. The server is notified on a best-effort
basis; local credentials are cleared regardless, so logout works even
when the server is unreachable.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(nil)
		if err != nil {
			return err
		}
		defer a.close()

		if !a.gateway.HasValidSession() {
			fmt.Println("Not signed in.")
			return nil
		}

		if sessErr := a.gateway.Logout(cmd.Context()); sessErr != nil {
			return renderError(a, sessErr)
		}
		fmt.Println("Signed out.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
