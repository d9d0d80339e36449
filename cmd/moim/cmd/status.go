package cmd

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current session state",
	Long: `Show whether a session is stored locally, which provider issued it,
and when the access token expires. This is a local check only; it does
not verify the token against the server.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(nil)
		if err != nil {
			return err
		}
		defer a.close()

		if !a.gateway.HasValidSession() {
			fmt.Println("Session:    none (guest)")
			return nil
		}

		fmt.Println("Session:    signed in")
		if p := a.store.Provider(); p != "" {
			fmt.Printf("Provider:   %s\n", p)
		}
		fmt.Printf("Auto-login: %t\n", a.store.AutoLogin())

		if exp, ok := tokenExpiry(a.store.AccessToken()); ok {
			state := "valid"
			if time.Now().After(exp) {
				state = "expired"
			}
			fmt.Printf("Token:      %s (expires %s)\n", state, exp.Format(time.RFC3339))
		}
		return nil
	},
}

// tokenExpiry reads the exp claim from a JWT access token without
// verifying it. Opaque (non-JWT) tokens report no expiry.
func tokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
