package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/moimlabs/moim-go/internal/domain/display"
	"github.com/moimlabs/moim-go/internal/domain/provider"
	"github.com/moimlabs/moim-go/internal/domain/session"
)

var (
	loginProvider string
	loginToken    string
	loginIDToken  string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in through a provider and start a session",
	Long: `Sign in through a third-party provider and exchange the credential for
a Moim session.

The provider flow itself runs outside this client: complete it in a
browser or on a device, then pass the resulting provider access token
with --token (or the MOIM_PROVIDER_TOKEN environment variable).

When the account does not exist yet the server issues a temporary
registration token; complete the signup with "moim signup".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := provider.Parse(loginProvider)
		if err != nil {
			return err
		}
		token := loginToken
		if token == "" {
			token = os.Getenv("MOIM_PROVIDER_TOKEN")
		}

		a, err := newApp(map[provider.Provider]providerToken{
			p: {accessToken: token, idToken: loginIDToken},
		})
		if err != nil {
			return err
		}
		defer a.close()

		ctx := cmd.Context()

		cred, sessErr := a.gateway.SignInWithProvider(ctx, p, termAnchor{})
		if sessErr != nil {
			return renderError(a, sessErr)
		}
		if claims, err := cred.Claims(); err == nil && claims.Email != "" {
			fmt.Printf("Signing in as %s via %s...\n", claims.Email, loginProvider)
		}

		sess, sessErr := a.gateway.ExchangeForSession(ctx, cred)
		if sessErr != nil {
			return renderError(a, sessErr)
		}

		if sess.IsPendingRegistration() {
			fmt.Println("Account not registered yet.")
			fmt.Printf("Complete signup with:\n  moim signup --temp-token %s --nickname <name>\n", sess.TempToken)
			return nil
		}

		fmt.Println("Signed in.")
		if sess.User != nil && sess.User.Nickname != "" {
			fmt.Printf("Welcome back, %s.\n", sess.User.Nickname)
		}
		return nil
	},
}

// renderError presents a session error the way a screen would: the
// display intent decides what the user sees.
func renderError(a *app, sessErr *session.Error) error {
	intent := display.FromError(a.logger, sessErr)
	switch intent.Style {
	case display.StyleSilent:
		return nil
	default:
		return fmt.Errorf("%s", intent.Message)
	}
}

func init() {
	loginCmd.Flags().StringVar(&loginProvider, "provider", "", "sign-in provider: google, apple, or kakao")
	loginCmd.Flags().StringVar(&loginToken, "token", "", "pre-obtained provider access token")
	loginCmd.Flags().StringVar(&loginIDToken, "id-token", "", "pre-obtained provider ID token (optional)")
	_ = loginCmd.MarkFlagRequired("provider")
	rootCmd.AddCommand(loginCmd)
}
