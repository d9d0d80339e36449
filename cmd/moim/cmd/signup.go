package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	signupTempToken string
	signupNickname  string
	signupMarketing bool
)

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Complete a pending registration",
	Long: `Complete a registration started by "moim login". The temporary token
printed by the login step authorizes this one call; on success the
issued session tokens are stored locally.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(nil)
		if err != nil {
			return err
		}
		defer a.close()

		available, sessErr := a.gateway.CheckNicknameAvailable(cmd.Context(), signupNickname)
		if sessErr != nil {
			return renderError(a, sessErr)
		}
		if !available {
			return fmt.Errorf("nickname %q is already taken", signupNickname)
		}

		sess, sessErr := a.gateway.CompleteSignup(cmd.Context(), signupTempToken, signupNickname, signupMarketing)
		if sessErr != nil {
			return renderError(a, sessErr)
		}

		fmt.Printf("Signed up as %s.\n", signupNickname)
		if sess.User != nil && sess.User.Email != "" {
			fmt.Printf("Account email: %s\n", sess.User.Email)
		}
		return nil
	},
}

func init() {
	signupCmd.Flags().StringVar(&signupTempToken, "temp-token", "", "temporary registration token from moim login")
	signupCmd.Flags().StringVar(&signupNickname, "nickname", "", "nickname for the new account")
	signupCmd.Flags().BoolVar(&signupMarketing, "marketing", false, "opt in to marketing messages")
	_ = signupCmd.MarkFlagRequired("temp-token")
	_ = signupCmd.MarkFlagRequired("nickname")
	rootCmd.AddCommand(signupCmd)
}
