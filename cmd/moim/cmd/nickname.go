package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var nicknameCmd = &cobra.Command{
	Use:   "nickname <name>",
	Short: "Check nickname availability",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(nil)
		if err != nil {
			return err
		}
		defer a.close()

		available, sessErr := a.gateway.CheckNicknameAvailable(cmd.Context(), args[0])
		if sessErr != nil {
			return renderError(a, sessErr)
		}
		if available {
			fmt.Printf("%q is available.\n", args[0])
		} else {
			fmt.Printf("%q is already taken.\n", args[0])
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(nicknameCmd)
}
