// Package cmd provides the CLI commands for the Moim client.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/moimlabs/moim-go/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "moim",
	Short: "Moim - terminal client for the Moim service",
	Long: `Moim is the terminal client for the Moim service.

It signs in through a third-party provider (Google, Apple, Kakao),
exchanges the provider credential for a server session, and keeps the
issued tokens in a local secure store.

Quick start:
  1. Create a config file: moim.yaml (server.base_url is required)
  2. Run: moim login --provider kakao --token <provider-token>

Configuration:
  Config is loaded from moim.yaml in the current directory or
  $HOME/.moim/.

  Environment variables can override config values with the MOIM_ prefix.
  Example: MOIM_SERVER_BASE_URL=https://api.moim.dev

Commands:
  login       Sign in through a provider and start a session
  signup      Complete a pending registration
  logout      End the session and clear stored credentials
  status      Show the current session state
  nickname    Check nickname availability
  version     Print version information`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./moim.yaml)")
}

func initConfig() {
	config.InitViper(cfgFile)
}
