// Package main provides tempoctl, a command-line companion to the overlay.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"go.aimuz.me/tempo/config"
	"go.aimuz.me/tempo/internal/logging"
)

var (
	configPath string
	cfg        *config.Config
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tempoctl",
		Short:         "Inspect and drive the Tempo attack-speed metronome",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if configPath != "" {
				cfg, err = config.LoadFrom(configPath)
			} else {
				cfg, err = config.Load()
			}
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			logging.Setup(cmd.ErrOrStderr(), cfg.SlogLevel())
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: user config dir)")

	rootCmd.AddCommand(newCadenceCmd())
	rootCmd.AddCommand(newChampionsCmd())
	rootCmd.AddCommand(newReplayCmd())
	rootCmd.AddCommand(newSettingsCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}
