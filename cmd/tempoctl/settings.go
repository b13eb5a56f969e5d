package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"go.aimuz.me/tempo/settings"
	"go.aimuz.me/tempo/store"
)

func newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or reset the stored metronome settings",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the stored settings and derived layout",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSettings(func(st *settings.Store) error {
				st.Load()
				return printJSON(cmd, st.Appearance())
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Restore default settings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSettings(func(st *settings.Store) error {
				return printJSON(cmd, st.Reset())
			})
		},
	})
	return cmd
}

// withSettings opens the app's store. It fails while the app holds it.
func withSettings(fn func(*settings.Store) error) error {
	kv, err := store.Open(cfg.StorePath())
	if err != nil {
		return fmt.Errorf("failed to open store (is the app running?): %w", err)
	}
	defer kv.Close()
	return fn(settings.New(kv))
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
