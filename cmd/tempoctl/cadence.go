package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"go.aimuz.me/tempo/cadence"
)

func newCadenceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cadence RATE",
		Short: "Print the bpm and beat duration for an attack rate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rate, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid rate %q: %w", args[0], err)
			}
			st, err := cadence.Compute(rate)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "attack speed %.3f\nbpm          %d\nbeat         %s\n", rate, st.BPM, st.BeatCSS())
			return nil
		},
	}
}

func bpmText(rate float64) string {
	st, err := cadence.Compute(rate)
	if err != nil {
		return "-"
	}
	return strconv.Itoa(st.BPM)
}
