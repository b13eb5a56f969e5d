package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"go.aimuz.me/tempo/champion"
	"go.aimuz.me/tempo/internal/types"
)

func newChampionsCmd() *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "champions",
		Short: "Fetch the champion table and print it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			loader := champion.NewLoader(champion.LoaderConfig{
				BaseURL: cfg.DDragonURL,
				Locale:  cfg.Locale,
			})
			version, entries, err := loader.Fetch(cmd.Context())
			if err != nil {
				return fmt.Errorf("fetch champions: %w", err)
			}

			if filter != "" {
				f := strings.ToLower(filter)
				entries = lo.Filter(entries, func(e types.ReferenceEntry, _ int) bool {
					return strings.Contains(strings.ToLower(e.Name), f)
				})
			}
			sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })

			t := table.New().
				Border(lipgloss.RoundedBorder()).
				Headers("ID", "NAME", "AS", "BPM")
			for _, e := range entries {
				t.Row(strconv.Itoa(e.ID), e.Name, strconv.FormatFloat(e.AttackSpeed, 'f', 3, 64), bpmText(e.AttackSpeed))
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, t.Render())
			fmt.Fprintf(out, "%d champions, data version %s\n", len(entries), version)
			return nil
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "", "only show names containing this text")
	return cmd
}
