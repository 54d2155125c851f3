package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"bizdash/internal/core"
)

func aggregateCmd() *cobra.Command {
	var (
		criteria core.FilterCriteria
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Print per-category totals",
		Long: `Fetch every expense summary from the configured backend, filter by category
and date range, and print one total per category using the configured
AGGREGATION_POLICY, COLOR_POLICY and MALFORMED_POLICY.`,
		Example: `  dashctl aggregate
  dashctl aggregate --category Office --start 2024-01-01 --end 2024-03-31
  dashctl aggregate --json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, cleanup, err := openBackend(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			records, err := store.ListExpenseSummaries(ctx)
			if err != nil {
				return fmt.Errorf("failed to fetch expenses: %w", err)
			}

			totals, err := cfg.Aggregator().Aggregate(records, criteria)
			if err != nil {
				return fmt.Errorf("aggregation failed: %w", err)
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), totals)
			}
			return writeTotals(cmd.OutOrStdout(), totals)
		},
	}

	cmd.Flags().StringVar(&criteria.SelectedCategory, "category", core.AllCategories, "category to keep (All disables the filter)")
	cmd.Flags().StringVar(&criteria.StartDate, "start", "", "first date to include (YYYY-MM-DD)")
	cmd.Flags().StringVar(&criteria.EndDate, "end", "", "last date to include (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print totals as JSON")

	return cmd
}

func writeTotals(w io.Writer, totals []core.CategoryTotal) error {
	if len(totals) == 0 {
		_, err := fmt.Fprintln(w, "No expenses match the selected filters")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\n", "CATEGORY", "AMOUNT", "COLOR")
	fmt.Fprintf(tw, "%s\t%s\t%s\n", strings.Repeat("-", 8), strings.Repeat("-", 6), strings.Repeat("-", 7))
	for _, t := range totals {
		amount := "invalid"
		if t.Valid() {
			amount = fmt.Sprintf("%.0f", t.Amount)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", t.Name, amount, t.Color)
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
