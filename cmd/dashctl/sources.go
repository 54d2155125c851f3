package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"bizdash/internal/core"
)

func sourcesCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "sources",
		Short: "List the raw expense summaries",
		Long:  `Print the full, unfiltered collection served by the configured backend.`,
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

			if asJSON {
				if records == nil {
					records = []core.ExpenseRecord{}
				}
				return writeJSON(cmd.OutOrStdout(), records)
			}
			return writeRecords(cmd.OutOrStdout(), records)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print records as JSON")

	return cmd
}

func recordCmd() *cobra.Command {
	var rec core.ExpenseRecord

	cmd := &cobra.Command{
		Use:     "record",
		Short:   "Record a new expense summary",
		Example: `  dashctl record --category Office --date 2024-02-01 --amount 120`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := rec.Validate(); err != nil {
				return fmt.Errorf("invalid expense summary: %w", err)
			}

			ctx := cmd.Context()
			store, cleanup, err := openBackend(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			ref, err := store.Append(ctx, rec)
			if err != nil {
				return fmt.Errorf("failed to save expense summary: %w", err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s %s on %s (%s)\n", rec.Category, rec.Amount, rec.Date, ref)
			return err
		},
	}

	cmd.Flags().StringVar(&rec.Category, "category", "", "expense category")
	cmd.Flags().StringVar(&rec.Date, "date", "", "summary date (YYYY-MM-DD or RFC3339)")
	cmd.Flags().StringVar(&rec.Amount, "amount", "", "amount")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("date")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func writeRecords(w io.Writer, records []core.ExpenseRecord) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No expense summaries found")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\n", "CATEGORY", "DATE", "AMOUNT")
	fmt.Fprintf(tw, "%s\t%s\t%s\n", strings.Repeat("-", 8), strings.Repeat("-", 10), strings.Repeat("-", 6))
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Category, r.Date, r.Amount)
	}
	return tw.Flush()
}
