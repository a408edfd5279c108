// internal/cli/apply.go
package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"listing-search-workers/internal/search"
	"listing-search-workers/internal/search/filter"
	"listing-search-workers/internal/search/memory"
)

func newApplyCmd(opts *options) *cobra.Command {
	var (
		listingsPath string
		page         int
		pageSize     int
	)

	cmd := &cobra.Command{
		Use:   "apply <query>",
		Short: "Apply a filter query to exported listings",
		Long:  "Apply a filter query string to a JSON array of listings and print the matching page with statistics.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(cmd, opts, args[0], listingsPath, search.Pagination{Page: page, PageSize: pageSize})
		},
	}

	cmd.Flags().StringVar(&listingsPath, "listings", "", "path to a JSON array of listings")
	cmd.Flags().IntVar(&page, "page", 1, "1-based page number")
	cmd.Flags().IntVar(&pageSize, "page-size", search.DefaultPageSize, "listings per page")
	_ = cmd.MarkFlagRequired("listings")

	return cmd
}

func runApply(cmd *cobra.Command, opts *options, query, listingsPath string, p search.Pagination) error {
	state, dropped, err := filter.ParseQuery(query)
	if err != nil {
		return err
	}
	printDropped(cmd, dropped)

	f, err := os.Open(listingsPath)
	if err != nil {
		return fmt.Errorf("opening listings: %w", err)
	}
	defer f.Close()

	// Listings come from an export, not a live backend
	source, err := memory.LoadJSON(f)
	if err != nil {
		return err
	}

	executor := search.NewExecutor(source, search.Options{}, opts.logger())
	result, err := executor.Apply(cmd.Context(), state, p)
	if err != nil {
		return err
	}

	if opts.isJSON() {
		return printJSON(cmd.OutOrStdout(), result)
	}

	out := cmd.OutOrStdout()
	if state.IsEmpty() {
		fmt.Fprintln(out, "No filters set.")
		return nil
	}
	fmt.Fprintf(out, "%d of %d listings match (page %d/%d)\n",
		result.Stats.MatchingCount, result.Stats.TotalCount, result.Page, result.TotalPages)
	if result.Stats.MatchingCount > 0 {
		fmt.Fprintf(out, "price: avg $%.0f, min $%.0f, max $%.0f\n",
			result.Stats.AveragePrice, result.Stats.MinPrice, result.Stats.MaxPrice)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRICE\tBEDS\tBATHS\tTYPE\tADDRESS")
	for _, l := range result.Listings {
		fmt.Fprintf(w, "%s\t$%.0f\t%d\t%g\t%s\t%s\n", l.ID, l.Price, l.Bedrooms, l.Bathrooms, l.PropertyType, l.Address)
	}
	return w.Flush()
}
