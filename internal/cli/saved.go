// internal/cli/saved.go
package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"listing-search-workers/internal/savedfilter"
	"listing-search-workers/internal/search/filter"
)

func newSavedCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "saved",
		Short: "Manage saved filters",
	}
	cmd.AddCommand(
		newSavedListCmd(opts),
		newSavedSaveCmd(opts),
		newSavedDeleteCmd(opts),
	)
	return cmd
}

func newSavedListCmd(opts *options) *cobra.Command {
	var owner string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List an owner's saved filters, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, db, err := opts.openStore(cmd)
			if err != nil {
				return err
			}
			defer closeDB(db)

			list, err := store.List(cmd.Context(), owner)
			if err != nil {
				return err
			}
			if opts.isJSON() {
				return printJSON(cmd.OutOrStdout(), list)
			}
			return printSavedTable(cmd, list)
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "owner id")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}

func newSavedSaveCmd(opts *options) *cobra.Command {
	var (
		owner     string
		name      string
		overwrite bool
	)

	cmd := &cobra.Command{
		Use:   "save <query>",
		Short: "Save a filter query under a name",
		Long:  "Save a filter query under a name. An existing name is rejected unless --overwrite is given.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			state, dropped, err := filter.ParseQuery(args[0])
			if err != nil {
				return err
			}
			printDropped(cmd, dropped)

			store, db, err := opts.openStore(cmd)
			if err != nil {
				return err
			}
			defer closeDB(db)

			var saved *savedfilter.SavedFilter
			if overwrite {
				saved, err = store.Overwrite(cmd.Context(), owner, name, state)
			} else {
				saved, err = store.Save(cmd.Context(), owner, name, state)
			}
			if err != nil {
				return err
			}

			if opts.isJSON() {
				return printJSON(cmd.OutOrStdout(), saved)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved filter %q (%s).\n", saved.Name, saved.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "owner id")
	cmd.Flags().StringVar(&name, "name", "", "filter name")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "replace an existing filter with the same name")
	_ = cmd.MarkFlagRequired("owner")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newSavedDeleteCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved filter by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, db, err := opts.openStore(cmd)
			if err != nil {
				return err
			}
			defer closeDB(db)

			if err := store.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			if opts.isJSON() {
				return printJSON(cmd.OutOrStdout(), map[string]interface{}{
					"id":      args[0],
					"deleted": true,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved filter %s deleted.\n", args[0])
			return nil
		},
	}
}

func printSavedTable(cmd *cobra.Command, list []savedfilter.SavedFilter) error {
	if len(list) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No saved filters.")
		return nil
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCREATED\tQUERY")
	for _, sf := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", sf.ID, sf.Name, sf.CreatedAt.Format("2006-01-02 15:04"), filter.Encode(sf.State))
	}
	return w.Flush()
}
