// internal/cli/registry.go
package cli

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"listing-search-workers/pkg/registry"
)

func newRegistryCmd(opts *options) *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Inspect and edit the activity registry",
	}
	cmd.PersistentFlags().StringVar(&path, "file", registry.DefaultPath, "activity registry path")

	cmd.AddCommand(
		newRegistryListCmd(opts, &path),
		newRegistryValidateCmd(&path),
		newRegistryUpdateCmd(&path),
	)
	return cmd
}

func newRegistryListCmd(opts *options, path *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered activities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.LoadRegistry(*path)
			if err != nil {
				return err
			}
			if opts.isJSON() {
				return printJSON(cmd.OutOrStdout(), reg.Activities)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TASK TYPE\tCATEGORY\tSTATUS\tTIMEOUT\tRETRIES")
			for _, a := range reg.Activities {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", a.TaskType, a.Category, a.ImplementationStatus, a.Timeout, a.Retries)
			}
			return w.Flush()
		},
	}
}

func newRegistryValidateCmd(path *string) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check ids, task types, timeouts and input schemas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.LoadRegistry(*path)
			if err != nil {
				return err
			}
			if problems := reg.Validate(); len(problems) > 0 {
				for _, p := range problems {
					fmt.Fprintln(cmd.ErrOrStderr(), p)
				}
				return errors.New("registry validation failed")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registry valid: %d activities.\n", len(reg.Activities))
			return nil
		},
	}
}

func newRegistryUpdateCmd(path *string) *cobra.Command {
	return &cobra.Command{
		Use:   "update <id> <field> <value>",
		Short: "Set one field of an activity",
		Long: "Set one field of an activity. Fields: " +
			strings.Join([]string{"status", "version", "displayName", "description", "category", "timeout", "retries"}, ", ") + ".",
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.LoadRegistry(*path)
			if err != nil {
				return err
			}
			if err := reg.Update(args[0], args[1], args[2], time.Now()); err != nil {
				return err
			}
			if err := reg.Save(*path); err != nil {
				return fmt.Errorf("saving registry: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s: %s = %s\n", args[0], args[1], args[2])
			return nil
		},
	}
}
