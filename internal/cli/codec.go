// internal/cli/codec.go
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"listing-search-workers/internal/search/filter"
)

func newEncodeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "encode <state.json|->",
		Short: "Encode a filter state as a URL query string",
		Long:  "Read a filter state as JSON from a file, or stdin with \"-\", and print its query string.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEncode(cmd, opts, args[0])
		},
	}
}

func runEncode(cmd *cobra.Command, opts *options, path string) error {
	var r io.Reader = cmd.InOrStdin()
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("opening state file: %w", err)
		}
		defer f.Close()
		r = f
	}

	var raw map[string]interface{}
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return fmt.Errorf("decoding state: %w", err)
	}
	state, dropped := filter.FromMap(raw)
	query := filter.Encode(state)

	if opts.isJSON() {
		return printJSON(cmd.OutOrStdout(), map[string]interface{}{
			"query":   query,
			"dropped": nonNil(dropped),
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), query)
	printDropped(cmd, dropped)
	return nil
}

func newDecodeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "decode <query>",
		Short: "Decode a URL query string into a normalized filter state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecode(cmd, opts, args[0])
		},
	}
}

func runDecode(cmd *cobra.Command, opts *options, raw string) error {
	if i := strings.Index(raw, "?"); i >= 0 {
		raw = raw[i+1:]
	}
	state, dropped, err := filter.ParseQuery(raw)
	if err != nil {
		return err
	}

	if opts.isJSON() {
		return printJSON(cmd.OutOrStdout(), map[string]interface{}{
			"state":   state,
			"dropped": nonNil(dropped),
			"empty":   state.IsEmpty(),
		})
	}
	if err := printJSON(cmd.OutOrStdout(), state); err != nil {
		return err
	}
	printDropped(cmd, dropped)
	return nil
}

func printDropped(cmd *cobra.Command, dropped []string) {
	if len(dropped) > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "dropped invalid fields: %s\n", strings.Join(dropped, ", "))
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
