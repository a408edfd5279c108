// internal/cli/rank.go
package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"listing-search-workers/internal/common/config"
	"listing-search-workers/internal/models"
	"listing-search-workers/internal/proximity"
)

func newRankCmd(opts *options) *cobra.Command {
	var (
		lat, lng float64
		category string
		radius   int
		places   config.PlacesConfig
	)

	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Rank nearby places of a category around a point",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if places.APIKey == "" {
				places.APIKey = os.Getenv("GOOGLE_MAPS_API_KEY")
			}
			provider, err := proximity.NewGoogleProvider(places, opts.logger())
			if err != nil {
				return err
			}
			return runRank(cmd, opts, provider, models.Coordinate{Lat: lat, Lng: lng}, category, radius)
		},
	}

	cmd.Flags().Float64Var(&lat, "lat", 0, "latitude of the origin")
	cmd.Flags().Float64Var(&lng, "lng", 0, "longitude of the origin")
	cmd.Flags().StringVar(&category, "category", "", "place category (schools|restaurants|shopping|healthcare|parks|transit|gyms)")
	cmd.Flags().IntVar(&radius, "radius", 0, "search radius in meters (default: the category radius)")
	cmd.Flags().StringVar(&places.APIKey, "api-key", "", "Google Maps API key (default: $GOOGLE_MAPS_API_KEY)")
	cmd.Flags().StringVar(&places.BaseURL, "places-url", "", "override the Google Maps base URL")
	cmd.Flags().IntVar(&places.Timeout, "timeout-ms", 10000, "request timeout in milliseconds")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lng")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}

func runRank(cmd *cobra.Command, opts *options, provider proximity.PlacesProvider, origin models.Coordinate, rawCategory string, radius int) error {
	category, err := proximity.ParseCategory(rawCategory)
	if err != nil {
		return err
	}
	if radius <= 0 {
		radius = category.DefaultRadius()
	}

	ranked, err := proximity.NewRanker(provider, opts.logger()).Rank(cmd.Context(), origin, category, radius)
	if err != nil {
		return err
	}

	if opts.isJSON() {
		return printJSON(cmd.OutOrStdout(), ranked)
	}
	if len(ranked) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No %s within %dm.\n", category, radius)
		return nil
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tNAME\tRATING\tREVIEWS\tKM\tSCORE")
	for i, p := range ranked {
		fmt.Fprintf(w, "%d\t%s\t%.1f\t%d\t%.2f\t%.3f\n", i+1, p.Name, p.Rating, p.RatingCount, p.DistanceKm, p.Score)
	}
	return w.Flush()
}
