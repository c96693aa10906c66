package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/five82/meteodash/internal/app"
)

var refreshEvery time.Duration

var refreshCmd = &cobra.Command{
	Use:   "refresh [STATION_ID...]",
	Short: "Download station reports without the dashboard",
	Long: `Download and store the latest reports of the given stations, or of the
whole catalog when none is given, then print a summary.

With --every the refresh repeats until interrupted. A running dashboard
picks up the new files automatically.

Examples:
  # Refresh every station once
  meteodash refresh

  # Keep two stations up to date
  meteodash refresh --every 30m 42-station-meteo-toulouse-parc-compans-cafarelli 12-station-meteo-toulouse-montaudran`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := baseOptions()
		opts.Console = os.Stderr
		return app.Refresh(cmd.Context(), app.RefreshOptions{
			Options:    opts,
			StationIDs: args,
			Every:      refreshEvery,
			Out:        cmd.OutOrStdout(),
		})
	},
}

func init() {
	refreshCmd.Flags().DurationVar(&refreshEvery, "every", 0, "repeat the refresh at this interval (e.g. 30m)")
	rootCmd.AddCommand(refreshCmd)
}
