package main

import (
	"github.com/spf13/cobra"

	"github.com/five82/meteodash/internal/app"
)

var stationsCmd = &cobra.Command{
	Use:   "stations",
	Short: "List catalog stations and their stored reports",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.ListStations(baseOptions(), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(stationsCmd)
}
