package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/five82/meteodash/internal/app"
)

var (
	configPath string
	prefsPath  string
	pollMS     int
)

var rootCmd = &cobra.Command{
	Use:   "meteodash",
	Short: "Terminal dashboard for municipal weather stations",
	Long: `meteodash browses the weather stations of an open-data portal.

Each station's last week of hourly readings is downloaded in the background
and stored locally; the dashboard charts temperature, humidity or pressure
for the selected station.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.Run(cmd.Context(), baseOptions())
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "override config path (optional)")
	flags.StringVar(&prefsPath, "prefs", "", "override preferences path (optional)")
	rootCmd.Flags().IntVar(&pollMS, "poll", 0, "dashboard status poll in milliseconds (optional, defaults to 500)")
}

func baseOptions() app.Options {
	return app.Options{
		ConfigPath: configPath,
		PrefsPath:  prefsPath,
		PollMS:     pollMS,
	}
}

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "meteodash: %v\n", err)
		return 1
	}
	return 0
}
