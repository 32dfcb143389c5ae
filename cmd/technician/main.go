package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/five82/technician/internal/app"
)

const (
	appName    = "technician"
	appVersion = "0.1.0"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var opts app.Options

	rootCmd := &cobra.Command{
		Use:           appName,
		Short:         "Browse and edit ESPM products from the terminal",
		Long:          `technician lists the products of an OData ESPM service, shows the sales order KPI, and edits product names and prices. It keeps working from a local cache when the service is unreachable.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Run(cmd.Context(), opts)
		},
	}
	rootCmd.Flags().StringVar(&opts.ConfigPath, "config", "", "override config path (optional)")
	rootCmd.Flags().StringVar(&opts.PrefsPath, "prefs", "", "override preferences path (optional)")
	rootCmd.Flags().IntVar(&opts.PollEvery, "kpi", 0, "KPI refresh interval in seconds (optional, defaults to 30s)")
	rootCmd.Flags().BoolVar(&opts.Offline, "offline", false, "serve only cached data and queue edits")
	rootCmd.Flags().BoolVar(&opts.Debug, "debug", false, "write debug lines to the log file")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, appVersion)
		},
	})
	return rootCmd
}
