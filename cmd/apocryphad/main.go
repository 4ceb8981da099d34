// Command apocryphad is the Apocrypha server daemon: it loads the
// document root from disk, then serves the TCP query protocol while
// running the write-behind persistence loop and a health/metrics
// endpoint alongside it.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "apocryphad",
	Short:   "Apocrypha - an in-memory, schema-less document store",
	Version: version,
	RunE:    runServe,
}

func init() {
	rootCmd.Flags().IntP("port", "p", 0, "TCP port to listen on (overrides AP_PORT)")
	rootCmd.Flags().StringP("config", "c", "", "database file path (overrides AP_CNFG)")
	rootCmd.Flags().Int("health-port", 0, "health/metrics server port (overrides AP_HEALTH_PORT)")
	rootCmd.Flags().Int("cache-size", 0, "query cache size (overrides AP_CACHE_SIZE)")
	rootCmd.Flags().Duration("flush-interval", 0, "persistence flush interval (overrides AP_FLUSH_INTERVAL_MS)")
}
