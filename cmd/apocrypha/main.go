// Command apocrypha is the interactive command-line client: it sends
// one query's arguments to an apocryphad instance over TCP and prints
// the response.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

var (
	hostFlag    string
	timeoutFlag int
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "apocrypha [query tokens...]",
	Short:   "Apocrypha - query an in-memory, schema-less document store",
	Version: version,
	Args:    cobra.ArbitraryArgs,
	RunE:    runQuery,
}

func init() {
	// Claim -h for --host; cobra only auto-adds a -h/--help shorthand
	// when no help flag is registered yet.
	rootCmd.PersistentFlags().Bool("help", false, "help for apocrypha")
	rootCmd.Flags().StringVarP(&hostFlag, "host", "h", "", "server address (host:port); remembered for future calls when given")
	rootCmd.Flags().IntVarP(&timeoutFlag, "timeout", "t", 5, "connection timeout in seconds")
}
