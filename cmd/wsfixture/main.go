// Wsfixture is a WebSocket echo server used as a backend fixture when
// testing load balancers and proxies.
//
// It echoes every WebSocket message back to its sender, answers every other
// HTTP request with 404 ENOTFOUNDNUBCAKE, and prints connection and message
// statistics when it exits. The transport is picked with the FLAVOR
// environment variable (http, https or spdy) or the --flavor flag.
//
// Usage:
//
//	wsfixture [serve] [flags]
//
// See 'wsfixture serve --help' for available options.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/balancerbattle/wsfixture/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		var reported reportedError
		if !errors.As(err, &reported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// reportedError marks a failure whose diagnostic has already been printed
type reportedError struct {
	error
}

func (e reportedError) Unwrap() error {
	return e.error
}

var rootCmd = &cobra.Command{
	Use:   "wsfixture",
	Short: "WebSocket echo fixture for load-balancer testing",
	Long: `A minimal WebSocket echo server used as a backend when testing
load balancers and proxies.

Every WebSocket message is echoed back unchanged. Any request that is not a
WebSocket upgrade receives 404 with the body ENOTFOUNDNUBCAKE. Connection and
message counters are printed when the process exits.

Running without a subcommand is the same as 'wsfixture serve'.`,
	Version:       version.Version,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          runServe,
}

func init() {
	addServeFlags(rootCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// Version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("wsfixture %s\n", version.Full())
	},
}
