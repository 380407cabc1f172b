// Package main is the entry point for navrouter.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information (set at build time).
var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

// defaultConfigPath is used when neither --config nor NAVROUTER_CONFIG_PATH
// is set.
const defaultConfigPath = "configs/navrouter.yaml"

type rootOptions struct {
	configPath string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "navrouter",
		Short:         "Client-side route matching and navigation server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c",
		getEnvOrDefault("NAVROUTER_CONFIG_PATH", defaultConfigPath), "Path to configuration file")

	cmd.AddCommand(
		newServeCmd(opts),
		newMatchCmd(opts),
		newRoutesCmd(opts),
		newVersionCmd(),
	)
	return cmd
}
