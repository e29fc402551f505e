package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aicb-dev/aicb/internal/config"
)

var version = "dev"

var cfgFile string

func main() {
	rootCmd := &cobra.Command{
		Use:     "aicb",
		Short:   "AICB - ingest and explore mental-health chat conversations",
		Version: version,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default ~/.config/aicb/config.toml)")

	rootCmd.AddCommand(ingestCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(topicsCmd())
	rootCmd.AddCommand(showCmd())
	rootCmd.AddCommand(searchCmd())
	rootCmd.AddCommand(browseCmd())
	rootCmd.AddCommand(doctorCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		return config.LoadFile(cfgFile)
	}
	return config.Load()
}
