package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/eringen/ogcard"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	configPath string
	logLevel   string

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "ogcard",
	Short: "ogcard renders Open Graph preview cards",
	Long: `ogcard renders 1920x1080 Open Graph preview cards for articles and series
chapters, serves them over HTTP and uploads them to blob storage.

Configuration is read from an optional YAML file (--config) and OGCARD_*
environment variables.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}
		var err error
		logger, err = ogcard.NewLogger(logLevel, false)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the ogcard version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "ogcard %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(serveCmd, renderCmd, uploadCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
