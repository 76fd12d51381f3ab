// Package cli wires the storyfeed commands.
package cli // import "github.com/jemtv/storyfeed/internal/cli"

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jemtv/storyfeed/internal/cli/logger"
	"github.com/jemtv/storyfeed/internal/config"
	"github.com/jemtv/storyfeed/internal/version"
)

var (
	flagConfigFile string
	flagConfigYAML string
	flagDebugMode  bool
	flagOutputFile string
	flagForceWrite bool

	logCloser io.Closer
)

var Cmd = cobra.Command{
	Use:     "storyfeed",
	Short:   "Storyfeed renders the JEM.tv story archive as an RSS feed.",
	Version: version.Version,

	PersistentPreRunE: persistentPreRunE,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runGenerate()
	},

	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCloser != nil {
			logCloser.Close()
		}
	},
}

var configDumpCmd = cobra.Command{
	Use:   "config-dump",
	Short: "Print parsed configuration values",
	Args:  cobra.ExactArgs(0),
	Run:   func(cmd *cobra.Command, args []string) { fmt.Print(config.Opts) },
}

func init() {
	Cmd.PersistentFlags().StringVarP(&flagConfigFile, "config-file", "c", "",
		"Path to .env configuration file")
	Cmd.PersistentFlags().StringVarP(&flagConfigYAML, "config-yaml", "", "",
		"Path to YAML configuration file")
	Cmd.PersistentFlags().BoolVarP(&flagDebugMode, "debug", "d", false,
		"Show debug logs")

	Cmd.Flags().StringVarP(&flagOutputFile, "output", "o", "",
		"Write the feed to this file instead of OUTPUT_FILE")
	Cmd.Flags().BoolVarP(&flagForceWrite, "force", "", false,
		"Rewrite the feed even when unchanged")

	Cmd.AddCommand(&configDumpCmd)
	Cmd.AddCommand(&healthCmd)
	Cmd.AddCommand(&infoCmd)
}

func persistentPreRunE(cmd *cobra.Command, args []string) error {
	// Don't show usage on app errors.
	// https://github.com/spf13/cobra/issues/340#issuecomment-378726225
	cmd.SilenceUsage = true

	if err := config.LoadYAML(flagConfigYAML, flagConfigFile); err != nil {
		return err
	} else if flagDebugMode {
		config.Opts.SetLogLevel("debug")
	}

	if flagOutputFile != "" {
		config.Opts.SetOutputFile(flagOutputFile)
	}

	closer, err := logger.Initialize()
	if err != nil {
		return err
	}
	logCloser = closer
	return nil
}

func Execute() {
	if err := Cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
