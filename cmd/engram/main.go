// Command engram is the CLI adapter over the analysis engine: persistent
// --config/--verbose flags, a logrus logger set up in PersistentPreRun,
// and config loaded once and shared across subcommands.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/spectra-g/engram/internal/config"
)

var (
	cfgFile string
	verbose bool
	logger  *logrus.Logger
	cfg     *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "engram",
	Short: "Local analytical engine for a file's historical blast radius",
	Long: `engram answers "what else tends to change with this file" by
walking commit history, scoring co-change coupling, and enriching the
result with your own notes and the target's known test intents.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = logrus.New()
		if verbose {
			logger.SetLevel(logrus.DebugLevel)
		} else {
			logger.SetLevel(logrus.WarnLevel)
		}

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			logger.WithError(err).Warn("failed to load config, using defaults")
			cfg = config.Default()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: .engram/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose diagnostic logging on stderr")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(addNoteCmd)
	rootCmd.AddCommand(searchNotesCmd)
	rootCmd.AddCommand(listNotesCmd)
}
