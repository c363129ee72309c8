// Package cli implements the dynlm commands.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/bastiangx/dynlm/internal/ledger"
	"github.com/bastiangx/dynlm/pkg/config"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

const (
	Version = "0.3.0"
	AppName = "dynlm"
	gh      = "https://github.com/bastiangx/dynlm"
)

var (
	configFlag string
	debugFlag  bool

	appConfig  *config.Config
	configPath string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   AppName,
	Short: "Reconstruct dynamic.lm prediction tries and score messages",
	Long: "dynlm decodes the word-prediction trie of a dynamic.lm language model, " +
		"writes every predicted word chain, and scores how many words of a message " +
		"appear in a reference vocabulary.",
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	RootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Path to a custom config.toml")
	RootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false, "Toggle debug mode")
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

// setup applies the log level and loads the config before any command runs.
func setup(_ *cobra.Command, _ []string) error {
	if debugFlag {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
	} else {
		log.SetLevel(log.WarnLevel)
		log.SetReportTimestamp(false)
	}

	cfg, path, err := config.LoadConfigWithPriority(configFlag)
	if err != nil {
		return err
	}
	appConfig, configPath = cfg, path
	log.Debugf("Using config file: (%s)", configPath)
	return nil
}

var errLedgerDisabled = errors.New("run history is disabled in the config")

// openLedger opens the run history, or returns errLedgerDisabled.
func openLedger() (*ledger.Ledger, error) {
	if !appConfig.Ledger.Enabled {
		return nil, errLedgerDisabled
	}
	path := appConfig.LedgerPath(configPath)
	l, err := ledger.Open(path)
	if err != nil {
		return nil, fmt.Errorf("run history %s: %w", path, err)
	}
	log.Debugf("Using ledger at: %s", path)
	return l, nil
}
