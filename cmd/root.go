// Package cmd holds the btx command surface.
package cmd

import (
	"fmt"
	"os"

	"github.com/blocktix/btx/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Version is the current release. Overridable via build ldflags:
//
//	go build -ldflags "-X github.com/blocktix/btx/cmd.Version=1.2.3" .
var Version = "1.0.0"

var (
	cfgDir  string
	cfg     *config.Config
	verbose bool
)

// rootCmd is the top-level command.
var rootCmd = &cobra.Command{
	Use:   "btx",
	Short: "BlockTix CLI",
	Long: `btx — terminal client for the BlockTix ticketing platform.

  Create events, sell and resell NFT tickets, run fundraising
  campaigns, and manage wallets — all against your configured chain.

Contract addresses and the RPC endpoint live in ~/.btx/config.json and
can be overridden per-invocation with BTX_* environment variables.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		initLogger()
		var err error
		cfg, err = config.Load(cfgDir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func initLogger() {
	var logger *zap.Logger
	if verbose {
		logger, _ = zap.NewDevelopment()
	} else {
		c := zap.NewProductionConfig()
		c.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		logger, _ = c.Build()
	}
	zap.ReplaceGlobals(logger)
}

func init() {
	// BTX_CONFIG_DIR env var overrides --config flag.
	if envDir := os.Getenv("BTX_CONFIG_DIR"); envDir != "" {
		cfgDir = envDir
	}

	rootCmd.PersistentFlags().StringVar(&cfgDir, "config", cfgDir, "config directory (default: ~/.btx)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(
		walletCmd,
		eventCmd,
		marketCmd,
		fundCmd,
		mirrorCmd,
		convertCmd,
		configCmd,
	)
}
