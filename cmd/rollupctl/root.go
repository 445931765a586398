package main

import (
	"os"

	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/logger"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"zktransfer/pkg/core"
	"zktransfer/pkg/crypto"
	"zktransfer/pkg/state"
)

var config = core.DefaultConfig()

var rootCmd = &cobra.Command{
	Use:   "rollupctl",
	Short: "Setup, prove and verify rollup transfer circuits",
	Long: "rollupctl drives the transfer validation circuit of the rollup.\n" +
		"Configuration comes from the ROLLUP_* environment variables, overridden by flags.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Configure logging
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

		flags := *config
		if err := config.LoadEnv(); err != nil {
			return err
		}
		applyFlags(cmd, &flags)
		if err := config.Validate(); err != nil {
			return err
		}

		level, _ := config.Level()
		zerolog.SetGlobalLevel(level)
		logger.Set(log.Logger.Level(zerolog.WarnLevel))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().IntVar(&config.MerkleTreeDepth, "depth", config.MerkleTreeDepth, "depth of the account tree")
	rootCmd.PersistentFlags().IntVar(&config.BatchSize, "batch", config.BatchSize, "number of transfers per proof")
	rootCmd.PersistentFlags().StringVar(&config.AllocationMode, "mode", config.AllocationMode, "allocation of the transaction: constant, public or witness")
	rootCmd.PersistentFlags().StringVar(&config.ProvingKeyFile, "pk", config.ProvingKeyFile, "proving key file")
	rootCmd.PersistentFlags().StringVar(&config.VerifyingKeyFile, "vk", config.VerifyingKeyFile, "verifying key file")
	rootCmd.PersistentFlags().StringVar(&config.LogLevel, "log-level", config.LogLevel, "log level")
}

// applyFlags restores the values given on the command line, which take precedence over the
// environment.
func applyFlags(cmd *cobra.Command, flags *core.Config) {
	pf := cmd.Flags()
	if pf.Changed("depth") {
		config.MerkleTreeDepth = flags.MerkleTreeDepth
	}
	if pf.Changed("batch") {
		config.BatchSize = flags.BatchSize
	}
	if pf.Changed("mode") {
		config.AllocationMode = flags.AllocationMode
	}
	if pf.Changed("pk") {
		config.ProvingKeyFile = flags.ProvingKeyFile
	}
	if pf.Changed("vk") {
		config.VerifyingKeyFile = flags.VerifyingKeyFile
	}
	if pf.Changed("log-level") {
		config.LogLevel = flags.LogLevel
	}
}

// newCircuit returns the circuit definition selected by the config. txVar is only used by
// constant-mode single transfer circuits.
func newCircuit(params state.Parameters, mode crypto.AllocationMode, txVar crypto.TransactionVar) (frontend.Circuit, error) {
	if config.BatchSize > 1 {
		return crypto.NewBatchCircuit(params, config.BatchSize)
	}
	return crypto.NewTransferCircuit(params, mode, txVar)
}
