package main

import (
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"zktransfer/pkg/crypto"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Compile the transfer circuit and write its Groth16 keys",
	Long: "Compiles the circuit selected by --depth, --batch and --mode and runs a Groth16 setup.\n" +
		"The keys are written to the --pk and --vk files.\n" +
		"Constant mode bakes a single transaction into the circuit and has no reusable setup; use demo for it.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := config.Parameters()
		if err != nil {
			return err
		}
		mode, err := config.Mode()
		if err != nil {
			return err
		}
		if mode == crypto.Constant && config.BatchSize == 1 {
			return errors.New("constant mode circuits are specific to one transaction")
		}

		circuit, err := newCircuit(params, mode, crypto.TransactionVar{})
		if err != nil {
			return err
		}
		prover, err := crypto.NewProver(circuit)
		if err != nil {
			return err
		}
		if err := prover.WriteKeys(config.ProvingKeyFile, config.VerifyingKeyFile); err != nil {
			return err
		}

		log.Info().
			Int("depth", params.TreeDepth).
			Int("batch", config.BatchSize).
			Str("mode", mode.String()).
			Int("constraints", prover.NbConstraints()).
			Str("proving_key", config.ProvingKeyFile).
			Str("verifying_key", config.VerifyingKeyFile).
			Msg("Wrote circuit keys")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(setupCmd)
}
