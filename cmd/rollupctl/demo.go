package main

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/consensys/gnark-crypto/ecc/bn254/twistededwards/eddsa"
	"github.com/consensys/gnark/frontend"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"zktransfer/pkg/crypto"
	"zktransfer/pkg/state"
	"zktransfer/pkg/util"
)

var demoOpts struct {
	accounts int
	balance  uint64
	amount   uint64
	loadKeys bool
}

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run transfers on an in-memory ledger, prove and verify them",
	Long: "Registers accounts on an in-memory ledger, applies --batch signed transfers between them,\n" +
		"then proves the resulting state transition and verifies the proof.\n" +
		"With --load the keys written by setup are used instead of a fresh setup.",
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
		if demoOpts.accounts < 2 || uint64(demoOpts.accounts) > params.Capacity() {
			return fmt.Errorf("need between 2 and %d accounts, got %d", params.Capacity(), demoOpts.accounts)
		}

		ledger, keys, err := newDemoLedger(params)
		if err != nil {
			return err
		}

		txs := make([]*state.Transaction, config.BatchSize)
		for i := range txs {
			from := state.AccountID(i % demoOpts.accounts)
			to := state.AccountID((i + 1) % demoOpts.accounts)
			txs[i] = &state.Transaction{Sender: from, Recipient: to, Amount: state.Amount(demoOpts.amount)}
			if err := txs[i].Sign(keys[from]); err != nil {
				return err
			}
		}

		transitions, err := ledger.TransferBatch(txs)
		if err != nil {
			return err
		}

		var circuit, assignment frontend.Circuit
		if config.BatchSize > 1 {
			if circuit, err = newCircuit(params, mode, crypto.TransactionVar{}); err != nil {
				return err
			}
			if assignment, err = crypto.NewBatchAssignment(params, txs, transitions); err != nil {
				return err
			}
		} else {
			txVar, err := crypto.NewTransactionVar(&params, txs[0])
			if err != nil {
				return err
			}
			if circuit, err = newCircuit(params, mode, txVar); err != nil {
				return err
			}
			if assignment, err = crypto.NewTransferAssignment(params, mode, txVar, transitions[0]); err != nil {
				return err
			}
		}

		var prover *crypto.Prover
		if demoOpts.loadKeys {
			prover, err = crypto.LoadProver(circuit, config.ProvingKeyFile, config.VerifyingKeyFile)
		} else {
			prover, err = crypto.NewProver(circuit)
		}
		if err != nil {
			return err
		}

		start := time.Now()
		proof, publicWitness, err := prover.GenerateProof(assignment)
		if err != nil {
			return err
		}
		log.Info().
			Dur("elapsed", time.Since(start)).
			Str("proof_size", util.FormatSize(len(proof))).
			Str("pre_root", util.ShortHex(transitions[0].PreRoot.Hex())).
			Str("post_root", util.ShortHex(transitions[len(transitions)-1].PostRoot.Hex())).
			Msg("Generated proof")

		valid, err := prover.VerifyProof(proof, publicWitness)
		if err != nil {
			return err
		}
		fmt.Printf("Proof valid: %v\n", valid)
		for i := 0; i < demoOpts.accounts; i++ {
			acc, err := ledger.Account(state.AccountID(i))
			if err != nil {
				return err
			}
			fmt.Printf("Account %d: %s\n", i, util.FormatAmount(uint64(acc.Balance)))
		}
		return nil
	},
}

func newDemoLedger(params state.Parameters) (*state.State, map[state.AccountID]*eddsa.PrivateKey, error) {
	ledger, err := state.NewState(params)
	if err != nil {
		return nil, nil, err
	}
	keys := make(map[state.AccountID]*eddsa.PrivateKey, demoOpts.accounts)
	for i := 0; i < demoOpts.accounts; i++ {
		id := state.AccountID(i)
		privateKey, publicKey, err := state.GenerateKey(rand.Reader)
		if err != nil {
			return nil, nil, err
		}
		if err := ledger.Register(id, publicKey, state.Amount(demoOpts.balance)); err != nil {
			return nil, nil, err
		}
		keys[id] = privateKey
	}
	log.Info().Int("accounts", demoOpts.accounts).Str("root", util.ShortHex(ledger.Root().Hex())).Msg("Ledger ready")
	return ledger, keys, nil
}

func init() {
	demoCmd.Flags().IntVar(&demoOpts.accounts, "accounts", 4, "number of accounts to register")
	demoCmd.Flags().Uint64Var(&demoOpts.balance, "balance", 1000, "initial balance of every account")
	demoCmd.Flags().Uint64Var(&demoOpts.amount, "amount", 30, "amount of every transfer")
	demoCmd.Flags().BoolVar(&demoOpts.loadKeys, "load", false, "load the keys written by setup")
	rootCmd.AddCommand(demoCmd)
}
