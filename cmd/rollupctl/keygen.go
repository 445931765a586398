package main

import (
	"crypto/rand"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"

	"zktransfer/pkg/state"
)

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate an account key pair",
	Long: "Generates an EdDSA key pair on the BN254 twisted Edwards curve.\n" +
		"The public key is the one stored in the account leaf; the private key signs transfers.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		privateKey, publicKey, err := state.GenerateKey(rand.Reader)
		if err != nil {
			return err
		}

		fmt.Println("Generated new account key")
		fmt.Println("-------------------------")
		fmt.Printf("Private Key: %s\n", hexutil.Encode(privateKey.Bytes()))
		fmt.Printf("Public Key:  %s\n", hexutil.Encode(publicKey.Bytes()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(keygenCmd)
}
