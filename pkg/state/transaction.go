package state

import (
	"fmt"
	"io"
	"slices"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"
	"github.com/consensys/gnark-crypto/ecc/bn254/twistededwards/eddsa"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Transaction transfers Amount from Sender to Recipient. Signature is the sender's EdDSA
// signature over Message().
type Transaction struct {
	Sender    AccountID
	Recipient AccountID
	Amount    Amount
	Signature []byte
}

// Message returns the authorized message: LE(sender) || LE(recipient) || LE(amount).
// The sender's public key is not part of it; it is bound through the sender's leaf.
func (tx *Transaction) Message() []byte {
	msg := make([]byte, 0, (2*AccountIDBits+AmountBits)/8)
	msg = append(msg, tx.Sender.BytesLE()...)
	msg = append(msg, tx.Recipient.BytesLE()...)
	msg = append(msg, tx.Amount.BytesLE()...)
	return msg
}

// MessageElement reads Message() as a little-endian integer. This is the value signed, and the
// value the circuit packs from the sender, recipient and amount variables.
func (tx *Transaction) MessageElement() fr.Element {
	be := tx.Message()
	slices.Reverse(be)
	var e fr.Element
	e.SetBytes(be)
	return e
}

func (tx *Transaction) signedBytes() []byte {
	e := tx.MessageElement()
	b := e.Bytes()
	return b[:]
}

// Sign signs the transaction with the sender's key and stores the signature.
func (tx *Transaction) Sign(privateKey *eddsa.PrivateKey) error {
	signature, err := privateKey.Sign(tx.signedBytes(), mimc.NewMiMC())
	if err != nil {
		return fmt.Errorf("failed to sign transaction: %w", err)
	}
	tx.Signature = signature
	return nil
}

// VerifySignature checks the signature against the given key.
func (tx *Transaction) VerifySignature(pk AccountPublicKey) bool {
	if len(tx.Signature) == 0 {
		return false
	}
	ok, err := pk.Verify(tx.Signature, tx.signedBytes(), mimc.NewMiMC())
	return err == nil && ok
}

// Hash identifies the transaction in logs: keccak256(message || signature).
func (tx *Transaction) Hash() common.Hash {
	return crypto.Keccak256Hash(tx.Message(), tx.Signature)
}

// GenerateKey creates an account key pair from the given randomness source.
func GenerateKey(r io.Reader) (*eddsa.PrivateKey, AccountPublicKey, error) {
	privateKey, err := eddsa.GenerateKey(r)
	if err != nil {
		return nil, AccountPublicKey{}, fmt.Errorf("failed to generate key: %w", err)
	}
	return privateKey, AccountPublicKey{PublicKey: privateKey.PublicKey}, nil
}
