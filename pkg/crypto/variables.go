package crypto

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	nativeEddsa "github.com/consensys/gnark-crypto/ecc/bn254/twistededwards/eddsa"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/algebra/native/twistededwards"
	"github.com/consensys/gnark/std/signature/eddsa"

	"zktransfer/pkg/state"
)

// AllocationMode controls what the verifier learns about an allocated value.
type AllocationMode int

const (
	// Constant values are baked into the circuit and known to everyone.
	Constant AllocationMode = iota
	// PublicInput values are supplied by the verifier at verification time.
	PublicInput
	// Witness values are known only to the prover.
	Witness
)

func (m AllocationMode) String() string {
	switch m {
	case Constant:
		return "constant"
	case PublicInput:
		return "public"
	case Witness:
		return "witness"
	default:
		return "unknown"
	}
}

// ParseAllocationMode is the inverse of AllocationMode.String.
func ParseAllocationMode(s string) (AllocationMode, error) {
	for _, m := range []AllocationMode{Constant, PublicInput, Witness} {
		if m.String() == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown allocation mode %q", s)
}

// AccountIDVar is an account id inside the circuit.
type AccountIDVar struct {
	ID frontend.Variable
}

// AmountVar is an amount or balance inside the circuit.
type AmountVar struct {
	Value frontend.Variable
}

// AccountInformationVar is an account leaf inside the circuit.
type AccountInformationVar struct {
	PublicKey eddsa.PublicKey
	Balance   AmountVar
}

// AccPathVar is an authentication path inside the circuit, siblings from the leaf level up.
// The leaf position is not part of the path: it is the account id.
type AccPathVar struct {
	Siblings []frontend.Variable
}

// AccRootVar is a Merkle root inside the circuit.
type AccRootVar = frontend.Variable

// ValueOfAccountID converts an account id, failing when the id has no leaf in the tree.
func ValueOfAccountID(params *state.Parameters, id state.AccountID) (AccountIDVar, error) {
	if err := params.CheckID(id); err != nil {
		return AccountIDVar{}, err
	}
	return AccountIDVar{ID: uint64(id)}, nil
}

// ValueOfAmount converts an amount.
func ValueOfAmount(a state.Amount) AmountVar {
	return AmountVar{Value: new(big.Int).SetUint64(uint64(a))}
}

// ValueOfPublicKey converts an account key.
func ValueOfPublicKey(pk state.AccountPublicKey) eddsa.PublicKey {
	x, y := pk.Coordinates()
	return eddsa.PublicKey{A: twistededwards.Point{X: x, Y: y}}
}

// ValueOfSignature decodes a serialized EdDSA signature.
func ValueOfSignature(buf []byte) (eddsa.Signature, error) {
	var sig nativeEddsa.Signature
	if _, err := sig.SetBytes(buf); err != nil {
		return eddsa.Signature{}, fmt.Errorf("failed to decode signature: %w", err)
	}
	s := new(big.Int).SetBytes(sig.S[:])
	if s.Cmp(fr.Modulus()) >= 0 {
		return eddsa.Signature{}, fmt.Errorf("signature scalar outside the scalar field")
	}
	return eddsa.Signature{
		R: twistededwards.Point{
			X: sig.R.X.BigInt(new(big.Int)),
			Y: sig.R.Y.BigInt(new(big.Int)),
		},
		S: s,
	}, nil
}

// ValueOfAccountInformation converts an account leaf.
func ValueOfAccountInformation(info state.AccountInformation) AccountInformationVar {
	return AccountInformationVar{
		PublicKey: ValueOfPublicKey(info.PublicKey),
		Balance:   ValueOfAmount(info.Balance),
	}
}

// ValueOfPath converts an authentication path, which must match the tree depth.
func ValueOfPath(params *state.Parameters, path state.AccountPath) (AccPathVar, error) {
	if len(path.Siblings) != params.TreeDepth {
		return AccPathVar{}, fmt.Errorf("path has %d siblings, tree depth is %d", len(path.Siblings), params.TreeDepth)
	}
	siblings := make([]frontend.Variable, len(path.Siblings))
	for i := range path.Siblings {
		siblings[i] = path.Siblings[i].BigInt(new(big.Int))
	}
	return AccPathVar{Siblings: siblings}, nil
}

// ValueOfRoot converts a Merkle root.
func ValueOfRoot(root state.MerkleRoot) AccRootVar {
	return root.BigInt()
}

func placeholderPath(depth int) AccPathVar {
	return AccPathVar{Siblings: make([]frontend.Variable, depth)}
}

// NewTransactionVar builds the circuit form of every transaction field. The same values serve
// all allocation modes; the mode only decides how the enclosing circuit declares them. It
// fails on values the circuit cannot represent, never on semantic invalidity.
func NewTransactionVar(params *state.Parameters, tx *state.Transaction) (TransactionVar, error) {
	if err := params.Validate(); err != nil {
		return TransactionVar{}, err
	}
	sender, err := ValueOfAccountID(params, tx.Sender)
	if err != nil {
		return TransactionVar{}, fmt.Errorf("sender: %w", err)
	}
	recipient, err := ValueOfAccountID(params, tx.Recipient)
	if err != nil {
		return TransactionVar{}, fmt.Errorf("recipient: %w", err)
	}
	signature, err := ValueOfSignature(tx.Signature)
	if err != nil {
		return TransactionVar{}, err
	}
	return TransactionVar{
		Sender:    sender,
		Recipient: recipient,
		Amount:    ValueOfAmount(tx.Amount),
		Signature: signature,
	}, nil
}

// NewTransferAccounts converts the account part of a transition witness.
func NewTransferAccounts(params *state.Parameters, tr *state.Transition) (TransferAccounts, error) {
	paths := []state.AccountPath{tr.PreSenderPath, tr.PostSenderPath, tr.PreRecipientPath, tr.PostRecipientPath}
	vars := make([]AccPathVar, len(paths))
	for i := range paths {
		p, err := ValueOfPath(params, paths[i])
		if err != nil {
			return TransferAccounts{}, err
		}
		vars[i] = p
	}
	return TransferAccounts{
		PreSender:         ValueOfAccountInformation(tr.PreSender),
		PreSenderPath:     vars[0],
		PostSenderPath:    vars[1],
		PreRecipient:      ValueOfAccountInformation(tr.PreRecipient),
		PreRecipientPath:  vars[2],
		PostRecipientPath: vars[3],
	}, nil
}

func placeholderAccounts(depth int) TransferAccounts {
	return TransferAccounts{
		PreSenderPath:     placeholderPath(depth),
		PostSenderPath:    placeholderPath(depth),
		PreRecipientPath:  placeholderPath(depth),
		PostRecipientPath: placeholderPath(depth),
	}
}
