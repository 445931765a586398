package state

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/twistededwards/eddsa"
	"github.com/ethereum/go-ethereum/common"
)

// Error types
var (
	ErrAccountNotFound   = errors.New("account not found")
	ErrAccountExists     = errors.New("account already registered")
	ErrInvalidSignature  = errors.New("invalid signature")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrBalanceOverflow   = errors.New("balance overflow")
	ErrSelfTransfer      = errors.New("self transfer with non-zero amount")
	ErrIDOutOfRange      = errors.New("account id exceeds tree capacity")
	ErrInvalidParameters = errors.New("invalid ledger parameters")
)

const (
	// AccountIDBits is the width of the canonical account id encoding.
	AccountIDBits = 32
	// AmountBits is the width of the canonical amount encoding. Balances live in the same range.
	AmountBits = 64
)

// AccountID identifies an account. It is also the position of the account leaf in the tree.
type AccountID uint32

// BytesLE returns the canonical little-endian encoding of the id.
func (id AccountID) BytesLE() []byte {
	buf := make([]byte, AccountIDBits/8)
	binary.LittleEndian.PutUint32(buf, uint32(id))
	return buf
}

// Amount is a bounded non-negative quantity of the ledger's native asset.
type Amount uint64

// BytesLE returns the canonical little-endian encoding of the amount.
func (a Amount) BytesLE() []byte {
	buf := make([]byte, AmountBits/8)
	binary.LittleEndian.PutUint64(buf, uint64(a))
	return buf
}

// CheckedAdd returns a+b, or ErrBalanceOverflow when the sum does not fit in AmountBits.
func (a Amount) CheckedAdd(b Amount) (Amount, error) {
	sum := a + b
	if sum < a {
		return 0, ErrBalanceOverflow
	}
	return sum, nil
}

// CheckedSub returns a-b, or ErrInsufficientFunds when b > a.
func (a Amount) CheckedSub(b Amount) (Amount, error) {
	if b > a {
		return 0, ErrInsufficientFunds
	}
	return a - b, nil
}

// AccountPublicKey is the EdDSA key (a point on the BN254 twisted Edwards curve) bound to an account.
type AccountPublicKey struct {
	eddsa.PublicKey
}

// PublicKeyFromBytes decodes a compressed public key.
func PublicKeyFromBytes(buf []byte) (AccountPublicKey, error) {
	var pk AccountPublicKey
	if _, err := pk.SetBytes(buf); err != nil {
		return AccountPublicKey{}, fmt.Errorf("failed to decode public key: %w", err)
	}
	return pk, nil
}

// Coordinates returns the affine coordinates of the key as integers.
func (pk *AccountPublicKey) Coordinates() (x, y *big.Int) {
	return pk.A.X.BigInt(new(big.Int)), pk.A.Y.BigInt(new(big.Int))
}

// AccountInformation is the content of an account leaf.
type AccountInformation struct {
	PublicKey AccountPublicKey
	Balance   Amount
}

// Bytes returns the canonical serialization of the leaf: compressed key || LE(balance).
func (a *AccountInformation) Bytes() []byte {
	buf := a.PublicKey.Bytes()
	return append(buf, a.Balance.BytesLE()...)
}

// WithBalance returns a copy of the account holding the given balance.
func (a AccountInformation) WithBalance(balance Amount) AccountInformation {
	a.Balance = balance
	return a
}

// MerkleRoot is the digest of the account tree, stored as the big-endian bytes of a field element.
type MerkleRoot [32]byte

// RootFromElement converts a field element into a MerkleRoot.
func RootFromElement(e fr.Element) MerkleRoot {
	return MerkleRoot(e.Bytes())
}

// Element returns the root as a field element.
func (r MerkleRoot) Element() fr.Element {
	var e fr.Element
	e.SetBytes(r[:])
	return e
}

// BigInt returns the root as an integer, the form expected by circuit assignments.
func (r MerkleRoot) BigInt() *big.Int {
	return new(big.Int).SetBytes(r[:])
}

// Hex returns the 0x-prefixed hex form of the root.
func (r MerkleRoot) Hex() string {
	return common.BytesToHash(r[:]).Hex()
}

func (r MerkleRoot) String() string {
	return r.Hex()
}

// AccountPath is the authentication path of one leaf, siblings ordered from the leaf level up.
type AccountPath struct {
	Siblings []fr.Element
}

// Transition carries everything needed to prove one transfer against the ledger: the roots
// before and after, the pre-transaction account leaves and the pre/post paths of both accounts.
type Transition struct {
	PreRoot  MerkleRoot
	PostRoot MerkleRoot

	PreSender      AccountInformation
	PreSenderPath  AccountPath
	PostSenderPath AccountPath

	PreRecipient      AccountInformation
	PreRecipientPath  AccountPath
	PostRecipientPath AccountPath
}
