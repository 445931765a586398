package state

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"
	tedwards "github.com/consensys/gnark-crypto/ecc/twistededwards"
)

const (
	// DefaultTreeDepth allows 2^16 accounts.
	DefaultTreeDepth = 16
	// MaxTreeDepth is bounded by the width of AccountID, since the id is the leaf position.
	MaxTreeDepth = AccountIDBits

	leafDomain     = 1
	twoToOneDomain = 2
)

// HashParameters configures one use of the MiMC hash. The domain tag is absorbed first so that
// leaf digests and internal nodes can never collide.
type HashParameters struct {
	Domain uint64
}

// SignatureParameters selects the twisted Edwards curve used for EdDSA.
type SignatureParameters struct {
	Curve tedwards.ID
}

// Parameters is the constant setup shared by every validation: tree shape, the leaf hash, the
// two-to-one hash and the signature scheme.
type Parameters struct {
	TreeDepth    int
	LeafHash     HashParameters
	TwoToOneHash HashParameters
	Signature    SignatureParameters
}

// DefaultParameters returns the parameters used by the rollup.
func DefaultParameters() Parameters {
	return NewParameters(DefaultTreeDepth)
}

// NewParameters returns the default parameters with a custom tree depth.
func NewParameters(depth int) Parameters {
	return Parameters{
		TreeDepth:    depth,
		LeafHash:     HashParameters{Domain: leafDomain},
		TwoToOneHash: HashParameters{Domain: twoToOneDomain},
		Signature:    SignatureParameters{Curve: tedwards.BN254},
	}
}

// Validate reports setup errors. These abort circuit construction.
func (p *Parameters) Validate() error {
	if p.TreeDepth < 1 || p.TreeDepth > MaxTreeDepth {
		return fmt.Errorf("%w: tree depth %d outside [1, %d]", ErrInvalidParameters, p.TreeDepth, MaxTreeDepth)
	}
	if p.LeafHash.Domain == p.TwoToOneHash.Domain {
		return fmt.Errorf("%w: leaf and node hashes share domain %d", ErrInvalidParameters, p.LeafHash.Domain)
	}
	if p.Signature.Curve != tedwards.BN254 {
		return fmt.Errorf("%w: unsupported signature curve %v", ErrInvalidParameters, p.Signature.Curve)
	}
	return nil
}

// Capacity is the number of leaves of the account tree.
func (p *Parameters) Capacity() uint64 {
	return uint64(1) << uint(p.TreeDepth)
}

// CheckID returns ErrIDOutOfRange when the id has no leaf in the tree.
func (p *Parameters) CheckID(id AccountID) error {
	if uint64(id) >= p.Capacity() {
		return fmt.Errorf("%w: id %d, capacity %d", ErrIDOutOfRange, id, p.Capacity())
	}
	return nil
}

// HashLeaf computes the leaf digest MiMC(domain, A.X, A.Y, balance). It mirrors the in-circuit
// leaf hash.
func (p *Parameters) HashLeaf(info *AccountInformation) fr.Element {
	var domain, balance fr.Element
	domain.SetUint64(p.LeafHash.Domain)
	balance.SetUint64(uint64(info.Balance))
	return hashElements(domain, info.PublicKey.A.X, info.PublicKey.A.Y, balance)
}

// HashTwoToOne computes the internal node digest MiMC(domain, left, right).
func (p *Parameters) HashTwoToOne(left, right fr.Element) fr.Element {
	var domain fr.Element
	domain.SetUint64(p.TwoToOneHash.Domain)
	return hashElements(domain, left, right)
}

func hashElements(elems ...fr.Element) fr.Element {
	h := mimc.NewMiMC()
	for i := range elems {
		b := elems[i].Bytes()
		if _, err := h.Write(b[:]); err != nil {
			// canonical field element encodings are always accepted
			panic("mimc: " + err.Error())
		}
	}
	var res fr.Element
	res.SetBytes(h.Sum(nil))
	return res
}
