package crypto

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/algebra/native/twistededwards"
	"github.com/consensys/gnark/std/hash/mimc"
	"github.com/consensys/gnark/std/signature/eddsa"

	"zktransfer/pkg/state"
)

// hashVariables computes MiMC(data...) with a fresh hasher.
func hashVariables(api frontend.API, data ...frontend.Variable) (frontend.Variable, error) {
	hasher, err := mimc.NewMiMC(api)
	if err != nil {
		return nil, fmt.Errorf("failed to create mimc hasher: %w", err)
	}
	hasher.Write(data...)
	return hasher.Sum(), nil
}

// hashLeaf mirrors state.Parameters.HashLeaf.
func hashLeaf(api frontend.API, params *state.Parameters, leaf *AccountInformationVar) (frontend.Variable, error) {
	return hashVariables(api, params.LeafHash.Domain, leaf.PublicKey.A.X, leaf.PublicKey.A.Y, leaf.Balance.Value)
}

// hashTwoToOne mirrors state.Parameters.HashTwoToOne.
func hashTwoToOne(api frontend.API, params *state.Parameters, left, right frontend.Variable) (frontend.Variable, error) {
	return hashVariables(api, params.TwoToOneHash.Domain, left, right)
}

// VerifyMembership returns 1 iff leaf, placed at position and hashed up through the path,
// reproduces root. position must fit in the tree depth; a wider value leaves the circuit
// unsatisfiable.
func (p *AccPathVar) VerifyMembership(
	api frontend.API,
	params *state.Parameters,
	leaf *AccountInformationVar,
	position AccountIDVar,
	root AccRootVar,
) (frontend.Variable, error) {
	if len(p.Siblings) != params.TreeDepth {
		return nil, fmt.Errorf("path has %d siblings, tree depth is %d", len(p.Siblings), params.TreeDepth)
	}

	current, err := hashLeaf(api, params, leaf)
	if err != nil {
		return nil, err
	}

	// bit i set: the running node is the right child at level i
	directions := api.ToBinary(position.ID, params.TreeDepth)
	for i, sibling := range p.Siblings {
		left := api.Select(directions[i], sibling, current)
		right := api.Select(directions[i], current, sibling)
		if current, err = hashTwoToOne(api, params, left, right); err != nil {
			return nil, err
		}
	}

	return api.IsZero(api.Sub(current, root)), nil
}

// CheckedAdd returns a+b and constrains the sum to AmountBits bits, so an overflowing witness
// cannot satisfy the circuit.
func (a AmountVar) CheckedAdd(api frontend.API, rc frontend.Rangechecker, b AmountVar) AmountVar {
	sum := api.Add(a.Value, b.Value)
	rc.Check(sum, state.AmountBits)
	return AmountVar{Value: sum}
}

// CheckedSub returns a-b and constrains the difference to AmountBits bits. When b > a the
// difference wraps around the field and the range check cannot be satisfied.
func (a AmountVar) CheckedSub(api frontend.API, rc frontend.Rangechecker, b AmountVar) AmountVar {
	diff := api.Sub(a.Value, b.Value)
	rc.Check(diff, state.AmountBits)
	return AmountVar{Value: diff}
}

// isOnCurve returns 1 iff a*x^2 + y^2 == 1 + d*x^2*y^2.
func isOnCurve(api frontend.API, params *twistededwards.CurveParams, p twistededwards.Point) frontend.Variable {
	xx := api.Mul(p.X, p.X)
	yy := api.Mul(p.Y, p.Y)
	lhs := api.Add(api.Mul(params.A, xx), yy)
	rhs := api.Add(1, api.Mul(params.D, xx, yy))
	return api.IsZero(api.Sub(lhs, rhs))
}

// verifyEdDSA returns 1 iff sig is a valid EdDSA signature of msg under pubKey, with
// H(R, A, M) computed by MiMC. It follows gnark's eddsa.Verify, but the final identity check
// is returned as a boolean instead of being asserted.
func verifyEdDSA(api frontend.API, params *state.Parameters, sig eddsa.Signature, msg frontend.Variable, pubKey eddsa.PublicKey) (frontend.Variable, error) {
	curve, err := twistededwards.NewEdCurve(api, params.Signature.Curve)
	if err != nil {
		return nil, fmt.Errorf("failed to create twisted edwards curve: %w", err)
	}
	cp := curve.Params()
	if !cp.Cofactor.IsUint64() || cp.Cofactor.Uint64()&(cp.Cofactor.Uint64()-1) != 0 {
		return nil, fmt.Errorf("unsupported curve cofactor %s", cp.Cofactor.String())
	}

	hRAM, err := hashVariables(api, sig.R.X, sig.R.Y, pubKey.A.X, pubKey.A.Y, msg)
	if err != nil {
		return nil, err
	}

	base := twistededwards.Point{X: cp.Base[0], Y: cp.Base[1]}

	// [S]G - [H(R,A,M)]A
	q := curve.DoubleBaseScalarMul(base, curve.Neg(pubKey.A), sig.S, hRAM)
	// R - ([S]G - [H(R,A,M)]A)
	q = curve.Add(curve.Neg(q), sig.R)
	for c := cp.Cofactor.Uint64(); c > 1; c >>= 1 {
		q = curve.Double(q)
	}

	isIdentity := api.And(api.IsZero(q.X), api.IsZero(api.Sub(q.Y, 1)))
	pointsOnCurve := api.And(isOnCurve(api, cp, sig.R), isOnCurve(api, cp, pubKey.A))
	return api.And(isIdentity, pointsOnCurve), nil
}

// recipientShift and amountShift pack LE(sender) || LE(recipient) || LE(amount) into one field
// element.
var (
	recipientShift = new(big.Int).Lsh(big.NewInt(1), state.AccountIDBits)
	amountShift    = new(big.Int).Lsh(big.NewInt(1), 2*state.AccountIDBits)
)
