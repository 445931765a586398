package crypto

import (
	"path/filepath"
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/test"
	"github.com/stretchr/testify/require"

	"zktransfer/pkg/state"
)

func TestTransferCircuitProverSucceeded(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping groth16 setup in short mode")
	}

	l := newLedger(t, map[state.AccountID]state.Amount{1: 100, 2: 10})
	tx := l.signed(t, 1, 2, 30)
	tr, err := l.state.Transfer(tx)
	require.NoError(t, err)

	txVar, err := NewTransactionVar(&l.params, tx)
	require.NoError(t, err)
	circuit, err := NewTransferCircuit(l.params, Witness, txVar)
	require.NoError(t, err)
	assignment, err := NewTransferAssignment(l.params, Witness, txVar, tr)
	require.NoError(t, err)

	assert := test.NewAssert(t)
	assert.ProverSucceeded(circuit, assignment, test.WithCurves(ecc.BN254), test.WithBackends(backend.GROTH16))
}

// TestEndToEndProofGeneration tests the complete proof generation and verification process
func TestEndToEndProofGeneration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping groth16 setup in short mode")
	}

	l := newLedger(t, map[state.AccountID]state.Amount{1: 100, 2: 10})
	tx := l.signed(t, 1, 2, 30)
	tr, err := l.state.Transfer(tx)
	require.NoError(t, err)

	txVar, err := NewTransactionVar(&l.params, tx)
	require.NoError(t, err)
	circuit, err := NewTransferCircuit(l.params, Witness, txVar)
	require.NoError(t, err)

	prover, err := NewProver(circuit)
	require.NoError(t, err)
	require.Positive(t, prover.NbConstraints())

	assignment, err := NewTransferAssignment(l.params, Witness, txVar, tr)
	require.NoError(t, err)
	proof, pubWitness, err := prover.GenerateProof(assignment)
	require.NoError(t, err)

	valid, err := prover.VerifyProof(proof, pubWitness)
	require.NoError(t, err)
	require.True(t, valid)

	// keys survive a round trip through files
	dir := t.TempDir()
	pkFile, vkFile := filepath.Join(dir, "transfer.pk"), filepath.Join(dir, "transfer.vk")
	require.NoError(t, prover.WriteKeys(pkFile, vkFile))
	loaded, err := LoadProver(circuit, pkFile, vkFile)
	require.NoError(t, err)
	valid, err = loaded.VerifyProof(proof, pubWitness)
	require.NoError(t, err)
	require.True(t, valid)

	// the proof does not verify against other roots
	other := l.signed(t, 2, 1, 5)
	next, err := l.state.Transfer(other)
	require.NoError(t, err)
	otherAssignment, err := NewTransferAssignment(l.params, Witness, txVar, next)
	require.NoError(t, err)
	otherPub := publicWitnessBytes(t, otherAssignment)
	valid, err = prover.VerifyProof(proof, otherPub)
	require.Error(t, err)
	require.False(t, valid)
}

func publicWitnessBytes(t *testing.T, assignment frontend.Circuit) []byte {
	t.Helper()
	w, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField(), frontend.PublicOnly())
	require.NoError(t, err)
	buf, err := w.MarshalBinary()
	require.NoError(t, err)
	return buf
}
