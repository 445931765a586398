package crypto

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/backend/witness"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/rs/zerolog/log"
)

// Prover handles proof generation and verification
type Prover struct {
	provingKey   groth16.ProvingKey
	verifyingKey groth16.VerifyingKey
	r1cs         constraint.ConstraintSystem
}

// Compile compiles a circuit definition over the BN254 scalar field.
func Compile(circuit frontend.Circuit) (constraint.ConstraintSystem, error) {
	ccs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, circuit)
	if err != nil {
		return nil, fmt.Errorf("failed to compile circuit: %w", err)
	}
	return ccs, nil
}

// NewProver compiles the circuit and runs a fresh Groth16 setup for it
func NewProver(circuit frontend.Circuit) (*Prover, error) {
	ccs, err := Compile(circuit)
	if err != nil {
		return nil, err
	}

	// Setup the proving and verifying keys
	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		return nil, fmt.Errorf("failed to setup keys: %w", err)
	}

	log.Info().Int("constraints", ccs.GetNbConstraints()).Msg("Circuit setup complete")
	return NewProverWithKeys(ccs, pk, vk), nil
}

// NewProverWithKeys creates a prover from an existing setup
func NewProverWithKeys(ccs constraint.ConstraintSystem, pk groth16.ProvingKey, vk groth16.VerifyingKey) *Prover {
	return &Prover{
		provingKey:   pk,
		verifyingKey: vk,
		r1cs:         ccs,
	}
}

// LoadProver compiles the circuit and reads its keys from the given files
func LoadProver(circuit frontend.Circuit, provingKeyFile, verifyingKeyFile string) (*Prover, error) {
	ccs, err := Compile(circuit)
	if err != nil {
		return nil, err
	}

	pk := groth16.NewProvingKey(ecc.BN254)
	if err := readFrom(provingKeyFile, pk); err != nil {
		return nil, fmt.Errorf("failed to read proving key: %w", err)
	}
	vk := groth16.NewVerifyingKey(ecc.BN254)
	if err := readFrom(verifyingKeyFile, vk); err != nil {
		return nil, fmt.Errorf("failed to read verifying key: %w", err)
	}

	log.Info().Str("proving_key", provingKeyFile).Str("verifying_key", verifyingKeyFile).Msg("Loaded circuit keys")
	return NewProverWithKeys(ccs, pk, vk), nil
}

// WriteKeys saves the proving and verifying keys
func (p *Prover) WriteKeys(provingKeyFile, verifyingKeyFile string) error {
	if err := writeTo(provingKeyFile, p.provingKey); err != nil {
		return fmt.Errorf("failed to write proving key: %w", err)
	}
	if err := writeTo(verifyingKeyFile, p.verifyingKey); err != nil {
		return fmt.Errorf("failed to write verifying key: %w", err)
	}
	return nil
}

// NbConstraints returns the size of the compiled circuit
func (p *Prover) NbConstraints() int {
	return p.r1cs.GetNbConstraints()
}

// GenerateProof generates a proof for the given assignment and returns it with the public
// witness, both serialized
func (p *Prover) GenerateProof(assignment frontend.Circuit) ([]byte, []byte, error) {
	// Create witness
	fullWitness, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create witness: %w", err)
	}

	// Generate proof
	proof, err := groth16.Prove(p.r1cs, p.provingKey, fullWitness)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate proof: %w", err)
	}

	// Serialize the proof
	var buf bytes.Buffer
	if _, err := proof.WriteTo(&buf); err != nil {
		return nil, nil, fmt.Errorf("failed to serialize proof: %w", err)
	}

	// Get public witness
	publicWitness, err := fullWitness.Public()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get public witness: %w", err)
	}
	// Serialize the public witness
	publicWitnessBuf := new(bytes.Buffer)
	if _, err := publicWitness.WriteTo(publicWitnessBuf); err != nil {
		return nil, nil, fmt.Errorf("failed to serialize public witness: %w", err)
	}

	return buf.Bytes(), publicWitnessBuf.Bytes(), nil
}

// VerifyProof verifies a proof against the given public witness
func (p *Prover) VerifyProof(proofBytes, publicWitnessBytes []byte) (bool, error) {
	// Create public witness
	publicWitness, err := witness.New(ecc.BN254.ScalarField())
	if err != nil {
		return false, fmt.Errorf("failed to create witness: %w", err)
	}
	if _, err := publicWitness.ReadFrom(bytes.NewReader(publicWitnessBytes)); err != nil {
		return false, fmt.Errorf("failed to deserialize public witness: %w", err)
	}

	// Deserialize the proof
	proof := groth16.NewProof(ecc.BN254)
	if _, err := proof.ReadFrom(bytes.NewReader(proofBytes)); err != nil {
		return false, fmt.Errorf("failed to deserialize proof: %w", err)
	}

	// Verify the proof
	if err := groth16.Verify(proof, p.verifyingKey, publicWitness); err != nil {
		return false, fmt.Errorf("proof verification failed: %w", err)
	}

	return true, nil
}

func writeTo(path string, v io.WriterTo) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = v.WriteTo(f)
	return err
}

func readFrom(path string, v io.ReaderFrom) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = v.ReadFrom(f)
	return err
}
