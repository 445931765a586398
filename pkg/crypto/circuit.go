package crypto

import (
	"errors"
	"fmt"

	"github.com/consensys/gnark/frontend"

	"zktransfer/pkg/state"
)

// TransferAccounts is the part of a transition witness that is always private: the accounts
// touched by the transfer as they were before it, and their paths in both trees.
type TransferAccounts struct {
	PreSender         AccountInformationVar
	PreSenderPath     AccPathVar
	PostSenderPath    AccPathVar
	PreRecipient      AccountInformationVar
	PreRecipientPath  AccPathVar
	PostRecipientPath AccPathVar
}

// TransferCircuit proves a transfer between two published roots without revealing it.
type TransferCircuit struct {
	PreRoot  frontend.Variable `gnark:",public"`
	PostRoot frontend.Variable `gnark:",public"`

	Tx       TransactionVar `gnark:",secret"`
	Accounts TransferAccounts

	Params state.Parameters `gnark:"-"`
}

// Define declares the circuit constraints
func (c *TransferCircuit) Define(api frontend.API) error {
	c.Tx.AssertIsWellFormed(api)
	return defineTransfer(api, &c.Params, &c.Tx, &c.Accounts, c.PreRoot, c.PostRoot)
}

// PublicTransferCircuit is TransferCircuit with the transaction supplied by the verifier.
type PublicTransferCircuit struct {
	PreRoot  frontend.Variable `gnark:",public"`
	PostRoot frontend.Variable `gnark:",public"`

	Tx       TransactionVar `gnark:",public"`
	Accounts TransferAccounts

	Params state.Parameters `gnark:"-"`
}

// Define declares the circuit constraints
func (c *PublicTransferCircuit) Define(api frontend.API) error {
	c.Tx.AssertIsWellFormed(api)
	return defineTransfer(api, &c.Params, &c.Tx, &c.Accounts, c.PreRoot, c.PostRoot)
}

// ConstantTransferCircuit is TransferCircuit with the transaction compiled into the
// constraint system. Each transaction needs its own setup.
type ConstantTransferCircuit struct {
	PreRoot  frontend.Variable `gnark:",public"`
	PostRoot frontend.Variable `gnark:",public"`

	Tx       TransactionVar `gnark:"-"`
	Accounts TransferAccounts

	Params state.Parameters `gnark:"-"`
}

// Define declares the circuit constraints
func (c *ConstantTransferCircuit) Define(api frontend.API) error {
	return defineTransfer(api, &c.Params, &c.Tx, &c.Accounts, c.PreRoot, c.PostRoot)
}

func defineTransfer(api frontend.API, params *state.Parameters, tx *TransactionVar, acc *TransferAccounts, preRoot, postRoot frontend.Variable) error {
	valid, err := tx.Validate(api, params,
		&acc.PreSender, &acc.PreSenderPath, &acc.PostSenderPath,
		&acc.PreRecipient, &acc.PreRecipientPath, &acc.PostRecipientPath,
		preRoot, postRoot,
	)
	if err != nil {
		return err
	}
	api.AssertIsEqual(valid, 1)
	return nil
}

// NewTransferCircuit returns the circuit definition to compile for the given allocation mode.
// In Constant mode txVar is part of the definition; otherwise it is ignored.
func NewTransferCircuit(params state.Parameters, mode AllocationMode, txVar TransactionVar) (frontend.Circuit, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	accounts := placeholderAccounts(params.TreeDepth)
	switch mode {
	case Constant:
		return &ConstantTransferCircuit{Tx: txVar, Accounts: accounts, Params: params}, nil
	case PublicInput:
		return &PublicTransferCircuit{Accounts: accounts, Params: params}, nil
	case Witness:
		return &TransferCircuit{Accounts: accounts, Params: params}, nil
	default:
		return nil, fmt.Errorf("unknown allocation mode %d", mode)
	}
}

// NewTransferAssignment returns the full assignment of the circuit built by NewTransferCircuit
// for the same mode.
func NewTransferAssignment(params state.Parameters, mode AllocationMode, txVar TransactionVar, tr *state.Transition) (frontend.Circuit, error) {
	accounts, err := NewTransferAccounts(&params, tr)
	if err != nil {
		return nil, err
	}
	preRoot, postRoot := ValueOfRoot(tr.PreRoot), ValueOfRoot(tr.PostRoot)
	switch mode {
	case Constant:
		return &ConstantTransferCircuit{PreRoot: preRoot, PostRoot: postRoot, Tx: txVar, Accounts: accounts, Params: params}, nil
	case PublicInput:
		return &PublicTransferCircuit{PreRoot: preRoot, PostRoot: postRoot, Tx: txVar, Accounts: accounts, Params: params}, nil
	case Witness:
		return &TransferCircuit{PreRoot: preRoot, PostRoot: postRoot, Tx: txVar, Accounts: accounts, Params: params}, nil
	default:
		return nil, fmt.Errorf("unknown allocation mode %d", mode)
	}
}

// TransferWitness is one step of a batch. Its pre root is the post root of the previous step,
// or the batch initial root for the first one.
type TransferWitness struct {
	Tx       TransactionVar
	Accounts TransferAccounts
	PostRoot frontend.Variable
}

// BatchCircuit proves an ordered sequence of transfers taking InitialRoot to FinalRoot. The
// intermediate roots stay private.
type BatchCircuit struct {
	InitialRoot frontend.Variable `gnark:",public"`
	FinalRoot   frontend.Variable `gnark:",public"`

	Transfers []TransferWitness

	Params state.Parameters `gnark:"-"`
}

// ErrEmptyBatch is returned when a batch circuit is built without transfers.
var ErrEmptyBatch = errors.New("batch has no transfers")

// Define declares the circuit constraints
func (c *BatchCircuit) Define(api frontend.API) error {
	if len(c.Transfers) == 0 {
		return ErrEmptyBatch
	}

	root := c.InitialRoot
	var valid frontend.Variable = 1
	for i := range c.Transfers {
		t := &c.Transfers[i]
		t.Tx.AssertIsWellFormed(api)
		ok, err := t.Tx.Validate(api, &c.Params,
			&t.Accounts.PreSender, &t.Accounts.PreSenderPath, &t.Accounts.PostSenderPath,
			&t.Accounts.PreRecipient, &t.Accounts.PreRecipientPath, &t.Accounts.PostRecipientPath,
			root, t.PostRoot,
		)
		if err != nil {
			return fmt.Errorf("transfer %d: %w", i, err)
		}
		valid = api.And(valid, ok)
		root = t.PostRoot
	}

	api.AssertIsEqual(root, c.FinalRoot)
	api.AssertIsEqual(valid, 1)
	return nil
}

// NewBatchCircuit returns the definition of a batch circuit for size transfers.
func NewBatchCircuit(params state.Parameters, size int) (*BatchCircuit, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if size <= 0 {
		return nil, ErrEmptyBatch
	}
	transfers := make([]TransferWitness, size)
	for i := range transfers {
		transfers[i].Accounts = placeholderAccounts(params.TreeDepth)
	}
	return &BatchCircuit{Transfers: transfers, Params: params}, nil
}

// NewBatchAssignment builds the assignment of a batch circuit from the transitions returned by
// state.State.TransferBatch.
func NewBatchAssignment(params state.Parameters, txs []*state.Transaction, transitions []*state.Transition) (*BatchCircuit, error) {
	if len(txs) == 0 {
		return nil, ErrEmptyBatch
	}
	if len(txs) != len(transitions) {
		return nil, fmt.Errorf("%d transactions for %d transitions", len(txs), len(transitions))
	}

	transfers := make([]TransferWitness, len(txs))
	for i := range txs {
		txVar, err := NewTransactionVar(&params, txs[i])
		if err != nil {
			return nil, fmt.Errorf("transfer %d: %w", i, err)
		}
		accounts, err := NewTransferAccounts(&params, transitions[i])
		if err != nil {
			return nil, fmt.Errorf("transfer %d: %w", i, err)
		}
		if i > 0 && transitions[i].PreRoot != transitions[i-1].PostRoot {
			return nil, fmt.Errorf("transfer %d does not start from the previous post root", i)
		}
		transfers[i] = TransferWitness{
			Tx:       txVar,
			Accounts: accounts,
			PostRoot: ValueOfRoot(transitions[i].PostRoot),
		}
	}

	return &BatchCircuit{
		InitialRoot: ValueOfRoot(transitions[0].PreRoot),
		FinalRoot:   ValueOfRoot(transitions[len(transitions)-1].PostRoot),
		Transfers:   transfers,
		Params:      params,
	}, nil
}
