package state

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
)

// State is a native copy of the ledger used to build witnesses. It is not the authoritative
// ledger; it only tracks what is needed to produce paths and roots for proofs.
type State struct {
	mu sync.RWMutex

	params    Parameters
	accounts  map[AccountID]*AccountInformation
	stateTree *MerkleTree
	applied   uint64
}

// NewState creates an empty ledger with the given parameters.
func NewState(params Parameters) (*State, error) {
	tree, err := NewMerkleTree(params)
	if err != nil {
		return nil, err
	}
	return &State{
		params:    params,
		accounts:  make(map[AccountID]*AccountInformation),
		stateTree: tree,
	}, nil
}

// Params returns the ledger parameters.
func (s *State) Params() Parameters {
	return s.params
}

// Register inserts a new account leaf.
func (s *State) Register(id AccountID, pk AccountPublicKey, balance Amount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.params.CheckID(id); err != nil {
		return err
	}
	if _, exists := s.accounts[id]; exists {
		return fmt.Errorf("%w: %d", ErrAccountExists, id)
	}
	return s.setAccount(id, AccountInformation{PublicKey: pk, Balance: balance})
}

// Account returns a copy of the account leaf.
func (s *State) Account(id AccountID) (AccountInformation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acc, ok := s.accounts[id]
	if !ok {
		return AccountInformation{}, fmt.Errorf("%w: %d", ErrAccountNotFound, id)
	}
	return *acc, nil
}

// Root returns the current root of the account tree.
func (s *State) Root() MerkleRoot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stateTree.Root()
}

// Path returns the current authentication path of an account.
func (s *State) Path(id AccountID) (AccountPath, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stateTree.Path(uint64(id))
}

// Applied returns the number of transfers applied to the ledger.
func (s *State) Applied() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.applied
}

// Transfer validates tx against the ledger, applies it and returns the transition witness.
// Transactions rejected here cannot be proven: the circuit predicate would be false or the
// witness unsatisfiable.
func (s *State) Transfer(tx *Transaction) (*Transition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tr, err := s.transfer(tx)
	if err != nil {
		return nil, err
	}
	s.applied++
	return tr, nil
}

// TransferBatch applies the transactions in order. If one fails, the transfers already applied
// by this call are reverted and the error is returned.
func (s *State) TransferBatch(txs []*Transaction) ([]*Transition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	transitions := make([]*Transition, 0, len(txs))
	for i, tx := range txs {
		tr, err := s.transfer(tx)
		if err != nil {
			s.revert(txs[:i], transitions)
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}
		transitions = append(transitions, tr)
	}
	s.applied += uint64(len(txs))
	log.Info().Int("tx_count", len(txs)).Str("state_root", s.stateTree.Root().Hex()).Msg("Applied transfer batch")
	return transitions, nil
}

func (s *State) transfer(tx *Transaction) (*Transition, error) {
	sender, ok := s.accounts[tx.Sender]
	if !ok {
		return nil, fmt.Errorf("sender %d: %w", tx.Sender, ErrAccountNotFound)
	}
	recipient, ok := s.accounts[tx.Recipient]
	if !ok {
		return nil, fmt.Errorf("recipient %d: %w", tx.Recipient, ErrAccountNotFound)
	}
	if !tx.VerifySignature(sender.PublicKey) {
		return nil, ErrInvalidSignature
	}
	// both post leaves land on the same position, only equal when nothing moves
	if tx.Sender == tx.Recipient && tx.Amount != 0 {
		return nil, ErrSelfTransfer
	}
	senderBalance, err := sender.Balance.CheckedSub(tx.Amount)
	if err != nil {
		return nil, err
	}
	recipientBalance, err := recipient.Balance.CheckedAdd(tx.Amount)
	if err != nil {
		return nil, err
	}

	tr := &Transition{
		PreRoot:      s.stateTree.Root(),
		PreSender:    *sender,
		PreRecipient: *recipient,
	}
	if tr.PreSenderPath, err = s.stateTree.Path(uint64(tx.Sender)); err != nil {
		return nil, err
	}
	if tr.PreRecipientPath, err = s.stateTree.Path(uint64(tx.Recipient)); err != nil {
		return nil, err
	}

	// Post paths are taken after both leaves are updated
	if err := s.setAccount(tx.Sender, tr.PreSender.WithBalance(senderBalance)); err != nil {
		return nil, err
	}
	if err := s.setAccount(tx.Recipient, tr.PreRecipient.WithBalance(recipientBalance)); err != nil {
		return nil, err
	}

	tr.PostRoot = s.stateTree.Root()
	if tr.PostSenderPath, err = s.stateTree.Path(uint64(tx.Sender)); err != nil {
		return nil, err
	}
	if tr.PostRecipientPath, err = s.stateTree.Path(uint64(tx.Recipient)); err != nil {
		return nil, err
	}

	log.Debug().
		Str("tx", tx.Hash().Hex()).
		Uint32("from", uint32(tx.Sender)).
		Uint32("to", uint32(tx.Recipient)).
		Uint64("amount", uint64(tx.Amount)).
		Str("pre_root", tr.PreRoot.Hex()).
		Str("post_root", tr.PostRoot.Hex()).
		Msg("Applied transfer")
	return tr, nil
}

func (s *State) revert(txs []*Transaction, transitions []*Transition) {
	for i := len(transitions) - 1; i >= 0; i-- {
		tr := transitions[i]
		// errors are impossible here: both ids were accepted on the way forward
		_ = s.setAccount(txs[i].Recipient, tr.PreRecipient)
		_ = s.setAccount(txs[i].Sender, tr.PreSender)
	}
}

func (s *State) setAccount(id AccountID, info AccountInformation) error {
	if err := s.stateTree.Update(uint64(id), s.params.HashLeaf(&info)); err != nil {
		return err
	}
	s.accounts[id] = &info
	return nil
}
