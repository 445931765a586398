package crypto

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/rangecheck"
	"github.com/consensys/gnark/std/signature/eddsa"

	"zktransfer/pkg/state"
)

// TransactionVar is a transfer of Amount from Sender to Recipient inside the circuit.
type TransactionVar struct {
	Sender    AccountIDVar
	Recipient AccountIDVar
	Amount    AmountVar
	// Signature is the sender's authorization over (Sender, Recipient, Amount)
	Signature eddsa.Signature
}

// AssertIsWellFormed registers the shape constraints of an allocated (public or witness)
// transaction: both ids fit in AccountIDBits and the amount in AmountBits. Constant
// transactions are checked natively by NewTransactionVar instead.
func (tx *TransactionVar) AssertIsWellFormed(api frontend.API) {
	rc := rangecheck.New(api)
	rc.Check(tx.Sender.ID, state.AccountIDBits)
	rc.Check(tx.Recipient.ID, state.AccountIDBits)
	rc.Check(tx.Amount.Value, state.AmountBits)
}

// message packs LE(sender) || LE(recipient) || LE(amount), read as a little-endian integer,
// into a single field element. It equals state.Transaction.MessageElement.
func (tx *TransactionVar) message(api frontend.API) frontend.Variable {
	return api.Add(
		tx.Sender.ID,
		api.Mul(tx.Recipient.ID, recipientShift),
		api.Mul(tx.Amount.Value, amountShift),
	)
}

// VerifySignature returns 1 iff the signature is valid for the sender message under pubKey.
func (tx *TransactionVar) VerifySignature(api frontend.API, params *state.Parameters, pubKey eddsa.PublicKey) (frontend.Variable, error) {
	return verifyEdDSA(api, params, tx.Signature, tx.message(api), pubKey)
}

func (tx *TransactionVar) checkAccountExistence(
	api frontend.API,
	params *state.Parameters,
	accountPath *AccPathVar,
	id AccountIDVar,
	account *AccountInformationVar,
	root AccRootVar,
) (frontend.Variable, error) {
	return accountPath.VerifyMembership(api, params, account, id, root)
}

// Validate checks the transaction against the ledger transition preRoot -> postRoot:
//  1. the signature is valid under the sender's pre-transaction key,
//  2. the sender can afford the amount (checked subtraction),
//  3. the recipient balance does not overflow (checked addition),
//  4. the sender leaf is in preRoot and its updated form is in postRoot,
//  5. the same holds for the recipient.
//
// It returns the AND of all checks. Every check is evaluated whatever the outcome of the
// others; a failed check yields 0, and a failed checked-arithmetic step leaves the circuit
// unsatisfiable. The result is not asserted: the caller decides how to enforce it. The
// returned error only reports circuit construction failures.
func (tx *TransactionVar) Validate(
	api frontend.API,
	params *state.Parameters,
	preSenderAccInfo *AccountInformationVar,
	preSenderPath *AccPathVar,
	postSenderPath *AccPathVar,
	preRecipientAccInfo *AccountInformationVar,
	preRecipientPath *AccPathVar,
	postRecipientPath *AccPathVar,
	preRoot AccRootVar,
	postRoot AccRootVar,
) (frontend.Variable, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	// Verify the signature against the sender pubkey.
	sigVerifies, err := tx.VerifySignature(api, params, preSenderAccInfo.PublicKey)
	if err != nil {
		return nil, err
	}

	rc := rangecheck.New(api)

	// Compute the new sender balance.
	postSenderAccInfo := *preSenderAccInfo
	postSenderAccInfo.Balance = preSenderAccInfo.Balance.CheckedSub(api, rc, tx.Amount)

	// Compute the new recipient balance, ensure it is overflow safe.
	postRecipientAccInfo := *preRecipientAccInfo
	postRecipientAccInfo.Balance = preRecipientAccInfo.Balance.CheckedAdd(api, rc, tx.Amount)

	// The sender leaf is in preRoot and the updated sender leaf is in postRoot.
	senderExisted, err := tx.checkAccountExistence(api, params, preSenderPath, tx.Sender, preSenderAccInfo, preRoot)
	if err != nil {
		return nil, err
	}
	senderWillExist, err := tx.checkAccountExistence(api, params, postSenderPath, tx.Sender, &postSenderAccInfo, postRoot)
	if err != nil {
		return nil, err
	}
	senderExists := api.And(senderExisted, senderWillExist)

	// Same for the recipient.
	recipientExisted, err := tx.checkAccountExistence(api, params, preRecipientPath, tx.Recipient, preRecipientAccInfo, preRoot)
	if err != nil {
		return nil, err
	}
	recipientWillExist, err := tx.checkAccountExistence(api, params, postRecipientPath, tx.Recipient, &postRecipientAccInfo, postRoot)
	if err != nil {
		return nil, err
	}
	recipientExists := api.And(recipientExisted, recipientWillExist)

	return api.And(api.And(senderExists, recipientExists), sigVerifies), nil
}
