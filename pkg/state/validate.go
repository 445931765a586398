package state

// ValidateTransition is the native reference for the transfer circuit. It short-circuits, but
// accepts and rejects exactly the same inputs as the circuit predicate: a checked arithmetic
// failure, which makes the circuit unsatisfiable, is reported here as false.
func ValidateTransition(params Parameters, tx *Transaction, tr *Transition) bool {
	if params.Validate() != nil {
		return false
	}
	if params.CheckID(tx.Sender) != nil || params.CheckID(tx.Recipient) != nil {
		return false
	}
	if !tx.VerifySignature(tr.PreSender.PublicKey) {
		return false
	}

	senderBalance, err := tr.PreSender.Balance.CheckedSub(tx.Amount)
	if err != nil {
		return false
	}
	recipientBalance, err := tr.PreRecipient.Balance.CheckedAdd(tx.Amount)
	if err != nil {
		return false
	}
	postSender := tr.PreSender.WithBalance(senderBalance)
	postRecipient := tr.PreRecipient.WithBalance(recipientBalance)

	sender, recipient := uint64(tx.Sender), uint64(tx.Recipient)
	return VerifyPath(&params, sender, params.HashLeaf(&tr.PreSender), tr.PreSenderPath, tr.PreRoot) &&
		VerifyPath(&params, sender, params.HashLeaf(&postSender), tr.PostSenderPath, tr.PostRoot) &&
		VerifyPath(&params, recipient, params.HashLeaf(&tr.PreRecipient), tr.PreRecipientPath, tr.PreRoot) &&
		VerifyPath(&params, recipient, params.HashLeaf(&postRecipient), tr.PostRecipientPath, tr.PostRoot)
}
