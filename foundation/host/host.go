// Package host defines the surface of the execution environment consumed by
// the pool program: identities, accounts and their data buffers, the
// payout transaction handed to the Bitcoin layer, and the runtime calls for
// time, block height, script resolution and state persistence.
package host

import (
	"github.com/btcsuite/btcd/wire"
)

// Runtime interface represents the behavior required to be implemented by
// any environment hosting the pool program.
type Runtime interface {

	// Now returns the current wall clock as unix seconds.
	Now() int64

	// ScriptPubkey maps a human readable Bitcoin address to its locking script.
	ScriptPubkey(address string) ([]byte, error)

	// BlockHeight returns the current Bitcoin block height.
	BlockHeight() (uint32, error)

	// SetTransactionToSign hands an unsigned transaction to the signing layer.
	SetTransactionToSign(tx TransactionToSign) error

	// AddStateTransition durably stores state as the new contents of
	// account, attributing the write to payer and programID.
	AddStateTransition(account *Account, payer *Account, programID Pubkey, state []byte) error
}

// =============================================================================

// InputToSign identifies a transaction input and the identity that must
// sign it.
type InputToSign struct {
	Index  uint32
	Signer Pubkey
}

// TransactionToSign is an unsigned Bitcoin transaction plus the inputs the
// host must get signed before broadcasting.
type TransactionToSign struct {
	Transaction  *wire.MsgTx
	InputsToSign []InputToSign
}
