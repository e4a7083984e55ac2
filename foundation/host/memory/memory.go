// Package memory provides a host runtime that keeps everything in process.
// It backs the tests, the operator tooling and the replay service.
package memory

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/ardanlabs/crowdpool/foundation/host"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
)

// Transition records a single state write requested by the program.
type Transition struct {
	Account   host.Pubkey
	Payer     host.Pubkey
	ProgramID host.Pubkey
	State     []byte
}

// Runtime is an in-memory implementation of host.Runtime.
type Runtime struct {
	net *chaincfg.Params

	mu          sync.Mutex
	now         int64
	height      uint32
	txs         []host.TransactionToSign
	transitions []Transition
}

// New constructs a runtime resolving addresses on net with the clock and
// block height set to the provided values.
func New(net *chaincfg.Params, now int64, height uint32) *Runtime {
	return &Runtime{
		net:    net,
		now:    now,
		height: height,
	}
}

// Now returns the configured clock reading.
func (rt *Runtime) Now() int64 {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	return rt.now
}

// SetNow moves the clock.
func (rt *Runtime) SetNow(now int64) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	rt.now = now
}

// BlockHeight returns the configured block height.
func (rt *Runtime) BlockHeight() (uint32, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	return rt.height, nil
}

// SetBlockHeight changes the block height.
func (rt *Runtime) SetBlockHeight(height uint32) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	rt.height = height
}

// ScriptPubkey decodes the address for the configured network and returns
// the script that pays to it.
func (rt *Runtime) ScriptPubkey(address string) ([]byte, error) {
	addr, err := btcutil.DecodeAddress(address, rt.net)
	if err != nil {
		return nil, host.InvalidArgument("decode address %q: %s", address, err)
	}

	if !addr.IsForNet(rt.net) {
		return nil, host.InvalidArgument("address %q is not for %s", address, rt.net.Name)
	}

	script, err := txscript.PayToAddrScript(addr)
	if err != nil {
		return nil, host.InvalidArgument("script for %q: %s", address, err)
	}

	return script, nil
}

// SetTransactionToSign records the transaction.
func (rt *Runtime) SetTransactionToSign(tx host.TransactionToSign) error {
	if tx.Transaction == nil {
		return host.InvalidArgument("no transaction provided")
	}

	rt.mu.Lock()
	defer rt.mu.Unlock()

	rt.txs = append(rt.txs, tx)
	return nil
}

// AddStateTransition writes state into the account buffer and records the
// write. The buffer must not be borrowed by the caller.
func (rt *Runtime) AddStateTransition(account *host.Account, payer *host.Account, programID host.Pubkey, state []byte) error {
	if account == nil || payer == nil {
		return host.ErrNotEnoughAccountKeys
	}

	if !account.IsWritable {
		return host.InvalidArgument("account %s is not writable", account.Key)
	}

	rm, err := account.Data.BorrowMut()
	if err != nil {
		return fmt.Errorf("borrow %s: %w", account.Key, err)
	}
	defer rm.Release()

	rm.Set(state)

	rt.mu.Lock()
	defer rt.mu.Unlock()

	rt.transitions = append(rt.transitions, Transition{
		Account:   account.Key,
		Payer:     payer.Key,
		ProgramID: programID,
		State:     bytes.Clone(state),
	})

	return nil
}

// Transactions returns the transactions handed to the runtime in order.
func (rt *Runtime) Transactions() []host.TransactionToSign {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	return append([]host.TransactionToSign(nil), rt.txs...)
}

// Transitions returns the state writes recorded by the runtime in order.
func (rt *Runtime) Transitions() []Transition {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	return append([]Transition(nil), rt.transitions...)
}
