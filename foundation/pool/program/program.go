// Package program is the entry point of the pool program. It decodes
// instructions, resolves account slots, loads the pool state, runs the
// requested operation and persists the result through the host.
package program

import (
	"errors"

	"github.com/ardanlabs/crowdpool/foundation/host"
	"github.com/ardanlabs/crowdpool/foundation/pool/contract"
)

// EventHandler defines a function that is called when events
// occur in the processing of instructions.
type EventHandler func(v string, args ...any)

// Config represents the configuration required to construct the program.
type Config struct {
	Runtime   host.Runtime
	EvHandler EventHandler
}

// Program processes instructions against pool accounts.
type Program struct {
	rt        host.Runtime
	evHandler EventHandler
}

// New constructs a program bound to the provided runtime.
func New(cfg Config) (*Program, error) {
	if cfg.Runtime == nil {
		return nil, errors.New("runtime is required")
	}

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	p := Program{
		rt:        cfg.Runtime,
		evHandler: ev,
	}

	return &p, nil
}

// ProcessInstruction executes the instruction encoded in data. The first
// account is the pool account owned by programID. Any failure is reported
// as a host.ProgramError.
func (p *Program) ProcessInstruction(programID host.Pubkey, accounts []*host.Account, data []byte) error {
	if err := p.process(programID, accounts, data); err != nil {
		p.evHandler("program: ProcessInstruction: ERROR: %s", err)
		return contract.ToProgramError(err)
	}

	return nil
}

func (p *Program) process(programID host.Pubkey, accounts []*host.Account, data []byte) error {
	ins, err := DecodeInstruction(data)
	if err != nil {
		p.evHandler("program: process: decode instruction: %s", err)
		return host.ErrInvalidInstructionData
	}

	p.evHandler("program: process: instruction[%s]", ins.Kind)

	it := host.NewAccountIter(accounts)

	pool, err := it.Next()
	if err != nil {
		return err
	}

	// Resolve every fixed slot before touching the state.
	var actor, payer *host.Account
	switch ins.Kind {
	case KindInitializePool:
		if payer, err = it.Next(); err != nil {
			return err
		}

	case KindContribute, KindSubmitProposal, KindCastVote, KindEmergencyWithdraw:
		if actor, err = it.Next(); err != nil {
			return err
		}
		if payer, err = it.Next(); err != nil {
			return err
		}
	}

	if actor != nil && !actor.IsSigner {
		p.evHandler("program: process: actor %s did not sign", actor.Key)
		return host.ErrMissingSignature
	}

	if err := host.CheckOwner(pool, programID); err != nil {
		p.evHandler("program: process: pool account %s not owned by program", pool.Key)
		return err
	}

	c, err := p.load(pool, ins.Kind == KindInitializePool)
	if err != nil {
		return err
	}

	now := p.rt.Now()
	stored := c.State

	switch ins.Kind {
	case KindInitializePool:
		if err := c.Initialize(ins.Params); err != nil {
			return err
		}

	case KindContribute:
		if err := c.Contribute(now, actor.Key, ins.Amount); err != nil {
			return p.persistAdvance(pool, payer, programID, c, stored, err)
		}
		p.evHandler("program: process: contribute: %s: amount[%d] total[%d]", actor.Key, ins.Amount, c.TotalBalance)

	case KindSubmitProposal:
		id, err := c.SubmitProposal(now, actor.Key, ins.BitcoinAddress, ins.Description)
		if err != nil {
			return p.persistAdvance(pool, payer, programID, c, stored, err)
		}
		p.evHandler("program: process: submit proposal: proposal[%d] submitted", id)

	case KindCastVote:
		if err := c.CastVote(now, actor.Key, ins.ProposalID); err != nil {
			return p.persistAdvance(pool, payer, programID, c, stored, err)
		}
		p.evHandler("program: process: cast vote: %s: proposal[%d]", actor.Key, ins.ProposalID)

	case KindExecuteTransfer:
		if err := c.ExecuteTransfer(now, programID, pool, it.Rest(), p.rt); err != nil {
			return err
		}
		p.evHandler("program: process: execute transfer: proposal[%d] paid[%d]", *c.WinningProposal, c.TotalBalance)

		// The operation persists the completed pool itself.
		return nil

	case KindEmergencyWithdraw:
		amount, err := c.EmergencyWithdraw(actor.Key)
		if err != nil {
			return err
		}
		p.evHandler("program: process: emergency withdraw: %s: amount[%d]", actor.Key, amount)
	}

	return p.rt.AddStateTransition(pool, payer, programID, c.Encode())
}

// load decodes the pool state held by the account. The buffer is borrowed
// shared only for the duration of the decode. When lenient is set, empty or
// undecodable data yields a fresh pool.
func (p *Program) load(pool *host.Account, lenient bool) (*contract.Contract, error) {
	ref, err := pool.Data.Borrow()
	if err != nil {
		return nil, err
	}
	defer ref.Release()

	data := ref.Bytes()
	if lenient && len(data) == 0 {
		return contract.New(), nil
	}

	c, err := contract.Decode(data)
	if err != nil {
		p.evHandler("program: load: failed to decode pool state: %s", err)
		if lenient {
			return contract.New(), nil
		}
		return nil, host.ErrInvalidInstructionData
	}

	return c, nil
}

// persistAdvance stores the pool when a failing operation moved the phase
// forward, then returns opErr. A failure to persist takes precedence.
func (p *Program) persistAdvance(pool *host.Account, payer *host.Account, programID host.Pubkey, c *contract.Contract, stored contract.PoolState, opErr error) error {
	if c.State == stored {
		return opErr
	}

	p.evHandler("program: persistAdvance: phase[%s] -> phase[%s]", stored, c.State)

	if err := p.rt.AddStateTransition(pool, payer, programID, c.Encode()); err != nil {
		return err
	}

	return opErr
}
