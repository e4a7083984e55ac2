// Package scenario loads a scripted sequence of pool instructions and
// replays it against an in-memory host.
package scenario

import (
	"fmt"
	"time"

	"github.com/ardanlabs/crowdpool/foundation/host"
	"github.com/ardanlabs/crowdpool/foundation/host/memory"
	"github.com/ardanlabs/crowdpool/foundation/pool/contract"
	"github.com/ardanlabs/crowdpool/foundation/pool/program"
	"github.com/ardanlabs/crowdpool/foundation/validate"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"gopkg.in/yaml.v3"
)

// ProgramID identifies the pool program during a replay.
var ProgramID = host.NamedPubkey("crowdpool")

// Params are the pool parameters with deadlines relative to the start.
type Params struct {
	MinContribution    uint64        `yaml:"min_contribution" validate:"gt=0"`
	MaxContribution    uint64        `yaml:"max_contribution" validate:"gtfield=MinContribution"`
	ContributionWindow time.Duration `yaml:"contribution_window" validate:"gt=0"`
	VotingWindow       time.Duration `yaml:"voting_window" validate:"gt=0"`
	ProposalThreshold  uint64        `yaml:"proposal_threshold"`
	VotingThreshold    uint64        `yaml:"voting_threshold"`
	QuorumPercentage   uint8         `yaml:"quorum_percentage" validate:"lte=100"`
}

// Step is a single instruction of the scenario.
type Step struct {
	At          time.Duration `yaml:"at"`
	Instruction string        `yaml:"instruction" validate:"required"`
	Actor       string        `yaml:"actor"`
	Amount      uint64        `yaml:"amount"`
	Address     string        `yaml:"address"`
	Description string        `yaml:"description"`
	ProposalID  uint64        `yaml:"proposal_id"`
	Expect      uint64        `yaml:"expect"`
}

// Scenario is a complete replay script.
type Scenario struct {
	Pool   string    `yaml:"pool" validate:"required"`
	Start  time.Time `yaml:"start" validate:"required"`
	Height uint32    `yaml:"height" validate:"gt=0"`
	Params Params    `yaml:"params"`
	Steps  []Step    `yaml:"steps" validate:"required,dive"`
}

// Load decodes and validates a YAML scenario.
func Load(data []byte) (Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return Scenario{}, fmt.Errorf("unmarshal: %w", err)
	}

	if err := validate.Check(sc); err != nil {
		return Scenario{}, fmt.Errorf("validate: %w", err)
	}

	return sc, nil
}

// =============================================================================

// Result is the outcome of a replay.
type Result struct {
	State  []byte
	Digest common.Hash
	Txs    []host.TransactionToSign
}

// Run replays the scenario step by step. A step whose outcome differs from
// its expected code stops the replay.
func Run(sc Scenario, evHandler program.EventHandler) (Result, error) {
	start := sc.Start.Unix()
	rt := memory.New(&chaincfg.MainNetParams, start, sc.Height)

	prg, err := program.New(program.Config{
		Runtime:   rt,
		EvHandler: evHandler,
	})
	if err != nil {
		return Result{}, err
	}

	pool := host.NewAccount(host.NamedPubkey(sc.Pool), ProgramID, nil)
	payer := host.NewAccount(host.NamedPubkey("payer"), host.Pubkey{}, nil)

	// The instruction that opens the pool is implied by the parameters.
	steps := append([]Step{{Instruction: program.KindInitializePool.String()}}, sc.Steps...)

	for i, step := range steps {
		ins, err := sc.instruction(step)
		if err != nil {
			return Result{}, fmt.Errorf("step[%d]: %w", i, err)
		}

		accounts := []*host.Account{pool}
		if step.Actor != "" {
			actor := host.NewAccount(host.NamedPubkey(step.Actor), host.Pubkey{}, nil)
			actor.IsSigner = true
			accounts = append(accounts, actor)
		}
		accounts = append(accounts, payer)

		rt.SetNow(start + int64(step.At/time.Second))

		err = prg.ProcessInstruction(ProgramID, accounts, ins.Encode())

		var got uint64
		if err != nil {
			got, _ = host.Code(err)
		}
		if got != step.Expect {
			return Result{}, fmt.Errorf("step[%d]: %s: got code %d, expected %d: %v", i, ins.Kind, got, step.Expect, err)
		}
	}

	state := pool.Data.Snapshot()
	res := Result{
		State:  state,
		Digest: crypto.Keccak256Hash(state),
		Txs:    rt.Transactions(),
	}

	return res, nil
}

// instruction builds the program instruction for step.
func (sc Scenario) instruction(step Step) (program.Instruction, error) {
	kind, err := program.ParseKind(step.Instruction)
	if err != nil {
		return program.Instruction{}, err
	}

	switch kind {
	case program.KindInitializePool:
		start := sc.Start.Unix()
		cd := start + int64(sc.Params.ContributionWindow/time.Second)
		return program.InitializePool(contract.PoolParams{
			MinContribution:      sc.Params.MinContribution,
			MaxContribution:      sc.Params.MaxContribution,
			ContributionDeadline: cd,
			VotingDeadline:       cd + int64(sc.Params.VotingWindow/time.Second),
			ProposalThreshold:    sc.Params.ProposalThreshold,
			VotingThreshold:      sc.Params.VotingThreshold,
			QuorumPercentage:     sc.Params.QuorumPercentage,
		}), nil

	case program.KindContribute:
		return program.Contribute(step.Amount), nil

	case program.KindSubmitProposal:
		return program.SubmitProposal(step.Address, step.Description), nil

	case program.KindCastVote:
		return program.CastVote(step.ProposalID), nil

	case program.KindExecuteTransfer:
		return program.ExecuteTransfer(), nil

	case program.KindEmergencyWithdraw:
		return program.EmergencyWithdraw(), nil
	}

	return program.Instruction{}, fmt.Errorf("unsupported instruction %q", step.Instruction)
}
