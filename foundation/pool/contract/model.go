package contract

import (
	"github.com/ardanlabs/crowdpool/foundation/host"
)

// PoolState represents the phase of the pool. Phases only move forward.
type PoolState uint8

// Set of pool phases in lifecycle order.
const (
	Uninitialized PoolState = iota
	ContributionPhase
	VotingPhase
	ExecutionPhase
	Completed
)

// String implements the fmt.Stringer interface.
func (ps PoolState) String() string {
	switch ps {
	case Uninitialized:
		return "uninitialized"
	case ContributionPhase:
		return "contribution"
	case VotingPhase:
		return "voting"
	case ExecutionPhase:
		return "execution"
	case Completed:
		return "completed"
	}
	return "unknown"
}

// valid reports whether ps is one of the named phases.
func (ps PoolState) valid() bool {
	return ps <= Completed
}

// =============================================================================

// PoolParams are the immutable settings of a pool. Deadlines are unix
// seconds.
type PoolParams struct {
	MinContribution      uint64
	MaxContribution      uint64
	ContributionDeadline int64
	VotingDeadline       int64
	ProposalThreshold    uint64
	VotingThreshold      uint64
	QuorumPercentage     uint8
}

// validate checks the invariants of the parameters. The error values match
// what the deployed program has always returned for each violation.
func (p PoolParams) validate() error {
	if p.MinContribution >= p.MaxContribution {
		return ErrContributionTooLow
	}

	if p.ContributionDeadline >= p.VotingDeadline {
		return ErrPoolDeadlinePassed
	}

	if p.QuorumPercentage > 100 {
		return ErrQuorumNotReached
	}

	return nil
}

// Proposal is a candidate payout destination.
type Proposal struct {
	ID             uint64
	Proposer       host.Pubkey
	BitcoinAddress string
	Description    string
	Votes          uint64
}

// PoolInfo is a read-only summary of the pool.
type PoolInfo struct {
	State                PoolState
	TotalBalance         uint64
	TotalContributors    uint64
	TotalProposals       uint64
	TotalVotes           uint64
	ContributionDeadline int64
	VotingDeadline       int64
}
