// Package contract implements the state machine of a Bitcoin collateralized
// crowdfunding pool. Contributors pledge funds, qualified contributors
// propose a payout address and vote, and once the voting deadline passes
// and quorum is met the pool pays the winning proposal.
//
// Every operation takes a single clock reading so all deadline decisions
// within one call agree. Given the same sequence of calls and clock
// readings, every node reaches the same state and the same encoded bytes.
package contract

import (
	"math"
	"sort"

	"github.com/ardanlabs/crowdpool/foundation/host"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
)

// payoutTxVersion is the version of the payout transaction.
const payoutTxVersion = 2

// Contract is the aggregate root persisted in the pool account.
type Contract struct {
	State            PoolState
	Params           *PoolParams
	TotalBalance     uint64
	Contributions    map[host.Pubkey]uint64
	Proposals        map[uint64]Proposal
	Votes            map[host.Pubkey]uint64
	NextProposalID   uint64
	WinningProposal  *uint64
	TransferExecuted bool
}

// New constructs an uninitialized pool.
func New() *Contract {
	return &Contract{
		State:          Uninitialized,
		Contributions:  make(map[host.Pubkey]uint64),
		Proposals:      make(map[uint64]Proposal),
		Votes:          make(map[host.Pubkey]uint64),
		NextProposalID: 1,
	}
}

// Initialize stores the pool parameters and opens the contribution phase.
func (c *Contract) Initialize(params PoolParams) error {
	if c.State != Uninitialized {
		return ErrPoolAlreadyInitialized
	}

	if err := params.validate(); err != nil {
		return err
	}

	c.Params = &params
	c.State = ContributionPhase

	return nil
}

// Contribute adds amount to the pledge of contributor. If the contribution
// deadline has passed the pool moves to the voting phase and the call is
// rejected, the phase change is kept.
func (c *Contract) Contribute(now int64, contributor host.Pubkey, amount uint64) error {
	if c.Params == nil {
		return ErrPoolNotInitialized
	}
	params := *c.Params

	if c.State != ContributionPhase {
		return ErrPoolDeadlinePassed
	}

	if now > params.ContributionDeadline {
		c.advance(VotingPhase)
		return ErrPoolDeadlinePassed
	}

	if amount < params.MinContribution {
		return ErrContributionTooLow
	}

	if amount > params.MaxContribution {
		return ErrContributionTooHigh
	}

	// Decoded state is not re-validated, so check the existing pledge
	// before subtracting.
	current := c.Contributions[contributor]
	if current > params.MaxContribution || amount > params.MaxContribution-current {
		return ErrContributionTooHigh
	}

	if amount > math.MaxUint64-c.TotalBalance {
		return ErrContributionTooHigh
	}

	c.Contributions[contributor] = current + amount
	c.TotalBalance += amount

	return nil
}

// SubmitProposal records a payout proposal and returns its id.
func (c *Contract) SubmitProposal(now int64, proposer host.Pubkey, bitcoinAddress string, description string) (uint64, error) {
	if c.Params == nil {
		return 0, ErrPoolNotInitialized
	}
	params := *c.Params

	phase := phaseFor(c.State, params, now)
	c.advance(phase)

	switch {
	case phase < VotingPhase:
		return 0, ErrPoolDeadlinePassed
	case phase > VotingPhase:
		return 0, ErrVotingPeriodEnded
	}

	pledge, exists := c.Contributions[proposer]
	if !exists || pledge < params.ProposalThreshold {
		return 0, ErrInsufficientContributionForProposal
	}

	if !IsValidBitcoinAddress(bitcoinAddress) {
		return 0, ErrInvalidBitcoinAddress
	}

	id := c.NextProposalID
	c.NextProposalID++

	c.Proposals[id] = Proposal{
		ID:             id,
		Proposer:       proposer,
		BitcoinAddress: bitcoinAddress,
		Description:    description,
	}

	return id, nil
}

// CastVote records a single unweighted vote from voter for proposalID.
func (c *Contract) CastVote(now int64, voter host.Pubkey, proposalID uint64) error {
	if c.Params == nil {
		return ErrPoolNotInitialized
	}
	params := *c.Params

	phase := phaseFor(c.State, params, now)
	c.advance(phase)

	switch {
	case phase < VotingPhase:
		return ErrPoolDeadlinePassed
	case phase > VotingPhase:
		return ErrVotingPeriodEnded
	}

	pledge, exists := c.Contributions[voter]
	if !exists || pledge < params.VotingThreshold {
		return ErrInsufficientContributionForVoting
	}

	proposal, exists := c.Proposals[proposalID]
	if !exists {
		return ErrProposalNotFound
	}

	if _, voted := c.Votes[voter]; voted {
		return ErrAlreadyVoted
	}

	proposal.Votes++
	c.Proposals[proposalID] = proposal
	c.Votes[voter] = proposalID

	return nil
}

// ExecuteTransfer selects the winning proposal, hands the payout transaction
// to the host and persists the completed pool. The first account in
// accounts pays for the state transition.
//
// The pool state holds no references to Bitcoin outputs, so the transaction
// carries only the payout output and the host attaches the funding inputs.
func (c *Contract) ExecuteTransfer(now int64, programID host.Pubkey, pool *host.Account, accounts []*host.Account, rt host.Runtime) error {
	if c.Params == nil {
		return ErrPoolNotInitialized
	}
	params := *c.Params

	if phaseFor(c.State, params, now) < ExecutionPhase {
		return ErrVotingPeriodNotEnded
	}

	if c.TransferExecuted {
		return ErrTransferAlreadyExecuted
	}

	if len(c.Proposals) == 0 {
		return ErrNoProposalsSubmitted
	}

	if len(c.Votes) == 0 {
		return ErrNoVotesCast
	}

	if !quorumReached(len(c.Votes), len(c.Contributions), params.QuorumPercentage) {
		return ErrQuorumNotReached
	}

	winner, found := c.leader()
	if !found {
		return ErrNoVotesCast
	}

	payer, err := host.NewAccountIter(accounts).Next()
	if err != nil {
		return err
	}

	script, err := rt.ScriptPubkey(winner.BitcoinAddress)
	if err != nil {
		return err
	}

	height, err := rt.BlockHeight()
	if err != nil {
		return err
	}

	// Lock times at or above the threshold are read as timestamps.
	if height >= txscript.LockTimeThreshold {
		return ErrLockTime
	}

	if c.TotalBalance > btcutil.MaxSatoshi {
		return host.InvalidArgument("payout of %d exceeds the maximum satoshi amount", c.TotalBalance)
	}

	tx := wire.NewMsgTx(payoutTxVersion)
	tx.LockTime = height
	tx.AddTxOut(wire.NewTxOut(int64(c.TotalBalance), script))

	if err := rt.SetTransactionToSign(host.TransactionToSign{Transaction: tx}); err != nil {
		return err
	}

	id := winner.ID
	c.WinningProposal = &id
	c.TransferExecuted = true
	c.State = Completed

	return rt.AddStateTransition(pool, payer, programID, c.Encode())
}

// EmergencyWithdraw removes the whole pledge of contributor and returns it.
// It is only allowed while the stored phase is still the contribution
// phase; no deadline is evaluated.
func (c *Contract) EmergencyWithdraw(contributor host.Pubkey) (uint64, error) {
	if c.Params == nil {
		return 0, ErrPoolNotInitialized
	}

	if c.State != ContributionPhase {
		return 0, ErrPoolDeadlinePassed
	}

	amount, exists := c.Contributions[contributor]
	if !exists {
		return 0, ErrContributorNotFound
	}

	if amount > c.TotalBalance {
		return 0, host.InvalidArgument("pledge of %d exceeds the pool balance of %d", amount, c.TotalBalance)
	}

	delete(c.Contributions, contributor)
	c.TotalBalance -= amount

	return amount, nil
}

// =============================================================================

// PoolInfo returns a summary of the pool.
func (c *Contract) PoolInfo() (PoolInfo, error) {
	if c.Params == nil {
		return PoolInfo{}, ErrPoolNotInitialized
	}

	info := PoolInfo{
		State:                c.State,
		TotalBalance:         c.TotalBalance,
		TotalContributors:    uint64(len(c.Contributions)),
		TotalProposals:       uint64(len(c.Proposals)),
		TotalVotes:           uint64(len(c.Votes)),
		ContributionDeadline: c.Params.ContributionDeadline,
		VotingDeadline:       c.Params.VotingDeadline,
	}

	return info, nil
}

// ListProposals returns a copy of every proposal in ascending id order.
func (c *Contract) ListProposals() []Proposal {
	list := make([]Proposal, 0, len(c.Proposals))
	for _, id := range c.proposalIDs() {
		list = append(list, c.Proposals[id])
	}
	return list
}

// Winner returns the proposal that was paid, if any.
func (c *Contract) Winner() (Proposal, bool) {
	if c.WinningProposal == nil {
		return Proposal{}, false
	}

	proposal, exists := c.Proposals[*c.WinningProposal]
	return proposal, exists
}

// =============================================================================

// quorumReached compares voters/contributors against quorum/100 using exact
// integer arithmetic.
func quorumReached(voters int, contributors int, quorum uint8) bool {
	return uint64(voters)*100 >= uint64(contributors)*uint64(quorum)
}

// leader returns the proposal with the most votes. Ties go to the lowest
// proposal id. found is false when no proposal has a vote.
func (c *Contract) leader() (Proposal, bool) {
	var best Proposal
	var found bool

	for _, id := range c.proposalIDs() {
		p := c.Proposals[id]
		if p.Votes > best.Votes {
			best = p
			found = true
		}
	}

	return best, found
}

// proposalIDs returns the proposal ids in ascending order.
func (c *Contract) proposalIDs() []uint64 {
	ids := make([]uint64, 0, len(c.Proposals))
	for id := range c.Proposals {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
