package contract

import (
	"fmt"
	"sort"

	"github.com/ardanlabs/crowdpool/foundation/host"
	"github.com/ardanlabs/crowdpool/foundation/pool/codec"
)

// Encode returns the canonical bytes of the pool. Maps are written in
// ascending key order so equal pools always produce equal bytes.
func (c *Contract) Encode() []byte {
	w := codec.NewWriter()
	c.EncodeTo(w)
	return w.Bytes()
}

// EncodeTo writes the pool fields in declaration order.
func (c *Contract) EncodeTo(w *codec.Writer) {
	EncodePoolState(w, c.State)

	w.WriteOption(c.Params != nil)
	if c.Params != nil {
		EncodePoolParams(w, *c.Params)
	}

	w.WriteU64(c.TotalBalance)
	encodeKeyMap(w, c.Contributions)

	w.WriteLen(len(c.Proposals))
	for _, id := range c.proposalIDs() {
		w.WriteU64(id)
		EncodeProposal(w, c.Proposals[id])
	}

	encodeKeyMap(w, c.Votes)
	w.WriteU64(c.NextProposalID)

	w.WriteOption(c.WinningProposal != nil)
	if c.WinningProposal != nil {
		w.WriteU64(*c.WinningProposal)
	}

	w.WriteBool(c.TransferExecuted)
}

// Decode reconstructs a pool from data. Every byte must be consumed.
func Decode(data []byte) (*Contract, error) {
	r := codec.NewReader(data)

	c, err := DecodeFrom(r)
	if err != nil {
		return nil, err
	}

	if err := r.Finish(); err != nil {
		return nil, fmt.Errorf("contract: %w", err)
	}

	return c, nil
}

// DecodeFrom reads the pool fields in declaration order. The first failing
// field aborts the decode.
func DecodeFrom(r *codec.Reader) (*Contract, error) {
	var c Contract
	var err error

	if c.State, err = DecodePoolState(r); err != nil {
		return nil, fmt.Errorf("state: %w", err)
	}

	hasParams, err := r.ReadOption()
	if err != nil {
		return nil, fmt.Errorf("params: %w", err)
	}
	if hasParams {
		params, err := DecodePoolParams(r)
		if err != nil {
			return nil, fmt.Errorf("params: %w", err)
		}
		c.Params = &params
	}

	if c.TotalBalance, err = r.ReadU64(); err != nil {
		return nil, fmt.Errorf("total balance: %w", err)
	}

	if c.Contributions, err = decodeKeyMap(r); err != nil {
		return nil, fmt.Errorf("contributions: %w", err)
	}

	if c.Proposals, err = decodeProposalMap(r); err != nil {
		return nil, fmt.Errorf("proposals: %w", err)
	}

	if c.Votes, err = decodeKeyMap(r); err != nil {
		return nil, fmt.Errorf("votes: %w", err)
	}

	if c.NextProposalID, err = r.ReadU64(); err != nil {
		return nil, fmt.Errorf("next proposal id: %w", err)
	}

	hasWinner, err := r.ReadOption()
	if err != nil {
		return nil, fmt.Errorf("winning proposal: %w", err)
	}
	if hasWinner {
		id, err := r.ReadU64()
		if err != nil {
			return nil, fmt.Errorf("winning proposal: %w", err)
		}
		c.WinningProposal = &id
	}

	if c.TransferExecuted, err = r.ReadBool(); err != nil {
		return nil, fmt.Errorf("transfer executed: %w", err)
	}

	return &c, nil
}

// =============================================================================

// EncodePoolState writes the ordinal of the phase.
func EncodePoolState(w *codec.Writer, ps PoolState) {
	w.WriteU8(uint8(ps))
}

// DecodePoolState reads a phase ordinal, rejecting unknown values.
func DecodePoolState(r *codec.Reader) (PoolState, error) {
	b, err := r.ReadU8()
	if err != nil {
		return 0, err
	}

	ps := PoolState(b)
	if !ps.valid() {
		return 0, codec.ErrInvalidTag
	}
	return ps, nil
}

// EncodePoolParams writes the parameters in declaration order.
func EncodePoolParams(w *codec.Writer, p PoolParams) {
	w.WriteU64(p.MinContribution)
	w.WriteU64(p.MaxContribution)
	w.WriteI64(p.ContributionDeadline)
	w.WriteI64(p.VotingDeadline)
	w.WriteU64(p.ProposalThreshold)
	w.WriteU64(p.VotingThreshold)
	w.WriteU8(p.QuorumPercentage)
}

// DecodePoolParams is the inverse of EncodePoolParams.
func DecodePoolParams(r *codec.Reader) (PoolParams, error) {
	var p PoolParams
	var err error

	if p.MinContribution, err = r.ReadU64(); err != nil {
		return p, err
	}
	if p.MaxContribution, err = r.ReadU64(); err != nil {
		return p, err
	}
	if p.ContributionDeadline, err = r.ReadI64(); err != nil {
		return p, err
	}
	if p.VotingDeadline, err = r.ReadI64(); err != nil {
		return p, err
	}
	if p.ProposalThreshold, err = r.ReadU64(); err != nil {
		return p, err
	}
	if p.VotingThreshold, err = r.ReadU64(); err != nil {
		return p, err
	}
	if p.QuorumPercentage, err = r.ReadU8(); err != nil {
		return p, err
	}

	return p, nil
}

// EncodeProposal writes the proposal fields in declaration order.
func EncodeProposal(w *codec.Writer, p Proposal) {
	w.WriteU64(p.ID)
	w.WriteKey(p.Proposer)
	w.WriteString(p.BitcoinAddress)
	w.WriteString(p.Description)
	w.WriteU64(p.Votes)
}

// DecodeProposal is the inverse of EncodeProposal.
func DecodeProposal(r *codec.Reader) (Proposal, error) {
	var p Proposal
	var err error

	if p.ID, err = r.ReadU64(); err != nil {
		return p, err
	}
	if p.Proposer, err = r.ReadKey(); err != nil {
		return p, err
	}
	if p.BitcoinAddress, err = r.ReadString(); err != nil {
		return p, err
	}
	if p.Description, err = r.ReadString(); err != nil {
		return p, err
	}
	if p.Votes, err = r.ReadU64(); err != nil {
		return p, err
	}

	return p, nil
}

// EncodePoolInfo writes the summary fields in declaration order.
func EncodePoolInfo(w *codec.Writer, info PoolInfo) {
	EncodePoolState(w, info.State)
	w.WriteU64(info.TotalBalance)
	w.WriteU64(info.TotalContributors)
	w.WriteU64(info.TotalProposals)
	w.WriteU64(info.TotalVotes)
	w.WriteI64(info.ContributionDeadline)
	w.WriteI64(info.VotingDeadline)
}

// DecodePoolInfo is the inverse of EncodePoolInfo.
func DecodePoolInfo(r *codec.Reader) (PoolInfo, error) {
	var info PoolInfo
	var err error

	if info.State, err = DecodePoolState(r); err != nil {
		return info, err
	}
	if info.TotalBalance, err = r.ReadU64(); err != nil {
		return info, err
	}
	if info.TotalContributors, err = r.ReadU64(); err != nil {
		return info, err
	}
	if info.TotalProposals, err = r.ReadU64(); err != nil {
		return info, err
	}
	if info.TotalVotes, err = r.ReadU64(); err != nil {
		return info, err
	}
	if info.ContributionDeadline, err = r.ReadI64(); err != nil {
		return info, err
	}
	if info.VotingDeadline, err = r.ReadI64(); err != nil {
		return info, err
	}

	return info, nil
}

// =============================================================================

// encodeKeyMap writes an identity keyed map in ascending key order.
func encodeKeyMap(w *codec.Writer, m map[host.Pubkey]uint64) {
	keys := make([]host.Pubkey, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Compare(keys[j]) < 0 })

	w.WriteLen(len(keys))
	for _, k := range keys {
		w.WriteKey(k)
		w.WriteU64(m[k])
	}
}

// decodeKeyMap rebuilds an identity keyed map. Duplicate keys overwrite.
func decodeKeyMap(r *codec.Reader) (map[host.Pubkey]uint64, error) {
	n, err := r.ReadLen()
	if err != nil {
		return nil, err
	}

	m := make(map[host.Pubkey]uint64)
	for i := 0; i < n; i++ {
		k, err := r.ReadKey()
		if err != nil {
			return nil, err
		}
		v, err := r.ReadU64()
		if err != nil {
			return nil, err
		}
		m[k] = v
	}

	return m, nil
}

// decodeProposalMap rebuilds the proposal map. Duplicate keys overwrite.
func decodeProposalMap(r *codec.Reader) (map[uint64]Proposal, error) {
	n, err := r.ReadLen()
	if err != nil {
		return nil, err
	}

	m := make(map[uint64]Proposal)
	for i := 0; i < n; i++ {
		id, err := r.ReadU64()
		if err != nil {
			return nil, err
		}
		p, err := DecodeProposal(r)
		if err != nil {
			return nil, err
		}
		m[id] = p
	}

	return m, nil
}
