package contract

import "strings"

// phaseForTime returns the phase implied by the clock alone.
func phaseForTime(p PoolParams, now int64) PoolState {
	switch {
	case now > p.VotingDeadline:
		return ExecutionPhase
	case now > p.ContributionDeadline:
		return VotingPhase
	}
	return ContributionPhase
}

// phaseFor returns the phase the pool is in at now: the furthest of the
// stored phase and the phase implied by the deadlines. It never returns a
// phase behind stored.
func phaseFor(stored PoolState, p PoolParams, now int64) PoolState {
	byTime := phaseForTime(p, now)
	if byTime > stored {
		return byTime
	}
	return stored
}

// advance moves the stored phase forward to ps. Requests to move backward
// are ignored.
func (c *Contract) advance(ps PoolState) {
	if ps > c.State {
		c.State = ps
	}
}

// =============================================================================

// addressPrefixes lists the recognized mainnet address formats: P2PKH,
// P2SH and bech32 segwit.
var addressPrefixes = []string{"1", "3", "bc1"}

// IsValidBitcoinAddress performs the minimal format check applied to payout
// addresses. Checksums are verified by the host when the script is resolved.
func IsValidBitcoinAddress(address string) bool {
	if address == "" {
		return false
	}

	for _, prefix := range addressPrefixes {
		if strings.HasPrefix(address, prefix) {
			return true
		}
	}
	return false
}
