package contract

import (
	"errors"

	"github.com/ardanlabs/crowdpool/foundation/host"
	"github.com/ardanlabs/crowdpool/foundation/pool/codec"
)

// Error is a pool rule violation. Each value carries the code reported at
// the host boundary.
type Error struct {
	Code uint32
	msg  string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.msg
}

// Set of pool errors. The codes are part of the program interface and must
// never be renumbered.
var (
	ErrPoolNotInitialized                  = &Error{1, "pool not initialized"}
	ErrPoolAlreadyInitialized              = &Error{2, "pool already initialized"}
	ErrContributionTooLow                  = &Error{3, "contribution too low"}
	ErrContributionTooHigh                 = &Error{4, "contribution too high"}
	ErrPoolDeadlinePassed                  = &Error{5, "pool deadline passed"}
	ErrVotingPeriodNotEnded                = &Error{6, "voting period not ended"}
	ErrVotingPeriodEnded                   = &Error{7, "voting period ended"}
	ErrContributorNotFound                 = &Error{8, "contributor not found"}
	ErrInsufficientContributionForProposal = &Error{9, "insufficient contribution for proposal"}
	ErrInsufficientContributionForVoting   = &Error{10, "insufficient contribution for voting"}
	ErrProposalNotFound                    = &Error{11, "proposal not found"}
	ErrAlreadyVoted                        = &Error{12, "already voted"}
	ErrInvalidBitcoinAddress               = &Error{13, "invalid bitcoin address"}
	ErrNoProposalsSubmitted                = &Error{14, "no proposals submitted"}
	ErrNoVotesCast                         = &Error{15, "no votes cast"}
	ErrQuorumNotReached                    = &Error{16, "quorum not reached"}
	ErrTransferAlreadyExecuted             = &Error{17, "transfer already executed"}
	ErrLockTime                            = &Error{18, "invalid lock time"}
)

// codeEncoding is reported for any failure of the binary codec.
const codeEncoding = 19

// ToProgramError maps err into the flat code space of the host. Host errors
// pass through untouched.
func ToProgramError(err error) error {
	if err == nil {
		return nil
	}

	var pe *host.ProgramError
	if errors.As(err, &pe) {
		return pe
	}

	var ce *Error
	if errors.As(err, &ce) {
		return host.Custom(ce.Code, ce.msg)
	}

	// Anything left is a codec or IO failure.
	return host.Custom(codeEncoding, err.Error())
}

// IsEncoding reports whether err came from the binary codec.
func IsEncoding(err error) bool {
	return errors.Is(err, codec.ErrTruncatedInput) ||
		errors.Is(err, codec.ErrInvalidTag) ||
		errors.Is(err, codec.ErrInvalidUTF8) ||
		errors.Is(err, codec.ErrTrailingBytes)
}
