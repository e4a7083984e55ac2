package program

import (
	"fmt"

	"github.com/ardanlabs/crowdpool/foundation/pool/codec"
	"github.com/ardanlabs/crowdpool/foundation/pool/contract"
)

// Kind identifies an instruction variant. The values are the wire tags.
type Kind uint8

// Set of instruction kinds.
const (
	KindInitializePool Kind = iota
	KindContribute
	KindSubmitProposal
	KindCastVote
	KindExecuteTransfer
	KindEmergencyWithdraw
)

var kindNames = map[Kind]string{
	KindInitializePool:    "initialize_pool",
	KindContribute:        "contribute",
	KindSubmitProposal:    "submit_proposal",
	KindCastVote:          "cast_vote",
	KindExecuteTransfer:   "execute_transfer",
	KindEmergencyWithdraw: "emergency_withdraw",
}

// String returns the snake case name of the kind.
func (k Kind) String() string {
	if name, exists := kindNames[k]; exists {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ParseKind maps a name produced by Kind.String back to its kind.
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown instruction %q", name)
}

// =============================================================================

// Instruction is a decoded request to the pool program. Only the fields of
// the named Kind are meaningful.
type Instruction struct {
	Kind           Kind
	Params         contract.PoolParams
	Amount         uint64
	BitcoinAddress string
	Description    string
	ProposalID     uint64
}

// InitializePool constructs an instruction opening a pool with params.
func InitializePool(params contract.PoolParams) Instruction {
	return Instruction{Kind: KindInitializePool, Params: params}
}

// Contribute constructs an instruction pledging amount.
func Contribute(amount uint64) Instruction {
	return Instruction{Kind: KindContribute, Amount: amount}
}

// SubmitProposal constructs an instruction proposing a payout address.
func SubmitProposal(bitcoinAddress string, description string) Instruction {
	return Instruction{Kind: KindSubmitProposal, BitcoinAddress: bitcoinAddress, Description: description}
}

// CastVote constructs an instruction voting for proposalID.
func CastVote(proposalID uint64) Instruction {
	return Instruction{Kind: KindCastVote, ProposalID: proposalID}
}

// ExecuteTransfer constructs an instruction paying the winning proposal.
func ExecuteTransfer() Instruction {
	return Instruction{Kind: KindExecuteTransfer}
}

// EmergencyWithdraw constructs an instruction returning the caller's pledge.
func EmergencyWithdraw() Instruction {
	return Instruction{Kind: KindEmergencyWithdraw}
}

// Encode returns the wire form of the instruction: the kind tag followed by
// the variant fields.
func (ins Instruction) Encode() []byte {
	w := codec.NewWriter()
	w.WriteU8(uint8(ins.Kind))

	switch ins.Kind {
	case KindInitializePool:
		contract.EncodePoolParams(w, ins.Params)
	case KindContribute:
		w.WriteU64(ins.Amount)
	case KindSubmitProposal:
		w.WriteString(ins.BitcoinAddress)
		w.WriteString(ins.Description)
	case KindCastVote:
		w.WriteU64(ins.ProposalID)
	}

	return w.Bytes()
}

// DecodeInstruction parses the wire form of an instruction. Every byte must
// be consumed.
func DecodeInstruction(data []byte) (Instruction, error) {
	r := codec.NewReader(data)

	tag, err := r.ReadU8()
	if err != nil {
		return Instruction{}, err
	}

	ins := Instruction{Kind: Kind(tag)}

	switch ins.Kind {
	case KindInitializePool:
		ins.Params, err = contract.DecodePoolParams(r)
	case KindContribute:
		ins.Amount, err = r.ReadU64()
	case KindSubmitProposal:
		if ins.BitcoinAddress, err = r.ReadString(); err == nil {
			ins.Description, err = r.ReadString()
		}
	case KindCastVote:
		ins.ProposalID, err = r.ReadU64()
	case KindExecuteTransfer, KindEmergencyWithdraw:
	default:
		return Instruction{}, codec.ErrInvalidTag
	}

	if err != nil {
		return Instruction{}, fmt.Errorf("%s: %w", ins.Kind, err)
	}

	if err := r.Finish(); err != nil {
		return Instruction{}, fmt.Errorf("%s: %w", ins.Kind, err)
	}

	return ins, nil
}
