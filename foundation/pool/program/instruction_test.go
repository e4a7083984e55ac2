package program_test

import (
	"testing"

	"github.com/ardanlabs/crowdpool/foundation/pool/codec"
	"github.com/ardanlabs/crowdpool/foundation/pool/contract"
	"github.com/ardanlabs/crowdpool/foundation/pool/program"
	"github.com/stretchr/testify/require"
)

func TestInstructionRoundTrip(t *testing.T) {
	params := contract.PoolParams{
		MinContribution:      1,
		MaxContribution:      2,
		ContributionDeadline: 3,
		VotingDeadline:       4,
		ProposalThreshold:    5,
		VotingThreshold:      6,
		QuorumPercentage:     7,
	}

	for _, ins := range []program.Instruction{
		program.InitializePool(params),
		program.Contribute(5000),
		program.SubmitProposal("bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq", "roof repairs"),
		program.CastVote(3),
		program.ExecuteTransfer(),
		program.EmergencyWithdraw(),
	} {
		t.Run(ins.Kind.String(), func(t *testing.T) {
			data := ins.Encode()
			require.Equal(t, byte(ins.Kind), data[0])

			got, err := program.DecodeInstruction(data)
			require.NoError(t, err)
			require.Equal(t, ins, got)
		})
	}
}

func TestInstructionLayout(t *testing.T) {
	require.Equal(t, []byte{1, 0x88, 0x13, 0, 0, 0, 0, 0, 0}, program.Contribute(5000).Encode())
	require.Equal(t, []byte{4}, program.ExecuteTransfer().Encode())
	require.Equal(t, []byte{2, 1, 0, 0, 0, '1', 0, 0, 0, 0}, program.SubmitProposal("1", "").Encode())
}

func TestDecodeInstructionErrors(t *testing.T) {
	tests := map[string]struct {
		data []byte
		err  error
	}{
		"empty":      {data: nil, err: codec.ErrTruncatedInput},
		"unknown":    {data: []byte{6}, err: codec.ErrInvalidTag},
		"short-amt":  {data: []byte{1, 1, 2}, err: codec.ErrTruncatedInput},
		"trailing":   {data: []byte{4, 0}, err: codec.ErrTrailingBytes},
		"bad-string": {data: []byte{2, 1, 0, 0, 0, 0xff, 0, 0, 0, 0}, err: codec.ErrInvalidUTF8},
	}

	for name, tst := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := program.DecodeInstruction(tst.data)
			require.ErrorIs(t, err, tst.err)
		})
	}
}

func TestParseKind(t *testing.T) {
	for k := program.KindInitializePool; k <= program.KindEmergencyWithdraw; k++ {
		got, err := program.ParseKind(k.String())
		require.NoError(t, err)
		require.Equal(t, k, got)
	}

	_, err := program.ParseKind("mint")
	require.Error(t, err)
}
