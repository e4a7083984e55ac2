package contract_test

import (
	"testing"

	"github.com/ardanlabs/crowdpool/foundation/host"
	"github.com/ardanlabs/crowdpool/foundation/pool/codec"
	"github.com/ardanlabs/crowdpool/foundation/pool/contract"
	"github.com/stretchr/testify/require"
)

func populated(t *testing.T) *contract.Contract {
	kf := host.NewKeyFactory(7)
	alice := kf.NewUnique()
	bob := kf.NewUnique()

	c := newPool(t)
	require.NoError(t, c.Contribute(start, bob, 3000))
	require.NoError(t, c.Contribute(start, alice, 5000))

	_, err := c.SubmitProposal(duringVoting, alice, addrP2PKH, "genesis")
	require.NoError(t, err)
	_, err = c.SubmitProposal(duringVoting, bob, addrBech32, "payout ₿")
	require.NoError(t, err)

	require.NoError(t, c.CastVote(duringVoting, bob, 1))
	return c
}

func TestEncodeRoundTrip(t *testing.T) {
	for name, c := range map[string]*contract.Contract{
		"new":         contract.New(),
		"initialized": newPool(t),
		"populated":   populated(t),
	} {
		t.Run(name, func(t *testing.T) {
			data := c.Encode()

			got, err := contract.Decode(data)
			require.NoError(t, err)
			require.Equal(t, c, got)
			require.Equal(t, data, got.Encode())
		})
	}
}

func TestEncodeWinner(t *testing.T) {
	c := populated(t)
	id := uint64(2)
	c.WinningProposal = &id
	c.TransferExecuted = true
	c.State = contract.Completed

	got, err := contract.Decode(c.Encode())
	require.NoError(t, err)
	require.NotNil(t, got.WinningProposal)
	require.Equal(t, uint64(2), *got.WinningProposal)
	require.True(t, got.TransferExecuted)
	require.Equal(t, contract.Completed, got.State)
}

func TestEncodeDeterministic(t *testing.T) {
	a := populated(t)

	// Same pledges applied in the opposite order.
	kf := host.NewKeyFactory(7)
	alice := kf.NewUnique()
	bob := kf.NewUnique()

	b := newPool(t)
	require.NoError(t, b.Contribute(start, alice, 5000))
	require.NoError(t, b.Contribute(start, bob, 3000))
	_, err := b.SubmitProposal(duringVoting, alice, addrP2PKH, "genesis")
	require.NoError(t, err)
	_, err = b.SubmitProposal(duringVoting, bob, addrBech32, "payout ₿")
	require.NoError(t, err)
	require.NoError(t, b.CastVote(duringVoting, bob, 1))

	for i := 0; i < 20; i++ {
		require.Equal(t, a.Encode(), b.Encode())
	}
}

func TestEncodeLayout(t *testing.T) {
	data := contract.New().Encode()

	exp := []byte{
		0,                      // state
		0,                      // params none
		0, 0, 0, 0, 0, 0, 0, 0, // total balance
		0, 0, 0, 0, // contributions
		0, 0, 0, 0, // proposals
		0, 0, 0, 0, // votes
		1, 0, 0, 0, 0, 0, 0, 0, // next proposal id
		0, // winning proposal none
		0, // transfer executed
	}
	require.Equal(t, exp, data)
}

func TestDecodeTruncated(t *testing.T) {
	data := populated(t).Encode()

	for n := 0; n < len(data); n++ {
		_, err := contract.Decode(data[:n])
		require.ErrorIs(t, err, codec.ErrTruncatedInput, "prefix of %d bytes", n)
		require.True(t, contract.IsEncoding(err))
	}
}

func TestDecodeTrailing(t *testing.T) {
	data := append(populated(t).Encode(), 0)

	_, err := contract.Decode(data)
	require.ErrorIs(t, err, codec.ErrTrailingBytes)
}

func TestDecodeInvalidTags(t *testing.T) {
	base := contract.New().Encode()

	tests := map[string]int{
		"state":     0,
		"params":    1,
		"winner":    len(base) - 2,
		"completed": len(base) - 1,
	}

	for name, offset := range tests {
		t.Run(name, func(t *testing.T) {
			data := append([]byte(nil), base...)
			data[offset] = 9

			_, err := contract.Decode(data)
			require.ErrorIs(t, err, codec.ErrInvalidTag)
		})
	}
}

func TestPoolInfoRoundTrip(t *testing.T) {
	info, err := populated(t).PoolInfo()
	require.NoError(t, err)

	w := codec.NewWriter()
	contract.EncodePoolInfo(w, info)

	r := codec.NewReader(w.Bytes())
	got, err := contract.DecodePoolInfo(r)
	require.NoError(t, err)
	require.NoError(t, r.Finish())
	require.Equal(t, info, got)
}

func TestToProgramError(t *testing.T) {
	code, ok := host.Code(contract.ToProgramError(contract.ErrAlreadyVoted))
	require.True(t, ok)
	require.Equal(t, uint64(12), code)

	code, ok = host.Code(contract.ToProgramError(contract.ErrLockTime))
	require.True(t, ok)
	require.Equal(t, uint64(18), code)

	_, err := contract.Decode(nil)
	code, ok = host.Code(contract.ToProgramError(err))
	require.True(t, ok)
	require.Equal(t, uint64(19), code)

	code, ok = host.Code(contract.ToProgramError(host.ErrNotEnoughAccountKeys))
	require.True(t, ok)
	require.Equal(t, host.CodeNotEnoughAccountKeys, code)

	require.NoError(t, contract.ToProgramError(nil))
}

func TestDecodeDuplicateKeys(t *testing.T) {
	key := host.NamedPubkey("alice")

	w := codec.NewWriter()
	contract.EncodePoolState(w, contract.ContributionPhase)
	w.WriteOption(true)
	contract.EncodePoolParams(w, testParams())
	w.WriteU64(7)

	// Contributions carry the same key twice.
	w.WriteLen(2)
	w.WriteKey(key)
	w.WriteU64(3)
	w.WriteKey(key)
	w.WriteU64(7)

	// Proposals carry the same id twice.
	w.WriteLen(2)
	for _, desc := range []string{"first", "second"} {
		w.WriteU64(1)
		contract.EncodeProposal(w, contract.Proposal{ID: 1, Proposer: key, BitcoinAddress: addrP2PKH, Description: desc})
	}

	w.WriteLen(0)
	w.WriteU64(2)
	w.WriteOption(false)
	w.WriteBool(false)

	c, err := contract.Decode(w.Bytes())
	require.NoError(t, err)

	require.Len(t, c.Contributions, 1)
	require.Equal(t, uint64(7), c.Contributions[key])

	require.Len(t, c.Proposals, 1)
	require.Equal(t, "second", c.Proposals[1].Description)
}
