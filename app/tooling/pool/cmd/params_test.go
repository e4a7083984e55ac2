package cmd

import (
	"errors"
	"testing"

	"github.com/ardanlabs/crowdpool/foundation/validate"
	"github.com/stretchr/testify/require"
)

func TestParseParams(t *testing.T) {
	doc := `
min_contribution: 1000
max_contribution: 10000
contribution_deadline: 2026-11-01T00:00:00Z
voting_deadline: 2026-11-08T00:00:00Z
proposal_threshold: 2000
voting_threshold: 1000
quorum_percentage: 60
`

	params, err := parseParams([]byte(doc))
	require.NoError(t, err)
	require.Equal(t, uint64(1000), params.MinContribution)
	require.Equal(t, int64(1793491200), params.ContributionDeadline)
	require.Equal(t, params.ContributionDeadline+7*86400, params.VotingDeadline)
	require.Equal(t, uint8(60), params.QuorumPercentage)
}

func TestParseParamsInvalid(t *testing.T) {
	doc := `
min_contribution: 1000
max_contribution: 500
contribution_deadline: 2026-11-08T00:00:00Z
voting_deadline: 2026-11-01T00:00:00Z
quorum_percentage: 150
`

	_, err := parseParams([]byte(doc))

	var fields validate.FieldErrors
	require.True(t, errors.As(err, &fields))

	got := fields.Fields()
	require.Contains(t, got, "max_contribution")
	require.Contains(t, got, "voting_deadline")
	require.Contains(t, got, "quorum_percentage")
}

func TestNetParams(t *testing.T) {
	for _, name := range []string{"mainnet", "testnet3", "signet", "regtest"} {
		_, err := netParams(name)
		require.NoError(t, err)
	}

	_, err := netParams("litecoin")
	require.Error(t, err)
}
