package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/ardanlabs/crowdpool/foundation/pool/contract"
	"github.com/ardanlabs/crowdpool/foundation/validate"
	"gopkg.in/yaml.v3"
)

// paramsFile is the operator facing form of the pool parameters.
type paramsFile struct {
	MinContribution      uint64    `yaml:"min_contribution" validate:"gt=0"`
	MaxContribution      uint64    `yaml:"max_contribution" validate:"gtfield=MinContribution"`
	ContributionDeadline time.Time `yaml:"contribution_deadline" validate:"required"`
	VotingDeadline       time.Time `yaml:"voting_deadline" validate:"required,gtfield=ContributionDeadline"`
	ProposalThreshold    uint64    `yaml:"proposal_threshold"`
	VotingThreshold      uint64    `yaml:"voting_threshold"`
	QuorumPercentage     uint8     `yaml:"quorum_percentage" validate:"lte=100"`
}

// parseParams decodes and validates a YAML parameters document.
func parseParams(data []byte) (contract.PoolParams, error) {
	var pf paramsFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return contract.PoolParams{}, fmt.Errorf("unmarshal: %w", err)
	}

	if err := validate.Check(pf); err != nil {
		return contract.PoolParams{}, fmt.Errorf("validate: %w", err)
	}

	params := contract.PoolParams{
		MinContribution:      pf.MinContribution,
		MaxContribution:      pf.MaxContribution,
		ContributionDeadline: pf.ContributionDeadline.Unix(),
		VotingDeadline:       pf.VotingDeadline.Unix(),
		ProposalThreshold:    pf.ProposalThreshold,
		VotingThreshold:      pf.VotingThreshold,
		QuorumPercentage:     pf.QuorumPercentage,
	}

	return params, nil
}

// loadParams reads a parameters file from disk.
func loadParams(path string) (contract.PoolParams, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return contract.PoolParams{}, err
	}
	return parseParams(data)
}
