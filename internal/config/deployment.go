package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Deployment is the summary document written after a full deployment.
type Deployment struct {
	Network    string            `json:"network"`
	DeployedAt string            `json:"deployedAt"`
	Contracts  DeployedContracts `json:"contracts"`
	OracleNode string            `json:"oracleNode"`
}

// DeployedContracts keeps the summary keys in deployment order.
type DeployedContracts struct {
	MockB3TR             string `json:"MockB3TR"`
	ReputationNFT        string `json:"ReputationNFT"`
	OpportunityContract  string `json:"OpportunityContract"`
	StakingPool          string `json:"StakingPool"`
	FeeDelegationManager string `json:"FeeDelegationManager"`
	Governance           string `json:"Governance"`
}

// AddressSet converts the summary back into the config form.
func (d DeployedContracts) AddressSet() AddressSet {
	return AddressSet{
		Token:         d.MockB3TR,
		Reputation:    d.ReputationNFT,
		Opportunity:   d.OpportunityContract,
		Staking:       d.StakingPool,
		FeeDelegation: d.FeeDelegationManager,
		Governance:    d.Governance,
	}
}

// LoadDeployment reads a deployment summary. A missing file returns nil, nil.
func LoadDeployment(path string) (*Deployment, error) {
	d, err := loadJSON[Deployment](path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading deployment %s: %w", path, err)
	}
	return d, nil
}

// SaveDeployment writes d as two-space indented JSON, creating parent dirs.
func SaveDeployment(path string, d *Deployment) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func loadJSON[T any](path string) (*T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return &v, nil
}
