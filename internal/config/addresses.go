package config

import (
	"fmt"
	"strings"
)

// Contract names as they appear in artifacts and deployment summaries.
const (
	ContractToken         = "MockB3TR"
	ContractReputation    = "ReputationNFT"
	ContractOpportunity   = "OpportunityContract"
	ContractStaking       = "StakingPool"
	ContractFeeDelegation = "FeeDelegationManager"
	ContractGovernance    = "Governance"
)

// Names lists the platform contracts in deployment order.
var Names = []string{
	ContractToken,
	ContractReputation,
	ContractOpportunity,
	ContractStaking,
	ContractFeeDelegation,
	ContractGovernance,
}

// addressKeys are the config keys under "contracts", aligned with Names.
var addressKeys = []string{"token", "reputation", "opportunity", "staking", "fee_delegation", "governance"}

// AddressSet maps each logical contract to its deployed address.
type AddressSet struct {
	Token         string `json:"token"          mapstructure:"token"`
	Reputation    string `json:"reputation"     mapstructure:"reputation"`
	Opportunity   string `json:"opportunity"    mapstructure:"opportunity"`
	Staking       string `json:"staking"        mapstructure:"staking"`
	FeeDelegation string `json:"fee_delegation" mapstructure:"fee_delegation"`
	Governance    string `json:"governance"     mapstructure:"governance"`
}

// Canonical resolves a contract name or alias ("token", "fee-delegation",
// "MockB3TR", ...) to one of Names. Matching is case-insensitive.
func Canonical(name string) (string, bool) {
	n := strings.ToLower(strings.ReplaceAll(name, "-", "_"))
	for i, canonical := range Names {
		if n == addressKeys[i] || n == strings.ToLower(canonical) {
			return canonical, true
		}
	}
	switch n {
	case "b3tr":
		return ContractToken, true
	case "nft":
		return ContractReputation, true
	case "pool":
		return ContractStaking, true
	case "delegation":
		return ContractFeeDelegation, true
	}
	return "", false
}

// Get returns the address for name, or "" when unknown or unset.
func (a AddressSet) Get(name string) string {
	p := a.field(name)
	if p == nil {
		return ""
	}
	return *p
}

// Set assigns the address for name.
func (a *AddressSet) Set(name, addr string) error {
	p := a.field(name)
	if p == nil {
		return fmt.Errorf("unknown contract %q", name)
	}
	*p = addr
	return nil
}

// Missing returns the names of contracts with no address, in deployment order.
func (a AddressSet) Missing() []string {
	var out []string
	for _, name := range Names {
		if a.Get(name) == "" {
			out = append(out, name)
		}
	}
	return out
}

// Deployed converts the set to its deployment-summary form.
func (a AddressSet) Deployed() DeployedContracts {
	return DeployedContracts{
		MockB3TR:             a.Token,
		ReputationNFT:        a.Reputation,
		OpportunityContract:  a.Opportunity,
		StakingPool:          a.Staking,
		FeeDelegationManager: a.FeeDelegation,
		Governance:           a.Governance,
	}
}

func (a *AddressSet) field(name string) *string {
	canonical, ok := Canonical(name)
	if !ok {
		return nil
	}
	switch canonical {
	case ContractToken:
		return &a.Token
	case ContractReputation:
		return &a.Reputation
	case ContractOpportunity:
		return &a.Opportunity
	case ContractStaking:
		return &a.Staking
	case ContractFeeDelegation:
		return &a.FeeDelegation
	default:
		return &a.Governance
	}
}
