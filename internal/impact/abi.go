package impact

import (
	"embed"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"

	"github.com/proofofimpact/poi/internal/config"
	"github.com/proofofimpact/poi/internal/contract"
)

//go:embed abi/*.json
var abiFiles embed.FS

var descriptions = map[string]string{
	config.ContractToken:         "B3TR test token (ERC-20 with faucet)",
	config.ContractReputation:    "Soulbound impact-score NFT",
	config.ContractOpportunity:   "Volunteer opportunities and proof submissions",
	config.ContractStaking:       "B3TR staking pool",
	config.ContractFeeDelegation: "NGO gas sponsorship deposits",
	config.ContractGovernance:    "Staker proposals, votes and comments",
}

func init() {
	for _, name := range config.Names {
		data, err := abiFiles.ReadFile("abi/" + name + ".json")
		if err != nil {
			panic(fmt.Sprintf("impact: missing embedded ABI for %s: %v", name, err))
		}
		parsed, err := contract.ParseABI(data)
		if err != nil {
			panic(fmt.Sprintf("impact: embedded ABI for %s: %v", name, err))
		}
		contract.RegisterBuiltin(contract.BuiltinKind{
			ID:          name,
			Name:        name,
			Description: descriptions[name],
			ABI:         parsed,
			Raw:         data,
		})
	}
}

// ABI returns the embedded ABI of a platform contract. name may be any
// alias config.Canonical accepts.
func ABI(name string) (abi.ABI, error) {
	canonical, ok := config.Canonical(name)
	if !ok {
		return abi.ABI{}, fmt.Errorf("unknown contract %q", name)
	}
	b, ok := contract.GetBuiltin(canonical)
	if !ok {
		return abi.ABI{}, fmt.Errorf("no ABI registered for %s", canonical)
	}
	return b.ABI, nil
}

func mustABI(name string) abi.ABI {
	parsed, err := ABI(name)
	if err != nil {
		panic(err)
	}
	return parsed
}
