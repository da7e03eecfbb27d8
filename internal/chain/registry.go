package chain

import (
	"errors"
	"strings"
)

// ErrNetworkNotFound is returned when a network is not in the registry.
var ErrNetworkNotFound = errors.New("network not found")

// Network holds all metadata for a single VeChainThor network.
type Network struct {
	Name        string   `json:"name"`
	DisplayName string   `json:"display_name"`
	Nodes       []string `json:"nodes"`
	Explorer    string   `json:"explorer"`
	FaucetURL   string   `json:"faucet_url,omitempty"`
	Testnet     bool     `json:"testnet"`
}

// TxURL returns the explorer link for a transaction, or "" when the network
// has no explorer.
func (n *Network) TxURL(txID string) string {
	if n.Explorer == "" {
		return ""
	}
	return strings.TrimRight(n.Explorer, "/") + "/transactions/" + txID
}

// AddressURL returns the explorer link for an account.
func (n *Network) AddressURL(addr string) string {
	if n.Explorer == "" {
		return ""
	}
	return strings.TrimRight(n.Explorer, "/") + "/accounts/" + addr
}

// Registry is the network registry.
type Registry struct {
	networks []Network
	byName   map[string]*Network
}

// NewRegistry returns the registry of known networks.
func NewRegistry() *Registry {
	networks := allNetworks()
	r := &Registry{
		networks: networks,
		byName:   make(map[string]*Network, len(networks)*2),
	}
	for i := range r.networks {
		n := &r.networks[i]
		r.byName[n.Name] = n
	}
	// Hardhat network names used by the contract workspace.
	r.byName["vechaintestnet"] = r.byName["vechain-testnet"]
	r.byName["vechainmainnet"] = r.byName["vechain-mainnet"]
	return r
}

// All returns every network in the registry.
func (r *Registry) All() []Network {
	return r.networks
}

// GetByName finds a network by its slug (e.g. "vechain-testnet").
func (r *Registry) GetByName(name string) (*Network, error) {
	n, ok := r.byName[strings.ToLower(name)]
	if !ok {
		return nil, ErrNetworkNotFound
	}
	return n, nil
}

// --- network data ---

func allNetworks() []Network {
	return []Network{
		{
			Name:        "vechain-mainnet",
			DisplayName: "VeChainThor Mainnet",
			Nodes: []string{
				"https://mainnet.vechain.org",
				"https://mainnet.vecha.in",
			},
			Explorer: "https://explore.vechain.org",
		},
		{
			Name:        "vechain-testnet",
			DisplayName: "VeChainThor Testnet",
			Nodes: []string{
				"https://testnet.vechain.org",
				"https://testnet.vecha.in",
			},
			Explorer:  "https://explore-testnet.vechain.org",
			FaucetURL: "https://faucet.vecha.in",
			Testnet:   true,
		},
		{
			Name:        "vechain-solo",
			DisplayName: "VeChainThor Solo",
			Nodes:       []string{"http://localhost:8669"},
			Testnet:     true,
		},
	}
}
