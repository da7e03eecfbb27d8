package contract

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// ErrContractNotFound means no entry has that name on the network.
var ErrContractNotFound = errors.New("contract not found")

// Entry is a user-registered contract outside the platform set, such as a
// partner token an NGO pays rewards in.
type Entry struct {
	Name    string          `json:"name"`
	Network string          `json:"-"`
	Address string          `json:"address"`
	ABI     json.RawMessage `json:"abi"`
}

// Parsed returns the entry's ABI.
func (e *Entry) Parsed() (abi.ABI, error) {
	return ParseABI(e.ABI)
}

// Bind returns a Contract for the entry.
func (e *Entry) Bind(p *Provider) (*Contract, error) {
	if !common.IsHexAddress(e.Address) {
		return nil, fmt.Errorf("contract %s has invalid address %q", e.Name, e.Address)
	}
	parsed, err := e.Parsed()
	if err != nil {
		return nil, fmt.Errorf("contract %s: %w", e.Name, err)
	}
	return New(common.HexToAddress(e.Address), parsed, p), nil
}

// Registry keeps user-registered contracts in a JSON file, grouped by
// network. Names are matched case-insensitively within a network.
type Registry struct {
	path    string
	byChain map[string]map[string]*Entry
}

// NewRegistry returns an empty registry backed by path. Call Load to read
// what is already stored.
func NewRegistry(path string) *Registry {
	return &Registry{path: path, byChain: map[string]map[string]*Entry{}}
}

// Load reads path. A missing file is an empty registry.
func (r *Registry) Load() error {
	raw, err := os.ReadFile(r.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil
	case err != nil:
		return err
	}

	var stored map[string][]*Entry
	if err := json.Unmarshal(raw, &stored); err != nil {
		return fmt.Errorf("parsing %s: %w", r.path, err)
	}
	for network, entries := range stored {
		for _, e := range entries {
			e.Network = network
			r.Add(e)
		}
	}
	return nil
}

// Save rewrites path with every entry, 0600.
func (r *Registry) Save() error {
	stored := make(map[string][]*Entry, len(r.byChain))
	for _, e := range r.All() {
		stored[e.Network] = append(stored[e.Network], e)
	}
	raw, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(r.path, raw, 0o600)
}

// Add stores e, replacing any entry with the same name on its network.
func (r *Registry) Add(e *Entry) {
	names, ok := r.byChain[e.Network]
	if !ok {
		names = map[string]*Entry{}
		r.byChain[e.Network] = names
	}
	names[strings.ToLower(e.Name)] = e
}

func (r *Registry) Get(name, network string) (*Entry, error) {
	if e, ok := r.byChain[network][strings.ToLower(name)]; ok {
		return e, nil
	}
	return nil, fmt.Errorf("%w: %s on %s", ErrContractNotFound, name, network)
}

// All lists entries ordered by name, then network.
func (r *Registry) All() []*Entry {
	var out []*Entry
	for _, names := range r.byChain {
		for _, e := range names {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := strings.ToLower(out[i].Name), strings.ToLower(out[j].Name)
		if a != b {
			return a < b
		}
		return out[i].Network < out[j].Network
	})
	return out
}

func (r *Registry) Remove(name, network string) error {
	if _, err := r.Get(name, network); err != nil {
		return err
	}
	delete(r.byChain[network], strings.ToLower(name))
	return nil
}
