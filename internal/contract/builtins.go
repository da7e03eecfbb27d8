package contract

import (
	"encoding/json"
	"sort"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// BuiltinKind is a contract whose ABI is embedded in the binary. Packages
// register their ABIs from init().
type BuiltinKind struct {
	ID          string // config name, e.g. "MockB3TR"
	Name        string // human label
	Description string
	ABI         abi.ABI
	Raw         json.RawMessage // the ABI JSON ABI was parsed from
}

var builtinRegistry = map[string]BuiltinKind{}

// RegisterBuiltin adds a built-in ABI to the global registry.
func RegisterBuiltin(b BuiltinKind) {
	builtinRegistry[b.ID] = b
}

// GetBuiltin returns a built-in by ID. ok is false if not found.
func GetBuiltin(id string) (BuiltinKind, bool) {
	b, ok := builtinRegistry[id]
	return b, ok
}

// AllBuiltins returns all registered built-ins sorted by ID.
func AllBuiltins() []BuiltinKind {
	out := make([]BuiltinKind, 0, len(builtinRegistry))
	for _, b := range builtinRegistry {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
