// Package impact binds the six Proof-of-Impact contracts to typed Go
// methods on top of the generic contract adapter.
package impact

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/proofofimpact/poi/internal/config"
	"github.com/proofofimpact/poi/internal/contract"
)

// ErrNotConfigured matches any MissingContractsError.
var ErrNotConfigured = errors.New("contract addresses not configured")

// MissingContractsError lists every platform contract without an address.
type MissingContractsError struct {
	Names []string
}

func (e *MissingContractsError) Error() string {
	return fmt.Sprintf("%s: %s (run `poi deploy` or set them in config)", ErrNotConfigured, strings.Join(e.Names, ", "))
}

func (e *MissingContractsError) Unwrap() error { return ErrNotConfigured }

// Contracts is the full platform bound to one session.
type Contracts struct {
	Token         *Token
	Reputation    *Reputation
	Opportunity   *Opportunities
	Staking       *Staking
	FeeDelegation *FeeDelegation
	Governance    *Governance
}

// Bind builds all six bindings. It fails before any network traffic when an
// address is missing or malformed.
func Bind(addrs config.AddressSet, p *contract.Provider) (*Contracts, error) {
	if missing := addrs.Missing(); len(missing) > 0 {
		return nil, &MissingContractsError{Names: missing}
	}
	for _, name := range config.Names {
		if a := addrs.Get(name); !common.IsHexAddress(a) {
			return nil, fmt.Errorf("%s address %q is not a valid address", name, a)
		}
	}
	at := func(name string) common.Address { return common.HexToAddress(addrs.Get(name)) }

	return &Contracts{
		Token:         NewToken(at(config.ContractToken), p),
		Reputation:    NewReputation(at(config.ContractReputation), p),
		Opportunity:   NewOpportunities(at(config.ContractOpportunity), p),
		Staking:       NewStaking(at(config.ContractStaking), p),
		FeeDelegation: NewFeeDelegation(at(config.ContractFeeDelegation), p),
		Governance:    NewGovernance(at(config.ContractGovernance), p),
	}, nil
}

// Generic binds one platform contract by name for untyped calls.
func Generic(name string, addrs config.AddressSet, p *contract.Provider) (*contract.Contract, error) {
	canonical, ok := config.Canonical(name)
	if !ok {
		return nil, fmt.Errorf("unknown contract %q", name)
	}
	a := addrs.Get(canonical)
	if a == "" {
		return nil, &MissingContractsError{Names: []string{canonical}}
	}
	if !common.IsHexAddress(a) {
		return nil, fmt.Errorf("%s address %q is not a valid address", canonical, a)
	}
	return contract.New(common.HexToAddress(a), mustABI(canonical), p), nil
}

// --- result shaping ---

func asBig(v any, err error) (*big.Int, error) {
	if err != nil {
		return nil, err
	}
	n, ok := v.(*big.Int)
	if !ok {
		return nil, unexpected(v, "integer")
	}
	return n, nil
}

func asAddress(v any, err error) (common.Address, error) {
	if err != nil {
		return common.Address{}, err
	}
	a, ok := v.(common.Address)
	if !ok {
		return common.Address{}, unexpected(v, "address")
	}
	return a, nil
}

func asString(v any, err error) (string, error) {
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", unexpected(v, "string")
	}
	return s, nil
}

func asRecords(v any, err error) ([]contract.Record, error) {
	if err != nil {
		return nil, err
	}
	r, ok := v.([]contract.Record)
	if !ok {
		return nil, unexpected(v, "tuple list")
	}
	return r, nil
}

func asSequence(v any, err error, n int) ([]any, error) {
	if err != nil {
		return nil, err
	}
	seq, ok := v.([]any)
	if !ok || len(seq) != n {
		return nil, unexpected(v, fmt.Sprintf("%d values", n))
	}
	return seq, nil
}

// ErrEmptyResult is returned when a read comes back with no data, which is
// what a call to an address without code looks like.
var ErrEmptyResult = errors.New("empty result: is the contract deployed at this address?")

func unexpected(v any, want string) error {
	if seq, ok := v.([]any); ok && len(seq) == 0 {
		return ErrEmptyResult
	}
	return fmt.Errorf("unexpected result type %T, want %s", v, want)
}

func bigOrZero(n *big.Int) *big.Int {
	if n == nil {
		return new(big.Int)
	}
	return n
}
