package contract

import (
	"context"
	"fmt"
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/proofofimpact/poi/internal/chain"
)

// Contract binds an ABI to a deployed address through a Provider. Every
// function is reachable by name through Call (view/pure) and Send
// (state-changing).
type Contract struct {
	address  common.Address
	abi      abi.ABI
	provider *Provider
}

// New binds parsed at address.
func New(address common.Address, parsed abi.ABI, p *Provider) *Contract {
	return &Contract{address: address, abi: parsed, provider: p}
}

// Address returns the bound address.
func (c *Contract) Address() common.Address { return c.address }

// ABI returns the bound ABI.
func (c *Contract) ABI() abi.ABI { return c.abi }

// Provider returns the session the contract talks through.
func (c *Contract) Provider() *Provider { return c.provider }

// Method looks up a function by name.
func (c *Contract) Method(name string) (abi.Method, error) {
	m, ok := c.abi.Methods[name]
	if !ok {
		return abi.Method{}, fmt.Errorf("%w: %s", ErrUnknownFunction, name)
	}
	return m, nil
}

// Functions returns every function sorted by name.
func (c *Contract) Functions() []abi.Method {
	out := make([]abi.Method, 0, len(c.abi.Methods))
	for _, m := range c.abi.Methods {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// IsRead reports whether m is view or pure.
func IsRead(m abi.Method) bool {
	return m.IsConstant()
}

// Call invokes a view/pure function and returns its normalized result.
// Errors from the query interface are returned unchanged.
func (c *Contract) Call(ctx context.Context, name string, args ...any) (any, error) {
	m, err := c.Method(name)
	if err != nil {
		return nil, err
	}
	if !IsRead(m) {
		return nil, fmt.Errorf("%s is state-changing; send it as a transaction", name)
	}
	if c.provider.query == nil {
		return nil, &ConfigError{Missing: MissingQuery}
	}

	data, err := c.abi.Pack(name, args...)
	if err != nil {
		return nil, fmt.Errorf("encoding %s arguments: %w", name, err)
	}

	res, err := c.provider.query.Call(ctx, c.provider.account, c.address, data)
	if err != nil {
		return nil, err
	}
	if res.Reverted {
		reason, _ := abi.UnpackRevert(res.Data)
		return nil, &CallRevertedError{Method: name, VMError: res.VMError, Reason: reason}
	}
	return Normalize(m, res.Data)
}

// Clause encodes a call to a state-changing function as a transaction
// clause, for batching several calls into one transaction.
func (c *Contract) Clause(value *big.Int, name string, args ...any) (chain.Clause, error) {
	m, err := c.Method(name)
	if err != nil {
		return chain.Clause{}, err
	}
	if IsRead(m) {
		return chain.Clause{}, fmt.Errorf("%s is read-only; use Call", name)
	}
	if value != nil && value.Sign() > 0 && !m.Payable {
		return chain.Clause{}, fmt.Errorf("%s is not payable", name)
	}

	data, err := c.abi.Pack(name, args...)
	if err != nil {
		return chain.Clause{}, fmt.Errorf("encoding %s arguments: %w", name, err)
	}
	to := c.address
	return chain.Clause{To: &to, Value: value, Data: data}, nil
}

// Send submits a single-clause transaction calling name.
func (c *Contract) Send(ctx context.Context, name string, args ...any) (*PendingTx, error) {
	return c.SendValue(ctx, nil, name, args...)
}

// SendValue is Send with VET attached, for payable functions.
func (c *Contract) SendValue(ctx context.Context, value *big.Int, name string, args ...any) (*PendingTx, error) {
	clause, err := c.Clause(value, name, args...)
	if err != nil {
		return nil, err
	}
	return c.provider.SendTransaction(ctx, clause)
}

// Invoke dispatches on the function's mutability: reads return the
// normalized result, writes return the *PendingTx.
func (c *Contract) Invoke(ctx context.Context, name string, args ...any) (any, error) {
	m, err := c.Method(name)
	if err != nil {
		return nil, err
	}
	if IsRead(m) {
		return c.Call(ctx, name, args...)
	}
	return c.Send(ctx, name, args...)
}
