package impact

import (
	"context"
	"fmt"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/proofofimpact/poi/internal/chain"
	"github.com/proofofimpact/poi/internal/config"
	"github.com/proofofimpact/poi/internal/contract"
)

var (
	tokenAddr      = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	reputationAddr = common.HexToAddress("0x00000000000000000000000000000000000000a2")
	oppAddr        = common.HexToAddress("0x00000000000000000000000000000000000000a3")
	stakingAddr    = common.HexToAddress("0x00000000000000000000000000000000000000a4")
	delegationAddr = common.HexToAddress("0x00000000000000000000000000000000000000a5")
	governanceAddr = common.HexToAddress("0x00000000000000000000000000000000000000a6")

	account = common.HexToAddress("0x7567d83b7b8d80addcb281a71d54fc7b3364ffed")
)

func testAddresses() config.AddressSet {
	return config.AddressSet{
		Token:         tokenAddr.Hex(),
		Reputation:    reputationAddr.Hex(),
		Opportunity:   oppAddr.Hex(),
		Staking:       stakingAddr.Hex(),
		FeeDelegation: delegationAddr.Hex(),
		Governance:    governanceAddr.Hex(),
	}
}

var contractAt = map[common.Address]string{
	tokenAddr:      config.ContractToken,
	reputationAddr: config.ContractReputation,
	oppAddr:        config.ContractOpportunity,
	stakingAddr:    config.ContractStaking,
	delegationAddr: config.ContractFeeDelegation,
	governanceAddr: config.ContractGovernance,
}

type handler func(args []any) ([]any, error)

// fakeNode answers reads by decoding the selector against the embedded
// ABI of whichever platform contract is addressed.
type fakeNode struct {
	handlers map[string]handler
	reads    []string
}

func newFakeNode() *fakeNode {
	return &fakeNode{handlers: map[string]handler{}}
}

// on registers the outputs for contract.method.
func (f *fakeNode) on(contractName, method string, h handler) {
	f.handlers[contractName+"."+method] = h
}

func (f *fakeNode) returns(contractName, method string, outputs ...any) {
	f.on(contractName, method, func([]any) ([]any, error) { return outputs, nil })
}

func (f *fakeNode) Call(_ context.Context, _, to common.Address, data []byte) (*chain.CallResult, error) {
	name, ok := contractAt[to]
	if !ok {
		return &chain.CallResult{}, nil
	}
	parsed := mustABI(name)
	m, err := parsed.MethodById(data[:4])
	if err != nil {
		return nil, err
	}
	key := name + "." + m.Name
	f.reads = append(f.reads, key)

	h, ok := f.handlers[key]
	if !ok {
		return nil, fmt.Errorf("no fake for %s", key)
	}
	args, err := m.Inputs.Unpack(data[4:])
	if err != nil {
		return nil, err
	}
	outputs, err := h(args)
	if err != nil {
		return nil, err
	}
	packed, err := m.Outputs.Pack(outputs...)
	if err != nil {
		return nil, fmt.Errorf("packing %s: %w", key, err)
	}
	return &chain.CallResult{Data: packed}, nil
}

func (f *fakeNode) Receipt(context.Context, string) (*chain.Receipt, error) {
	return &chain.Receipt{}, nil
}

type fakeSigner struct {
	clauses [][]chain.Clause
	gas     []uint64
}

func (f *fakeSigner) Address() common.Address { return account }

func (f *fakeSigner) Send(_ context.Context, clauses []chain.Clause, gas uint64) (string, error) {
	f.clauses = append(f.clauses, clauses)
	f.gas = append(f.gas, gas)
	return fmt.Sprintf("0xtx%d", len(f.clauses)), nil
}

func bound(t *testing.T) (*Contracts, *fakeNode, *fakeSigner) {
	t.Helper()
	node := newFakeNode()
	signer := &fakeSigner{}
	c, err := Bind(testAddresses(), contract.NewProvider(node, signer, account))
	require.NoError(t, err)
	return c, node, signer
}

// decodeClause returns the method and arguments a clause calls on
// contractName.
func decodeClause(t *testing.T, contractName string, c chain.Clause) (string, []any) {
	t.Helper()
	parsed := mustABI(contractName)
	m, err := parsed.MethodById(c.Data[:4])
	require.NoError(t, err)
	args, err := m.Inputs.Unpack(c.Data[4:])
	require.NoError(t, err)
	return m.Name, args
}
