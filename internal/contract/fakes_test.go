package contract

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/proofofimpact/poi/internal/chain"
)

const testABI = `[
  {"type":"function","name":"balanceOf","stateMutability":"view",
   "inputs":[{"name":"account","type":"address"}],
   "outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"getAllOpportunities","stateMutability":"view","inputs":[],
   "outputs":[{"name":"","type":"tuple[]","components":[
     {"name":"id","type":"uint256"},
     {"name":"title","type":"string"},
     {"name":"status","type":"uint8"},
     {"name":"ngo","type":"address"}]}]},
  {"type":"function","name":"getOpportunity","stateMutability":"view",
   "inputs":[{"name":"id","type":"uint256"}],
   "outputs":[{"name":"","type":"tuple","components":[
     {"name":"id","type":"uint256"},
     {"name":"title","type":"string"}]}]},
  {"type":"function","name":"getStakeInfo","stateMutability":"view",
   "inputs":[{"name":"user","type":"address"}],
   "outputs":[{"name":"amount","type":"uint256"},{"name":"stakedAt","type":"uint256"},{"name":"pendingReward","type":"uint256"}]},
  {"type":"function","name":"getNGOVolunteers","stateMutability":"view",
   "inputs":[{"name":"ngo","type":"address"}],
   "outputs":[{"name":"","type":"address[]"}]},
  {"type":"function","name":"ping","stateMutability":"view","inputs":[],"outputs":[]},
  {"type":"function","name":"approve","stateMutability":"nonpayable",
   "inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],
   "outputs":[{"name":"","type":"bool"}]},
  {"type":"function","name":"depositForSponsorship","stateMutability":"payable","inputs":[],"outputs":[]}
]`

func parsedTestABI(t *testing.T) abi.ABI {
	t.Helper()
	parsed, err := abi.JSON(strings.NewReader(testABI))
	require.NoError(t, err)
	return parsed
}

// fakeQuerier answers calls with callFn and receipts with receiptFn,
// counting every receipt lookup.
type fakeQuerier struct {
	mu        sync.Mutex
	callFn    func(caller, to common.Address, data []byte) (*chain.CallResult, error)
	receiptFn func(attempt int) (*chain.Receipt, error)
	receipts  int
	calls     int
}

func (f *fakeQuerier) Call(_ context.Context, caller, to common.Address, data []byte) (*chain.CallResult, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.callFn(caller, to, data)
}

func (f *fakeQuerier) Receipt(_ context.Context, _ string) (*chain.Receipt, error) {
	f.mu.Lock()
	f.receipts++
	n := f.receipts
	f.mu.Unlock()
	return f.receiptFn(n)
}

func (f *fakeQuerier) receiptCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.receipts
}

// returning is a querier whose calls all return data.
func returning(data []byte) *fakeQuerier {
	return &fakeQuerier{
		callFn: func(_, _ common.Address, _ []byte) (*chain.CallResult, error) {
			return &chain.CallResult{Data: data}, nil
		},
	}
}

type fakeSigner struct {
	addr    common.Address
	id      string
	err     error
	clauses [][]chain.Clause
	gas     []uint64
}

func (f *fakeSigner) Address() common.Address { return f.addr }

func (f *fakeSigner) Send(_ context.Context, clauses []chain.Clause, gas uint64) (string, error) {
	f.clauses = append(f.clauses, clauses)
	f.gas = append(f.gas, gas)
	return f.id, f.err
}

// packOutputs encodes values as method's return data.
func packOutputs(t *testing.T, parsed abi.ABI, method string, values ...any) []byte {
	t.Helper()
	data, err := parsed.Methods[method].Outputs.Pack(values...)
	require.NoError(t, err)
	return data
}
