package contract

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proofofimpact/poi/internal/chain"
)

var (
	contractAddr = common.HexToAddress("0x00000000000000000000000000000000000c0de1")
	userAddr     = common.HexToAddress("0x7567d83b7b8d80addcb281a71d54fc7b3364ffed")
)

type opportunityTuple struct {
	Id     *big.Int
	Title  string
	Status uint8
	Ngo    common.Address
}

// ---------------------------------------------------------------------------
// read normalization
// ---------------------------------------------------------------------------

func TestCallSingleOutputIsUnwrapped(t *testing.T) {
	parsed := parsedTestABI(t)
	q := returning(packOutputs(t, parsed, "balanceOf", big.NewInt(42)))
	c := New(contractAddr, parsed, NewProvider(q, nil, userAddr))

	got, err := c.Call(context.Background(), "balanceOf", userAddr)
	require.NoError(t, err)

	n, ok := got.(*big.Int)
	require.True(t, ok, "want *big.Int, got %T", got)
	assert.Equal(t, int64(42), n.Int64())
}

func TestCallTupleArrayBecomesRecords(t *testing.T) {
	parsed := parsedTestABI(t)
	ngo := common.HexToAddress("0x0000000000000000000000000000000000000a11")
	q := returning(packOutputs(t, parsed, "getAllOpportunities", []opportunityTuple{
		{Id: big.NewInt(1), Title: "[cleanup] Beach", Status: 0, Ngo: ngo},
		{Id: big.NewInt(2), Title: "[trees] Park", Status: 1, Ngo: ngo},
	}))
	c := New(contractAddr, parsed, NewProvider(q, nil, userAddr))

	got, err := c.Call(context.Background(), "getAllOpportunities")
	require.NoError(t, err)

	records, ok := got.([]Record)
	require.True(t, ok, "want []Record, got %T", got)
	require.Len(t, records, 2)
	for _, r := range records {
		assert.Equal(t, []string{"id", "title", "status", "ngo"}, r.Names())
	}
	assert.Equal(t, int64(2), records[1].Big("id").Int64())
	assert.Equal(t, "[trees] Park", records[1].String("title"))
	assert.Equal(t, uint8(1), records[1].Uint8("status"))
	assert.Equal(t, ngo, records[0].Address("ngo"))
}

func TestCallEmptyTupleArray(t *testing.T) {
	parsed := parsedTestABI(t)
	q := returning(packOutputs(t, parsed, "getAllOpportunities", []opportunityTuple{}))
	c := New(contractAddr, parsed, NewProvider(q, nil, userAddr))

	got, err := c.Call(context.Background(), "getAllOpportunities")
	require.NoError(t, err)
	assert.Equal(t, []Record{}, got)
}

func TestCallSingleTupleBecomesRecord(t *testing.T) {
	parsed := parsedTestABI(t)
	q := returning(packOutputs(t, parsed, "getOpportunity", struct {
		Id    *big.Int
		Title string
	}{big.NewInt(7), "Plant"}))
	c := New(contractAddr, parsed, NewProvider(q, nil, userAddr))

	got, err := c.Call(context.Background(), "getOpportunity", big.NewInt(7))
	require.NoError(t, err)

	rec, ok := got.(Record)
	require.True(t, ok, "want Record, got %T", got)
	assert.Equal(t, []string{"id", "title"}, rec.Names())
	assert.Equal(t, "Plant", rec.String("title"))
}

func TestCallMultipleOutputsInDeclaredOrder(t *testing.T) {
	parsed := parsedTestABI(t)
	q := returning(packOutputs(t, parsed, "getStakeInfo", big.NewInt(100), big.NewInt(200), big.NewInt(300)))
	c := New(contractAddr, parsed, NewProvider(q, nil, userAddr))

	got, err := c.Call(context.Background(), "getStakeInfo", userAddr)
	require.NoError(t, err)

	seq, ok := got.([]any)
	require.True(t, ok, "want []any, got %T", got)
	require.Len(t, seq, 3)
	for i, want := range []int64{100, 200, 300} {
		assert.Equal(t, want, seq[i].(*big.Int).Int64())
	}
}

func TestCallAddressArray(t *testing.T) {
	parsed := parsedTestABI(t)
	vols := []common.Address{common.HexToAddress("0x01"), common.HexToAddress("0x02")}
	q := returning(packOutputs(t, parsed, "getNGOVolunteers", vols))
	c := New(contractAddr, parsed, NewProvider(q, nil, userAddr))

	got, err := c.Call(context.Background(), "getNGOVolunteers", userAddr)
	require.NoError(t, err)
	assert.Equal(t, vols, got)
}

func TestNormalizeEmptyDataIsEmptySequence(t *testing.T) {
	parsed := parsedTestABI(t)
	got, err := Normalize(parsed.Methods["balanceOf"], nil)
	require.NoError(t, err)
	assert.Equal(t, []any{}, got)
}

func TestNormalizeNoOutputsReturnsRawData(t *testing.T) {
	parsed := parsedTestABI(t)
	raw := []byte{0xde, 0xad}
	got, err := Normalize(parsed.Methods["ping"], raw)
	require.NoError(t, err)
	assert.Equal(t, raw, got)
}

func TestNormalizeMalformedData(t *testing.T) {
	parsed := parsedTestABI(t)
	_, err := Normalize(parsed.Methods["balanceOf"], []byte{0x01})
	assert.Error(t, err)
}

// ---------------------------------------------------------------------------
// read errors
// ---------------------------------------------------------------------------

func TestCallWithoutQuerierIsConfigError(t *testing.T) {
	c := New(contractAddr, parsedTestABI(t), NewProvider(nil, nil, userAddr))

	_, err := c.Call(context.Background(), "balanceOf", userAddr)

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, MissingQuery, cfgErr.Missing)
	assert.Contains(t, err.Error(), "query interface")
}

func TestCallPropagatesQuerierErrorUnchanged(t *testing.T) {
	boom := errors.New("user closed the wallet")
	q := &fakeQuerier{callFn: func(_, _ common.Address, _ []byte) (*chain.CallResult, error) {
		return nil, boom
	}}
	c := New(contractAddr, parsedTestABI(t), NewProvider(q, nil, userAddr))

	_, err := c.Call(context.Background(), "balanceOf", userAddr)
	assert.Same(t, boom, err)
}

func TestCallPassesCallerAndTarget(t *testing.T) {
	parsed := parsedTestABI(t)
	var gotCaller, gotTo common.Address
	var gotData []byte
	q := &fakeQuerier{callFn: func(caller, to common.Address, data []byte) (*chain.CallResult, error) {
		gotCaller, gotTo, gotData = caller, to, data
		return &chain.CallResult{Data: packOutputs(t, parsed, "balanceOf", big.NewInt(1))}, nil
	}}
	c := New(contractAddr, parsed, NewProvider(q, nil, userAddr))

	_, err := c.Call(context.Background(), "balanceOf", userAddr)
	require.NoError(t, err)
	assert.Equal(t, userAddr, gotCaller)
	assert.Equal(t, contractAddr, gotTo)
	assert.Equal(t, parsed.Methods["balanceOf"].ID, gotData[:4])
}

func TestCallRevertedDecodesReason(t *testing.T) {
	str, _ := abi.NewType("string", "", nil)
	payload, err := abi.Arguments{{Type: str}}.Pack("Opportunity not active")
	require.NoError(t, err)
	revert := append([]byte{0x08, 0xc3, 0x79, 0xa0}, payload...)

	q := &fakeQuerier{callFn: func(_, _ common.Address, _ []byte) (*chain.CallResult, error) {
		return &chain.CallResult{Data: revert, Reverted: true, VMError: "execution reverted"}, nil
	}}
	c := New(contractAddr, parsedTestABI(t), NewProvider(q, nil, userAddr))

	_, err = c.Call(context.Background(), "balanceOf", userAddr)
	var revErr *CallRevertedError
	require.ErrorAs(t, err, &revErr)
	assert.Equal(t, "Opportunity not active", revErr.Reason)
	assert.Contains(t, err.Error(), "Opportunity not active")
}

func TestCallUnknownFunction(t *testing.T) {
	c := New(contractAddr, parsedTestABI(t), NewProvider(returning(nil), nil, userAddr))
	_, err := c.Call(context.Background(), "mint")
	assert.ErrorIs(t, err, ErrUnknownFunction)
}

func TestCallOnWriteFunctionIsRejected(t *testing.T) {
	q := returning(nil)
	c := New(contractAddr, parsedTestABI(t), NewProvider(q, nil, userAddr))
	_, err := c.Call(context.Background(), "approve", userAddr, big.NewInt(1))
	assert.Error(t, err)
	assert.Zero(t, q.calls)
}

func TestCallBadArguments(t *testing.T) {
	q := returning(nil)
	c := New(contractAddr, parsedTestABI(t), NewProvider(q, nil, userAddr))
	_, err := c.Call(context.Background(), "balanceOf", "not-an-address")
	assert.Error(t, err)
	assert.Zero(t, q.calls)
}

// ---------------------------------------------------------------------------
// writes
// ---------------------------------------------------------------------------

func TestSendBuildsSingleClauseWithGasCeiling(t *testing.T) {
	parsed := parsedTestABI(t)
	s := &fakeSigner{addr: userAddr, id: "0xabc"}
	c := New(contractAddr, parsed, NewProvider(returning(nil), s, common.Address{}))

	tx, err := c.Send(context.Background(), "approve", userAddr, big.NewInt(5))
	require.NoError(t, err)
	assert.Equal(t, "0xabc", tx.ID)

	require.Len(t, s.clauses, 1)
	require.Len(t, s.clauses[0], 1)
	clause := s.clauses[0][0]
	assert.Equal(t, contractAddr, *clause.To)
	assert.Equal(t, parsed.Methods["approve"].ID, clause.Data[:4])
	assert.Equal(t, uint64(1_000_000), s.gas[0])
}

func TestSendWithoutSignerIsConfigError(t *testing.T) {
	c := New(contractAddr, parsedTestABI(t), NewProvider(returning(nil), nil, userAddr))

	_, err := c.Send(context.Background(), "approve", userAddr, big.NewInt(5))

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, MissingSigner, cfgErr.Missing)
}

func TestSendEmptyTxIDIsRejected(t *testing.T) {
	s := &fakeSigner{addr: userAddr}
	c := New(contractAddr, parsedTestABI(t), NewProvider(returning(nil), s, userAddr))

	_, err := c.Send(context.Background(), "approve", userAddr, big.NewInt(5))
	assert.ErrorIs(t, err, ErrRejected)
}

func TestSendPropagatesSignerErrorUnchanged(t *testing.T) {
	boom := errors.New("insufficient energy")
	s := &fakeSigner{addr: userAddr, err: boom}
	c := New(contractAddr, parsedTestABI(t), NewProvider(returning(nil), s, userAddr))

	_, err := c.Send(context.Background(), "approve", userAddr, big.NewInt(5))
	assert.Same(t, boom, err)
}

func TestSendValueRequiresPayable(t *testing.T) {
	s := &fakeSigner{addr: userAddr, id: "0x01"}
	c := New(contractAddr, parsedTestABI(t), NewProvider(returning(nil), s, userAddr))

	_, err := c.SendValue(context.Background(), big.NewInt(1), "approve", userAddr, big.NewInt(5))
	assert.Error(t, err)
	assert.Empty(t, s.clauses)

	_, err = c.SendValue(context.Background(), big.NewInt(1e18), "depositForSponsorship")
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1e18), s.clauses[0][0].Value)
}

func TestClauseOnReadFunctionIsRejected(t *testing.T) {
	c := New(contractAddr, parsedTestABI(t), NewProvider(nil, nil, userAddr))
	_, err := c.Clause(nil, "balanceOf", userAddr)
	assert.Error(t, err)
}

func TestInvokeDispatchesOnMutability(t *testing.T) {
	parsed := parsedTestABI(t)
	s := &fakeSigner{addr: userAddr, id: "0xfeed"}
	q := returning(packOutputs(t, parsed, "balanceOf", big.NewInt(9)))
	c := New(contractAddr, parsed, NewProvider(q, s, userAddr))

	read, err := c.Invoke(context.Background(), "balanceOf", userAddr)
	require.NoError(t, err)
	assert.Equal(t, int64(9), read.(*big.Int).Int64())
	assert.Empty(t, s.clauses)

	write, err := c.Invoke(context.Background(), "approve", userAddr, big.NewInt(1))
	require.NoError(t, err)
	assert.Equal(t, "0xfeed", write.(*PendingTx).ID)
	assert.Equal(t, 1, q.calls)
}

func TestFunctionsSortedByName(t *testing.T) {
	c := New(contractAddr, parsedTestABI(t), nil)
	fns := c.Functions()
	require.NotEmpty(t, fns)
	assert.Equal(t, "approve", fns[0].Name)
	for i := 1; i < len(fns); i++ {
		assert.Less(t, fns[i-1].Name, fns[i].Name)
	}
}

func TestProviderAccountFallsBackToSigner(t *testing.T) {
	p := NewProvider(nil, &fakeSigner{addr: userAddr}, common.Address{})
	assert.Equal(t, userAddr, p.Account())
	assert.True(t, p.CanSign())
}
