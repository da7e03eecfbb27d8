package contract

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func abiType(t *testing.T, s string) abi.Type {
	t.Helper()
	typ, err := abi.NewType(s, "", nil)
	require.NoError(t, err)
	return typ
}

func TestParseArgScalars(t *testing.T) {
	v, err := ParseArg(abiType(t, "uint256"), "1000000000000000000000")
	require.NoError(t, err)
	assert.Equal(t, "1000000000000000000000", v.(*big.Int).String())

	v, err = ParseArg(abiType(t, "uint8"), "2")
	require.NoError(t, err)
	assert.Equal(t, uint8(2), v)

	v, err = ParseArg(abiType(t, "int256"), "-33868800")
	require.NoError(t, err)
	assert.Equal(t, int64(-33868800), v.(*big.Int).Int64())

	v, err = ParseArg(abiType(t, "int64"), "-5")
	require.NoError(t, err)
	assert.Equal(t, int64(-5), v)

	v, err = ParseArg(abiType(t, "bool"), "true")
	require.NoError(t, err)
	assert.Equal(t, true, v)

	v, err = ParseArg(abiType(t, "address"), "0x7567d83b7b8d80addcb281a71d54fc7b3364ffed")
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0x7567d83b7b8d80addcb281a71d54fc7b3364ffed"), v)

	v, err = ParseArg(abiType(t, "string"), "  Beach cleanup ")
	require.NoError(t, err)
	assert.Equal(t, "Beach cleanup", v)

	v, err = ParseArg(abiType(t, "uint256"), "0xff")
	require.NoError(t, err)
	assert.Equal(t, int64(255), v.(*big.Int).Int64())
}

func TestParseArgBytes(t *testing.T) {
	v, err := ParseArg(abiType(t, "bytes"), "0xdeadbeef")
	require.NoError(t, err)
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, v)

	v, err = ParseArg(abiType(t, "bytes32"), "0x0102")
	require.NoError(t, err)
	b := v.([32]byte)
	assert.Equal(t, byte(0x01), b[0])
	assert.Equal(t, byte(0x02), b[1])
	assert.Equal(t, byte(0x00), b[31])
}

func TestParseArgArrays(t *testing.T) {
	a1 := "0x0000000000000000000000000000000000000001"
	a2 := "0x0000000000000000000000000000000000000002"
	v, err := ParseArg(abiType(t, "address[]"), "["+a1+", "+a2+"]")
	require.NoError(t, err)
	assert.Equal(t, []common.Address{common.HexToAddress(a1), common.HexToAddress(a2)}, v)

	v, err = ParseArg(abiType(t, "uint256[2]"), "[1,2]")
	require.NoError(t, err)
	arr := v.([2]*big.Int)
	assert.Equal(t, int64(2), arr[1].Int64())

	v, err = ParseArg(abiType(t, "uint256[]"), "[]")
	require.NoError(t, err)
	assert.Len(t, v, 0)
}

func TestParseArgRejects(t *testing.T) {
	cases := map[string]string{
		"address":    "0x123",
		"uint8":      "256",
		"uint256":    "-1",
		"int8":       "128",
		"bool":       "maybe",
		"bytes2":     "0x010203",
		"uint256[2]": "[1]",
	}
	for typ, in := range cases {
		_, err := ParseArg(abiType(t, typ), in)
		assert.Error(t, err, "%s %q", typ, in)
	}
}

func TestParseArgsChecksCount(t *testing.T) {
	parsed := parsedTestABI(t)
	_, err := ParseArgs(parsed.Methods["approve"].Inputs, []string{"0x01"})
	assert.ErrorContains(t, err, "expected 2 arguments (address,uint256)")

	args, err := ParseArgs(parsed.Methods["approve"].Inputs, []string{"0x0000000000000000000000000000000000000001", "5"})
	require.NoError(t, err)
	_, err = parsed.Pack("approve", args...)
	assert.NoError(t, err)
}
