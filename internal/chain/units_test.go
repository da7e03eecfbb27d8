package chain

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatUnits(t *testing.T) {
	one := new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	assert.Equal(t, "1", FormatUnits(one, 18))
	assert.Equal(t, "0", FormatUnits(big.NewInt(0), 18))
	assert.Equal(t, "0.5", FormatUnits(new(big.Int).Div(one, big.NewInt(2)), 18))
	assert.Equal(t, "0.000000000000000001", FormatUnits(big.NewInt(1), 18))
	assert.Equal(t, "-1.25", FormatUnits(big.NewInt(-125), 2))
	assert.Equal(t, "42", FormatUnits(big.NewInt(42), 0))
	assert.Equal(t, "0", FormatUnits(nil, 18))
}

func TestParseUnits(t *testing.T) {
	n, err := ParseUnits("12.5", 18)
	require.NoError(t, err)
	assert.Equal(t, "12500000000000000000", n.String())

	n, err = ParseUnits("100", 18)
	require.NoError(t, err)
	assert.Equal(t, "100000000000000000000", n.String())

	n, err = ParseUnits(".25", 2)
	require.NoError(t, err)
	assert.Equal(t, int64(25), n.Int64())
}

func TestParseUnitsRejectsBadInput(t *testing.T) {
	for _, in := range []string{"", "abc", "1.2.3", "-1", "0.001"} {
		_, err := ParseUnits(in, 2)
		assert.Error(t, err, in)
	}
}

func TestFormatParseRoundTrip(t *testing.T) {
	n, err := ParseUnits("3.14159", 18)
	require.NoError(t, err)
	assert.Equal(t, "3.14159", FormatUnits(n, 18))
}
