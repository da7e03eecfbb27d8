package chain

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"

func sampleTx() *Tx {
	to := common.HexToAddress("0x7567d83b7b8d80addcb281a71d54fc7b3364ffed")
	return &Tx{
		ChainTag:   0x27,
		BlockRef:   0x00000000aabbccdd,
		Expiration: DefaultExpiration,
		Clauses: []Clause{
			{To: &to, Value: big.NewInt(10000), Data: []byte{0x00, 0x00, 0x00, 0x60, 0x60, 0x60}},
			{To: nil, Data: []byte{0x60, 0x80}},
		},
		GasPriceCoef: 128,
		Gas:          21000,
		Nonce:        12345678,
	}
}

func TestSigningHashIgnoresSignature(t *testing.T) {
	tx := sampleTx()
	before, err := tx.SigningHash()
	require.NoError(t, err)

	key, err := crypto.HexToECDSA(testKey)
	require.NoError(t, err)
	require.NoError(t, tx.Sign(key))

	after, err := tx.SigningHash()
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Len(t, tx.Signature, 65)
}

func TestSigningHashChangesWithClauses(t *testing.T) {
	a, err := sampleTx().SigningHash()
	require.NoError(t, err)

	tx := sampleTx()
	tx.Clauses[0].Value = big.NewInt(10001)
	b, err := tx.SigningHash()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestSignerRecoversKeyAddress(t *testing.T) {
	key, err := crypto.HexToECDSA(testKey)
	require.NoError(t, err)

	tx := sampleTx()
	require.NoError(t, tx.Sign(key))

	signer, err := tx.Signer()
	require.NoError(t, err)
	assert.Equal(t, crypto.PubkeyToAddress(key.PublicKey), signer)
}

func TestIDDependsOnSigner(t *testing.T) {
	k1, _ := crypto.HexToECDSA(testKey)
	k2, _ := crypto.GenerateKey()

	tx1, tx2 := sampleTx(), sampleTx()
	require.NoError(t, tx1.Sign(k1))
	require.NoError(t, tx2.Sign(k2))

	id1, err := tx1.ID()
	require.NoError(t, err)
	id2, err := tx2.ID()
	require.NoError(t, err)

	assert.NotEqual(t, id1, id2)
	assert.Len(t, id1, 66)
}

func TestUnsignedTxCannotEncode(t *testing.T) {
	_, err := sampleTx().Encode()
	assert.Error(t, err)
	_, err = sampleTx().ID()
	assert.Error(t, err)
}

func TestEncodeLayout(t *testing.T) {
	key, _ := crypto.HexToECDSA(testKey)
	tx := sampleTx()
	require.NoError(t, tx.Sign(key))

	raw, err := tx.Encode()
	require.NoError(t, err)

	var fields []rlp.RawValue
	require.NoError(t, rlp.DecodeBytes(raw, &fields))
	require.Len(t, fields, 10)

	// chainTag
	assert.Equal(t, []byte{0x27}, []byte(fields[0]))
	// dependsOn is the empty string, reserved the empty list
	assert.Equal(t, []byte{0x80}, []byte(fields[6]))
	assert.Equal(t, []byte{0xc0}, []byte(fields[8]))

	var clauses []struct {
		To    []byte
		Value *big.Int
		Data  []byte
	}
	require.NoError(t, rlp.DecodeBytes(fields[3], &clauses))
	require.Len(t, clauses, 2)
	assert.Len(t, clauses[0].To, 20)
	assert.Empty(t, clauses[1].To)
	assert.Equal(t, int64(10000), clauses[0].Value.Int64())
	assert.Equal(t, int64(0), clauses[1].Value.Int64())

	var sig []byte
	require.NoError(t, rlp.DecodeBytes(fields[9], &sig))
	assert.Equal(t, tx.Signature, sig)
}

func TestDependsOnEncoded(t *testing.T) {
	key, _ := crypto.HexToECDSA(testKey)
	dep := common.HexToHash("0x01")
	tx := sampleTx()
	tx.DependsOn = &dep
	require.NoError(t, tx.Sign(key))

	raw, err := tx.Encode()
	require.NoError(t, err)

	var fields []rlp.RawValue
	require.NoError(t, rlp.DecodeBytes(raw, &fields))
	assert.Len(t, []byte(fields[6]), 33)
}

func TestDecodeTxRestoresSignedTx(t *testing.T) {
	key, err := crypto.HexToECDSA(testKey)
	require.NoError(t, err)
	tx := sampleTx()
	require.NoError(t, tx.Sign(key))
	raw, err := tx.Encode()
	require.NoError(t, err)

	got, err := DecodeTx(raw)
	require.NoError(t, err)
	assert.Equal(t, tx.ChainTag, got.ChainTag)
	assert.Equal(t, tx.BlockRef, got.BlockRef)
	assert.Equal(t, tx.Nonce, got.Nonce)
	require.Len(t, got.Clauses, 2)
	assert.Equal(t, *tx.Clauses[0].To, *got.Clauses[0].To)
	assert.Nil(t, got.Clauses[1].To)

	wantID, _ := tx.ID()
	gotID, err := got.ID()
	require.NoError(t, err)
	assert.Equal(t, wantID, gotID)
}

func TestDecodeTxRejectsGarbage(t *testing.T) {
	_, err := DecodeTx([]byte{0x01, 0x02})
	assert.Error(t, err)
}
