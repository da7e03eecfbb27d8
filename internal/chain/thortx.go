package chain

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"golang.org/x/crypto/blake2b"
)

// DefaultExpiration is how many blocks after BlockRef a tx stays valid.
const DefaultExpiration = uint32(720)

// Tx is a legacy (type 0) VeChainThor transaction.
type Tx struct {
	ChainTag     byte
	BlockRef     uint64
	Expiration   uint32
	Clauses      []Clause
	GasPriceCoef uint8
	Gas          uint64
	DependsOn    *common.Hash
	Nonce        uint64

	Signature []byte
}

type rlpClause struct {
	To    *common.Address `rlp:"nil"`
	Value *big.Int
	Data  []byte
}

type rlpBody struct {
	ChainTag     byte
	BlockRef     uint64
	Expiration   uint32
	Clauses      []rlpClause
	GasPriceCoef uint8
	Gas          uint64
	DependsOn    *common.Hash `rlp:"nil"`
	Nonce        uint64
	Reserved     []rlp.RawValue
}

type rlpSigned struct {
	ChainTag     byte
	BlockRef     uint64
	Expiration   uint32
	Clauses      []rlpClause
	GasPriceCoef uint8
	Gas          uint64
	DependsOn    *common.Hash `rlp:"nil"`
	Nonce        uint64
	Reserved     []rlp.RawValue
	Signature    []byte
}

func (tx *Tx) body() rlpBody {
	clauses := make([]rlpClause, len(tx.Clauses))
	for i, c := range tx.Clauses {
		value := c.Value
		if value == nil {
			value = new(big.Int)
		}
		clauses[i] = rlpClause{To: c.To, Value: value, Data: c.Data}
	}
	return rlpBody{
		ChainTag:     tx.ChainTag,
		BlockRef:     tx.BlockRef,
		Expiration:   tx.Expiration,
		Clauses:      clauses,
		GasPriceCoef: tx.GasPriceCoef,
		Gas:          tx.Gas,
		DependsOn:    tx.DependsOn,
		Nonce:        tx.Nonce,
		Reserved:     []rlp.RawValue{},
	}
}

// SigningHash is blake2b-256 over the RLP of the unsigned body.
func (tx *Tx) SigningHash() (common.Hash, error) {
	enc, err := rlp.EncodeToBytes(tx.body())
	if err != nil {
		return common.Hash{}, fmt.Errorf("encoding tx body: %w", err)
	}
	return blake2b.Sum256(enc), nil
}

// Sign fills Signature with a 65-byte [R || S || V] secp256k1 signature.
func (tx *Tx) Sign(key *ecdsa.PrivateKey) error {
	hash, err := tx.SigningHash()
	if err != nil {
		return err
	}
	sig, err := crypto.Sign(hash[:], key)
	if err != nil {
		return fmt.Errorf("signing tx: %w", err)
	}
	tx.Signature = sig
	return nil
}

// Signer recovers the origin address from the signature.
func (tx *Tx) Signer() (common.Address, error) {
	if len(tx.Signature) != crypto.SignatureLength {
		return common.Address{}, fmt.Errorf("tx is not signed")
	}
	hash, err := tx.SigningHash()
	if err != nil {
		return common.Address{}, err
	}
	pub, err := crypto.SigToPub(hash[:], tx.Signature)
	if err != nil {
		return common.Address{}, fmt.Errorf("recovering signer: %w", err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// ID is blake2b-256(signingHash || signer), the id the node reports.
func (tx *Tx) ID() (string, error) {
	hash, err := tx.SigningHash()
	if err != nil {
		return "", err
	}
	signer, err := tx.Signer()
	if err != nil {
		return "", err
	}
	h, _ := blake2b.New256(nil)
	h.Write(hash[:])
	h.Write(signer[:])
	return common.BytesToHash(h.Sum(nil)).Hex(), nil
}

// Encode returns the RLP of the signed transaction, ready for SendRaw.
func (tx *Tx) Encode() ([]byte, error) {
	if len(tx.Signature) == 0 {
		return nil, fmt.Errorf("tx is not signed")
	}
	b := tx.body()
	return rlp.EncodeToBytes(rlpSigned{
		ChainTag:     b.ChainTag,
		BlockRef:     b.BlockRef,
		Expiration:   b.Expiration,
		Clauses:      b.Clauses,
		GasPriceCoef: b.GasPriceCoef,
		Gas:          b.Gas,
		DependsOn:    b.DependsOn,
		Nonce:        b.Nonce,
		Reserved:     b.Reserved,
		Signature:    tx.Signature,
	})
}

// DecodeTx parses a signed transaction produced by Encode.
func DecodeTx(raw []byte) (*Tx, error) {
	var s rlpSigned
	if err := rlp.DecodeBytes(raw, &s); err != nil {
		return nil, fmt.Errorf("decoding tx: %w", err)
	}
	tx := &Tx{
		ChainTag:     s.ChainTag,
		BlockRef:     s.BlockRef,
		Expiration:   s.Expiration,
		Clauses:      make([]Clause, len(s.Clauses)),
		GasPriceCoef: s.GasPriceCoef,
		Gas:          s.Gas,
		DependsOn:    s.DependsOn,
		Nonce:        s.Nonce,
		Signature:    s.Signature,
	}
	for i, c := range s.Clauses {
		tx.Clauses[i] = Clause{To: c.To, Value: c.Value, Data: c.Data}
	}
	return tx, nil
}
