package chain

import (
	"encoding/json"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Clause is a single step of a Thor transaction. A nil To creates a contract.
type Clause struct {
	To    *common.Address
	Value *big.Int
	Data  []byte
}

// MarshalJSON encodes the clause the way the Thor REST API expects it.
func (c Clause) MarshalJSON() ([]byte, error) {
	value := c.Value
	if value == nil {
		value = new(big.Int)
	}
	return json.Marshal(struct {
		To    *common.Address `json:"to"`
		Value string          `json:"value"`
		Data  string          `json:"data"`
	}{c.To, hexutil.EncodeBig(value), hexutil.Encode(c.Data)})
}

// CallResult is the outcome of simulating one clause against the best block.
type CallResult struct {
	Data     []byte
	Reverted bool
	VMError  string
	GasUsed  uint64
}

// Receipt holds a mined transaction's outcome.
type Receipt struct {
	TxID           string
	TxOrigin       common.Address
	Reverted       bool
	GasUsed        uint64
	GasPayer       common.Address
	Paid           *big.Int
	BlockID        common.Hash
	BlockNumber    uint64
	BlockTimestamp uint64
	Outputs        []Output
}

// Output is the per-clause part of a receipt.
type Output struct {
	ContractAddress *common.Address
}

// ContractAddress returns the first contract created by the transaction.
func (r *Receipt) ContractAddress() (common.Address, bool) {
	for _, o := range r.Outputs {
		if o.ContractAddress != nil {
			return *o.ContractAddress, true
		}
	}
	return common.Address{}, false
}

// Block is the subset of block fields poi uses.
type Block struct {
	Number    uint64
	ID        common.Hash
	Timestamp uint64
}

// Ref is the block reference a transaction is anchored to: the first eight
// bytes of the block id.
func (b *Block) Ref() uint64 {
	return BlockRef(b.ID)
}

// --- wire shapes ---

type callResultJSON struct {
	Data     hexutil.Bytes `json:"data"`
	Reverted bool          `json:"reverted"`
	VMError  string        `json:"vmError"`
	GasUsed  uint64        `json:"gasUsed"`
}

type receiptJSON struct {
	GasUsed  uint64         `json:"gasUsed"`
	GasPayer common.Address `json:"gasPayer"`
	Paid     *hexutil.Big   `json:"paid"`
	Reverted bool           `json:"reverted"`
	Meta     struct {
		BlockID        common.Hash    `json:"blockID"`
		BlockNumber    uint64         `json:"blockNumber"`
		BlockTimestamp uint64         `json:"blockTimestamp"`
		TxID           string         `json:"txID"`
		TxOrigin       common.Address `json:"txOrigin"`
	} `json:"meta"`
	Outputs []struct {
		ContractAddress *common.Address `json:"contractAddress"`
	} `json:"outputs"`
}

func (r *receiptJSON) toReceipt() *Receipt {
	out := &Receipt{
		TxID:           r.Meta.TxID,
		TxOrigin:       r.Meta.TxOrigin,
		Reverted:       r.Reverted,
		GasUsed:        r.GasUsed,
		GasPayer:       r.GasPayer,
		BlockID:        r.Meta.BlockID,
		BlockNumber:    r.Meta.BlockNumber,
		BlockTimestamp: r.Meta.BlockTimestamp,
	}
	if r.Paid != nil {
		out.Paid = r.Paid.ToInt()
	}
	for _, o := range r.Outputs {
		out.Outputs = append(out.Outputs, Output{ContractAddress: o.ContractAddress})
	}
	return out
}

type blockJSON struct {
	Number    uint64      `json:"number"`
	ID        common.Hash `json:"id"`
	Timestamp uint64      `json:"timestamp"`
}
