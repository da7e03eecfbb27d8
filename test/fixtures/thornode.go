package fixtures

import (
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/proofofimpact/poi/internal/chain"
)

// GenesisID is the testnet genesis block id; its last byte is the chain tag.
var GenesisID = common.HexToHash("0x000000000b2bce3c70bc649a02749e8687721b09ed2e15997f466536b20bb127")

// ViewFunc answers a simulated call with the method's output values.
type ViewFunc func(args []any) []any

type binding struct {
	abi   abi.ABI
	views map[string]ViewFunc
}

// ThorNode is an in-process VeChainThor REST node. View calls are answered
// by registered handlers; posted transactions are decoded, checked and
// mined at the next block. Contract creations get addresses derived from
// the transaction id.
type ThorNode struct {
	*httptest.Server

	t        *testing.T
	mu       sync.Mutex
	best     uint64
	bindings map[common.Address]*binding
	sent     []*chain.Tx
	receipts map[string]map[string]any
}

// NewThorNode starts a node at block 100 and closes it with the test.
func NewThorNode(t *testing.T) *ThorNode {
	t.Helper()
	n := &ThorNode{
		t:        t,
		best:     100,
		bindings: map[common.Address]*binding{},
		receipts: map[string]map[string]any{},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /blocks/{rev}", n.block)
	mux.HandleFunc("POST /accounts/*", n.inspect)
	mux.HandleFunc("POST /transactions", n.submit)
	mux.HandleFunc("GET /transactions/{id}/receipt", n.receipt)
	n.Server = httptest.NewServer(mux)
	t.Cleanup(n.Close)
	return n
}

// On answers calls to method on the contract at addr.
func (n *ThorNode) On(addr common.Address, parsed abi.ABI, method string, fn ViewFunc) {
	n.mu.Lock()
	defer n.mu.Unlock()
	b, ok := n.bindings[addr]
	if !ok {
		b = &binding{abi: parsed, views: map[string]ViewFunc{}}
		n.bindings[addr] = b
	}
	b.views[method] = fn
}

// Sent returns every transaction the node accepted, in order.
func (n *ThorNode) Sent() []*chain.Tx {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]*chain.Tx(nil), n.sent...)
}

// CreatedAddress is the address a creation clause in tx id receives.
func CreatedAddress(id string) common.Address {
	return common.BytesToAddress(crypto.Keccak256([]byte(id))[12:])
}

func blockID(number uint64) common.Hash {
	var id common.Hash
	big.NewInt(int64(number)).FillBytes(id[:4])
	id[31] = GenesisID[31]
	return id
}

func (n *ThorNode) block(w http.ResponseWriter, r *http.Request) {
	n.mu.Lock()
	best := n.best
	n.mu.Unlock()

	switch rev := r.PathValue("rev"); rev {
	case "0":
		writeJSON(w, map[string]any{"number": 0, "id": GenesisID, "timestamp": 1530014400})
	case "best":
		writeJSON(w, map[string]any{"number": best, "id": blockID(best), "timestamp": 1700000000 + 10*best})
	default:
		var num uint64
		if _, err := fmt.Sscan(rev, &num); err != nil || num > best {
			writeJSON(w, nil)
			return
		}
		writeJSON(w, map[string]any{"number": num, "id": blockID(num), "timestamp": 1700000000 + 10*num})
	}
}

type clauseJSON struct {
	To    *common.Address `json:"to"`
	Value string          `json:"value"`
	Data  hexutil.Bytes   `json:"data"`
}

func (n *ThorNode) inspect(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Clauses []clauseJSON `json:"clauses"`
		Caller  string       `json:"caller"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	out := make([]map[string]any, len(req.Clauses))
	for i, c := range req.Clauses {
		data, err := n.view(c)
		if err != nil {
			out[i] = map[string]any{"data": "0x", "reverted": true, "vmError": err.Error(), "gasUsed": 0}
			continue
		}
		out[i] = map[string]any{"data": hexutil.Encode(data), "reverted": false, "vmError": "", "gasUsed": 21000}
	}
	writeJSON(w, out)
}

func (n *ThorNode) view(c clauseJSON) ([]byte, error) {
	if c.To == nil || len(c.Data) < 4 {
		return nil, fmt.Errorf("execution reverted")
	}
	n.mu.Lock()
	b, ok := n.bindings[*c.To]
	n.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("execution reverted")
	}
	m, err := b.abi.MethodById(c.Data[:4])
	if err != nil {
		return nil, fmt.Errorf("execution reverted")
	}
	fn, ok := b.views[m.Name]
	if !ok {
		return nil, fmt.Errorf("execution reverted")
	}
	args, err := m.Inputs.Unpack(c.Data[4:])
	if err != nil {
		return nil, err
	}
	return m.Outputs.Pack(fn(args)...)
}

func (n *ThorNode) submit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Raw hexutil.Bytes `json:"raw"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	tx, err := chain.DecodeTx(req.Raw)
	if err != nil {
		http.Error(w, "bad tx: "+err.Error(), http.StatusBadRequest)
		return
	}
	origin, err := tx.Signer()
	if err != nil {
		http.Error(w, "bad signature: "+err.Error(), http.StatusBadRequest)
		return
	}
	id, err := tx.ID()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if tx.ChainTag != GenesisID[31] {
		http.Error(w, "bad tx: chain tag mismatch", http.StatusBadRequest)
		return
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if tx.BlockRef != chain.BlockRef(blockID(n.best)) {
		http.Error(w, "bad tx: unknown block ref", http.StatusBadRequest)
		return
	}
	n.sent = append(n.sent, tx)
	n.best++

	outputs := make([]map[string]any, len(tx.Clauses))
	for i, c := range tx.Clauses {
		o := map[string]any{"contractAddress": nil, "events": []any{}, "transfers": []any{}}
		if c.To == nil {
			o["contractAddress"] = CreatedAddress(id)
		}
		outputs[i] = o
	}
	n.receipts[strings.ToLower(id)] = map[string]any{
		"gasUsed":  tx.Gas / 2,
		"gasPayer": origin,
		"paid":     "0x1bc16d674ec80000",
		"reward":   "0x0",
		"reverted": false,
		"meta": map[string]any{
			"blockID":        blockID(n.best),
			"blockNumber":    n.best,
			"blockTimestamp": 1700000000 + 10*n.best,
			"txID":           id,
			"txOrigin":       origin,
		},
		"outputs": outputs,
	}
	writeJSON(w, map[string]string{"id": id})
}

func (n *ThorNode) receipt(w http.ResponseWriter, r *http.Request) {
	n.mu.Lock()
	rec, ok := n.receipts[strings.ToLower(r.PathValue("id"))]
	n.mu.Unlock()
	if !ok {
		writeJSON(w, nil)
		return
	}
	writeJSON(w, rec)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
