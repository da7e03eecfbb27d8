package chain

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ThorClient is a minimal client for the VeChainThor REST API.
type ThorClient struct {
	url    string
	client *http.Client
}

// HTTPError is returned for non-2xx responses. Body carries the node's
// message, which is where Thor puts the reason a tx was rejected.
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("node returned %d: %s", e.Status, e.Body)
}

// NewThorClient creates a new Thor REST client pointed at url.
func NewThorClient(url string) *ThorClient {
	return &ThorClient{
		url: strings.TrimRight(url, "/"),
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// URL returns the node URL the client talks to.
func (c *ThorClient) URL() string {
	return c.url
}

// Call simulates a single clause from caller against the best block.
func (c *ThorClient) Call(ctx context.Context, caller, to common.Address, data []byte) (*CallResult, error) {
	results, err := c.Inspect(ctx, caller, []Clause{{To: &to, Data: data}})
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("node returned no call result")
	}
	return &results[0], nil
}

// Inspect simulates clauses in order. A zero caller is omitted.
func (c *ThorClient) Inspect(ctx context.Context, caller common.Address, clauses []Clause) ([]CallResult, error) {
	req := struct {
		Clauses []Clause `json:"clauses"`
		Caller  string   `json:"caller,omitempty"`
	}{Clauses: clauses}
	if caller != (common.Address{}) {
		req.Caller = caller.Hex()
	}

	var raw []callResultJSON
	if err := c.post(ctx, "/accounts/*", req, &raw); err != nil {
		return nil, err
	}

	out := make([]CallResult, len(raw))
	for i, r := range raw {
		out[i] = CallResult{Data: r.Data, Reverted: r.Reverted, VMError: r.VMError, GasUsed: r.GasUsed}
	}
	return out, nil
}

// Receipt fetches the receipt for txID.
// Returns nil, nil if the transaction is not yet in a block.
func (c *ThorClient) Receipt(ctx context.Context, txID string) (*Receipt, error) {
	var r *receiptJSON
	if err := c.get(ctx, "/transactions/"+txID+"/receipt", &r); err != nil {
		return nil, err
	}
	if r == nil {
		return nil, nil // still pending
	}
	receipt := r.toReceipt()
	if receipt.TxID == "" {
		receipt.TxID = txID
	}
	return receipt, nil
}

// SendRaw broadcasts an RLP-encoded signed transaction and returns its id.
func (c *ThorClient) SendRaw(ctx context.Context, raw []byte) (string, error) {
	var resp struct {
		ID string `json:"id"`
	}
	if err := c.post(ctx, "/transactions", map[string]string{"raw": hexutil.Encode(raw)}, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// Block fetches a block by number or by the keyword "best".
func (c *ThorClient) Block(ctx context.Context, revision string) (*Block, error) {
	var b *blockJSON
	if err := c.get(ctx, "/blocks/"+revision, &b); err != nil {
		return nil, err
	}
	if b == nil {
		return nil, fmt.Errorf("block %s not found", revision)
	}
	return &Block{Number: b.Number, ID: b.ID, Timestamp: b.Timestamp}, nil
}

// BestBlock returns the node's best block.
func (c *ThorClient) BestBlock(ctx context.Context) (*Block, error) {
	return c.Block(ctx, "best")
}

// ChainTag is the last byte of the genesis block id.
func (c *ThorClient) ChainTag(ctx context.Context) (byte, error) {
	genesis, err := c.Block(ctx, "0")
	if err != nil {
		return 0, fmt.Errorf("fetching genesis: %w", err)
	}
	return genesis.ID[len(genesis.ID)-1], nil
}

// Ping tests the node and returns latency + best block number.
func (c *ThorClient) Ping(ctx context.Context) (latency time.Duration, blockNum uint64, err error) {
	start := time.Now()
	b, err := c.BestBlock(ctx)
	latency = time.Since(start)
	if err != nil {
		return latency, 0, err
	}
	return latency, b.Number, nil
}

// BlockRef returns the first eight bytes of a block id as a big-endian uint64.
func BlockRef(id common.Hash) uint64 {
	return binary.BigEndian.Uint64(id[:8])
}

// --- transport ---

func (c *ThorClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *ThorClient) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *ThorClient) do(req *http.Request, out any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("node request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &HTTPError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	return nil
}
