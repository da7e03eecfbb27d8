package contract

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ethereum/go-ethereum/common"

	"github.com/proofofimpact/poi/internal/chain"
	"github.com/proofofimpact/poi/internal/config"
	"github.com/proofofimpact/poi/internal/logging"
)

// Querier performs read-only node access. chain.ThorClient satisfies it.
type Querier interface {
	Call(ctx context.Context, caller, to common.Address, data []byte) (*chain.CallResult, error)
	Receipt(ctx context.Context, txID string) (*chain.Receipt, error)
}

// TxSigner signs clauses as one transaction and submits it, returning the
// transaction id. An empty id means the user declined.
type TxSigner interface {
	Address() common.Address
	Send(ctx context.Context, clauses []chain.Clause, gas uint64) (string, error)
}

// Provider is the wallet session every Contract shares: a query side, a
// signing side and the account calls are made from. Either side may be nil
// when no session is connected.
type Provider struct {
	query   Querier
	signer  TxSigner
	account common.Address

	gas      uint64
	interval time.Duration
	attempts int
	network  *chain.Network
	log      *log.Logger
}

// ProviderOption configures a Provider.
type ProviderOption func(*Provider)

// WithGasLimit sets the gas ceiling attached to every transaction.
func WithGasLimit(gas uint64) ProviderOption {
	return func(p *Provider) {
		if gas > 0 {
			p.gas = gas
		}
	}
}

// WithPolling sets the receipt polling interval and attempt budget.
// Non-positive values keep the defaults.
func WithPolling(interval time.Duration, attempts int) ProviderOption {
	return func(p *Provider) {
		if interval > 0 {
			p.interval = interval
		}
		if attempts > 0 {
			p.attempts = attempts
		}
	}
}

// WithNetwork lets timeout errors point at the network's explorer.
func WithNetwork(n *chain.Network) ProviderOption {
	return func(p *Provider) {
		p.network = n
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) ProviderOption {
	return func(p *Provider) {
		p.log = logging.OrDiscard(l)
	}
}

// NewProvider builds a Provider. account is the caller for reads; when it is
// zero and a signer is present, the signer's address is used.
func NewProvider(query Querier, signer TxSigner, account common.Address, opts ...ProviderOption) *Provider {
	p := &Provider{
		query:    query,
		signer:   signer,
		account:  account,
		gas:      config.DefaultGasLimit,
		interval: config.ReceiptPollInterval,
		attempts: config.ReceiptPollAttempts,
		log:      logging.Discard(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.account == (common.Address{}) && signer != nil {
		p.account = signer.Address()
	}
	return p
}

// Account returns the address calls are made from.
func (p *Provider) Account() common.Address { return p.account }

// GasLimit returns the gas ceiling used for transactions.
func (p *Provider) GasLimit() uint64 { return p.gas }

// Polling returns the receipt polling interval and attempt budget.
func (p *Provider) Polling() (time.Duration, int) { return p.interval, p.attempts }

// CanSign reports whether a transaction signer is connected.
func (p *Provider) CanSign() bool { return p.signer != nil }

// WithGas returns a copy of p that submits with a different gas ceiling.
func (p *Provider) WithGas(gas uint64) *Provider {
	cp := *p
	cp.gas = gas
	return &cp
}

// SendTransaction submits clauses as a single transaction. Signer errors are
// returned unchanged.
func (p *Provider) SendTransaction(ctx context.Context, clauses ...chain.Clause) (*PendingTx, error) {
	if p.signer == nil {
		return nil, &ConfigError{Missing: MissingSigner}
	}
	id, err := p.signer.Send(ctx, clauses, p.gas)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, ErrRejected
	}
	p.log.Info("transaction submitted", "txid", id, "clauses", len(clauses), "gas", p.gas)
	return &PendingTx{ID: id, provider: p}, nil
}

// Receipt looks up a receipt directly, without polling.
func (p *Provider) Receipt(ctx context.Context, txID string) (*chain.Receipt, error) {
	if p.query == nil {
		return nil, &ConfigError{Missing: MissingQuery}
	}
	return p.query.Receipt(ctx, txID)
}

// PendingTx is a submitted transaction whose outcome is not yet known.
type PendingTx struct {
	ID       string
	provider *Provider
}

// Confirmation is the outcome of a transaction that was mined and succeeded.
type Confirmation struct {
	TxID    string
	Receipt *chain.Receipt
}

// Wait polls for the receipt: sleep one interval, look up the receipt, and
// repeat up to the attempt budget. A reverted receipt fails at once with a
// RevertedError. Lookup errors count as a spent attempt. Exhausting the
// budget returns a TimeoutError.
func (tx *PendingTx) Wait(ctx context.Context) (*Confirmation, error) {
	p := tx.provider
	if p.query == nil {
		return nil, &ConfigError{Missing: MissingQuery}
	}

	timer := time.NewTimer(p.interval)
	defer timer.Stop()

	for attempt := 1; attempt <= p.attempts; attempt++ {
		if attempt > 1 {
			timer.Reset(p.interval)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}

		receipt, err := p.query.Receipt(ctx, tx.ID)
		if err != nil {
			p.log.Debug("receipt lookup failed", "txid", tx.ID, "attempt", attempt, "err", err)
			continue
		}
		if receipt == nil {
			p.log.Debug("receipt not available yet", "txid", tx.ID, "attempt", attempt)
			continue
		}
		if receipt.Reverted {
			p.log.Warn("transaction reverted", "txid", tx.ID, "block", receipt.BlockNumber)
			return nil, &RevertedError{TxID: tx.ID, Receipt: receipt}
		}
		p.log.Info("transaction confirmed", "txid", tx.ID, "block", receipt.BlockNumber, "gas_used", receipt.GasUsed)
		return &Confirmation{TxID: tx.ID, Receipt: receipt}, nil
	}

	te := &TimeoutError{TxID: tx.ID, Attempts: p.attempts, Interval: p.interval}
	if p.network != nil {
		te.ExplorerURL = p.network.TxURL(tx.ID)
	}
	return nil, te
}
