package impact

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/proofofimpact/poi/internal/chain"
	"github.com/proofofimpact/poi/internal/config"
	"github.com/proofofimpact/poi/internal/contract"
)

// Faucet terms of the test token.
var (
	FaucetAmount   = new(big.Int).Mul(big.NewInt(10_000), big.NewInt(1e18))
	FaucetCooldown = time.Hour
)

// MaxApproval is the unlimited ERC-20 allowance.
var MaxApproval = new(big.Int).Set(math.MaxBig256)

// Token is the B3TR test token (MockB3TR).
type Token struct {
	*contract.Contract
}

// NewToken binds the token at addr.
func NewToken(addr common.Address, p *contract.Provider) *Token {
	return &Token{contract.New(addr, mustABI(config.ContractToken), p)}
}

// BalanceOf returns account's balance in wei.
func (t *Token) BalanceOf(ctx context.Context, account common.Address) (*big.Int, error) {
	return asBig(t.Call(ctx, "balanceOf", account))
}

// Allowance returns how much spender may move on owner's behalf.
func (t *Token) Allowance(ctx context.Context, owner, spender common.Address) (*big.Int, error) {
	return asBig(t.Call(ctx, "allowance", owner, spender))
}

// Symbol returns the token symbol.
func (t *Token) Symbol(ctx context.Context) (string, error) {
	return asString(t.Call(ctx, "symbol"))
}

// Decimals returns the token's decimal places.
func (t *Token) Decimals(ctx context.Context) (uint8, error) {
	v, err := t.Call(ctx, "decimals")
	if err != nil {
		return 0, err
	}
	d, ok := v.(uint8)
	if !ok {
		return 0, unexpected(v, "uint8")
	}
	return d, nil
}

// Approve lets spender move amount of the caller's tokens.
func (t *Token) Approve(ctx context.Context, spender common.Address, amount *big.Int) (*contract.PendingTx, error) {
	return t.Send(ctx, "approve", spender, amount)
}

// ApproveClause encodes approve for batching ahead of a spend.
func (t *Token) ApproveClause(spender common.Address, amount *big.Int) (chain.Clause, error) {
	return t.Clause(nil, "approve", spender, amount)
}

// Transfer moves amount to to.
func (t *Token) Transfer(ctx context.Context, to common.Address, amount *big.Int) (*contract.PendingTx, error) {
	if amount == nil || amount.Sign() <= 0 {
		return nil, fmt.Errorf("transfer amount must be positive")
	}
	return t.Send(ctx, "transfer", to, amount)
}

// Faucet mints FaucetAmount test tokens to the caller.
func (t *Token) Faucet(ctx context.Context) (*contract.PendingTx, error) {
	return t.Send(ctx, "faucet")
}
