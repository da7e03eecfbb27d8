package impact

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/proofofimpact/poi/internal/chain"
	"github.com/proofofimpact/poi/internal/config"
	"github.com/proofofimpact/poi/internal/contract"
)

// MinParticipationStake is the stake needed to propose, vote or comment.
var MinParticipationStake = new(big.Int).Mul(big.NewInt(100), big.NewInt(1e18))

// CanParticipate reports whether staked meets MinParticipationStake.
func CanParticipate(staked *big.Int) bool {
	return staked != nil && staked.Cmp(MinParticipationStake) >= 0
}

// StakeInfo is one account's position in the pool.
type StakeInfo struct {
	Amount        *big.Int  `json:"amount"`
	StakedAt      time.Time `json:"stakedAt"`
	PendingReward *big.Int  `json:"pendingReward"`
}

// Staking is the B3TR staking pool.
type Staking struct {
	*contract.Contract
}

// NewStaking binds the pool at addr.
func NewStaking(addr common.Address, p *contract.Provider) *Staking {
	return &Staking{contract.New(addr, mustABI(config.ContractStaking), p)}
}

// StakeInfo returns user's stake. The contract returns amount, stake time
// and pending reward as three positional outputs.
func (s *Staking) StakeInfo(ctx context.Context, user common.Address) (*StakeInfo, error) {
	v, err := s.Call(ctx, "getStakeInfo", user)
	seq, err := asSequence(v, err, 3)
	if err != nil {
		return nil, err
	}
	amount, _ := seq[0].(*big.Int)
	stakedAt, _ := seq[1].(*big.Int)
	reward, _ := seq[2].(*big.Int)

	info := &StakeInfo{Amount: bigOrZero(amount), PendingReward: bigOrZero(reward)}
	if stakedAt != nil && stakedAt.Sign() > 0 {
		info.StakedAt = time.Unix(stakedAt.Int64(), 0).UTC()
	}
	return info, nil
}

// TotalStaked returns the pool's total value locked.
func (s *Staking) TotalStaked(ctx context.Context) (*big.Int, error) {
	return asBig(s.Call(ctx, "totalStaked"))
}

// StakeClauses returns the clauses that stake amount: a max approval first
// when the current allowance falls short, then the stake itself.
func (s *Staking) StakeClauses(ctx context.Context, token *Token, amount *big.Int) ([]chain.Clause, error) {
	if amount == nil || amount.Sign() <= 0 {
		return nil, fmt.Errorf("stake amount must be positive")
	}
	owner := s.Provider().Account()
	allowance, err := token.Allowance(ctx, owner, s.Address())
	if err != nil {
		return nil, fmt.Errorf("reading allowance: %w", err)
	}

	var clauses []chain.Clause
	if allowance.Cmp(amount) < 0 {
		approve, err := token.ApproveClause(s.Address(), MaxApproval)
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, approve)
	}
	stake, err := s.Clause(nil, "stake", amount)
	if err != nil {
		return nil, err
	}
	return append(clauses, stake), nil
}

// Stake locks amount in the pool in one transaction, approving the pool
// first when needed.
func (s *Staking) Stake(ctx context.Context, token *Token, amount *big.Int) (*contract.PendingTx, error) {
	clauses, err := s.StakeClauses(ctx, token, amount)
	if err != nil {
		return nil, err
	}
	p := s.Provider()
	if len(clauses) > 1 {
		p = p.WithGas(config.GasLimitBatch)
	}
	return p.SendTransaction(ctx, clauses...)
}

// Unstake withdraws amount from the pool.
func (s *Staking) Unstake(ctx context.Context, amount *big.Int) (*contract.PendingTx, error) {
	if amount == nil || amount.Sign() <= 0 {
		return nil, fmt.Errorf("unstake amount must be positive")
	}
	return s.Send(ctx, "unstake", amount)
}

// ClaimRewards pays out pending rewards.
func (s *Staking) ClaimRewards(ctx context.Context) (*contract.PendingTx, error) {
	return s.Send(ctx, "claimRewards")
}
