package impact

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/proofofimpact/poi/internal/chain"
	"github.com/proofofimpact/poi/internal/config"
	"github.com/proofofimpact/poi/internal/contract"
)

// MinSponsorshipDeposit is the smallest VET deposit accepted, and the
// balance an NGO needs before it can sponsor volunteers.
var MinSponsorshipDeposit = new(big.Int).Mul(big.NewInt(10), big.NewInt(1e18))

// FeeDelegation holds NGO deposits that pay their volunteers' gas.
type FeeDelegation struct {
	*contract.Contract
}

// NewFeeDelegation binds the fee delegation manager at addr.
func NewFeeDelegation(addr common.Address, p *contract.Provider) *FeeDelegation {
	return &FeeDelegation{contract.New(addr, mustABI(config.ContractFeeDelegation), p)}
}

// Deposit returns ngo's sponsorship balance in wei.
func (f *FeeDelegation) Deposit(ctx context.Context, ngo common.Address) (*big.Int, error) {
	return asBig(f.Call(ctx, "getNGODeposit", ngo))
}

// Volunteers returns the addresses ngo sponsors.
func (f *FeeDelegation) Volunteers(ctx context.Context, ngo common.Address) ([]common.Address, error) {
	v, err := f.Call(ctx, "getNGOVolunteers", ngo)
	if err != nil {
		return nil, err
	}
	vols, ok := v.([]common.Address)
	if !ok {
		return nil, unexpected(v, "address list")
	}
	return vols, nil
}

// DepositForSponsorship adds value VET to the caller's deposit.
func (f *FeeDelegation) DepositForSponsorship(ctx context.Context, value *big.Int) (*contract.PendingTx, error) {
	if value == nil || value.Cmp(MinSponsorshipDeposit) < 0 {
		return nil, fmt.Errorf("minimum deposit is %s VET", chain.FormatUnits(MinSponsorshipDeposit, chain.TokenDecimals))
	}
	return f.SendValue(ctx, value, "depositForSponsorship")
}

// AddVolunteer sponsors volunteer from the caller's deposit. The deposit
// must already hold MinSponsorshipDeposit.
func (f *FeeDelegation) AddVolunteer(ctx context.Context, volunteer common.Address) (*contract.PendingTx, error) {
	deposit, err := f.Deposit(ctx, f.Provider().Account())
	if err != nil {
		return nil, fmt.Errorf("reading deposit: %w", err)
	}
	if deposit.Cmp(MinSponsorshipDeposit) < 0 {
		return nil, fmt.Errorf("deposit at least %s VET before adding volunteers",
			chain.FormatUnits(MinSponsorshipDeposit, chain.TokenDecimals))
	}
	return f.Send(ctx, "addVolunteer", volunteer)
}

// Withdraw returns amount of the caller's deposit.
func (f *FeeDelegation) Withdraw(ctx context.Context, amount *big.Int) (*contract.PendingTx, error) {
	if amount == nil || amount.Sign() <= 0 {
		return nil, fmt.Errorf("withdrawal amount must be positive")
	}
	deposit, err := f.Deposit(ctx, f.Provider().Account())
	if err != nil {
		return nil, fmt.Errorf("reading deposit: %w", err)
	}
	if amount.Cmp(deposit) > 0 {
		return nil, fmt.Errorf("insufficient deposit: have %s VET", chain.FormatUnits(deposit, chain.TokenDecimals))
	}
	return f.Send(ctx, "withdraw", amount)
}
