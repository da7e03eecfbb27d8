package impact

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/proofofimpact/poi/internal/config"
	"github.com/proofofimpact/poi/internal/contract"
)

// Reputation is the impact-score NFT. After deployment it is owned by the
// opportunity contract, which raises scores as submissions are verified.
type Reputation struct {
	*contract.Contract
}

// NewReputation binds the reputation NFT at addr.
func NewReputation(addr common.Address, p *contract.Provider) *Reputation {
	return &Reputation{contract.New(addr, mustABI(config.ContractReputation), p)}
}

// ImpactScore returns volunteer's accumulated score.
func (r *Reputation) ImpactScore(ctx context.Context, volunteer common.Address) (*big.Int, error) {
	return asBig(r.Call(ctx, "getImpactScore", volunteer))
}

// Owner returns the contract owner.
func (r *Reputation) Owner(ctx context.Context) (common.Address, error) {
	return asAddress(r.Call(ctx, "owner"))
}

// TokenURI returns the metadata URI of tokenID.
func (r *Reputation) TokenURI(ctx context.Context, tokenID *big.Int) (string, error) {
	return asString(r.Call(ctx, "tokenURI", tokenID))
}

// SetTokenURI sets the shared metadata URI. Owner only.
func (r *Reputation) SetTokenURI(ctx context.Context, uri string) (*contract.PendingTx, error) {
	return r.Send(ctx, "setTokenURI", uri)
}

// TransferOwnership hands the contract to newOwner. Owner only.
func (r *Reputation) TransferOwnership(ctx context.Context, newOwner common.Address) (*contract.PendingTx, error) {
	return r.Send(ctx, "transferOwnership", newOwner)
}
