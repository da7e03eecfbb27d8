// Package deploy deploys the six platform contracts in dependency order and
// records their addresses in a deployment summary.
package deploy

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ethereum/go-ethereum/common"

	"github.com/proofofimpact/poi/internal/config"
	"github.com/proofofimpact/poi/internal/contract"
	"github.com/proofofimpact/poi/internal/impact"
	"github.com/proofofimpact/poi/internal/logging"
)

// DefaultMetadataURI is the token URI every ReputationNFT starts with.
const DefaultMetadataURI = "ipfs://bafkreifsqhxwqsvc663n6j4hyfnxtbpebxbgdsd6d5zavjf7yzyfexov2y"

// deployedAtFormat matches JavaScript's Date.toISOString.
const deployedAtFormat = "2006-01-02T15:04:05.000Z07:00"

// ErrNoContractAddress is returned when a creation receipt names no contract.
var ErrNoContractAddress = errors.New("receipt has no contract address")

// ArtifactSource resolves a compiled contract by name.
type ArtifactSource interface {
	Artifact(name string) (*contract.Artifact, error)
}

// DirArtifacts reads Hardhat output: <dir>/<Name>.sol/<Name>.json.
type DirArtifacts string

// Artifact loads the named artifact.
func (d DirArtifacts) Artifact(name string) (*contract.Artifact, error) {
	return contract.LoadArtifact(filepath.Join(string(d), name+".sol", name+".json"))
}

// Deployer runs a full platform deployment.
type Deployer struct {
	Provider    *contract.Provider
	Artifacts   ArtifactSource
	Oracle      common.Address // defaults to the deploying account
	MetadataURI string         // defaults to DefaultMetadataURI
	Network     string
	Out         string // defaults to config.DefaultDeploymentFile
	Logger      *log.Logger
	Now         func() time.Time
}

// Run deploys token, reputation and opportunity contracts, points the NFT
// at its metadata and hands its ownership to the opportunity contract, then
// deploys staking, fee delegation and governance. Every step waits for its
// receipt. The first failure aborts the run; nothing already on chain is
// undone, and the summary is only written once all steps succeed.
func (d *Deployer) Run(ctx context.Context) (*config.Deployment, error) {
	if d.Provider == nil || !d.Provider.CanSign() {
		return nil, &contract.ConfigError{Missing: contract.MissingSigner}
	}
	arts, err := d.loadArtifacts()
	if err != nil {
		return nil, err
	}

	l := logging.OrDiscard(d.Logger)
	oracle := d.Oracle
	if oracle == (common.Address{}) {
		oracle = d.Provider.Account()
	}
	uri := d.MetadataURI
	if uri == "" {
		uri = DefaultMetadataURI
	}
	l.Info("deploying platform", "network", d.Network, "deployer", d.Provider.Account(), "oracle", oracle)

	var addrs config.AddressSet
	// create deploys name and records its address in slot.
	create := func(step int, name string, slot *string, args ...any) (common.Address, error) {
		addr, err := d.create(ctx, l, step, arts[name], args...)
		if err != nil {
			return common.Address{}, fmt.Errorf("step %d (%s): %w", step, name, err)
		}
		*slot = addr.Hex()
		return addr, nil
	}

	token, err := create(1, config.ContractToken, &addrs.Token)
	if err != nil {
		return nil, err
	}
	rep, err := create(2, config.ContractReputation, &addrs.Reputation)
	if err != nil {
		return nil, err
	}
	opp, err := create(3, config.ContractOpportunity, &addrs.Opportunity, token, rep, oracle)
	if err != nil {
		return nil, err
	}

	nft := impact.NewReputation(rep, d.Provider)
	if err := d.transact(ctx, l, 4, "setTokenURI", func() (*contract.PendingTx, error) {
		return nft.SetTokenURI(ctx, uri)
	}); err != nil {
		return nil, err
	}
	if err := d.transact(ctx, l, 5, "transferOwnership", func() (*contract.PendingTx, error) {
		return nft.TransferOwnership(ctx, opp)
	}); err != nil {
		return nil, err
	}

	staking, err := create(6, config.ContractStaking, &addrs.Staking, token)
	if err != nil {
		return nil, err
	}
	if _, err := create(7, config.ContractFeeDelegation, &addrs.FeeDelegation); err != nil {
		return nil, err
	}
	if _, err := create(8, config.ContractGovernance, &addrs.Governance, token, staking); err != nil {
		return nil, err
	}

	now := time.Now
	if d.Now != nil {
		now = d.Now
	}
	summary := &config.Deployment{
		Network:    d.Network,
		DeployedAt: now().UTC().Format(deployedAtFormat),
		Contracts:  addrs.Deployed(),
		OracleNode: oracle.Hex(),
	}
	out := d.Out
	if out == "" {
		out = config.DefaultDeploymentFile
	}
	if err := config.SaveDeployment(out, summary); err != nil {
		return nil, fmt.Errorf("step 9 (summary): %w", err)
	}
	l.Info("deployment saved", "step", 9, "path", out)
	return summary, nil
}

// loadArtifacts resolves every artifact before anything is sent, so a
// missing build output cannot leave a half-deployed platform.
func (d *Deployer) loadArtifacts() (map[string]*contract.Artifact, error) {
	if d.Artifacts == nil {
		return nil, errors.New("no artifact source configured")
	}
	arts := make(map[string]*contract.Artifact, len(config.Names))
	for _, name := range config.Names {
		a, err := d.Artifacts.Artifact(name)
		if err != nil {
			return nil, fmt.Errorf("loading %s artifact: %w", name, err)
		}
		arts[name] = a
	}
	return arts, nil
}

func (d *Deployer) create(ctx context.Context, l *log.Logger, step int, art *contract.Artifact, args ...any) (common.Address, error) {
	l.Info("deploying", "step", step, "contract", art.Name)
	clause, err := art.DeployClause(args...)
	if err != nil {
		return common.Address{}, err
	}
	tx, err := d.Provider.WithGas(config.GasLimitDeploy).SendTransaction(ctx, clause)
	if err != nil {
		return common.Address{}, err
	}
	conf, err := tx.Wait(ctx)
	if err != nil {
		return common.Address{}, err
	}
	addr, ok := conf.Receipt.ContractAddress()
	if !ok {
		return common.Address{}, fmt.Errorf("%w (tx %s)", ErrNoContractAddress, tx.ID)
	}
	l.Info("deployed", "step", step, "contract", art.Name, "address", addr.Hex(), "txid", tx.ID)
	return addr, nil
}

func (d *Deployer) transact(ctx context.Context, l *log.Logger, step int, what string, send func() (*contract.PendingTx, error)) error {
	l.Info("configuring", "step", step, "contract", config.ContractReputation, "call", what)
	tx, err := send()
	if err != nil {
		return fmt.Errorf("step %d (%s): %w", step, what, err)
	}
	if _, err := tx.Wait(ctx); err != nil {
		return fmt.Errorf("step %d (%s): %w", step, what, err)
	}
	l.Info("configured", "step", step, "contract", config.ContractReputation, "call", what, "txid", tx.ID)
	return nil
}
