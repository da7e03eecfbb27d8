package cmd

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/proofofimpact/poi/internal/chain"
	"github.com/proofofimpact/poi/internal/config"
	"github.com/proofofimpact/poi/internal/contract"
	"github.com/proofofimpact/poi/internal/impact"
	"github.com/proofofimpact/poi/internal/node"
	"github.com/proofofimpact/poi/internal/ui"
	"github.com/proofofimpact/poi/internal/wallet"
)

// session is everything a command needs to talk to the platform: the
// chosen network and node, the active wallet and the contract bindings.
type session struct {
	network  *chain.Network
	client   *chain.ThorClient
	wallet   *wallet.Wallet // nil when no wallet is configured
	provider *contract.Provider
}

func currentNetwork() (*chain.Network, error) {
	n, err := chain.NewRegistry().GetByName(cfg.Network)
	if err != nil {
		return nil, fmt.Errorf("unknown network %q: run `poi network list` to see all networks", cfg.Network)
	}
	return n, nil
}

// nodeURLs lists candidate nodes: an explicit node wins, then custom nodes
// ahead of the built-in ones.
func nodeURLs(n *chain.Network) []string {
	if cfg.NodeURL != "" {
		return []string{cfg.NodeURL}
	}
	return append(append([]string{}, cfg.GetNodes(n.Name)...), n.Nodes...)
}

func selectNode(ctx context.Context, n *chain.Network) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, config.NodeSelectTimeout)
	defer cancel()
	url, err := node.Best(ctx, nodeURLs(n), node.Algorithm(cfg.NodeAlgorithm))
	if err != nil {
		return "", fmt.Errorf("selecting %s node: %w", n.Name, err)
	}
	logger.Debug("node selected", "network", n.Name, "url", url)
	return url, nil
}

func newWalletManager() *wallet.Manager {
	return wallet.NewManager(
		wallet.WithStore(wallet.NewJSONStore(cfg.WalletsPath())),
		wallet.WithKeystore(wallet.DefaultKeystore(filepath.Join(cfg.Dir(), "keyring"))),
	)
}

// activeWallet returns the --wallet / default wallet, or nil when none is
// configured.
func activeWallet(mgr *wallet.Manager) (*wallet.Wallet, error) {
	if cfg.DefaultWallet != "" {
		return mgr.Get(cfg.DefaultWallet)
	}
	return mgr.Default(), nil
}

// newSession connects to the network. With needSigner the active wallet
// must hold a key.
func newSession(ctx context.Context, needSigner bool) (*session, error) {
	n, err := currentNetwork()
	if err != nil {
		return nil, err
	}
	url, err := selectNode(ctx, n)
	if err != nil {
		return nil, err
	}
	client := chain.NewThorClient(url)

	mgr := newWalletManager()
	w, err := activeWallet(mgr)
	if err != nil {
		return nil, err
	}

	var (
		signer  contract.TxSigner
		account common.Address
	)
	if w != nil {
		account = w.Addr()
		if w.CanSign() && needSigner {
			s, err := wallet.SignerFor(mgr, w.Name, client)
			if err != nil {
				return nil, fmt.Errorf("loading key for %q: %w", w.Name, err)
			}
			signer = s
		}
	}
	if needSigner && signer == nil {
		return nil, errNoSigner(w)
	}

	p := contract.NewProvider(client, signer, account,
		contract.WithGasLimit(cfg.GasLimit),
		contract.WithNetwork(n),
		contract.WithLogger(logger),
	)
	return &session{network: n, client: client, wallet: w, provider: p}, nil
}

func errNoSigner(w *wallet.Wallet) error {
	if w == nil {
		return errors.New("no wallet configured: run `poi wallet add <name> --key <hex>` or `poi wallet generate <name>`")
	}
	return fmt.Errorf("wallet %q is watch-only and cannot sign", w.Name)
}

// contracts binds all six platform contracts.
func (s *session) contracts() (*impact.Contracts, error) {
	return impact.Bind(cfg.Contracts, s.provider)
}

// account is the address reads default to.
func (s *session) account() common.Address {
	return s.provider.Account()
}

// addressArg resolves an optional address argument, falling back to the
// active wallet.
func (s *session) addressArg(args []string, i int) (common.Address, error) {
	if len(args) > i {
		return parseAddress(args[i])
	}
	if s.wallet == nil {
		return common.Address{}, errors.New("no address given and no wallet configured")
	}
	return s.account(), nil
}

func parseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("invalid address %q", s)
	}
	return common.HexToAddress(s), nil
}

// parseTokens reads a decimal B3TR/VET amount into wei.
func parseTokens(s string) (*big.Int, error) {
	n, err := chain.ParseUnits(strings.TrimSpace(s), chain.TokenDecimals)
	if err != nil {
		return nil, err
	}
	if n.Sign() <= 0 {
		return nil, fmt.Errorf("amount must be positive")
	}
	return n, nil
}

func formatTokens(n *big.Int) string {
	return chain.FormatUnits(n, chain.TokenDecimals)
}

// waitFor waits on tx behind a spinner and prints the outcome.
func (s *session) waitFor(ctx context.Context, tx *contract.PendingTx, what string) (*contract.Confirmation, error) {
	fmt.Println(ui.Meta("  tx " + tx.ID))
	conf, err := ui.Spin(fmt.Sprintf("Waiting for %s to be mined…", what), func() (*contract.Confirmation, error) {
		return tx.Wait(ctx)
	})
	if err != nil {
		return nil, err
	}
	fmt.Println(ui.Success(fmt.Sprintf("%s confirmed in block %d", what, conf.Receipt.BlockNumber)))
	if url := s.network.TxURL(tx.ID); url != "" {
		fmt.Println(ui.Hint(url))
	}
	return conf, nil
}
