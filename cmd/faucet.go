package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/proofofimpact/poi/internal/impact"
	"github.com/proofofimpact/poi/internal/ui"
)

const faucetFile = "faucet.json"

var faucetCmd = &cobra.Command{
	Use:   "faucet",
	Short: "Claim test B3TR from the token faucet",
	Long: `Claim 10,000 test B3TR from the MockB3TR faucet for the active wallet.

Claims are limited to one per hour per address and token deployment. The last claim is remembered
locally so a claim that would revert is refused before signing.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd.Context(), true)
		if err != nil {
			return err
		}
		if !s.network.Testnet {
			return fmt.Errorf("the faucet is only available on test networks (current: %s)", s.network.Name)
		}

		c, err := s.contracts()
		if err != nil {
			return err
		}

		path := filepath.Join(cfg.Dir(), faucetFile)
		slot := faucetSlot{Network: s.network.Name, Token: c.Token.Address(), Claimer: s.account()}
		wait, err := faucetWait(path, slot, time.Now())
		if err != nil {
			return err
		}
		if wait > 0 {
			return fmt.Errorf("faucet cooldown: try again in %s", wait.Round(time.Minute))
		}

		tx, err := c.Token.Faucet(cmd.Context())
		if err != nil {
			return err
		}
		if _, err := s.waitFor(cmd.Context(), tx, "faucet claim"); err != nil {
			return err
		}
		if err := recordFaucet(path, slot, time.Now()); err != nil {
			logger.Warn("could not record faucet claim", "err", err)
		}
		fmt.Println(ui.Success(fmt.Sprintf("Claimed %s B3TR", formatTokens(impact.FaucetAmount))))
		if s.network.FaucetURL != "" {
			fmt.Println(ui.Hint("Need VET or VTHO for gas? " + s.network.FaucetURL))
		}
		return nil
	},
}

// faucetSlot identifies one cooldown: a claimer on one token deployment.
type faucetSlot struct {
	Network string
	Token   common.Address
	Claimer common.Address
}

func (s faucetSlot) key() string {
	return s.Network + "/" + common.Bytes2Hex(s.Token.Bytes()) + "/" + common.Bytes2Hex(s.Claimer.Bytes())
}

// faucetClaims maps a slot key to its last claim.
type faucetClaims map[string]time.Time

func loadFaucetClaims(path string) (faucetClaims, error) {
	claims := faucetClaims{}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return claims, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, &claims); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return claims, nil
}

// faucetWait returns how long slot must still wait at now; zero means a
// claim is allowed.
func faucetWait(path string, slot faucetSlot, now time.Time) (time.Duration, error) {
	claims, err := loadFaucetClaims(path)
	if err != nil {
		return 0, err
	}
	last, ok := claims[slot.key()]
	if !ok {
		return 0, nil
	}
	if left := last.Add(impact.FaucetCooldown).Sub(now); left > 0 {
		return left, nil
	}
	return 0, nil
}

func recordFaucet(path string, slot faucetSlot, at time.Time) error {
	claims, err := loadFaucetClaims(path)
	if err != nil {
		return err
	}
	claims[slot.key()] = at.UTC()
	data, err := json.MarshalIndent(claims, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
