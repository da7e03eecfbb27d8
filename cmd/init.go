package cmd

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/proofofimpact/poi/internal/chain"
	"github.com/proofofimpact/poi/internal/config"
	"github.com/proofofimpact/poi/internal/ui"
	"github.com/proofofimpact/poi/internal/wallet"
)

// wizardWalletName names the watch-only wallet the wizard creates.
const wizardWalletName = "main"

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Interactive setup wizard",
	Long:  "Launch the interactive setup wizard to configure poi.",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(ui.Banner())

		var names []string
		for _, n := range chain.NewRegistry().All() {
			names = append(names, n.Name)
		}
		result, err := ui.RunWizard(names)
		if err != nil {
			return err
		}
		if result == nil {
			fmt.Println(ui.Meta("Setup cancelled. Nothing was saved."))
			return nil
		}

		walletName, err := addWizardWallet(newWalletManager(), result)
		if err != nil {
			return err
		}
		if err := cfg.Update(func(c *config.Config) error { return applyWizard(c, result, walletName) }); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}

		fmt.Println(ui.Success("poi configured! Run `poi --help` to explore commands."))
		if missing := cfg.Contracts.Missing(); len(missing) > 0 {
			fmt.Println(ui.Hint("No contract addresses yet: run `poi deploy` or `poi config set-contract`"))
		}
		return nil
	},
}

// applyWizard copies the wizard answers into c. walletName, when set,
// becomes the default wallet.
func applyWizard(c *config.Config, r *ui.WizardResult, walletName string) error {
	if r.Network != "" {
		if err := applySetting(c, "network", r.Network); err != nil {
			return err
		}
	}
	if r.NodeAlgorithm != "" {
		if err := applySetting(c, "node_algorithm", r.NodeAlgorithm); err != nil {
			return err
		}
	}
	if r.PinataJWT != "" {
		c.PinataJWT = r.PinataJWT
	}
	if walletName != "" {
		c.DefaultWallet = walletName
	}
	return nil
}

// addWizardWallet registers the optional watch-only wallet as the default
// and returns its name, or "" when none was added.
func addWizardWallet(mgr *wallet.Manager, r *ui.WizardResult) (string, error) {
	if r.WalletAddress == "" {
		return "", nil
	}
	if !common.IsHexAddress(r.WalletAddress) {
		return "", fmt.Errorf("invalid wallet address %q", r.WalletAddress)
	}
	if err := mgr.AddWatchOnly(wizardWalletName, r.WalletAddress); err != nil {
		fmt.Println(ui.Warn(fmt.Sprintf("Could not add wallet: %v", err)))
		return "", nil
	}
	if err := mgr.SetDefault(wizardWalletName); err != nil {
		return "", err
	}
	return wizardWalletName, nil
}
