package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/proofofimpact/poi/internal/config"
	"github.com/proofofimpact/poi/internal/ui"
	"github.com/proofofimpact/poi/internal/wallet"
)

var walletKeyFlag string

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Manage VeChain wallets",
}

var walletAddCmd = &cobra.Command{
	Use:   "add <name> [address]",
	Short: "Add a wallet",
	Long: `Add a watch-only wallet by address, or a signing wallet with --key.

Keys are stored in the OS keychain. On headless machines they fall back to an
encrypted file under the config directory (passphrase from POI_KEYRING_PASSWORD).
A key can also be supplied per run through POI_KEY_<NAME>.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		switch {
		case walletKeyFlag != "":
			if err := storeSigningWallet(name, walletKeyFlag, "added"); err != nil {
				return err
			}
		case len(args) == 2:
			if err := newWalletManager().AddWatchOnly(name, args[1]); err != nil {
				return err
			}
			fmt.Println(ui.Success(fmt.Sprintf("Watch-only wallet %q added: %s", name, ui.Addr(args[1]))))
		default:
			return fmt.Errorf("address required for watch-only wallet\n  Usage: poi wallet add <name> <address>\n  Or for signing: poi wallet add <name> --key <private-key>")
		}
		fmt.Println(ui.Hint("Set as default with: poi wallet use " + name))
		return nil
	},
}

var walletImportCmd = &cobra.Command{
	Use:   "import <name> [private-key]",
	Short: "Import a signing wallet from a private key",
	Long: `Import a signing wallet. Without the key argument it is read from the prompt,
keeping it out of shell history.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var key string
		if len(args) == 2 {
			key = args[1]
		} else {
			key = ui.PromptInput("Private key (hex)", "")
		}
		if key == "" {
			return fmt.Errorf("no private key given")
		}
		return storeSigningWallet(args[0], key, "imported")
	},
}

var walletListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all wallets",
	RunE: func(cmd *cobra.Command, args []string) error {
		wallets := newWalletManager().List()
		if len(wallets) == 0 {
			fmt.Println(ui.Info("No wallets configured yet."))
			fmt.Println(ui.Hint("Generate one with: poi wallet generate volunteer"))
			return nil
		}

		t := ui.NewTable([]ui.Column{
			{Title: "Name", Width: 16},
			{Title: "Address", Width: 44},
			{Title: "Type", Width: 12},
			{Title: "Default", Width: 8},
		})
		for _, w := range wallets {
			def := ""
			if w.IsDefault {
				def = ui.StyleSuccess.Render("✓")
			}
			t.AddRow(ui.Row{
				ui.Val(w.Name),
				ui.Addr(w.Address),
				ui.Meta(walletTypeLabel(w.Type)),
				def,
			})
		}
		fmt.Println(t.Render())
		fmt.Println(ui.Meta(fmt.Sprintf("%d wallet(s) configured", len(wallets))))
		return nil
	},
}

var walletRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a wallet and its stored key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if !ui.ConfirmDanger(fmt.Sprintf("Remove wallet %q?", name)) {
			fmt.Println(ui.Meta("Cancelled."))
			return nil
		}
		if err := newWalletManager().Remove(name); err != nil {
			return err
		}
		err := cfg.Update(func(c *config.Config) error {
			if c.DefaultWallet == name {
				c.DefaultWallet = ""
			}
			return nil
		})
		if err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Wallet %q removed.", name)))
		return nil
	},
}

var walletUseCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Set the default wallet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if err := newWalletManager().SetDefault(name); err != nil {
			return err
		}
		err := cfg.Update(func(c *config.Config) error {
			c.DefaultWallet = name
			return nil
		})
		if err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Default wallet set to %q.", name)))
		fmt.Println(ui.Hint("Used by every command when --wallet is not given."))
		return nil
	},
}

var walletGenerateCmd = &cobra.Command{
	Use:   "generate <name>",
	Short: "Generate a new VeChain wallet",
	Long: `Generate a new secp256k1 keypair and store the private key in the OS keychain.

The private key is displayed once. Re-export it later with: poi wallet export <name>`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		w, hexKey, err := newWalletManager().Generate(name)
		if err != nil {
			return err
		}

		fmt.Println(ui.KeyValueBlock("New wallet", [][2]string{
			{"Name", w.Name},
			{"Address", w.Address},
		}))
		fmt.Println(ui.DangerBox(
			ui.Warn("SAVE YOUR PRIVATE KEY. It is shown only once.") + "\n\n" +
				ui.Val(hexKey),
		))
		if n, err := currentNetwork(); err == nil && n.FaucetURL != "" {
			fmt.Println(ui.Hint("Get testnet VET and VTHO: " + n.FaucetURL))
		}
		fmt.Println(ui.Hint("Re-export anytime: poi wallet export " + name))
		fmt.Println()
		return nil
	},
}

var walletExportCmd = &cobra.Command{
	Use:   "export <name>",
	Short: "Reveal the private key of a signing wallet",
	Long: `Retrieve and display the stored private key for a signing wallet.

You must type the wallet name exactly before the key is shown.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		fmt.Println(ui.Warn("You are about to reveal a private key. Keep it secret."))
		if ui.PromptInput(fmt.Sprintf("Type wallet name %q to confirm", name), "") != name {
			fmt.Println(ui.Err("Name mismatch. Export cancelled."))
			return nil
		}

		hexKey, err := newWalletManager().ExportKey(name)
		if err != nil {
			return err
		}
		fmt.Println(ui.DangerBox(ui.Warn("PRIVATE KEY. Do not share it.") + "\n\n" + ui.Val(hexKey)))
		return nil
	},
}

func init() {
	walletAddCmd.Flags().StringVar(&walletKeyFlag, "key", "", "private key for a signing wallet (stored in the OS keychain)")
	walletCmd.AddCommand(walletAddCmd, walletImportCmd, walletListCmd, walletRemoveCmd, walletUseCmd,
		walletGenerateCmd, walletExportCmd)
}

// storeSigningWallet saves key under name and reports the derived address.
func storeSigningWallet(name, key, verb string) error {
	mgr := newWalletManager()
	if err := mgr.AddWithKey(name, key); err != nil {
		return err
	}
	w, err := mgr.Get(name)
	if err != nil {
		return err
	}
	fmt.Println(ui.Success(fmt.Sprintf("Signing wallet %q %s: %s", name, verb, ui.Addr(w.Address))))
	return nil
}

// walletTypeLabel converts an internal wallet type to a user-facing label.
func walletTypeLabel(t string) string {
	if t == wallet.TypeSigning {
		return "read-write"
	}
	return t
}
