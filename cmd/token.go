package cmd

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/proofofimpact/poi/internal/config"
	"github.com/proofofimpact/poi/internal/impact"
	"github.com/proofofimpact/poi/internal/ui"
)

var tokenYes bool

var tokenCmd = &cobra.Command{
	Use:     "token",
	Aliases: []string{"b3tr"},
	Short:   "B3TR balances, allowances and transfers",
}

var tokenBalanceCmd = &cobra.Command{
	Use:   "balance [address]",
	Short: "Show a B3TR balance (default: active wallet)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd.Context(), false)
		if err != nil {
			return err
		}
		c, err := s.contracts()
		if err != nil {
			return err
		}
		who, err := s.addressArg(args, 0)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), config.RequestTimeout)
		defer cancel()
		bal, err := ui.Spin("Fetching balance…", func() (*big.Int, error) {
			return c.Token.BalanceOf(ctx, who)
		})
		if err != nil {
			return err
		}
		fmt.Println(ui.KeyValueBlock("B3TR Balance", [][2]string{
			{"Address", ui.Addr(who.Hex())},
			{"Balance", ui.Val(formatTokens(bal) + " B3TR")},
			{"Network", ui.NetworkName(s.network.Name)},
		}))
		return nil
	},
}

var tokenAllowanceCmd = &cobra.Command{
	Use:   "allowance <spender> [owner]",
	Short: "Show how much B3TR a spender may move",
	Long: `Show the B3TR allowance an owner (default: active wallet) granted a spender.
The spender may be an address or a platform contract name such as staking.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd.Context(), false)
		if err != nil {
			return err
		}
		c, err := s.contracts()
		if err != nil {
			return err
		}
		spender, err := spenderAddress(args[0])
		if err != nil {
			return err
		}
		owner, err := s.addressArg(args, 1)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), config.RequestTimeout)
		defer cancel()
		amount, err := c.Token.Allowance(ctx, owner, spender)
		if err != nil {
			return err
		}
		shown := formatTokens(amount) + " B3TR"
		if amount.Cmp(impact.MaxApproval) == 0 {
			shown = "unlimited"
		}
		fmt.Println(ui.KeyValueBlock("B3TR Allowance", [][2]string{
			{"Owner", ui.Addr(owner.Hex())},
			{"Spender", ui.Addr(spender.Hex())},
			{"Allowance", ui.Val(shown)},
		}))
		return nil
	},
}

var tokenApproveCmd = &cobra.Command{
	Use:   "approve <spender> <amount>",
	Short: "Approve a spender for an amount of B3TR",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		spender, err := spenderAddress(args[0])
		if err != nil {
			return err
		}
		amount, err := parseTokens(args[1])
		if err != nil {
			return err
		}
		s, err := newSession(cmd.Context(), true)
		if err != nil {
			return err
		}
		c, err := s.contracts()
		if err != nil {
			return err
		}
		tx, err := c.Token.Approve(cmd.Context(), spender, amount)
		if err != nil {
			return err
		}
		_, err = s.waitFor(cmd.Context(), tx, "approve")
		return err
	},
}

var tokenTransferCmd = &cobra.Command{
	Use:   "transfer <to> <amount>",
	Short: "Transfer B3TR",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		to, err := parseAddress(args[0])
		if err != nil {
			return err
		}
		amount, err := parseTokens(args[1])
		if err != nil {
			return err
		}
		s, err := newSession(cmd.Context(), true)
		if err != nil {
			return err
		}
		c, err := s.contracts()
		if err != nil {
			return err
		}

		fmt.Println(ui.KeyValueBlock("Transfer", [][2]string{
			{"From", ui.Addr(s.account().Hex())},
			{"To", ui.Addr(to.Hex())},
			{"Amount", ui.Val(formatTokens(amount) + " B3TR")},
		}))
		if !tokenYes && !ui.Confirm("Send this transfer?") {
			fmt.Println(ui.Meta("Cancelled."))
			return nil
		}

		tx, err := c.Token.Transfer(cmd.Context(), to, amount)
		if err != nil {
			return err
		}
		_, err = s.waitFor(cmd.Context(), tx, "transfer")
		return err
	},
}

// spenderAddress accepts an address or a platform contract name.
func spenderAddress(s string) (common.Address, error) {
	if name, ok := config.Canonical(s); ok {
		a := cfg.Contracts.Get(name)
		if a == "" {
			return common.Address{}, fmt.Errorf("%s address is not configured", name)
		}
		return parseAddress(a)
	}
	return parseAddress(s)
}

func init() {
	tokenTransferCmd.Flags().BoolVarP(&tokenYes, "yes", "y", false, "skip the confirmation prompt")
	tokenCmd.AddCommand(tokenBalanceCmd, tokenAllowanceCmd, tokenApproveCmd, tokenTransferCmd)
}
