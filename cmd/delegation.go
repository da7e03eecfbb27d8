package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/proofofimpact/poi/internal/config"
	"github.com/proofofimpact/poi/internal/impact"
	"github.com/proofofimpact/poi/internal/ui"
)

var delegationCmd = &cobra.Command{
	Use:   "delegation",
	Short: "Sponsor volunteer gas with a VET deposit (NGO)",
}

var delegationInfoCmd = &cobra.Command{
	Use:   "info [ngo]",
	Short: "Show an NGO's deposit and sponsored volunteers",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, c, err := platform(cmd.Context(), false)
		if err != nil {
			return err
		}
		ngo, err := s.addressArg(args, 0)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), config.RequestTimeout)
		defer cancel()

		deposit, err := c.FeeDelegation.Deposit(ctx, ngo)
		if err != nil {
			return err
		}
		vols, err := c.FeeDelegation.Volunteers(ctx, ngo)
		if err != nil {
			return err
		}

		fmt.Println(ui.KeyValueBlock("Fee Delegation", [][2]string{
			{"NGO", ui.Addr(ngo.Hex())},
			{"Deposit", ui.Val(formatTokens(deposit) + " VET")},
			{"Volunteers", fmt.Sprintf("%d", len(vols))},
		}))
		for _, v := range vols {
			fmt.Printf("  %s\n", ui.Addr(v.Hex()))
		}
		if deposit.Cmp(impact.MinSponsorshipDeposit) < 0 {
			fmt.Println(ui.Hint(fmt.Sprintf("Deposit at least %s VET to sponsor volunteers",
				formatTokens(impact.MinSponsorshipDeposit))))
		}
		return nil
	},
}

var delegationDepositCmd = &cobra.Command{
	Use:   "deposit <vet>",
	Short: "Deposit VET to pay volunteers' gas",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := parseTokens(args[0])
		if err != nil {
			return err
		}
		s, c, err := platform(cmd.Context(), true)
		if err != nil {
			return err
		}
		tx, err := c.FeeDelegation.DepositForSponsorship(cmd.Context(), amount)
		if err != nil {
			return err
		}
		_, err = s.waitFor(cmd.Context(), tx, "deposit")
		return err
	},
}

var delegationAddCmd = &cobra.Command{
	Use:   "add-volunteer <address>",
	Short: "Sponsor a volunteer's transactions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		vol, err := parseAddress(args[0])
		if err != nil {
			return err
		}
		s, c, err := platform(cmd.Context(), true)
		if err != nil {
			return err
		}
		tx, err := c.FeeDelegation.AddVolunteer(cmd.Context(), vol)
		if err != nil {
			return err
		}
		_, err = s.waitFor(cmd.Context(), tx, "add volunteer")
		return err
	},
}

var delegationWithdrawCmd = &cobra.Command{
	Use:   "withdraw <vet>",
	Short: "Withdraw part of the sponsorship deposit",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := parseTokens(args[0])
		if err != nil {
			return err
		}
		s, c, err := platform(cmd.Context(), true)
		if err != nil {
			return err
		}
		tx, err := c.FeeDelegation.Withdraw(cmd.Context(), amount)
		if err != nil {
			return err
		}
		_, err = s.waitFor(cmd.Context(), tx, "withdrawal")
		return err
	},
}

func init() {
	delegationCmd.AddCommand(delegationInfoCmd, delegationDepositCmd, delegationAddCmd, delegationWithdrawCmd)
}
