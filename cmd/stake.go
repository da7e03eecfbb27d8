package cmd

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/spf13/cobra"

	"github.com/proofofimpact/poi/internal/config"
	"github.com/proofofimpact/poi/internal/impact"
	"github.com/proofofimpact/poi/internal/ui"
)

var stakeCmd = &cobra.Command{
	Use:   "stake",
	Short: "Stake B3TR for rewards and governance rights",
}

var stakeInfoCmd = &cobra.Command{
	Use:   "info [address]",
	Short: "Show a staking position (default: active wallet)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, c, err := platform(cmd.Context(), false)
		if err != nil {
			return err
		}
		who, err := s.addressArg(args, 0)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), config.RequestTimeout)
		defer cancel()

		info, err := c.Staking.StakeInfo(ctx, who)
		if err != nil {
			return err
		}
		total, err := c.Staking.TotalStaked(ctx)
		if err != nil {
			return err
		}
		fmt.Println(ui.KeyValueBlock("Staking Position", stakePairs(who.Hex(), info, total)))
		if !impact.CanParticipate(info.Amount) {
			fmt.Println(ui.Hint(fmt.Sprintf("Stake at least %s B3TR to propose, vote and comment",
				formatTokens(impact.MinParticipationStake))))
		}
		return nil
	},
}

func stakePairs(who string, info *impact.StakeInfo, total *big.Int) [][2]string {
	since := "-"
	if !info.StakedAt.IsZero() {
		since = info.StakedAt.Format(time.RFC3339)
	}
	governance := ui.Status("inactive")
	if impact.CanParticipate(info.Amount) {
		governance = ui.Status("active")
	}
	return [][2]string{
		{"Address", ui.Addr(who)},
		{"Staked", ui.Val(formatTokens(info.Amount) + " B3TR")},
		{"Since", since},
		{"Pending Reward", ui.Val(formatTokens(info.PendingReward) + " B3TR")},
		{"Governance", governance},
		{"Pool TVL", formatTokens(total) + " B3TR"},
	}
}

var stakeStakeCmd = &cobra.Command{
	Use:   "stake <amount>",
	Short: "Stake B3TR (approves the pool first when needed)",
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
		tx, err := c.Staking.Stake(cmd.Context(), c.Token, amount)
		if err != nil {
			return err
		}
		_, err = s.waitFor(cmd.Context(), tx, "stake")
		return err
	},
}

var stakeUnstakeCmd = &cobra.Command{
	Use:   "unstake <amount>",
	Short: "Withdraw staked B3TR",
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
		tx, err := c.Staking.Unstake(cmd.Context(), amount)
		if err != nil {
			return err
		}
		_, err = s.waitFor(cmd.Context(), tx, "unstake")
		return err
	},
}

var stakeClaimCmd = &cobra.Command{
	Use:   "claim",
	Short: "Claim pending staking rewards",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, c, err := platform(cmd.Context(), true)
		if err != nil {
			return err
		}
		tx, err := c.Staking.ClaimRewards(cmd.Context())
		if err != nil {
			return err
		}
		_, err = s.waitFor(cmd.Context(), tx, "reward claim")
		return err
	},
}

func init() {
	stakeCmd.AddCommand(stakeInfoCmd, stakeStakeCmd, stakeUnstakeCmd, stakeClaimCmd)
}
