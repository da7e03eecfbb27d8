package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/proofofimpact/poi/internal/config"
	"github.com/proofofimpact/poi/internal/impact"
	"github.com/proofofimpact/poi/internal/ui"
)

var leaderboardLimit int

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Rank volunteers by impact score",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, c, err := platform(cmd.Context(), false)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), config.RequestTimeout)
		defer cancel()
		board, err := ui.Spin("Tallying verified submissions…", func() ([]impact.LeaderEntry, error) {
			return impact.Leaderboard(ctx, c.Opportunity, c.Reputation, leaderboardLimit)
		})
		if err != nil {
			return err
		}
		if len(board) == 0 {
			fmt.Println(ui.Info("No verified volunteers yet."))
			return nil
		}

		t := ui.NewTable([]ui.Column{
			{Title: "#", Width: 3, Right: true},
			{Title: "Volunteer", Width: 44},
			{Title: "Impact", Width: 8, Right: true},
			{Title: "Done", Width: 6, Right: true},
			{Title: "Earned B3TR", Width: 14, Right: true},
		})
		for _, e := range board {
			t.AddRow(ui.Row{
				fmt.Sprintf("%d", e.Rank),
				ui.Addr(e.Address.Hex()),
				ui.StyleImpact.Render(fmt.Sprintf("%d", e.ImpactScore)),
				fmt.Sprintf("%d", e.Completed),
				formatTokens(e.Earned),
			})
		}
		fmt.Println(t.Render())
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show platform totals",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, c, err := platform(cmd.Context(), false)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), config.RequestTimeout)
		defer cancel()
		st, err := ui.Spin("Collecting platform stats…", func() (*impact.Stats, error) {
			return impact.PlatformStats(ctx, c.Opportunity, c.Staking)
		})
		if err != nil {
			return err
		}
		fmt.Println(ui.KeyValueBlock("Proof of Impact on "+s.network.DisplayName, [][2]string{
			{"Opportunities", fmt.Sprintf("%d", st.Opportunities)},
			{"Volunteers", fmt.Sprintf("%d", st.Volunteers)},
			{"Rewards", ui.Val(formatTokens(st.RewardsDistributed) + " B3TR")},
			{"Staking TVL", ui.Val(formatTokens(st.StakingTVL) + " B3TR")},
		}))
		return nil
	},
}

var profileCmd = &cobra.Command{
	Use:   "profile [address]",
	Short: "Show a volunteer's impact and achievements (default: active wallet)",
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
		p, err := ui.Spin("Building profile…", func() (*impact.VolunteerProfile, error) {
			return impact.Profile(ctx, c.Opportunity, c.Reputation, who)
		})
		if err != nil {
			return err
		}

		fmt.Println(ui.KeyValueBlock("Volunteer Profile", [][2]string{
			{"Address", ui.Addr(who.Hex())},
			{"Impact Score", ui.StyleImpact.Render(fmt.Sprintf("%d", p.ImpactScore))},
			{"Completed", fmt.Sprintf("%d", p.Completed)},
			{"Earned", ui.Val(formatTokens(p.Earned) + " B3TR")},
		}))
		fmt.Println(badgeTable(p.Badges))
		return nil
	},
}

func badgeTable(badges []impact.Badge) string {
	t := ui.NewTable([]ui.Column{
		{Title: "", Width: 2},
		{Title: "Badge", Width: 14},
		{Title: "Requirement", Width: 34},
		{Title: "Progress", Width: 10, Right: true},
	})
	for _, b := range badges {
		mark := ui.Meta("·")
		if b.Unlocked {
			mark = ui.StyleSuccess.Render("★")
		}
		t.AddRow(ui.Row{mark, b.Name, ui.Meta(b.Description), fmt.Sprintf("%d/%d", min(b.Progress, b.Requirement), b.Requirement)})
	}
	return t.Render()
}

func init() {
	leaderboardCmd.Flags().IntVarP(&leaderboardLimit, "limit", "n", impact.DefaultLeaderboardSize, "how many volunteers to show")
}
