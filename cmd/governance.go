package cmd

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/proofofimpact/poi/internal/config"
	"github.com/proofofimpact/poi/internal/contract"
	"github.com/proofofimpact/poi/internal/impact"
	"github.com/proofofimpact/poi/internal/ui"
)

var (
	govDescription string
	govFetch       bool
)

var governanceCmd = &cobra.Command{
	Use:     "governance",
	Aliases: []string{"gov"},
	Short:   "Proposals, votes and comments for stakers",
}

var govListCmd = &cobra.Command{
	Use:   "list",
	Short: "List proposals, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, c, err := platform(cmd.Context(), false)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), config.RequestTimeout)
		defer cancel()
		props, err := ui.Spin("Fetching proposals…", func() ([]*impact.Proposal, error) {
			return c.Governance.Proposals(ctx)
		})
		if err != nil {
			return err
		}
		if len(props) == 0 {
			fmt.Println(ui.Info("No proposals yet."))
			fmt.Println(ui.Hint(`Create one with: poi governance create "Title" --description "..."`))
			return nil
		}

		t := ui.NewTable([]ui.Column{
			{Title: "ID", Width: 4, Right: true},
			{Title: "Title", Width: 32},
			{Title: "For", Width: 10, Right: true},
			{Title: "Against", Width: 10, Right: true},
			{Title: "Abstain", Width: 10, Right: true},
			{Title: "Ends", Width: 12},
			{Title: "State", Width: 10},
		})
		for _, p := range props {
			t.AddRow(ui.Row{
				strconv.FormatUint(p.ID, 10),
				p.Title,
				formatTokens(p.ForVotes),
				formatTokens(p.AgainstVotes),
				formatTokens(p.AbstainVotes),
				p.EndTime.Format(time.DateOnly),
				ui.Status(p.State.String()),
			})
		}
		fmt.Println(t.Render())
		return nil
	},
}

var govShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a proposal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseProposalID(args[0])
		if err != nil {
			return err
		}
		_, c, err := platform(cmd.Context(), false)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), config.RequestTimeout)
		defer cancel()
		p, err := c.Governance.Proposal(ctx, id)
		if err != nil {
			return err
		}
		fmt.Println(ui.KeyValueBlock(p.Title, proposalPairs(p)))
		return nil
	},
}

func proposalPairs(p *impact.Proposal) [][2]string {
	return [][2]string{
		{"ID", strconv.FormatUint(p.ID, 10)},
		{"State", ui.Status(p.State.String())},
		{"Proposer", ui.Addr(p.Proposer.Hex())},
		{"Description", orDash(p.Description)},
		{"Voting", fmt.Sprintf("%s → %s", p.StartTime.Format(time.RFC3339), p.EndTime.Format(time.RFC3339))},
		{"For", ui.Val(formatTokens(p.ForVotes) + " B3TR")},
		{"Against", formatTokens(p.AgainstVotes) + " B3TR"},
		{"Abstain", formatTokens(p.AbstainVotes) + " B3TR"},
		{"Comments", strconv.FormatUint(p.CommentCount, 10)},
	}
}

var govCreateCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Create a proposal (stakers only)",
	Long: `Create a proposal. Title and description are stored as JSON cut to 32
bytes, so keep the title short.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, c, err := platform(cmd.Context(), true)
		if err != nil {
			return err
		}
		if err := requireStake(cmd.Context(), s, c); err != nil {
			return err
		}
		tx, err := c.Governance.CreateProposal(cmd.Context(), args[0], govDescription)
		if err != nil {
			return err
		}
		_, err = s.waitFor(cmd.Context(), tx, "proposal")
		return err
	},
}

var govVoteCmd = &cobra.Command{
	Use:   "vote <id> <for|against|abstain>",
	Short: "Vote on a proposal (stakers only)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseProposalID(args[0])
		if err != nil {
			return err
		}
		option, err := impact.ParseVoteOption(args[1])
		if err != nil {
			return err
		}
		s, c, err := platform(cmd.Context(), true)
		if err != nil {
			return err
		}
		if err := requireStake(cmd.Context(), s, c); err != nil {
			return err
		}
		tx, err := c.Governance.CastVote(cmd.Context(), id, option)
		if err != nil {
			return err
		}
		_, err = s.waitFor(cmd.Context(), tx, "vote ("+option.String()+")")
		return err
	},
}

var govExecuteCmd = &cobra.Command{
	Use:   "execute <id>",
	Short: "Execute a passed proposal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return proposalTx(cmd, args[0], "execution", func(g *impact.Governance, id uint64) (*contract.PendingTx, error) {
			return g.ExecuteProposal(cmd.Context(), id)
		})
	},
}

var govCancelCmd = &cobra.Command{
	Use:   "cancel <id>",
	Short: "Cancel your proposal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return proposalTx(cmd, args[0], "cancellation", func(g *impact.Governance, id uint64) (*contract.PendingTx, error) {
			return g.CancelProposal(cmd.Context(), id)
		})
	},
}

func proposalTx(cmd *cobra.Command, rawID, what string, send func(*impact.Governance, uint64) (*contract.PendingTx, error)) error {
	id, err := parseProposalID(rawID)
	if err != nil {
		return err
	}
	s, c, err := platform(cmd.Context(), true)
	if err != nil {
		return err
	}
	tx, err := send(c.Governance, id)
	if err != nil {
		return err
	}
	_, err = s.waitFor(cmd.Context(), tx, what)
	return err
}

var govCommentsCmd = &cobra.Command{
	Use:   "comments <id>",
	Short: "List a proposal's comments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseProposalID(args[0])
		if err != nil {
			return err
		}
		_, c, err := platform(cmd.Context(), false)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), config.RequestTimeout)
		defer cancel()
		comments, err := c.Governance.Comments(ctx, id)
		if err != nil {
			return err
		}
		if len(comments) == 0 {
			fmt.Println(ui.Info("No comments yet."))
			return nil
		}

		client := newIPFSClient()
		for _, cm := range comments {
			fmt.Printf("%s  %s  %s\n",
				ui.Addr(ui.TruncateAddr(cm.Commenter.Hex())),
				ui.Meta(cm.Timestamp.Format(time.RFC3339)),
				ui.Meta(cm.CID))
			if !govFetch {
				continue
			}
			// Only 32 bytes of the CID are stored, so long CIDs may not resolve.
			content, err := client.Fetch(ctx, cm.CID)
			if err != nil {
				fmt.Println("  " + ui.Warn("could not fetch: "+err.Error()))
				continue
			}
			fmt.Println("  " + content.Text)
		}
		return nil
	},
}

var govCommentCmd = &cobra.Command{
	Use:   "comment <id> <text>",
	Short: "Pin a comment to IPFS and attach it to a proposal",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseProposalID(args[0])
		if err != nil {
			return err
		}
		s, c, err := platform(cmd.Context(), true)
		if err != nil {
			return err
		}
		if err := requireStake(cmd.Context(), s, c); err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), config.RequestTimeout)
		defer cancel()
		client := newIPFSClient()
		cid, err := ui.Spin("Pinning comment…", func() (string, error) {
			return client.PinText(ctx, args[1])
		})
		if err != nil {
			return err
		}

		tx, err := c.Governance.AddComment(cmd.Context(), id, cid)
		if err != nil {
			return err
		}
		_, err = s.waitFor(cmd.Context(), tx, "comment")
		return err
	},
}

// requireStake refuses governance writes from accounts below the
// participation threshold before anything is signed.
func requireStake(ctx context.Context, s *session, c *impact.Contracts) error {
	ctx, cancel := context.WithTimeout(ctx, config.RequestTimeout)
	defer cancel()
	info, err := c.Staking.StakeInfo(ctx, s.account())
	if err != nil {
		return fmt.Errorf("reading stake: %w", err)
	}
	if !impact.CanParticipate(info.Amount) {
		return fmt.Errorf("governance needs at least %s B3TR staked (you have %s): run `poi stake stake <amount>`",
			formatTokens(impact.MinParticipationStake), formatTokens(info.Amount))
	}
	return nil
}

func parseProposalID(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid proposal id %q", s)
	}
	return id, nil
}

func init() {
	govCreateCmd.Flags().StringVar(&govDescription, "description", "", "proposal description (required)")
	govCommentsCmd.Flags().BoolVar(&govFetch, "fetch", false, "fetch comment text from IPFS")
	governanceCmd.AddCommand(govListCmd, govShowCmd, govCreateCmd, govVoteCmd, govExecuteCmd,
		govCancelCmd, govCommentsCmd, govCommentCmd)
}
