package cmd

import (
	"context"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/proofofimpact/poi/internal/config"
	"github.com/proofofimpact/poi/internal/impact"
	"github.com/proofofimpact/poi/internal/ui"
)

var (
	oppCategory string
	oppAll      bool

	oppCreate struct {
		title, description, proof, category, reward string
		max, radius                                 uint64
		lat, lon                                    float64
		yes                                         bool
	}

	oppSubmit struct {
		file, cid string
		lat, lon  float64
	}

	oppReject bool
)

var opportunityCmd = &cobra.Command{
	Use:     "opportunity",
	Aliases: []string{"opp"},
	Short:   "Browse, post and verify volunteer opportunities",
}

var oppListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active opportunities",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, c, err := platform(cmd.Context(), false)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), config.RequestTimeout)
		defer cancel()

		opps, err := ui.Spin("Fetching opportunities…", func() ([]impact.Opportunity, error) {
			if oppAll {
				return c.Opportunity.All(ctx)
			}
			return c.Opportunity.Active(ctx)
		})
		if err != nil {
			return err
		}
		if oppCategory != "" {
			opps = impact.ByCategory(opps, oppCategory)
		}
		if len(opps) == 0 {
			fmt.Println(ui.Info("No opportunities found on " + s.network.Name + "."))
			return nil
		}

		t := ui.NewTable([]ui.Column{
			{Title: "ID", Width: 4, Right: true},
			{Title: "Title", Width: 36},
			{Title: "Category", Width: 14},
			{Title: "Reward", Width: 12, Right: true},
			{Title: "Slots", Width: 7, Right: true},
			{Title: "Status", Width: 10},
		})
		for _, o := range opps {
			t.AddRow(ui.Row{
				o.ID.String(),
				impact.StripCategory(o.Title),
				ui.Category(o.Category()),
				formatTokens(o.RewardAmount),
				fmt.Sprintf("%d/%d", o.CurrentVolunteers, o.MaxVolunteers),
				ui.Status(o.StatusName()),
			})
		}
		fmt.Println(t.Render())
		fmt.Println(ui.Meta(fmt.Sprintf("%d opportunities · rewards in B3TR per volunteer", len(opps))))
		return nil
	},
}

var oppShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show an opportunity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		s, c, err := platform(cmd.Context(), false)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), config.RequestTimeout)
		defer cancel()
		o, err := c.Opportunity.Get(ctx, id)
		if err != nil {
			return err
		}
		fmt.Println(ui.KeyValueBlock(impact.StripCategory(o.Title), opportunityPairs(s.network.AddressURL(o.NGO.Hex()), o)))
		return nil
	},
}

func opportunityPairs(ngoURL string, o *impact.Opportunity) [][2]string {
	pairs := [][2]string{
		{"ID", o.ID.String()},
		{"Status", ui.Status(o.StatusName())},
		{"Category", ui.Category(orDash(o.Category()))},
		{"NGO", ui.Addr(o.NGO.Hex())},
		{"Reward", ui.Val(formatTokens(o.RewardAmount) + " B3TR")},
		{"Volunteers", fmt.Sprintf("%d/%d", o.CurrentVolunteers, o.MaxVolunteers)},
		{"Location", fmt.Sprintf("%.6f, %.6f (±%dm)",
			impact.FromMicroDegrees(o.Latitude), impact.FromMicroDegrees(o.Longitude), o.RadiusMeters)},
		{"Description", o.Description},
		{"Proof", o.ProofRequirements},
	}
	if !o.CreatedAt.IsZero() {
		pairs = append(pairs, [2]string{"Created", o.CreatedAt.Format(time.RFC3339)})
	}
	if ngoURL != "" {
		pairs = append(pairs, [2]string{"Explorer", ui.Meta(ngoURL)})
	}
	return pairs
}

var oppCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Post an opportunity (NGO)",
	Long: `Post a volunteer opportunity. The rewards for every slot plus the 100 B3TR
creation fee are escrowed: an approve clause and the create clause are sent
together as one transaction.

Example:
  poi opportunity create --title "Beach cleanup" --category environmental \
    --reward 50 --max 10 --lat 1.290270 --lon 103.851959 --radius 500 \
    --description "Collect plastic along the shore" --proof "Photo of filled bags"`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := createParamsFromFlags()
		if err != nil {
			return err
		}
		s, c, err := platform(cmd.Context(), true)
		if err != nil {
			return err
		}

		fmt.Println(ui.KeyValueBlock("New Opportunity", [][2]string{
			{"Title", p.PrefixedTitle()},
			{"Reward", fmt.Sprintf("%s B3TR × %d", formatTokens(p.Reward), p.MaxVolunteers)},
			{"Escrow", ui.Val(formatTokens(p.Escrow()) + " B3TR (incl. fee)")},
			{"Location", fmt.Sprintf("%.6f, %.6f (±%dm)", p.Latitude, p.Longitude, p.RadiusMeters)},
		}))
		if !oppCreate.yes && !ui.Confirm("Escrow and post this opportunity?") {
			fmt.Println(ui.Meta("Cancelled."))
			return nil
		}

		tx, err := c.Opportunity.Create(cmd.Context(), c.Token, p)
		if err != nil {
			return err
		}
		_, err = s.waitFor(cmd.Context(), tx, "opportunity")
		return err
	},
}

func createParamsFromFlags() (impact.CreateParams, error) {
	f := oppCreate
	if f.category != "" && !knownCategory(f.category) {
		return impact.CreateParams{}, fmt.Errorf("unknown category %q (%s)", f.category, categoryIDs())
	}
	reward, err := parseTokens(f.reward)
	if err != nil {
		return impact.CreateParams{}, fmt.Errorf("invalid --reward: %w", err)
	}
	p := impact.CreateParams{
		Title:             f.title,
		Description:       f.description,
		ProofRequirements: f.proof,
		Category:          f.category,
		Reward:            reward,
		MaxVolunteers:     f.max,
		Latitude:          f.lat,
		Longitude:         f.lon,
		RadiusMeters:      f.radius,
	}
	return p, p.Validate()
}

func knownCategory(id string) bool {
	for _, c := range impact.Categories {
		if c.ID == id {
			return true
		}
	}
	return false
}

func categoryIDs() string {
	ids := make([]string, len(impact.Categories))
	for i, c := range impact.Categories {
		ids[i] = c.ID
	}
	return strings.Join(ids, ", ")
}

var oppSubmitCmd = &cobra.Command{
	Use:   "submit <id>",
	Short: "Submit proof for an opportunity (volunteer)",
	Long: `Submit proof of completed work. Pass --file to pin a photo or document to
IPFS first, or --cid for content that is already pinned.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if (oppSubmit.file == "") == (oppSubmit.cid == "") {
			return fmt.Errorf("pass exactly one of --file or --cid")
		}
		s, c, err := platform(cmd.Context(), true)
		if err != nil {
			return err
		}

		cid := strings.TrimPrefix(oppSubmit.cid, "ipfs://")
		if oppSubmit.file != "" {
			if cid, err = pinFile(cmd.Context(), oppSubmit.file); err != nil {
				return err
			}
			fmt.Println(ui.Success("Pinned proof: " + cid))
		}

		tx, err := c.Opportunity.SubmitProof(cmd.Context(), id, cid, oppSubmit.lat, oppSubmit.lon)
		if err != nil {
			return err
		}
		_, err = s.waitFor(cmd.Context(), tx, "proof submission")
		return err
	},
}

var oppVerifyCmd = &cobra.Command{
	Use:   "verify <id> <index>",
	Short: "Approve or reject a submission (NGO)",
	Long: `Approve a volunteer's submission, releasing the reward and raising their
impact score. Pass --reject to reject it instead.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		index, err := strconv.Atoi(args[1])
		if err != nil || index < 0 {
			return fmt.Errorf("invalid submission index %q", args[1])
		}
		s, c, err := platform(cmd.Context(), true)
		if err != nil {
			return err
		}
		tx, err := c.Opportunity.VerifySubmission(cmd.Context(), id, index, !oppReject)
		if err != nil {
			return err
		}
		what := "approval"
		if oppReject {
			what = "rejection"
		}
		_, err = s.waitFor(cmd.Context(), tx, what)
		return err
	},
}

var oppSubmissionsCmd = &cobra.Command{
	Use:   "submissions <id>",
	Short: "List the submissions for an opportunity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		_, c, err := platform(cmd.Context(), false)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), config.RequestTimeout)
		defer cancel()
		subs, err := c.Opportunity.Submissions(ctx, id)
		if err != nil {
			return err
		}
		if len(subs) == 0 {
			fmt.Println(ui.Info("No submissions yet."))
			return nil
		}
		fmt.Println(submissionTable(subs))
		return nil
	},
}

var oppPendingCmd = &cobra.Command{
	Use:   "pending [ngo]",
	Short: "List submissions awaiting review for an NGO (default: active wallet)",
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
		pending, err := ui.Spin("Collecting pending submissions…", func() ([]impact.PendingSubmission, error) {
			return c.Opportunity.PendingSubmissions(ctx, ngo)
		})
		if err != nil {
			return err
		}
		if len(pending) == 0 {
			fmt.Println(ui.Success("Nothing to review."))
			return nil
		}

		t := ui.NewTable([]ui.Column{
			{Title: "Opp", Width: 4, Right: true},
			{Title: "Title", Width: 28},
			{Title: "#", Width: 3, Right: true},
			{Title: "Volunteer", Width: 14},
			{Title: "Proof", Width: 30},
		})
		for _, p := range pending {
			t.AddRow(ui.Row{
				p.Opportunity.ID.String(),
				impact.StripCategory(p.Opportunity.Title),
				strconv.Itoa(p.Submission.Index),
				ui.Addr(ui.TruncateAddr(p.Submission.Volunteer.Hex())),
				ui.Meta(p.Submission.IPFSHash),
			})
		}
		fmt.Println(t.Render())
		fmt.Println(ui.Hint("Review with: poi opportunity verify <opp> <#> [--reject]"))
		return nil
	},
}

func submissionTable(subs []impact.Submission) string {
	t := ui.NewTable([]ui.Column{
		{Title: "#", Width: 3, Right: true},
		{Title: "Volunteer", Width: 44},
		{Title: "Proof", Width: 30},
		{Title: "Status", Width: 10},
	})
	for _, sub := range subs {
		t.AddRow(ui.Row{
			strconv.Itoa(sub.Index),
			ui.Addr(sub.Volunteer.Hex()),
			ui.Meta(sub.IPFSHash),
			ui.Status(sub.StatusName()),
		})
	}
	return t.Render()
}

func init() {
	oppListCmd.Flags().StringVar(&oppCategory, "category", "", "filter by category ("+categoryIDs()+")")
	oppListCmd.Flags().BoolVar(&oppAll, "all", false, "include completed and cancelled opportunities")

	f := oppCreateCmd.Flags()
	f.StringVar(&oppCreate.title, "title", "", "title (required)")
	f.StringVar(&oppCreate.description, "description", "", "what volunteers do")
	f.StringVar(&oppCreate.proof, "proof", "", "what counts as proof")
	f.StringVar(&oppCreate.category, "category", "", "category ("+categoryIDs()+")")
	f.StringVar(&oppCreate.reward, "reward", "", "B3TR reward per volunteer (required)")
	f.Uint64Var(&oppCreate.max, "max", 1, "maximum volunteers")
	f.Float64Var(&oppCreate.lat, "lat", 0, "latitude in degrees")
	f.Float64Var(&oppCreate.lon, "lon", 0, "longitude in degrees")
	f.Uint64Var(&oppCreate.radius, "radius", 1000, "radius in meters proof must be taken within")
	f.BoolVarP(&oppCreate.yes, "yes", "y", false, "skip the confirmation prompt")

	oppSubmitCmd.Flags().StringVar(&oppSubmit.file, "file", "", "proof file to pin to IPFS")
	oppSubmitCmd.Flags().StringVar(&oppSubmit.cid, "cid", "", "already pinned proof CID")
	oppSubmitCmd.Flags().Float64Var(&oppSubmit.lat, "lat", 0, "latitude where the work was done")
	oppSubmitCmd.Flags().Float64Var(&oppSubmit.lon, "lon", 0, "longitude where the work was done")

	oppVerifyCmd.Flags().BoolVar(&oppReject, "reject", false, "reject instead of approve")

	opportunityCmd.AddCommand(oppListCmd, oppShowCmd, oppCreateCmd, oppSubmitCmd,
		oppVerifyCmd, oppSubmissionsCmd, oppPendingCmd)
}

// platform opens a session and binds the platform contracts.
func platform(ctx context.Context, needSigner bool) (*session, *impact.Contracts, error) {
	s, err := newSession(ctx, needSigner)
	if err != nil {
		return nil, nil, err
	}
	c, err := s.contracts()
	if err != nil {
		return nil, nil, err
	}
	return s, c, nil
}

func parseID(s string) (*big.Int, error) {
	id, ok := new(big.Int).SetString(s, 10)
	if !ok || id.Sign() < 0 {
		return nil, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}
