package impact

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/big"
	"regexp"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/proofofimpact/poi/internal/chain"
	"github.com/proofofimpact/poi/internal/config"
	"github.com/proofofimpact/poi/internal/contract"
)

// Opportunity status values.
const (
	StatusActive uint8 = iota
	StatusCompleted
	StatusCancelled
)

// Submission status values.
const (
	SubmissionPending uint8 = iota
	SubmissionVerified
	SubmissionRejected
)

// CreationFee is charged on top of the reward escrow when an NGO posts an
// opportunity.
var CreationFee = new(big.Int).Mul(big.NewInt(100), big.NewInt(1e18))

// ErrInsufficientBalance is returned when the caller cannot cover the
// escrow an operation needs.
var ErrInsufficientBalance = errors.New("insufficient B3TR balance")

// Category is an opportunity category. Its ID travels as a "[id]" title
// prefix.
type Category struct {
	ID    string
	Label string
}

// Categories lists the known categories.
var Categories = []Category{
	{ID: "environmental", Label: "Environmental"},
	{ID: "education", Label: "Education"},
	{ID: "healthcare", Label: "Healthcare"},
	{ID: "water", Label: "Clean Water"},
	{ID: "forest", Label: "Reforestation"},
}

var categoryPrefix = regexp.MustCompile(`^\[([^\]]+)\]\s*`)

// CategoryOf extracts the category ID from a prefixed title.
func CategoryOf(title string) (string, bool) {
	m := categoryPrefix.FindStringSubmatch(title)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// StripCategory removes the category prefix from title.
func StripCategory(title string) string {
	return categoryPrefix.ReplaceAllString(title, "")
}

// ToMicroDegrees converts decimal degrees to the contract's integer
// micro-degrees, rounding toward negative infinity.
func ToMicroDegrees(deg float64) int64 {
	return int64(math.Floor(deg * 1e6))
}

// FromMicroDegrees converts contract coordinates back to degrees.
func FromMicroDegrees(micro int64) float64 {
	return float64(micro) / 1e6
}

// Opportunity is one posted volunteering task.
type Opportunity struct {
	ID                *big.Int       `json:"id"`
	NGO               common.Address `json:"ngo"`
	Title             string         `json:"title"`
	Description       string         `json:"description"`
	ProofRequirements string         `json:"proofRequirements"`
	RewardAmount      *big.Int       `json:"rewardAmount"`
	MaxVolunteers     uint64         `json:"maxVolunteers"`
	CurrentVolunteers uint64         `json:"currentVolunteers"`
	Latitude          int64          `json:"latitude"`
	Longitude         int64          `json:"longitude"`
	RadiusMeters      uint64         `json:"radiusMeters"`
	Status            uint8          `json:"status"`
	CreatedAt         time.Time      `json:"createdAt"`
}

// Category returns the category ID, or "" for untagged titles.
func (o *Opportunity) Category() string {
	c, _ := CategoryOf(o.Title)
	return c
}

// Full reports whether every volunteer slot is taken.
func (o *Opportunity) Full() bool {
	return o.CurrentVolunteers >= o.MaxVolunteers
}

// StatusName is a label for Status.
func (o *Opportunity) StatusName() string {
	switch o.Status {
	case StatusActive:
		return "active"
	case StatusCompleted:
		return "completed"
	case StatusCancelled:
		return "cancelled"
	}
	return fmt.Sprintf("status(%d)", o.Status)
}

func opportunityFromRecord(r contract.Record) Opportunity {
	o := Opportunity{
		ID:                bigOrZero(r.Big("id")),
		NGO:               r.Address("ngo"),
		Title:             r.String("title"),
		Description:       r.String("description"),
		ProofRequirements: r.String("proofRequirements"),
		RewardAmount:      bigOrZero(r.Big("rewardAmount")),
		MaxVolunteers:     r.Uint64("maxVolunteers"),
		CurrentVolunteers: r.Uint64("currentVolunteers"),
		RadiusMeters:      r.Uint64("radiusMeters"),
		Status:            r.Uint8("status"),
	}
	if lat := r.Big("latitude"); lat != nil {
		o.Latitude = lat.Int64()
	}
	if lon := r.Big("longitude"); lon != nil {
		o.Longitude = lon.Int64()
	}
	if ts := r.Uint64("createdAt"); ts > 0 {
		o.CreatedAt = time.Unix(int64(ts), 0).UTC()
	}
	return o
}

// Submission is a volunteer's proof for an opportunity. Index is its
// position in the opportunity's submission list, which verifySubmission
// takes.
type Submission struct {
	OpportunityID *big.Int       `json:"opportunityId"`
	Index         int            `json:"index"`
	Volunteer     common.Address `json:"volunteer"`
	IPFSHash      string         `json:"ipfsHash"`
	Latitude      int64          `json:"latitude"`
	Longitude     int64          `json:"longitude"`
	Timestamp     time.Time      `json:"timestamp"`
	Status        uint8          `json:"status"`
	SubmittedAt   time.Time      `json:"submittedAt"`
}

// StatusName is a label for Status.
func (s *Submission) StatusName() string {
	switch s.Status {
	case SubmissionPending:
		return "pending"
	case SubmissionVerified:
		return "verified"
	case SubmissionRejected:
		return "rejected"
	}
	return fmt.Sprintf("status(%d)", s.Status)
}

func submissionFromRecord(i int, r contract.Record) Submission {
	s := Submission{
		OpportunityID: bigOrZero(r.Big("opportunityId")),
		Index:         i,
		Volunteer:     r.Address("volunteer"),
		IPFSHash:      r.String("ipfsHash"),
		Status:        r.Uint8("status"),
	}
	if lat := r.Big("latitude"); lat != nil {
		s.Latitude = lat.Int64()
	}
	if lon := r.Big("longitude"); lon != nil {
		s.Longitude = lon.Int64()
	}
	if ts := r.Uint64("timestamp"); ts > 0 {
		s.Timestamp = time.Unix(int64(ts), 0).UTC()
	}
	if ts := r.Uint64("submittedAt"); ts > 0 {
		s.SubmittedAt = time.Unix(int64(ts), 0).UTC()
	}
	return s
}

// PendingSubmission pairs a submission awaiting review with its opportunity.
type PendingSubmission struct {
	Opportunity Opportunity
	Submission  Submission
}

// CreateParams describes a new opportunity.
type CreateParams struct {
	Title             string
	Description       string
	ProofRequirements string
	Category          string
	Reward            *big.Int // per volunteer, in wei
	MaxVolunteers     uint64
	Latitude          float64
	Longitude         float64
	RadiusMeters      uint64
}

// Validate checks params before anything is sent.
func (p CreateParams) Validate() error {
	switch {
	case strings.TrimSpace(p.Title) == "":
		return fmt.Errorf("title is required")
	case p.Reward == nil || p.Reward.Sign() <= 0:
		return fmt.Errorf("reward must be positive")
	case p.MaxVolunteers == 0:
		return fmt.Errorf("max volunteers must be at least 1")
	case p.Latitude < -90 || p.Latitude > 90:
		return fmt.Errorf("latitude %v out of range", p.Latitude)
	case p.Longitude < -180 || p.Longitude > 180:
		return fmt.Errorf("longitude %v out of range", p.Longitude)
	}
	return nil
}

// PrefixedTitle is the on-chain title: "[category] title".
func (p CreateParams) PrefixedTitle() string {
	if p.Category == "" {
		return p.Title
	}
	return fmt.Sprintf("[%s] %s", p.Category, p.Title)
}

// Escrow is what the NGO must approve: the creation fee plus every reward.
func (p CreateParams) Escrow() *big.Int {
	total := new(big.Int).Mul(p.Reward, new(big.Int).SetUint64(p.MaxVolunteers))
	return total.Add(total, CreationFee)
}

// Opportunities is the opportunity registry and proof workflow.
type Opportunities struct {
	*contract.Contract
}

// NewOpportunities binds the opportunity contract at addr.
func NewOpportunities(addr common.Address, p *contract.Provider) *Opportunities {
	return &Opportunities{contract.New(addr, mustABI(config.ContractOpportunity), p)}
}

// All returns every opportunity. Entries with a zero id are unused storage
// slots and are dropped.
func (o *Opportunities) All(ctx context.Context) ([]Opportunity, error) {
	records, err := asRecords(o.Call(ctx, "getAllOpportunities"))
	if err != nil {
		return nil, err
	}
	out := make([]Opportunity, 0, len(records))
	for _, r := range records {
		opp := opportunityFromRecord(r)
		if opp.ID.Sign() == 0 {
			continue
		}
		out = append(out, opp)
	}
	return out, nil
}

// Active returns opportunities still accepting volunteers' proofs.
func (o *Opportunities) Active(ctx context.Context) ([]Opportunity, error) {
	all, err := o.All(ctx)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, opp := range all {
		if opp.Status == StatusActive {
			out = append(out, opp)
		}
	}
	return out, nil
}

// ByCategory filters opps by category ID. "" and "all" match everything.
func ByCategory(opps []Opportunity, category string) []Opportunity {
	if category == "" || category == "all" {
		return opps
	}
	var out []Opportunity
	for _, opp := range opps {
		if opp.Category() == category {
			out = append(out, opp)
		}
	}
	return out
}

// Get returns the opportunity with id.
func (o *Opportunities) Get(ctx context.Context, id *big.Int) (*Opportunity, error) {
	all, err := o.All(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID.Cmp(id) == 0 {
			return &all[i], nil
		}
	}
	return nil, fmt.Errorf("opportunity %s not found", id)
}

// Submissions returns the proofs filed against opportunity id.
func (o *Opportunities) Submissions(ctx context.Context, id *big.Int) ([]Submission, error) {
	records, err := asRecords(o.Call(ctx, "getOpportunitySubmissions", id))
	if err != nil {
		return nil, err
	}
	out := make([]Submission, len(records))
	for i, r := range records {
		out[i] = submissionFromRecord(i, r)
	}
	return out, nil
}

// PendingSubmissions walks every opportunity and collects the submissions
// still awaiting review. When ngo is non-zero only that NGO's opportunities
// are walked.
func (o *Opportunities) PendingSubmissions(ctx context.Context, ngo common.Address) ([]PendingSubmission, error) {
	all, err := o.All(ctx)
	if err != nil {
		return nil, err
	}
	var out []PendingSubmission
	for _, opp := range all {
		if ngo != (common.Address{}) && opp.NGO != ngo {
			continue
		}
		subs, err := o.Submissions(ctx, opp.ID)
		if err != nil {
			return nil, fmt.Errorf("submissions of opportunity %s: %w", opp.ID, err)
		}
		for _, s := range subs {
			if s.Status == SubmissionPending {
				out = append(out, PendingSubmission{Opportunity: opp, Submission: s})
			}
		}
	}
	return out, nil
}

// CreateClauses returns the two clauses that post an opportunity: an
// approval of the full escrow to this contract, then createOpportunity.
func (o *Opportunities) CreateClauses(token *Token, p CreateParams) ([]chain.Clause, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	approve, err := token.ApproveClause(o.Address(), p.Escrow())
	if err != nil {
		return nil, err
	}
	create, err := o.Clause(nil, "createOpportunity",
		p.PrefixedTitle(),
		p.Description,
		p.ProofRequirements,
		p.Reward,
		new(big.Int).SetUint64(p.MaxVolunteers),
		big.NewInt(ToMicroDegrees(p.Latitude)),
		big.NewInt(ToMicroDegrees(p.Longitude)),
		new(big.Int).SetUint64(p.RadiusMeters),
	)
	if err != nil {
		return nil, err
	}
	return []chain.Clause{approve, create}, nil
}

// Create posts an opportunity in a single two-clause transaction after
// checking the caller's balance covers the escrow.
func (o *Opportunities) Create(ctx context.Context, token *Token, p CreateParams) (*contract.PendingTx, error) {
	clauses, err := o.CreateClauses(token, p)
	if err != nil {
		return nil, err
	}
	balance, err := token.BalanceOf(ctx, o.Provider().Account())
	if err != nil {
		return nil, fmt.Errorf("reading balance: %w", err)
	}
	if need := p.Escrow(); balance.Cmp(need) < 0 {
		return nil, fmt.Errorf("%w: have %s, need %s (claim from the faucet first)", ErrInsufficientBalance,
			chain.FormatUnits(balance, chain.TokenDecimals), chain.FormatUnits(need, chain.TokenDecimals))
	}
	return o.Provider().WithGas(config.GasLimitBatch).SendTransaction(ctx, clauses...)
}

// SubmitProof files a proof for opportunity id. ipfsHash is the pinned
// photo; coordinates are where it was taken.
func (o *Opportunities) SubmitProof(ctx context.Context, id *big.Int, ipfsHash string, lat, lon float64) (*contract.PendingTx, error) {
	if ipfsHash == "" {
		return nil, fmt.Errorf("proof needs an IPFS hash")
	}
	return o.Send(ctx, "submitProof", id, ipfsHash,
		big.NewInt(ToMicroDegrees(lat)), big.NewInt(ToMicroDegrees(lon)))
}

// VerifySubmission approves or rejects submission index of opportunity id.
func (o *Opportunities) VerifySubmission(ctx context.Context, id *big.Int, index int, approved bool) (*contract.PendingTx, error) {
	if index < 0 {
		return nil, fmt.Errorf("submission index must not be negative")
	}
	return o.Send(ctx, "verifySubmission", id, big.NewInt(int64(index)), approved)
}
