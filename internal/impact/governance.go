package impact

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"regexp"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/proofofimpact/poi/internal/config"
	"github.com/proofofimpact/poi/internal/contract"
)

// VoteOption is a ballot choice.
type VoteOption uint8

const (
	VoteAgainst VoteOption = iota
	VoteFor
	VoteAbstain
)

// ParseVoteOption accepts "for", "against" or "abstain".
func ParseVoteOption(s string) (VoteOption, error) {
	switch s {
	case "against", "no":
		return VoteAgainst, nil
	case "for", "yes":
		return VoteFor, nil
	case "abstain":
		return VoteAbstain, nil
	}
	return 0, fmt.Errorf("unknown vote %q (want for, against or abstain)", s)
}

func (v VoteOption) String() string {
	switch v {
	case VoteAgainst:
		return "against"
	case VoteFor:
		return "for"
	case VoteAbstain:
		return "abstain"
	}
	return fmt.Sprintf("option(%d)", uint8(v))
}

// ProposalState is the lifecycle stage the contract reports.
type ProposalState uint8

const (
	ProposalActive ProposalState = iota
	ProposalDefeated
	ProposalPassed
	ProposalExecuted
	ProposalCancelled
)

func (s ProposalState) String() string {
	switch s {
	case ProposalActive:
		return "Active"
	case ProposalDefeated:
		return "Defeated"
	case ProposalPassed:
		return "Passed"
	case ProposalExecuted:
		return "Executed"
	case ProposalCancelled:
		return "Cancelled"
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

// MarshalText renders the state name in JSON output.
func (s ProposalState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Proposal is a governance proposal with its derived fields.
type Proposal struct {
	ID           uint64         `json:"id"`
	Proposer     common.Address `json:"proposer"`
	Data         [32]byte       `json:"-"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	StartTime    time.Time      `json:"startTime"`
	EndTime      time.Time      `json:"endTime"`
	ForVotes     *big.Int       `json:"forVotes"`
	AgainstVotes *big.Int       `json:"againstVotes"`
	AbstainVotes *big.Int       `json:"abstainVotes"`
	Executed     bool           `json:"executed"`
	Cancelled    bool           `json:"cancelled"`
	State        ProposalState  `json:"state"`
	CommentCount uint64         `json:"commentCount"`
}

// Comment is one proposal comment. The text lives on IPFS and CID is the
// part of its hash that fits in 32 bytes.
type Comment struct {
	Commenter common.Address `json:"commenter"`
	Hash      [32]byte       `json:"-"`
	CID       string         `json:"cid"`
	Timestamp time.Time      `json:"timestamp"`
}

// PackBytes32 stores the first 32 bytes of s, zero padded.
func PackBytes32(s string) [32]byte {
	var out [32]byte
	copy(out[:], s)
	return out
}

// UnpackBytes32 reads a PackBytes32 value back, skipping zero bytes.
func UnpackBytes32(b [32]byte) string {
	return string(bytes.ReplaceAll(b[:], []byte{0}, nil))
}

var titleField = regexp.MustCompile(`"title":"([^"]+)"`)

// DecodeProposalText recovers title and description from the bytes32 a
// proposal was created with. Proposals store {"title","description"} JSON
// cut to 32 bytes, so usually only a title prefix survives.
func DecodeProposalText(id uint64, b [32]byte) (title, description string) {
	title = fmt.Sprintf("Proposal #%d", id)
	raw := UnpackBytes32(b)

	var doc struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal([]byte(raw), &doc); err == nil {
		if doc.Title != "" {
			title = doc.Title
		}
		description = doc.Description
		return title, description
	}

	if m := titleField.FindStringSubmatch(raw); m != nil {
		title = m[1]
	} else if i := bytes.Index([]byte(raw), []byte(`"title":"`)); i >= 0 {
		// Title cut off before its closing quote.
		title = raw[i+len(`"title":"`):] + "…"
	}
	return title, fmt.Sprintf("Data: %s...", hexutil.Encode(b[:])[:10])
}

// EncodeProposalText is the bytes32 CreateProposal stores.
func EncodeProposalText(title, description string) ([32]byte, error) {
	data, err := json.Marshal(struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}{title, description})
	if err != nil {
		return [32]byte{}, err
	}
	return PackBytes32(string(data)), nil
}

// Governance is the staker proposal contract.
type Governance struct {
	*contract.Contract
}

// NewGovernance binds governance at addr.
func NewGovernance(addr common.Address, p *contract.Provider) *Governance {
	return &Governance{contract.New(addr, mustABI(config.ContractGovernance), p)}
}

// ProposalCount returns how many proposals exist. IDs run 1..count.
func (g *Governance) ProposalCount(ctx context.Context) (uint64, error) {
	n, err := asBig(g.Call(ctx, "proposalCount"))
	if err != nil {
		return 0, err
	}
	return n.Uint64(), nil
}

// ProposalState returns the state of proposal id.
func (g *Governance) ProposalState(ctx context.Context, id uint64) (ProposalState, error) {
	v, err := g.Call(ctx, "getProposalState", new(big.Int).SetUint64(id))
	if err != nil {
		return 0, err
	}
	s, ok := v.(uint8)
	if !ok {
		return 0, unexpected(v, "uint8")
	}
	return ProposalState(s), nil
}

// CommentCount returns how many comments proposal id has.
func (g *Governance) CommentCount(ctx context.Context, id uint64) (uint64, error) {
	n, err := asBig(g.Call(ctx, "getCommentCount", new(big.Int).SetUint64(id)))
	if err != nil {
		return 0, err
	}
	return n.Uint64(), nil
}

// Proposal assembles proposal id from getProposal's nine positional outputs,
// its state and its comment count.
func (g *Governance) Proposal(ctx context.Context, id uint64) (*Proposal, error) {
	v, err := g.Call(ctx, "getProposal", new(big.Int).SetUint64(id))
	seq, err := asSequence(v, err, 9)
	if err != nil {
		return nil, err
	}

	p := &Proposal{ID: id}
	p.Proposer, _ = seq[0].(common.Address)
	p.Data, _ = seq[1].([32]byte)
	p.StartTime = unixTime(seq[2])
	p.EndTime = unixTime(seq[3])
	p.ForVotes, _ = seq[4].(*big.Int)
	p.AgainstVotes, _ = seq[5].(*big.Int)
	p.AbstainVotes, _ = seq[6].(*big.Int)
	p.Executed, _ = seq[7].(bool)
	p.Cancelled, _ = seq[8].(bool)
	p.ForVotes = bigOrZero(p.ForVotes)
	p.AgainstVotes = bigOrZero(p.AgainstVotes)
	p.AbstainVotes = bigOrZero(p.AbstainVotes)
	p.Title, p.Description = DecodeProposalText(id, p.Data)

	if p.State, err = g.ProposalState(ctx, id); err != nil {
		return nil, fmt.Errorf("proposal %d state: %w", id, err)
	}
	if p.CommentCount, err = g.CommentCount(ctx, id); err != nil {
		return nil, fmt.Errorf("proposal %d comments: %w", id, err)
	}
	return p, nil
}

// Proposals returns every proposal, newest first.
func (g *Governance) Proposals(ctx context.Context) ([]*Proposal, error) {
	count, err := g.ProposalCount(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*Proposal, 0, count)
	for id := count; id >= 1; id-- {
		p, err := g.Proposal(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// Comments zips getAllComments' three parallel arrays.
func (g *Governance) Comments(ctx context.Context, id uint64) ([]Comment, error) {
	v, err := g.Call(ctx, "getAllComments", new(big.Int).SetUint64(id))
	seq, err := asSequence(v, err, 3)
	if err != nil {
		return nil, err
	}
	commenters, _ := seq[0].([]common.Address)
	hashes, _ := seq[1].([][32]byte)
	stamps, _ := seq[2].([]*big.Int)
	if len(hashes) != len(commenters) || len(stamps) != len(commenters) {
		return nil, fmt.Errorf("comment arrays disagree: %d commenters, %d hashes, %d timestamps",
			len(commenters), len(hashes), len(stamps))
	}

	out := make([]Comment, len(commenters))
	for i := range commenters {
		out[i] = Comment{
			Commenter: commenters[i],
			Hash:      hashes[i],
			CID:       UnpackBytes32(hashes[i]),
			Timestamp: unixTime(stamps[i]),
		}
	}
	return out, nil
}

// CreateProposal stores {"title","description"} JSON, cut to 32 bytes.
func (g *Governance) CreateProposal(ctx context.Context, title, description string) (*contract.PendingTx, error) {
	if title == "" || description == "" {
		return nil, fmt.Errorf("title and description are required")
	}
	data, err := EncodeProposalText(title, description)
	if err != nil {
		return nil, err
	}
	return g.Send(ctx, "createProposal", data)
}

// CastVote votes on proposal id.
func (g *Governance) CastVote(ctx context.Context, id uint64, option VoteOption) (*contract.PendingTx, error) {
	if option > VoteAbstain {
		return nil, fmt.Errorf("invalid vote option %d", option)
	}
	return g.Send(ctx, "castVote", new(big.Int).SetUint64(id), uint8(option))
}

// ExecuteProposal executes a passed proposal.
func (g *Governance) ExecuteProposal(ctx context.Context, id uint64) (*contract.PendingTx, error) {
	return g.Send(ctx, "executeProposal", new(big.Int).SetUint64(id))
}

// CancelProposal cancels proposal id. Proposer only.
func (g *Governance) CancelProposal(ctx context.Context, id uint64) (*contract.PendingTx, error) {
	return g.Send(ctx, "cancelProposal", new(big.Int).SetUint64(id))
}

// AddComment attaches a pinned comment to proposal id. Only the first 32
// bytes of cid fit on chain.
func (g *Governance) AddComment(ctx context.Context, id uint64, cid string) (*contract.PendingTx, error) {
	if cid == "" {
		return nil, fmt.Errorf("comment needs an IPFS hash")
	}
	return g.Send(ctx, "addComment", new(big.Int).SetUint64(id), PackBytes32(cid))
}

func unixTime(v any) time.Time {
	n, _ := v.(*big.Int)
	if n == nil || n.Sign() == 0 {
		return time.Time{}
	}
	return time.Unix(n.Int64(), 0).UTC()
}
