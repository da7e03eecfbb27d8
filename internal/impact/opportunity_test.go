package impact

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proofofimpact/poi/internal/config"
)

type oppTuple struct {
	Id                *big.Int
	Ngo               common.Address
	Title             string
	Description       string
	ProofRequirements string
	RewardAmount      *big.Int
	MaxVolunteers     *big.Int
	CurrentVolunteers *big.Int
	Latitude          *big.Int
	Longitude         *big.Int
	RadiusMeters      *big.Int
	Status            uint8
	CreatedAt         *big.Int
}

type subTuple struct {
	OpportunityId *big.Int
	Volunteer     common.Address
	IpfsHash      string
	Latitude      *big.Int
	Longitude     *big.Int
	Timestamp     *big.Int
	Status        uint8
	SubmittedAt   *big.Int
}

var ngoAddr = common.HexToAddress("0x00000000000000000000000000000000000000b0")

func opp(id int64, title string, status uint8, reward int64, current int64) oppTuple {
	return oppTuple{
		Id:                big.NewInt(id),
		Ngo:               ngoAddr,
		Title:             title,
		RewardAmount:      tokens(reward),
		MaxVolunteers:     big.NewInt(20),
		CurrentVolunteers: big.NewInt(current),
		Latitude:          big.NewInt(1_280_400),
		Longitude:         big.NewInt(103_852_000),
		RadiusMeters:      big.NewInt(1000),
		Status:            status,
		CreatedAt:         big.NewInt(1_700_000_000),
	}
}

func tokens(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1e18))
}

func TestAllDropsZeroIDEntries(t *testing.T) {
	c, node, _ := bound(t)
	node.returns(config.ContractOpportunity, "getAllOpportunities", []oppTuple{
		opp(0, "", 0, 0, 0),
		opp(1, "[environmental] Beach Cleanup", StatusActive, 50, 3),
		opp(2, "[education] Tutoring", StatusCompleted, 10, 0),
	})

	all, err := c.Opportunity.All(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)

	first := all[0]
	assert.Equal(t, int64(1), first.ID.Int64())
	assert.Equal(t, ngoAddr, first.NGO)
	assert.Equal(t, "environmental", first.Category())
	assert.Equal(t, tokens(50), first.RewardAmount)
	assert.Equal(t, uint64(3), first.CurrentVolunteers)
	assert.Equal(t, int64(1_280_400), first.Latitude)
	assert.Equal(t, "active", first.StatusName())
	assert.Equal(t, int64(1_700_000_000), first.CreatedAt.Unix())
}

func TestActiveAndCategoryFilters(t *testing.T) {
	c, node, _ := bound(t)
	node.returns(config.ContractOpportunity, "getAllOpportunities", []oppTuple{
		opp(1, "[environmental] Beach", StatusActive, 1, 0),
		opp(2, "[education] Tutoring", StatusActive, 1, 0),
		opp(3, "[environmental] Park", StatusCancelled, 1, 0),
		opp(4, "Untagged", StatusActive, 1, 0),
	})

	active, err := c.Opportunity.Active(context.Background())
	require.NoError(t, err)
	require.Len(t, active, 3)

	env := ByCategory(active, "environmental")
	require.Len(t, env, 1)
	assert.Equal(t, int64(1), env[0].ID.Int64())
	assert.Len(t, ByCategory(active, "all"), 3)
	assert.Empty(t, ByCategory(active, "water"))
}

func TestSubmissionsAndPending(t *testing.T) {
	c, node, _ := bound(t)
	vol := common.HexToAddress("0x00000000000000000000000000000000000000c1")
	node.returns(config.ContractOpportunity, "getAllOpportunities", []oppTuple{
		opp(1, "[water] Well", StatusActive, 5, 1),
		opp(2, "[forest] Trees", StatusActive, 5, 0),
	})
	node.on(config.ContractOpportunity, "getOpportunitySubmissions", func(args []any) ([]any, error) {
		id := args[0].(*big.Int).Int64()
		if id == 1 {
			return []any{[]subTuple{
				{OpportunityId: big.NewInt(1), Volunteer: vol, IpfsHash: "QmA", Latitude: big.NewInt(-5), Longitude: big.NewInt(7), Timestamp: big.NewInt(1), Status: SubmissionVerified, SubmittedAt: big.NewInt(2)},
				{OpportunityId: big.NewInt(1), Volunteer: vol, IpfsHash: "QmB", Latitude: big.NewInt(0), Longitude: big.NewInt(0), Timestamp: big.NewInt(3), Status: SubmissionPending, SubmittedAt: big.NewInt(4)},
			}}, nil
		}
		return []any{[]subTuple{}}, nil
	})

	subs, err := c.Opportunity.Submissions(context.Background(), big.NewInt(1))
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, 1, subs[1].Index)
	assert.Equal(t, "QmA", subs[0].IPFSHash)
	assert.Equal(t, int64(-5), subs[0].Latitude)
	assert.Equal(t, "verified", subs[0].StatusName())

	pending, err := c.Opportunity.PendingSubmissions(context.Background(), common.Address{})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "QmB", pending[0].Submission.IPFSHash)
	assert.Equal(t, 1, pending[0].Submission.Index)
	assert.Equal(t, int64(1), pending[0].Opportunity.ID.Int64())

	other := common.HexToAddress("0x00000000000000000000000000000000000000ff")
	none, err := c.Opportunity.PendingSubmissions(context.Background(), other)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func createParams() CreateParams {
	return CreateParams{
		Title:             "Beach Cleanup - Marina Bay",
		Description:       "Community beach cleanup",
		ProofRequirements: "Photo of collected bags",
		Category:          "environmental",
		Reward:            tokens(50),
		MaxVolunteers:     20,
		Latitude:          1.2804,
		Longitude:         103.8520,
		RadiusMeters:      1000,
	}
}

func TestCreateSendsApproveThenCreateInOneTx(t *testing.T) {
	c, node, signer := bound(t)
	node.returns(config.ContractToken, "balanceOf", tokens(5000))

	tx, err := c.Opportunity.Create(context.Background(), c.Token, createParams())
	require.NoError(t, err)
	assert.Equal(t, "0xtx1", tx.ID)

	require.Len(t, signer.clauses, 1)
	clauses := signer.clauses[0]
	require.Len(t, clauses, 2)
	assert.Equal(t, config.GasLimitBatch, signer.gas[0])

	assert.Equal(t, tokenAddr, *clauses[0].To)
	name, args := decodeClause(t, config.ContractToken, clauses[0])
	assert.Equal(t, "approve", name)
	assert.Equal(t, oppAddr, args[0])
	// 100 fee + 50 × 20 rewards
	assert.Equal(t, tokens(1100), args[1])

	assert.Equal(t, oppAddr, *clauses[1].To)
	name, args = decodeClause(t, config.ContractOpportunity, clauses[1])
	assert.Equal(t, "createOpportunity", name)
	assert.Equal(t, "[environmental] Beach Cleanup - Marina Bay", args[0])
	assert.Equal(t, tokens(50), args[3])
	assert.Equal(t, big.NewInt(20), args[4])
	assert.Equal(t, big.NewInt(1_280_400), args[5])
	assert.Equal(t, big.NewInt(103_852_000), args[6])
}

func TestCreateRefusesWhenBalanceShort(t *testing.T) {
	c, node, signer := bound(t)
	node.returns(config.ContractToken, "balanceOf", tokens(1099))

	_, err := c.Opportunity.Create(context.Background(), c.Token, createParams())
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Empty(t, signer.clauses)
}

func TestCreateValidatesBeforeAnyRead(t *testing.T) {
	c, node, _ := bound(t)
	p := createParams()
	p.MaxVolunteers = 0

	_, err := c.Opportunity.Create(context.Background(), c.Token, p)
	assert.Error(t, err)
	assert.Empty(t, node.reads)
}

func TestSubmitAndVerifyEncodeArguments(t *testing.T) {
	c, _, signer := bound(t)

	_, err := c.Opportunity.SubmitProof(context.Background(), big.NewInt(3), "QmProof", -33.8688, 151.2093)
	require.NoError(t, err)
	name, args := decodeClause(t, config.ContractOpportunity, signer.clauses[0][0])
	assert.Equal(t, "submitProof", name)
	assert.Equal(t, "QmProof", args[1])
	assert.Equal(t, big.NewInt(-33_868_800), args[2])
	assert.Equal(t, big.NewInt(151_209_300), args[3])

	_, err = c.Opportunity.VerifySubmission(context.Background(), big.NewInt(3), 2, true)
	require.NoError(t, err)
	name, args = decodeClause(t, config.ContractOpportunity, signer.clauses[1][0])
	assert.Equal(t, "verifySubmission", name)
	assert.Equal(t, big.NewInt(2), args[1])
	assert.Equal(t, true, args[2])
}

func TestCategoryHelpers(t *testing.T) {
	cat, ok := CategoryOf("[healthcare] Blood drive")
	assert.True(t, ok)
	assert.Equal(t, "healthcare", cat)

	_, ok = CategoryOf("Blood drive [healthcare]")
	assert.False(t, ok)

	assert.Equal(t, "Blood drive", StripCategory("[healthcare] Blood drive"))
	assert.Equal(t, "[x] Title", createParamsWith("x", "Title").PrefixedTitle())
	assert.Equal(t, "Title", createParamsWith("", "Title").PrefixedTitle())
}

func createParamsWith(category, title string) CreateParams {
	return CreateParams{Category: category, Title: title}
}

func TestMicroDegrees(t *testing.T) {
	assert.Equal(t, int64(1_280_400), ToMicroDegrees(1.2804))
	assert.Equal(t, int64(-1), ToMicroDegrees(-0.0000005))
	assert.Equal(t, int64(0), ToMicroDegrees(0))
	assert.InDelta(t, 103.852, FromMicroDegrees(103_852_000), 1e-9)
}
