package impact

import (
	"bytes"
	"context"
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum/common"
)

// DefaultLeaderboardSize is how many volunteers Leaderboard ranks.
const DefaultLeaderboardSize = 10

// fallbackScorePerProof stands in for a volunteer's impact score when the
// reputation contract cannot be read.
const fallbackScorePerProof = 100

// LeaderEntry is one ranked volunteer.
type LeaderEntry struct {
	Rank        int            `json:"rank"`
	Address     common.Address `json:"address"`
	ImpactScore uint64         `json:"impactScore"`
	Completed   int            `json:"opportunities"`
	Earned      *big.Int       `json:"earned"`
}

// Leaderboard ranks volunteers by impact score. Each verified submission
// counts one completed opportunity and adds that opportunity's reward to
// the volunteer's earnings. At most limit entries are returned.
func Leaderboard(ctx context.Context, opps *Opportunities, rep *Reputation, limit int) ([]LeaderEntry, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardSize
	}
	stats, err := tally(ctx, opps)
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderEntry, 0, len(stats))
	for addr, e := range stats {
		if err := scoreEntry(ctx, rep, addr, e); err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.ImpactScore != b.ImpactScore {
			return a.ImpactScore > b.ImpactScore
		}
		if a.Completed != b.Completed {
			return a.Completed > b.Completed
		}
		return bytes.Compare(a.Address[:], b.Address[:]) < 0
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

// tally counts verified submissions and earned rewards per volunteer.
func tally(ctx context.Context, opps *Opportunities) (map[common.Address]*LeaderEntry, error) {
	all, err := opps.All(ctx)
	if err != nil {
		return nil, err
	}
	stats := map[common.Address]*LeaderEntry{}
	for _, opp := range all {
		subs, err := opps.Submissions(ctx, opp.ID)
		if err != nil {
			return nil, err
		}
		for _, s := range subs {
			if s.Status != SubmissionVerified {
				continue
			}
			e, ok := stats[s.Volunteer]
			if !ok {
				e = &LeaderEntry{Address: s.Volunteer, Earned: new(big.Int)}
				stats[s.Volunteer] = e
			}
			e.Completed++
			e.Earned.Add(e.Earned, opp.RewardAmount)
		}
	}
	return stats, nil
}

// scoreEntry reads e's impact score, falling back to a per-proof estimate
// when the reputation contract cannot be read.
func scoreEntry(ctx context.Context, rep *Reputation, addr common.Address, e *LeaderEntry) error {
	score, err := rep.ImpactScore(ctx, addr)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		e.ImpactScore = uint64(e.Completed * fallbackScorePerProof)
		return nil
	}
	e.ImpactScore = score.Uint64()
	return nil
}

// VolunteerProfile is one volunteer's record and badges.
type VolunteerProfile struct {
	LeaderEntry
	Badges []Badge `json:"badges"`
}

// Profile builds volunteer's record. Rank is left zero.
func Profile(ctx context.Context, opps *Opportunities, rep *Reputation, volunteer common.Address) (*VolunteerProfile, error) {
	stats, err := tally(ctx, opps)
	if err != nil {
		return nil, err
	}
	e, ok := stats[volunteer]
	if !ok {
		e = &LeaderEntry{Address: volunteer, Earned: new(big.Int)}
	}
	if err := scoreEntry(ctx, rep, volunteer, e); err != nil {
		return nil, err
	}
	return &VolunteerProfile{
		LeaderEntry: *e,
		Badges:      Achievements(e.ImpactScore, uint64(e.Completed)),
	}, nil
}

// Stats summarizes the platform.
type Stats struct {
	Opportunities      int      `json:"opportunities"`
	Volunteers         uint64   `json:"volunteers"`
	RewardsDistributed *big.Int `json:"rewardsDistributed"`
	StakingTVL         *big.Int `json:"stakingTVL"`
}

// PlatformStats totals opportunities, enrolled volunteers, rewards paid
// (reward × current volunteers per opportunity) and the staking TVL.
func PlatformStats(ctx context.Context, opps *Opportunities, staking *Staking) (*Stats, error) {
	all, err := opps.All(ctx)
	if err != nil {
		return nil, err
	}
	st := &Stats{Opportunities: len(all), RewardsDistributed: new(big.Int)}
	for _, opp := range all {
		st.Volunteers += opp.CurrentVolunteers
		if opp.CurrentVolunteers > 0 {
			paid := new(big.Int).Mul(opp.RewardAmount, new(big.Int).SetUint64(opp.CurrentVolunteers))
			st.RewardsDistributed.Add(st.RewardsDistributed, paid)
		}
	}
	if st.StakingTVL, err = staking.TotalStaked(ctx); err != nil {
		return nil, err
	}
	return st, nil
}

// Badge is an achievement a volunteer unlocks.
type Badge struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Requirement uint64 `json:"requirement"`
	Progress    uint64 `json:"progress"`
	Unlocked    bool   `json:"unlocked"`
}

type badgeRule struct {
	name, description string
	requirement       uint64
	byScore           bool
}

var badgeRules = []badgeRule{
	{"First Step", "Complete your first opportunity", 1, false},
	{"Rising Star", "Earn 100+ impact score", 100, true},
	{"Dedicated", "Complete 5 opportunities", 5, false},
	{"High Achiever", "Earn 500+ impact score", 500, true},
	{"Veteran", "Complete 10 opportunities", 10, false},
	{"Legend", "Earn 1000+ impact score", 1000, true},
}

// Achievements evaluates every badge for a volunteer.
func Achievements(impactScore, completed uint64) []Badge {
	out := make([]Badge, len(badgeRules))
	for i, r := range badgeRules {
		progress := completed
		if r.byScore {
			progress = impactScore
		}
		out[i] = Badge{
			Name:        r.name,
			Description: r.description,
			Requirement: r.requirement,
			Progress:    progress,
			Unlocked:    progress >= r.requirement,
		}
	}
	return out
}
