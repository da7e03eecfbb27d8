// check-deployment: reads a deployment summary and, against every built-in
// node of its network in parallel, checks that the platform contracts
// answer. Prints one row per node.
//
// Run from the module root:
//
//	go run ./scripts/check-deployment [path/to/deployment.json]
package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/proofofimpact/poi/internal/chain"
	"github.com/proofofimpact/poi/internal/config"
	"github.com/proofofimpact/poi/internal/contract"
	"github.com/proofofimpact/poi/internal/impact"
)

const nodeTimeout = 12 * time.Second

// ── types ─────────────────────────────────────────────────────────────────────

type result struct {
	node      string
	latency   time.Duration
	block     uint64
	symbol    string
	opps      string
	proposals string
	tvl       string
	err       string
}

// ── main ──────────────────────────────────────────────────────────────────────

func main() {
	path := config.DefaultDeploymentFile
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	d, err := config.LoadDeployment(path)
	if err != nil {
		fail(err)
	}
	if d == nil {
		fail(fmt.Errorf("no deployment summary at %s", path))
	}
	n, err := chain.NewRegistry().GetByName(d.Network)
	if err != nil {
		fail(err)
	}
	addrs := d.Contracts.AddressSet()
	if missing := addrs.Missing(); len(missing) > 0 {
		fail(fmt.Errorf("deployment is missing %s", strings.Join(missing, ", ")))
	}

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results []result
	)
	for _, url := range n.Nodes {
		wg.Add(1)
		go func(url string) {
			defer wg.Done()
			r := check(url, addrs)
			mu.Lock()
			results = append(results, r)
			mu.Unlock()
		}(url)
	}
	wg.Wait()

	fmt.Printf("%s deployed %s (oracle %s)\n\n", d.Network, d.DeployedAt, shortAddr(d.OracleNode))
	printTable(results)
}

func check(url string, addrs config.AddressSet) result {
	ctx, cancel := context.WithTimeout(context.Background(), nodeTimeout)
	defer cancel()

	r := result{node: url, symbol: "—", opps: "—", proposals: "—", tvl: "—"}
	client := chain.NewThorClient(url)

	// Unreachable nodes are reported without querying contracts.
	latency, block, err := client.Ping(ctx)
	if err != nil {
		r.err = "unreachable"
		return r
	}
	r.latency, r.block = latency, block

	c, err := impact.Bind(addrs, contract.NewProvider(client, nil, common.Address{}))
	if err != nil {
		r.err = shortErr(err)
		return r
	}
	if r.symbol, err = c.Token.Symbol(ctx); err != nil {
		r.symbol, r.err = "—", shortErr(err)
		return r
	}
	opps, err := c.Opportunity.All(ctx)
	if err != nil {
		r.err = shortErr(err)
		return r
	}
	r.opps = fmt.Sprintf("%d", len(opps))
	count, err := c.Governance.ProposalCount(ctx)
	if err != nil {
		r.err = shortErr(err)
		return r
	}
	r.proposals = fmt.Sprintf("%d", count)
	tvl, err := c.Staking.TotalStaked(ctx)
	if err != nil {
		r.err = shortErr(err)
		return r
	}
	r.tvl = chain.FormatUnits(tvl, chain.TokenDecimals)
	return r
}

// ── output ────────────────────────────────────────────────────────────────────

func printTable(results []result) {
	sort.Slice(results, func(i, j int) bool { return results[i].node < results[j].node })

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NODE\tLATENCY\tBLOCK\tTOKEN\tOPPS\tPROPOSALS\tSTAKED\tNOTE")
	for _, r := range results {
		latency := "—"
		if r.latency > 0 {
			latency = r.latency.Round(time.Millisecond).String()
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s\t%s\t%s\n",
			r.node, latency, r.block, r.symbol, r.opps, r.proposals, r.tvl, r.err)
	}
	w.Flush()
}

// ── helpers ───────────────────────────────────────────────────────────────────

func fail(err error) {
	fmt.Fprintln(os.Stderr, "check-deployment:", err)
	os.Exit(1)
}

func shortAddr(addr string) string {
	if len(addr) < 10 {
		return addr
	}
	return addr[:6] + "…" + addr[len(addr)-4:]
}

func shortErr(err error) string {
	s := err.Error()
	if len(s) > 40 {
		return s[:40] + "…"
	}
	return s
}
