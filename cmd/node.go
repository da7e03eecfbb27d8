package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/proofofimpact/poi/internal/chain"
	"github.com/proofofimpact/poi/internal/config"
	"github.com/proofofimpact/poi/internal/node"
	"github.com/proofofimpact/poi/internal/ui"
)

var nodeCmd = &cobra.Command{
	Use:   "node",
	Short: "Manage Thor node endpoints",
}

func networkArg(args []string) (*chain.Network, error) {
	if len(args) == 0 {
		return currentNetwork()
	}
	n, err := chain.NewRegistry().GetByName(args[0])
	if err != nil {
		return nil, fmt.Errorf("unknown network %q", args[0])
	}
	return n, nil
}

var nodeAddCmd = &cobra.Command{
	Use:   "add <network> <url>",
	Short: "Add a custom node URL for a network",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := networkArg(args)
		if err != nil {
			return err
		}
		if err := cfg.Update(func(c *config.Config) error { return c.AddNode(n.Name, args[1]) }); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Added node for %s: %s", ui.NetworkName(n.Name), args[1])))
		return nil
	},
}

var nodeRemoveCmd = &cobra.Command{
	Use:   "remove <network> <url>",
	Short: "Remove a custom node URL",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := networkArg(args)
		if err != nil {
			return err
		}
		if err := cfg.Update(func(c *config.Config) error { return c.RemoveNode(n.Name, args[1]) }); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Removed node for %s: %s", n.Name, args[1])))
		return nil
	},
}

var nodeListCmd = &cobra.Command{
	Use:   "list [network]",
	Short: "List all nodes for a network",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := networkArg(args)
		if err != nil {
			return err
		}

		fmt.Printf("%s\n", ui.StyleTitle.Render(fmt.Sprintf("Nodes for %s", n.DisplayName)))
		fmt.Println(ui.StyleHeader.Render("Built-in:"))
		for _, u := range n.Nodes {
			fmt.Printf("  %s\n", u)
		}
		if custom := cfg.GetNodes(n.Name); len(custom) > 0 {
			fmt.Println(ui.StyleHeader.Render("Custom:"))
			for _, u := range custom {
				fmt.Printf("  %s\n", u)
			}
		}
		if cfg.NodeURL != "" {
			fmt.Println(ui.Hint("node_url is set; selection is skipped and " + cfg.NodeURL + " is always used"))
		}
		return nil
	},
}

var nodeBenchmarkCmd = &cobra.Command{
	Use:   "benchmark [network]",
	Short: "Benchmark every node of a network",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := networkArg(args)
		if err != nil {
			return err
		}
		urls := append(append([]string{}, cfg.GetNodes(n.Name)...), n.Nodes...)

		fmt.Printf("%s\n\n", ui.StyleTitle.Render(fmt.Sprintf("Benchmarking %s nodes...", n.DisplayName)))

		ctx, cancel := context.WithTimeout(cmd.Context(), config.NodeSelectTimeout)
		defer cancel()
		results := node.Benchmark(ctx, urls)

		t := ui.NewTable([]ui.Column{
			{Title: "Node URL", Width: 40},
			{Title: "Latency", Width: 12, Right: true},
			{Title: "Block #", Width: 12, Right: true},
			{Title: "Status", Width: 10},
		})
		for _, r := range results {
			status := ui.Success("healthy")
			latency := fmt.Sprintf("%dms", r.Latency.Milliseconds())
			block := fmt.Sprintf("%d", r.BlockNumber)
			if r.Err != nil {
				status = ui.Err("down")
				latency = "-"
				block = "-"
				logger.Debug("node down", "url", r.URL, "err", r.Err)
			}
			t.AddRow(ui.Row{r.URL, latency, block, status})
		}
		fmt.Println(t.Render())

		if best, err := node.NewPicker(node.Algorithm(cfg.NodeAlgorithm)).Pick(node.ResultsToEndpoints(results)); err == nil {
			fmt.Println(ui.Hint(fmt.Sprintf("%s would pick %s", cfg.NodeAlgorithm, best.URL)))
		}
		return nil
	},
}

var nodeAlgorithmCmd = &cobra.Command{
	Use:   "algorithm <fastest|round-robin|failover>",
	Short: "Set the node selection algorithm",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Update(func(c *config.Config) error { return applySetting(c, "node_algorithm", args[0]) }); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Node algorithm set to %q", args[0])))
		return nil
	},
}

func init() {
	nodeCmd.AddCommand(nodeAddCmd, nodeRemoveCmd, nodeListCmd, nodeBenchmarkCmd, nodeAlgorithmCmd)
}
