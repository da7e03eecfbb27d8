package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/proofofimpact/poi/internal/chain"
	"github.com/proofofimpact/poi/internal/config"
	"github.com/proofofimpact/poi/internal/ui"
)

var networkCmd = &cobra.Command{
	Use:   "network",
	Short: "Manage networks",
}

var networkListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the supported VeChainThor networks",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := chain.NewRegistry()
		t := ui.NewTable([]ui.Column{
			{Title: "Name", Width: 18},
			{Title: "Display", Width: 22},
			{Title: "Nodes", Width: 6, Right: true},
			{Title: "Explorer", Width: 36},
			{Title: "Active", Width: 6},
		})

		for _, n := range reg.All() {
			active := ""
			if n.Name == cfg.Network {
				active = ui.StyleSuccess.Render("✓")
			}
			explorer := n.Explorer
			if explorer == "" {
				explorer = "-"
			}
			t.AddRow(ui.Row{
				ui.NetworkName(n.Name),
				n.DisplayName,
				fmt.Sprintf("%d", len(n.Nodes)+len(cfg.GetNodes(n.Name))),
				ui.Meta(explorer),
				active,
			})
		}

		fmt.Println(t.Render())
		return nil
	},
}

var networkUseCmd = &cobra.Command{
	Use:   "use <network>",
	Short: "Set the default network",
	Long: `Set the default network and persist it to config.

Examples:
  poi network use vechain-testnet
  poi network use vechain-solo    # local thor solo node on :8669`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		err := cfg.Update(func(c *config.Config) error { return applySetting(c, "network", args[0]) })
		if err != nil {
			return fmt.Errorf("%w: run `poi network list` to see all networks", err)
		}
		fmt.Println(ui.Success(fmt.Sprintf("Default network set to %s", ui.NetworkName(cfg.Network))))
		return nil
	},
}

func init() {
	networkCmd.AddCommand(networkListCmd, networkUseCmd)
}
