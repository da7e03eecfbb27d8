package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/proofofimpact/poi/internal/chain"
	"github.com/proofofimpact/poi/internal/config"
	"github.com/proofofimpact/poi/internal/ui"
)

var blockCmd = &cobra.Command{
	Use:   "block [number|id]",
	Short: "Show a block header (default: best block)",
	Long: `Fetch a block header from the selected Thor node.

Examples:
  poi block
  poi block 19000000
  poi block --network vechain-mainnet`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd.Context(), false)
		if err != nil {
			return err
		}
		revision := "best"
		if len(args) == 1 {
			revision = args[0]
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), config.RequestTimeout)
		defer cancel()
		b, err := ui.Spin(fmt.Sprintf("Fetching block %s on %s…", revision, ui.NetworkName(s.network.Name)), func() (*chain.Block, error) {
			return s.client.Block(ctx, revision)
		})
		if err != nil {
			return err
		}

		ts := time.Unix(int64(b.Timestamp), 0)
		fmt.Println(ui.KeyValueBlock(fmt.Sprintf("Block #%d", b.Number), [][2]string{
			{"Network", ui.NetworkName(s.network.DisplayName)},
			{"ID", ui.Addr(b.ID.Hex())},
			{"Block Ref", fmt.Sprintf("0x%016x", b.Ref())},
			{"Time", ts.UTC().Format(time.RFC3339)},
			{"Age", time.Since(ts).Truncate(time.Second).String()},
			{"Node", ui.Meta(s.client.URL())},
		}))
		return nil
	},
}
