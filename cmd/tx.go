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

var txCmd = &cobra.Command{
	Use:   "tx <id>",
	Short: "Show a transaction receipt",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd.Context(), false)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), config.RequestTimeout)
		defer cancel()

		r, err := ui.Spin("Fetching receipt…", func() (*chain.Receipt, error) {
			return s.client.Receipt(ctx, args[0])
		})
		if err != nil {
			return err
		}
		if r == nil {
			fmt.Println(ui.Warn("No receipt yet: the transaction is pending or unknown."))
			return nil
		}
		fmt.Println(ui.KeyValueBlock("Transaction Receipt", receiptPairs(s.network, args[0], r)))
		return nil
	},
}

func receiptPairs(n *chain.Network, id string, r *chain.Receipt) [][2]string {
	status := ui.Status("success")
	if r.Reverted {
		status = ui.Status("reverted")
	}
	pairs := [][2]string{
		{"ID", ui.Addr(id)},
		{"Status", status},
		{"Origin", ui.Addr(r.TxOrigin.Hex())},
		{"Gas Payer", ui.Addr(r.GasPayer.Hex())},
		{"Gas Used", fmt.Sprintf("%d", r.GasUsed)},
		{"Paid", formatTokens(r.Paid) + " VTHO"},
		{"Block", fmt.Sprintf("%d", r.BlockNumber)},
		{"Time", time.Unix(int64(r.BlockTimestamp), 0).UTC().Format(time.RFC3339)},
	}
	if addr, ok := r.ContractAddress(); ok {
		pairs = append(pairs, [2]string{"Created", ui.Addr(addr.Hex())})
	}
	if url := n.TxURL(id); url != "" {
		pairs = append(pairs, [2]string{"Explorer", url})
	}
	return pairs
}
