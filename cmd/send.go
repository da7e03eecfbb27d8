package cmd

import (
	"fmt"
	"math/big"

	"github.com/spf13/cobra"

	"github.com/proofofimpact/poi/internal/ui"
)

var (
	sendValue string
	sendYes   bool
)

var sendCmd = &cobra.Command{
	Use:   "send <contract> [function] [args...]",
	Short: "Send a state-changing contract call as a transaction",
	Long: `Sign a single-clause transaction calling a function, submit it to the
selected Thor node and wait for the receipt.

Without a function name an interactive picker lists the write functions.

Examples:
  poi send token approve 0xStakingPool 1000000000000000000000
  poi send delegation depositForSponsorship --value 10
  poi send governance executeProposal 3 --yes`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd.Context(), true)
		if err != nil {
			return err
		}
		c, err := resolveContract(args[0], s.provider)
		if err != nil {
			return err
		}
		m, callArgs, err := pickCall(c, args[1:], false)
		if err != nil || m == nil {
			return err
		}

		var value *big.Int
		if sendValue != "" {
			if value, err = parseTokens(sendValue); err != nil {
				return fmt.Errorf("invalid --value: %w", err)
			}
		}

		pairs := [][2]string{
			{"Contract", ui.Addr(c.Address().Hex())},
			{"Function", ui.Val(m.Sig)},
			{"From", ui.Addr(s.account().Hex())},
			{"Network", ui.NetworkName(s.network.Name)},
		}
		if value != nil {
			pairs = append(pairs, [2]string{"Value", ui.Val(formatTokens(value) + " VET")})
		}
		fmt.Println(ui.KeyValueBlock("Transaction", pairs))
		if !sendYes && !ui.Confirm("Send this transaction?") {
			fmt.Println(ui.Meta("Cancelled."))
			return nil
		}

		tx, err := c.SendValue(cmd.Context(), value, m.Name, callArgs...)
		if err != nil {
			return err
		}
		_, err = s.waitFor(cmd.Context(), tx, m.Name)
		return err
	},
}

func init() {
	sendCmd.Flags().StringVar(&sendValue, "value", "", "VET to attach, for payable functions")
	sendCmd.Flags().BoolVarP(&sendYes, "yes", "y", false, "skip the confirmation prompt")
}
