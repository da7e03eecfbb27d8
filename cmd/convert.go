package cmd

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/spf13/cobra"

	"github.com/proofofimpact/poi/internal/chain"
	"github.com/proofofimpact/poi/internal/ui"
)

var convertCmd = &cobra.Command{
	Use:   "convert <amount> [unit]",
	Short: "Convert between token units, wei and hex",
	Long: `Convert between whole-token amounts (VET, VTHO, B3TR all use 18 decimals),
wei and hex/decimal.

Units: token (aliases vet, vtho, b3tr), wei, hex, decimal
If no unit is given and the value starts with 0x, it's treated as hex.

Examples:
  poi convert 100 b3tr          # → wei + hex
  poi convert 1500000000000000000 wei
  poi convert 0xff              # → 255
  poi convert 255 hex           # → 0xff`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		unit := ""
		if len(args) > 1 {
			unit = args[1]
		}
		title, pairs, err := convertUnits(args[0], unit)
		if err != nil {
			return err
		}
		fmt.Println(ui.KeyValueBlock(title, pairs))
		return nil
	},
}

// convertUnits returns the rows shown for amount in unit.
func convertUnits(amount, unit string) (string, [][2]string, error) {
	unit = strings.ToLower(unit)
	if unit == "" {
		unit = "wei"
		if strings.HasPrefix(strings.ToLower(amount), "0x") {
			unit = "hex_input"
		}
	}

	switch unit {
	case "token", "vet", "vtho", "b3tr":
		wei, err := chain.ParseUnits(amount, chain.TokenDecimals)
		if err != nil {
			return "", nil, err
		}
		return "Unit Conversion", [][2]string{
			{"Input", ui.Val(amount + " " + strings.ToUpper(unit))},
			{"Wei", ui.Val(wei.String())},
			{"Hex", ui.Val("0x" + wei.Text(16))},
		}, nil
	case "wei":
		wei, ok := new(big.Int).SetString(amount, 10)
		if !ok || wei.Sign() < 0 {
			return "", nil, fmt.Errorf("invalid wei amount: %s", amount)
		}
		return "Unit Conversion", [][2]string{
			{"Input", ui.Val(amount + " wei")},
			{"Tokens", ui.Val(chain.FormatUnits(wei, chain.TokenDecimals))},
			{"Hex", ui.Val("0x" + wei.Text(16))},
		}, nil
	case "hex", "decimal", "dec":
		n, ok := new(big.Int).SetString(amount, 10)
		if !ok {
			return "", nil, fmt.Errorf("invalid decimal number: %s", amount)
		}
		return "Decimal → Hex", [][2]string{
			{"Decimal", ui.Val(amount)},
			{"Hex", ui.Val("0x" + n.Text(16))},
		}, nil
	case "hex_input":
		n, ok := new(big.Int).SetString(strings.TrimPrefix(strings.ToLower(amount), "0x"), 16)
		if !ok {
			return "", nil, fmt.Errorf("invalid hex number: %s", amount)
		}
		return "Hex → Decimal", [][2]string{
			{"Hex", ui.Val(amount)},
			{"Decimal", ui.Val(n.String())},
			{"Tokens", ui.Val(chain.FormatUnits(n, chain.TokenDecimals))},
		}, nil
	}
	return "", nil, fmt.Errorf("unknown unit %q: use token, vet, vtho, b3tr, wei, hex or decimal", unit)
}
