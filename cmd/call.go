package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/spf13/cobra"

	"github.com/proofofimpact/poi/internal/config"
	"github.com/proofofimpact/poi/internal/contract"
	"github.com/proofofimpact/poi/internal/ui"
)

var callJSON bool

var callCmd = &cobra.Command{
	Use:   "call <contract> [function] [args...]",
	Short: "Call a read-only contract function",
	Long: `Call a view/pure function on a platform or registered contract.

Without a function name an interactive picker lists the read functions.
Arguments missing for a picked function are prompted for. Arrays are
written as [a,b,c]; tuple results print as JSON objects.

Examples:
  poi call opportunity getActiveOpportunities
  poi call token balanceOf 0xYourAddress
  poi call staking getStakeInfo 0xYourAddress --json
  poi call governance`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd.Context(), false)
		if err != nil {
			return err
		}
		c, err := resolveContract(args[0], s.provider)
		if err != nil {
			return err
		}
		m, callArgs, err := pickCall(c, args[1:], true)
		if err != nil || m == nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), config.RequestTimeout)
		defer cancel()
		res, err := ui.Spin(fmt.Sprintf("Calling %s…", m.Name), func() (any, error) {
			return c.Call(ctx, m.Name, callArgs...)
		})
		if err != nil {
			var reverted *contract.CallRevertedError
			if errors.As(err, &reverted) {
				return fmt.Errorf("%w\n  the call reverted: check the arguments and that the contract is deployed on %s", err, s.network.Name)
			}
			return err
		}

		out, err := renderResult(res, callJSON)
		if err != nil {
			return err
		}
		if callJSON {
			fmt.Println(out)
			return nil
		}
		fmt.Println(ui.KeyValueBlock("Contract Call", [][2]string{
			{"Contract", ui.Addr(c.Address().Hex())},
			{"Function", ui.Val(m.Sig)},
			{"Network", ui.NetworkName(s.network.Name)},
			{"Result", out},
		}))
		return nil
	},
}

// pickCall resolves the function and its arguments. read selects which side
// of the ABI the picker offers. A nil method means the user cancelled.
func pickCall(c *contract.Contract, args []string, read bool) (*abi.Method, []any, error) {
	var name string
	if len(args) > 0 {
		name, args = args[0], args[1:]
	} else {
		var items []ui.PickerItem
		for _, m := range c.Functions() {
			if contract.IsRead(m) != read {
				continue
			}
			items = append(items, ui.PickerItem{
				Label:    m.Name,
				SubLabel: "(" + formatParams(m.Inputs) + ")",
				Tag:      m.StateMutability,
				Value:    m.Name,
			})
		}
		if len(items) == 0 {
			return nil, nil, fmt.Errorf("contract has no matching functions")
		}
		picked, err := ui.PickItem("Select a function", items)
		if err != nil {
			return nil, nil, err
		}
		if picked == "" {
			fmt.Println(ui.Meta("Cancelled."))
			return nil, nil, nil
		}
		name = picked
	}

	m, err := c.Method(name)
	if err != nil {
		return nil, nil, err
	}
	if len(args) == 0 && len(m.Inputs) > 0 {
		args = promptArgs(m.Inputs)
	}
	values, err := contract.ParseArgs(m.Inputs, args)
	if err != nil {
		return nil, nil, err
	}
	return &m, values, nil
}

func promptArgs(inputs abi.Arguments) []string {
	out := make([]string, len(inputs))
	for i, in := range inputs {
		label := in.Name
		if label == "" {
			label = fmt.Sprintf("arg %d", i)
		}
		out[i] = ui.PromptInput(fmt.Sprintf("%s (%s)", label, in.Type.String()), "")
	}
	return out
}

// renderResult formats a normalized call result. Scalars print bare; lists
// and records print as indented JSON. asJSON forces JSON for everything.
func renderResult(v any, asJSON bool) (string, error) {
	jv := contract.JSONValue(v)
	if !asJSON {
		switch x := jv.(type) {
		case string:
			return x, nil
		case bool:
			return fmt.Sprintf("%t", x), nil
		}
	}
	data, err := json.MarshalIndent(jv, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func init() {
	callCmd.Flags().BoolVar(&callJSON, "json", false, "print the result as JSON")
}
