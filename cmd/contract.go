package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/proofofimpact/poi/internal/config"
	"github.com/proofofimpact/poi/internal/contract"
	"github.com/proofofimpact/poi/internal/impact"
	"github.com/proofofimpact/poi/internal/ui"
)

var (
	contractABIFile string
	contractBuiltin string
)

// ── contracts ────────────────────────────────────────────────────────────────

var contractsCmd = &cobra.Command{
	Use:   "contracts",
	Short: "Show the platform contract addresses",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("%s\n\n", ui.StyleTitle.Render("Proof of Impact contracts on "+cfg.Network))

		t := ui.NewTable([]ui.Column{
			{Title: "Contract", Width: 22},
			{Title: "Address", Width: 44},
			{Title: "Status", Width: 10},
		})
		for _, name := range config.Names {
			addr := cfg.Contracts.Get(name)
			t.AddRow(ui.Row{ui.Val(name), ui.Addr(orDash(addr)), ui.Status(addressStatus(addr))})
		}
		fmt.Println(t.Render())

		if missing := cfg.Contracts.Missing(); len(missing) > 0 {
			fmt.Println(ui.Hint("Set addresses with `poi config set-contract <name> <address>` or run `poi deploy`"))
		}
		return nil
	},
}

func addressStatus(addr string) string {
	switch {
	case addr == "":
		return "missing"
	case !common.IsHexAddress(addr):
		return "invalid"
	}
	return "bound"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// ── contract ─────────────────────────────────────────────────────────────────

var contractCmd = &cobra.Command{
	Use:   "contract",
	Short: "Manage extra contracts callable by name",
}

var contractAddCmd = &cobra.Command{
	Use:   "add <name> <address>",
	Short: "Register a contract",
	Long: `Register a contract on the current network so call and send can use it by name.

ABI source (pick one):
  --abi <file>        Raw ABI JSON array or Hardhat/Foundry artifact
  --builtin <id>      Use a platform ABI (see: poi contract builtins)

Examples:
  poi contract add partnerToken 0xA0b8... --builtin MockB3TR
  poi contract add badge 0x1234... --abi ./artifacts/contracts/Badge.sol/Badge.json`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, address := args[0], args[1]
		if !common.IsHexAddress(address) {
			return fmt.Errorf("invalid address %q", address)
		}
		if _, ok := config.Canonical(name); ok {
			return fmt.Errorf("%q names a platform contract; use `poi config set-contract` instead", name)
		}

		raw, parsed, err := contractABIFromFlags()
		if err != nil {
			return err
		}

		reg := newContractRegistry()
		if err := reg.Load(); err != nil {
			return err
		}
		reg.Add(&contract.Entry{
			Name:    name,
			Network: cfg.Network,
			Address: common.HexToAddress(address).Hex(),
			ABI:     raw,
		})
		if err := reg.Save(); err != nil {
			return err
		}

		fmt.Println(ui.Success(fmt.Sprintf("Contract %q registered on %s at %s (%d functions)",
			name, cfg.Network, ui.Addr(address), len(parsed.Methods))))
		fmt.Println(ui.Hint("Explore it with: poi contract show " + name))
		return nil
	},
}

func contractABIFromFlags() (json.RawMessage, abi.ABI, error) {
	switch {
	case contractABIFile != "" && contractBuiltin != "":
		return nil, abi.ABI{}, errors.New("use either --abi or --builtin, not both")
	case contractABIFile != "":
		return contract.ReadABIFile(contractABIFile)
	case contractBuiltin != "":
		id := contractBuiltin
		if canonical, ok := config.Canonical(id); ok {
			id = canonical
		}
		b, ok := contract.GetBuiltin(id)
		if !ok {
			return nil, abi.ABI{}, fmt.Errorf("unknown built-in %q: run `poi contract builtins` to see all", contractBuiltin)
		}
		return b.Raw, b.ABI, nil
	}
	return nil, abi.ABI{}, errors.New("an ABI is required: pass --abi <file> or --builtin <id>")
}

var contractBuiltinsCmd = &cobra.Command{
	Use:   "builtins",
	Short: "List the platform ABIs bundled into poi",
	RunE: func(cmd *cobra.Command, args []string) error {
		t := ui.NewTable([]ui.Column{
			{Title: "ID", Width: 22},
			{Title: "Functions", Width: 10, Right: true},
			{Title: "Description", Width: 54},
		})
		for _, b := range contract.AllBuiltins() {
			t.AddRow(ui.Row{ui.Val(b.ID), fmt.Sprintf("%d", len(b.ABI.Methods)), ui.Meta(b.Description)})
		}
		fmt.Println(t.Render())
		fmt.Println(ui.Hint("Use: poi contract add <name> <addr> --builtin <id>"))
		return nil
	},
}

var contractListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered contracts",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := newContractRegistry()
		if err := reg.Load(); err != nil {
			return err
		}

		entries := reg.All()
		if len(entries) == 0 {
			fmt.Println(ui.Info("No extra contracts registered."))
			fmt.Println(ui.Hint("Platform contracts are always available: poi contracts"))
			return nil
		}

		t := ui.NewTable([]ui.Column{
			{Title: "Name", Width: 16},
			{Title: "Network", Width: 16},
			{Title: "Address", Width: 44},
			{Title: "Functions", Width: 10, Right: true},
		})
		for _, e := range entries {
			funcs := "?"
			if parsed, err := e.Parsed(); err == nil {
				funcs = fmt.Sprintf("%d", len(parsed.Methods))
			}
			t.AddRow(ui.Row{ui.Val(e.Name), ui.NetworkName(e.Network), ui.Addr(e.Address), funcs})
		}
		fmt.Println(t.Render())
		fmt.Println(ui.Meta(fmt.Sprintf("%d contract(s) registered", len(entries))))
		return nil
	},
}

var contractRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a registered contract",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := newContractRegistry()
		if err := reg.Load(); err != nil {
			return err
		}
		if err := reg.Remove(args[0], cfg.Network); err != nil {
			return err
		}
		if err := reg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Contract %q removed from %s", args[0], cfg.Network)))
		return nil
	},
}

var contractShowCmd = &cobra.Command{
	Use:   "show <contract>",
	Short: "List a contract's read and write functions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := resolveContract(args[0], nil)
		if err != nil {
			return err
		}

		fmt.Printf("%s\n\n", ui.StyleTitle.Render(fmt.Sprintf("%s on %s", args[0], cfg.Network)))
		fmt.Printf("  %s %s\n\n", ui.Meta("Address:"), ui.Addr(c.Address().Hex()))

		var reads, writes []abi.Method
		for _, m := range c.Functions() {
			if contract.IsRead(m) {
				reads = append(reads, m)
			} else {
				writes = append(writes, m)
			}
		}

		fmt.Println(ui.StyleHeader.Render("Read Functions:"))
		for _, m := range reads {
			fmt.Printf("  %s  %s(%s)  →  %s\n",
				ui.Meta(selector(m)), ui.Val(m.Name), ui.Meta(formatParams(m.Inputs)), ui.Meta(formatParams(m.Outputs)))
		}
		fmt.Println()
		fmt.Println(ui.StyleHeader.Render("Write Functions:"))
		for _, m := range writes {
			name := ui.Warn(m.Name)
			if m.Payable {
				name += ui.Meta(" (payable)")
			}
			fmt.Printf("  %s  %s(%s)\n", ui.Meta(selector(m)), name, ui.Meta(formatParams(m.Inputs)))
		}
		fmt.Println()
		fmt.Println(ui.Hint(fmt.Sprintf("Use `poi call %s <function> [args...]` or `poi send %s <function> [args...]`", args[0], args[0])))
		return nil
	},
}

func init() {
	contractAddCmd.Flags().StringVar(&contractABIFile, "abi", "", "path to ABI JSON file or Hardhat/Foundry artifact")
	contractAddCmd.Flags().StringVar(&contractBuiltin, "builtin", "", "use a bundled platform ABI (see: poi contract builtins)")
	contractCmd.AddCommand(contractAddCmd, contractBuiltinsCmd, contractListCmd, contractRemoveCmd, contractShowCmd)
}

// ── helpers ──────────────────────────────────────────────────────────────────

func newContractRegistry() *contract.Registry {
	return contract.NewRegistry(filepath.Join(cfg.Dir(), "contracts.json"))
}

// resolveContract binds name: a platform contract first, then a registered
// contract on the current network. p may be nil for offline inspection.
func resolveContract(name string, p *contract.Provider) (*contract.Contract, error) {
	if _, ok := config.Canonical(name); ok {
		return impact.Generic(name, cfg.Contracts, p)
	}
	reg := newContractRegistry()
	if err := reg.Load(); err != nil {
		return nil, err
	}
	e, err := reg.Get(name, cfg.Network)
	if errors.Is(err, contract.ErrContractNotFound) {
		return nil, fmt.Errorf("unknown contract %q on %s: run `poi contracts` or `poi contract list`", name, cfg.Network)
	}
	if err != nil {
		return nil, err
	}
	return e.Bind(p)
}

func selector(m abi.Method) string {
	return fmt.Sprintf("0x%x", m.ID)
}

func formatParams(args abi.Arguments) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.Type.String()
		if a.Name != "" {
			parts[i] += " " + a.Name
		}
	}
	return strings.Join(parts, ", ")
}
