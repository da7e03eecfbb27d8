package cmd

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/proofofimpact/poi/internal/chain"
	"github.com/proofofimpact/poi/internal/config"
	"github.com/proofofimpact/poi/internal/logging"
	"github.com/proofofimpact/poi/internal/node"
	"github.com/proofofimpact/poi/internal/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"show"},
	Short:   "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		shown := *cfg
		if shown.PinataJWT != "" {
			shown.PinataJWT = redact(shown.PinataJWT)
		}
		data, err := json.MarshalIndent(&shown, "", "  ")
		if err != nil {
			return err
		}
		fmt.Printf("%s\n\n", ui.StyleTitle.Render("Current Configuration"))
		fmt.Println(string(data))
		fmt.Println(ui.Meta("Config directory: " + cfg.Dir()))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value and save it.

Keys: ` + strings.Join(settingKeys(), ", "),
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Update(func(c *config.Config) error { return applySetting(c, args[0], args[1]) }); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("%s updated", args[0])))
		return nil
	},
}

var configSetContractCmd = &cobra.Command{
	Use:   "set-contract <name> <address>",
	Short: "Set a platform contract address",
	Long: `Set the address of one of the six platform contracts.

Names: token, reputation, opportunity, staking, fee_delegation, governance
(or the contract names MockB3TR, ReputationNFT, ...).`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, ok := config.Canonical(args[0])
		if !ok {
			return fmt.Errorf("unknown contract %q", args[0])
		}
		if !common.IsHexAddress(args[1]) {
			return fmt.Errorf("invalid address %q", args[1])
		}
		addr := common.HexToAddress(args[1]).Hex()
		if err := cfg.Update(func(c *config.Config) error { return c.Contracts.Set(name, addr) }); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("%s set to %s", name, ui.Addr(cfg.Contracts.Get(name)))))
		return nil
	},
}

// settings maps config keys to setters that validate before assigning.
var settings = map[string]func(c *config.Config, v string) error{
	"network": func(c *config.Config, v string) error {
		n, err := chain.NewRegistry().GetByName(v)
		if err != nil {
			return fmt.Errorf("unknown network %q", v)
		}
		c.Network = n.Name
		return nil
	},
	"node_url": func(c *config.Config, v string) error {
		c.NodeURL = v
		return nil
	},
	"node_algorithm": func(c *config.Config, v string) error {
		switch node.Algorithm(v) {
		case node.AlgorithmFastest, node.AlgorithmRoundRobin, node.AlgorithmFailover:
			c.NodeAlgorithm = v
			return nil
		}
		return fmt.Errorf("unknown node algorithm %q (fastest, round-robin, failover)", v)
	},
	"pinata_jwt": func(c *config.Config, v string) error {
		c.PinataJWT = v
		return nil
	},
	"pinata_api_url": func(c *config.Config, v string) error {
		c.PinataAPIURL = v
		return nil
	},
	"ipfs_gateway": func(c *config.Config, v string) error {
		c.IPFSGateway = v
		return nil
	},
	"gas_limit": func(c *config.Config, v string) error {
		gas, err := strconv.ParseUint(v, 10, 64)
		if err != nil || gas == 0 {
			return fmt.Errorf("gas_limit must be a positive integer")
		}
		c.GasLimit = gas
		return nil
	},
	"deployment_file": func(c *config.Config, v string) error {
		c.DeploymentFile = v
		return nil
	},
	"artifacts_dir": func(c *config.Config, v string) error {
		c.ArtifactsDir = v
		return nil
	},
	"log_level": func(c *config.Config, v string) error {
		if logging.ParseLevel(v).String() != strings.ToLower(v) {
			return fmt.Errorf("unknown log level %q (debug, info, warn, error)", v)
		}
		c.LogLevel = strings.ToLower(v)
		return nil
	},
}

func applySetting(c *config.Config, key, value string) error {
	set, ok := settings[strings.ReplaceAll(key, "-", "_")]
	if !ok {
		return fmt.Errorf("unknown config key %q\n  keys: %s", key, strings.Join(settingKeys(), ", "))
	}
	return set(c, value)
}

func settingKeys() []string {
	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// redact keeps the first and last four characters of a secret.
func redact(s string) string {
	if len(s) <= 12 {
		return "****"
	}
	return s[:4] + "…" + s[len(s)-4:]
}

func init() {
	configCmd.AddCommand(configListCmd, configSetCmd, configSetContractCmd)
}
