package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/proofofimpact/poi/internal/config"
	"github.com/proofofimpact/poi/internal/logging"
	"github.com/proofofimpact/poi/internal/ui"
)

// Version is the current release. Overridable via build ldflags:
//
//	go build -ldflags "-X github.com/proofofimpact/poi/cmd.Version=1.2.3" .
var Version = "0.1.0"

var (
	cfgDir      string
	cfg         *config.Config
	logger      *log.Logger
	verbose     bool
	networkFlag string
	nodeFlag    string
	walletFlag  string
)

// rootCmd is the top-level command.
var rootCmd = &cobra.Command{
	Use:   "poi",
	Short: "Proof of Impact client and deployer for VeChainThor",
	Long: `poi talks to the Proof of Impact contracts on VeChainThor.

  NGOs post volunteer opportunities with escrowed B3TR rewards, volunteers
  submit IPFS-pinned proof, and stakers govern the platform.

Contract addresses come from config.json, POI_CONTRACTS_* environment
variables, the legacy VITE_*_ADDRESS variables, or the deployment summary
written by ` + "`poi deploy`" + `.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		var err error
		cfg, err = config.Load(cfgDir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		level := cfg.LogLevel
		if verbose {
			level = "debug"
		}
		logger = logging.New(os.Stderr, level)

		if networkFlag != "" {
			cfg.Network = networkFlag
		}
		if nodeFlag != "" {
			cfg.NodeURL = nodeFlag
		}
		if walletFlag != "" {
			cfg.DefaultWallet = walletFlag
		}

		// A deployment summary fills whatever addresses are still unset.
		d, err := config.LoadDeployment(cfg.DeploymentFile)
		if err != nil {
			logger.Warn("ignoring deployment file", "path", cfg.DeploymentFile, "err", err)
		}
		cfg.ApplyDeployment(d)
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Err(err.Error()))
		os.Exit(1)
	}
}

func init() {
	// POI_CONFIG_DIR env var overrides the default config directory.
	if envDir := os.Getenv("POI_CONFIG_DIR"); envDir != "" {
		cfgDir = envDir
	}
	ui.Version = Version

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgDir, "config", cfgDir, "config directory (default: ~/.poi)")
	pf.StringVar(&networkFlag, "network", "", "network name (vechain-mainnet, vechain-testnet, vechain-solo)")
	pf.StringVar(&nodeFlag, "node", "", "Thor node URL, skipping node selection")
	pf.StringVarP(&walletFlag, "wallet", "w", "", "wallet name (default: configured default wallet)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(
		initCmd,
		networkCmd,
		nodeCmd,
		configCmd,
		walletCmd,
		contractsCmd,
		contractCmd,
		callCmd,
		sendCmd,
		txCmd,
		blockCmd,
		convertCmd,
		deployCmd,
		tokenCmd,
		faucetCmd,
		opportunityCmd,
		stakeCmd,
		delegationCmd,
		governanceCmd,
		ipfsCmd,
		leaderboardCmd,
		statsCmd,
		profileCmd,
	)
}
