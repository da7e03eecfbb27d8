package cmd

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/proofofimpact/poi/internal/config"
	"github.com/proofofimpact/poi/internal/deploy"
	"github.com/proofofimpact/poi/internal/ui"
)

var (
	deployArtifacts   string
	deployOut         string
	deployOracle      string
	deployMetadataURI string
	deployYes         bool
)

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Deploy the six platform contracts",
	Long: `Deploy MockB3TR, ReputationNFT, OpportunityContract, StakingPool,
FeeDelegationManager and Governance from compiled artifacts, wire the
reputation NFT to the opportunity contract and write a deployment summary.

Each step waits for its receipt. A failed step stops the run and no summary
is written.

Examples:
  poi deploy --network vechain-testnet
  poi deploy --artifacts build/contracts --oracle 0xOracle --yes`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var oracle common.Address
		if deployOracle != "" {
			a, err := parseAddress(deployOracle)
			if err != nil {
				return fmt.Errorf("invalid --oracle: %w", err)
			}
			oracle = a
		}
		dir := orDefault(deployArtifacts, cfg.ArtifactsDir)
		out := orDefault(deployOut, cfg.DeploymentFile)

		s, err := newSession(cmd.Context(), true)
		if err != nil {
			return err
		}
		oracleLabel := "deployer"
		if oracle != (common.Address{}) {
			oracleLabel = oracle.Hex()
		}
		fmt.Println(ui.KeyValueBlock("Deployment", [][2]string{
			{"Network", ui.NetworkName(s.network.Name)},
			{"Deployer", ui.Addr(s.account().Hex())},
			{"Oracle", ui.Addr(oracleLabel)},
			{"Artifacts", dir},
			{"Summary", out},
		}))
		if !s.network.Testnet {
			fmt.Println(ui.DangerBox("Deploying to " + s.network.DisplayName + " spends real VTHO."))
		}
		if !deployYes && !ui.Confirm("Deploy all contracts?") {
			fmt.Println(ui.Meta("Cancelled."))
			return nil
		}

		d := &deploy.Deployer{
			Provider:    s.provider,
			Artifacts:   deploy.DirArtifacts(dir),
			Oracle:      oracle,
			MetadataURI: deployMetadataURI,
			Network:     s.network.Name,
			Out:         out,
			Logger:      logger,
		}
		// Steps are reported through the logger, so no spinner here.
		summary, err := d.Run(cmd.Context())
		if err != nil {
			return err
		}

		addrs := summary.Contracts.AddressSet()
		t := ui.NewTable([]ui.Column{
			{Title: "Contract", Width: 22},
			{Title: "Address", Width: 44},
		})
		for _, name := range config.Names {
			t.AddRow(ui.Row{name, ui.Addr(addrs.Get(name))})
		}
		fmt.Println(t.Render())
		fmt.Println(ui.Success("Deployment saved to " + out))
		fmt.Println(ui.Hint("poi contracts  shows the addresses the CLI will use"))
		return nil
	},
}

func orDefault(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

func init() {
	f := deployCmd.Flags()
	f.StringVar(&deployArtifacts, "artifacts", "", "directory of compiled <Name>.json artifacts (default from config)")
	f.StringVar(&deployOut, "out", "", "where to write the deployment summary (default from config)")
	f.StringVar(&deployOracle, "oracle", "", "oracle address (default: the deploying account)")
	f.StringVar(&deployMetadataURI, "metadata-uri", "", "reputation NFT metadata URI")
	f.BoolVarP(&deployYes, "yes", "y", false, "skip the confirmation prompt")
}
