package config_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/proofofimpact/poi/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultConfig(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "vechain-testnet", cfg.Network)
	assert.Equal(t, config.DefaultGasLimit, cfg.GasLimit)
	assert.Equal(t, config.DefaultDeploymentFile, cfg.DeploymentFile)
	assert.Equal(t, "https://api.pinata.cloud", cfg.PinataAPIURL)
	assert.Equal(t, "https://gateway.pinata.cloud", cfg.IPFSGateway)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.PinataJWT)
	assert.Len(t, cfg.Contracts.Missing(), 6)
	assert.Equal(t, dir, cfg.Dir())
}

func TestSaveAndReloadConfig(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Load(dir)
	require.NoError(t, err)

	require.NoError(t, cfg.Update(func(c *config.Config) error {
		c.Network = "vechain-mainnet"
		c.DefaultWallet = "ngo"
		c.Contracts.Token = "0x0000000000000000000000000000000000000001"
		c.Contracts.FeeDelegation = "0x0000000000000000000000000000000000000005"
		return nil
	}))
	assert.Equal(t, "vechain-mainnet", cfg.Network)

	reloaded, err := config.Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "vechain-mainnet", reloaded.Network)
	assert.Equal(t, "ngo", reloaded.DefaultWallet)
	assert.Equal(t, "0x0000000000000000000000000000000000000001", reloaded.Contracts.Token)
	assert.Equal(t, "0x0000000000000000000000000000000000000005", reloaded.Contracts.FeeDelegation)
}

func TestSaveFilePermissions(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Load(dir)
	require.NoError(t, err)
	require.NoError(t, cfg.Update(func(*config.Config) error { return nil }))

	info, err := os.Stat(filepath.Join(dir, "config.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Load(dir)
	require.NoError(t, err)
	require.NoError(t, cfg.Update(func(c *config.Config) error {
		c.Network = "vechain-mainnet"
		return nil
	}))

	t.Setenv("POI_NETWORK", "vechain-solo")
	t.Setenv("POI_GAS_LIMIT", "2000000")

	reloaded, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "vechain-solo", reloaded.Network)
	assert.Equal(t, uint64(2_000_000), reloaded.GasLimit)
}

func TestLegacyEnvAddresses(t *testing.T) {
	t.Setenv("VITE_MOCKB3TR_ADDRESS", "0xaaaa000000000000000000000000000000000001")
	t.Setenv("VITE_GOVERNANCE_ADDRESS", "0xaaaa000000000000000000000000000000000006")
	t.Setenv("VITE_PINATA_JWT", "jwt-from-vite")

	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "0xaaaa000000000000000000000000000000000001", cfg.Contracts.Token)
	assert.Equal(t, "0xaaaa000000000000000000000000000000000006", cfg.Contracts.Governance)
	assert.Equal(t, "jwt-from-vite", cfg.PinataJWT)
	assert.Equal(t, []string{
		config.ContractReputation,
		config.ContractOpportunity,
		config.ContractStaking,
		config.ContractFeeDelegation,
	}, cfg.Contracts.Missing())
}

func TestPrefixedEnvWinsOverLegacy(t *testing.T) {
	t.Setenv("POI_CONTRACTS_STAKING", "0xbbbb000000000000000000000000000000000004")
	t.Setenv("VITE_STAKING_POOL_ADDRESS", "0xaaaa000000000000000000000000000000000004")

	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "0xbbbb000000000000000000000000000000000004", cfg.Contracts.Staking)
}

func TestLoadInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte("{not json"), 0o600))

	_, err := config.Load(dir)
	assert.Error(t, err)
}

// ---------------------------------------------------------------------------
// custom nodes
// ---------------------------------------------------------------------------

func TestAddCustomNode(t *testing.T) {
	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, cfg.AddNode("vechain-testnet", "https://node.example"))
	assert.Contains(t, cfg.GetNodes("vechain-testnet"), "https://node.example")
}

func TestAddDuplicateNodeErrors(t *testing.T) {
	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, cfg.AddNode("vechain-testnet", "https://node.example"))
	assert.Error(t, cfg.AddNode("vechain-testnet", "https://node.example"))
}

func TestRemoveCustomNode(t *testing.T) {
	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, cfg.AddNode("vechain-testnet", "https://node.example"))
	require.NoError(t, cfg.RemoveNode("vechain-testnet", "https://node.example"))
	assert.Empty(t, cfg.GetNodes("vechain-testnet"))
	assert.Error(t, cfg.RemoveNode("vechain-testnet", "https://node.example"))
}

// ---------------------------------------------------------------------------
// addresses
// ---------------------------------------------------------------------------

func TestCanonicalAliases(t *testing.T) {
	cases := map[string]string{
		"token":          config.ContractToken,
		"MockB3TR":       config.ContractToken,
		"b3tr":           config.ContractToken,
		"fee-delegation": config.ContractFeeDelegation,
		"fee_delegation": config.ContractFeeDelegation,
		"governance":     config.ContractGovernance,
		"stakingpool":    config.ContractStaking,
	}
	for in, want := range cases {
		got, ok := config.Canonical(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	_, ok := config.Canonical("bridge")
	assert.False(t, ok)
}

func TestAddressSetGetSet(t *testing.T) {
	var a config.AddressSet
	require.NoError(t, a.Set("opportunity", "0x03"))
	assert.Equal(t, "0x03", a.Opportunity)
	assert.Equal(t, "0x03", a.Get(config.ContractOpportunity))
	assert.Error(t, a.Set("bridge", "0x09"))
	assert.Empty(t, a.Get("bridge"))
}

func TestApplyDeploymentKeepsExplicitAddresses(t *testing.T) {
	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)
	cfg.Contracts.Token = "0xexplicit"

	cfg.ApplyDeployment(&config.Deployment{
		Contracts: config.DeployedContracts{
			MockB3TR:   "0xfromfile",
			Governance: "0x06",
		},
	})

	assert.Equal(t, "0xexplicit", cfg.Contracts.Token)
	assert.Equal(t, "0x06", cfg.Contracts.Governance)
}

func TestUpdateLeavesDeploymentAddressesOutOfFile(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Load(dir)
	require.NoError(t, err)
	cfg.ApplyDeployment(&config.Deployment{Contracts: config.DeployedContracts{MockB3TR: "0x1111111111111111111111111111111111111111"}})

	require.NoError(t, cfg.Update(func(c *config.Config) error {
		return c.AddNode("vechain-testnet", "http://127.0.0.1:1")
	}))
	assert.Equal(t, "0x1111111111111111111111111111111111111111", cfg.Contracts.Token)

	// A redeploy must win on the next run.
	reloaded, err := config.Load(dir)
	require.NoError(t, err)
	assert.Empty(t, reloaded.Contracts.Token)
	reloaded.ApplyDeployment(&config.Deployment{Contracts: config.DeployedContracts{MockB3TR: "0x2222222222222222222222222222222222222222"}})
	assert.Equal(t, "0x2222222222222222222222222222222222222222", reloaded.Contracts.Token)
	assert.Equal(t, []string{"http://127.0.0.1:1"}, reloaded.GetNodes("vechain-testnet"))
}

func TestUpdateLeavesEnvAndOverridesOutOfFile(t *testing.T) {
	t.Setenv("VITE_PINATA_JWT", "secret-jwt-from-env")
	dir := t.TempDir()
	cfg, err := config.Load(dir)
	require.NoError(t, err)
	require.Equal(t, "secret-jwt-from-env", cfg.PinataJWT)
	cfg.Network = "vechain-solo"
	cfg.DefaultWallet = "one-off"

	require.NoError(t, cfg.Update(func(c *config.Config) error {
		c.NodeAlgorithm = "failover"
		return nil
	}))
	assert.Equal(t, "failover", cfg.NodeAlgorithm)
	assert.Equal(t, "secret-jwt-from-env", cfg.PinataJWT)

	raw, err := os.ReadFile(filepath.Join(dir, "config.json"))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret-jwt-from-env")
	assert.NotContains(t, string(raw), "vechain-solo")
	assert.NotContains(t, string(raw), "one-off")
	assert.Contains(t, string(raw), "failover")
}

func TestUpdateEditErrorWritesNothing(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Load(dir)
	require.NoError(t, err)

	err = cfg.Update(func(c *config.Config) error {
		return c.RemoveNode("vechain-testnet", "http://missing")
	})
	assert.Error(t, err)
	_, statErr := os.Stat(filepath.Join(dir, "config.json"))
	assert.True(t, os.IsNotExist(statErr))
}

// ---------------------------------------------------------------------------
// deployment summary
// ---------------------------------------------------------------------------

func TestSaveDeploymentCreatesDirsAndKeepsKeyOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "src", "contracts", "deployment.json")
	set := config.AddressSet{
		Token: "0x01", Reputation: "0x02", Opportunity: "0x03",
		Staking: "0x04", FeeDelegation: "0x05", Governance: "0x06",
	}
	d := &config.Deployment{
		Network:    "vechain-testnet",
		DeployedAt: "2026-01-02T03:04:05.000Z",
		Contracts:  set.Deployed(),
		OracleNode: "0x0a",
	}
	require.NoError(t, config.SaveDeployment(path, d))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "\n  \"network\": \"vechain-testnet\"")

	var generic map[string]any
	require.NoError(t, json.Unmarshal(raw, &generic))
	assert.Equal(t, "0x0a", generic["oracleNode"])

	loaded, err := config.LoadDeployment(path)
	require.NoError(t, err)
	assert.Equal(t, set, loaded.Contracts.AddressSet())
}

func TestLoadDeploymentMissingFile(t *testing.T) {
	d, err := config.LoadDeployment(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.Nil(t, d)
}
