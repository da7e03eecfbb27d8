package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/viper"
)

const (
	defaultNetwork   = "vechain-testnet"
	defaultLogLevel  = "info"
	defaultAlgorithm = "fastest"
	defaultPinata    = "https://api.pinata.cloud"
	defaultGateway   = "https://gateway.pinata.cloud"

	configFile  = "config.json"
	walletsFile = "wallets.json"

	envPrefix = "POI"
)

// Config holds all poi configuration. It is built once by Load and handed
// to whatever constructs clients and contract bindings.
type Config struct {
	Network        string              `json:"network"                  mapstructure:"network"`
	NodeURL        string              `json:"node_url,omitempty"       mapstructure:"node_url"`       // overrides node selection
	NodeAlgorithm  string              `json:"node_algorithm"           mapstructure:"node_algorithm"` // "fastest" | "round-robin" | "failover"
	DefaultWallet  string              `json:"default_wallet"           mapstructure:"default_wallet"`
	Contracts      AddressSet          `json:"contracts"                mapstructure:"contracts"`
	CustomNodes    map[string][]string `json:"custom_nodes"             mapstructure:"custom_nodes"`
	PinataJWT      string              `json:"pinata_jwt,omitempty"     mapstructure:"pinata_jwt"`
	PinataAPIURL   string              `json:"pinata_api_url"           mapstructure:"pinata_api_url"`
	IPFSGateway    string              `json:"ipfs_gateway"             mapstructure:"ipfs_gateway"`
	GasLimit       uint64              `json:"gas_limit"                mapstructure:"gas_limit"`
	DeploymentFile string              `json:"deployment_file"          mapstructure:"deployment_file"`
	ArtifactsDir   string              `json:"artifacts_dir"            mapstructure:"artifacts_dir"`
	LogLevel       string              `json:"log_level"                mapstructure:"log_level"`

	// internal: config dir path used for Save()
	configDir string
}

// legacyEnv maps config keys onto the environment names the web frontend
// used, so an existing .env keeps working.
var legacyEnv = map[string]string{
	"contracts.token":          "VITE_MOCKB3TR_ADDRESS",
	"contracts.reputation":     "VITE_REPUTATION_NFT_ADDRESS",
	"contracts.opportunity":    "VITE_OPPORTUNITY_CONTRACT_ADDRESS",
	"contracts.staking":        "VITE_STAKING_POOL_ADDRESS",
	"contracts.fee_delegation": "VITE_FEE_DELEGATION_ADDRESS",
	"contracts.governance":     "VITE_GOVERNANCE_ADDRESS",
	"pinata_jwt":               "VITE_PINATA_JWT",
}

// Load reads config from dir (or creates defaults). dir defaults to ~/.poi.
// Values are layered: defaults, then config.json, then POI_* environment
// variables (and the legacy VITE_* names for addresses and the Pinata JWT).
func Load(dir string) (*Config, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("could not determine home dir: %w", err)
		}
		dir = filepath.Join(home, ".poi")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("could not create config dir: %w", err)
	}
	return read(dir, true)
}

// read decodes defaults and config.json, plus the environment when env is
// set. Without env the result is exactly what the file stores.
func read(dir string, env bool) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if env {
		v.SetEnvPrefix(envPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()
		for key, legacy := range legacyEnv {
			envName := envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
			if err := v.BindEnv(key, envName, legacy); err != nil {
				return nil, fmt.Errorf("binding %s: %w", key, err)
			}
		}
	}

	path := filepath.Join(dir, configFile)
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("json")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	cfg.configDir = dir
	if cfg.CustomNodes == nil {
		cfg.CustomNodes = make(map[string][]string)
	}
	return cfg, nil
}

// Update applies edit to the values stored in config.json and saves them,
// then applies the same edit to c. Environment variables, command-line
// overrides and deployment addresses live only on c and are never written.
func (c *Config) Update(edit func(*Config) error) error {
	stored, err := read(c.configDir, false)
	if err != nil {
		return err
	}
	if err := edit(stored); err != nil {
		return err
	}
	if err := edit(c); err != nil {
		return err
	}
	return stored.write()
}

func (c *Config) write() error {
	if err := os.MkdirAll(c.configDir, 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.configDir, configFile), data, 0o600)
}

// AddNode adds a custom node URL for a network.
func (c *Config) AddNode(network, url string) error {
	if c.CustomNodes == nil {
		c.CustomNodes = make(map[string][]string)
	}
	if slices.Contains(c.CustomNodes[network], url) {
		return fmt.Errorf("node %s already exists for network %s", url, network)
	}
	c.CustomNodes[network] = append(c.CustomNodes[network], url)
	return nil
}

// RemoveNode removes a custom node URL for a network.
func (c *Config) RemoveNode(network, url string) error {
	nodes := c.CustomNodes[network]
	idx := slices.Index(nodes, url)
	if idx == -1 {
		return fmt.Errorf("node %s not found for network %s", url, network)
	}
	c.CustomNodes[network] = slices.Delete(nodes, idx, idx+1)
	return nil
}

// GetNodes returns custom node URLs for a network.
func (c *Config) GetNodes(network string) []string {
	return c.CustomNodes[network]
}

// ApplyDeployment fills every address not already configured from d.
// Explicit configuration always wins over a deployment file.
func (c *Config) ApplyDeployment(d *Deployment) {
	if d == nil {
		return
	}
	from := d.Contracts.AddressSet()
	for _, name := range Names {
		if c.Contracts.Get(name) == "" && from.Get(name) != "" {
			_ = c.Contracts.Set(name, from.Get(name))
		}
	}
}

// Dir returns the config directory.
func (c *Config) Dir() string {
	return c.configDir
}

// WalletsPath is the JSON file the wallet manager persists to.
func (c *Config) WalletsPath() string {
	return filepath.Join(c.configDir, walletsFile)
}

// --- helpers ---

func setDefaults(v *viper.Viper) {
	v.SetDefault("network", defaultNetwork)
	v.SetDefault("node_url", "")
	v.SetDefault("node_algorithm", defaultAlgorithm)
	v.SetDefault("default_wallet", "")
	v.SetDefault("pinata_jwt", "")
	v.SetDefault("pinata_api_url", defaultPinata)
	v.SetDefault("ipfs_gateway", defaultGateway)
	v.SetDefault("gas_limit", DefaultGasLimit)
	v.SetDefault("deployment_file", DefaultDeploymentFile)
	v.SetDefault("artifacts_dir", DefaultArtifactsDir)
	v.SetDefault("log_level", defaultLogLevel)
	v.SetDefault("custom_nodes", map[string][]string{})
	// Every address key needs a default so AutomaticEnv can see it.
	for _, key := range addressKeys {
		v.SetDefault("contracts."+key, "")
	}
}
