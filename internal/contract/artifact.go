package contract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/proofofimpact/poi/internal/chain"
)

// Artifact is a compiled contract: its ABI and creation bytecode.
type Artifact struct {
	Name     string
	ABI      abi.ABI
	Bytecode []byte
}

// ParseABI parses a raw ABI JSON array.
func ParseABI(data []byte) (abi.ABI, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		return abi.ABI{}, fmt.Errorf("expected an ABI array, got a JSON object; artifacts must carry an \"abi\" key")
	}
	parsed, err := abi.JSON(bytes.NewReader(data))
	if err != nil {
		return abi.ABI{}, fmt.Errorf("invalid ABI JSON: %w", err)
	}
	if len(parsed.Methods) == 0 && len(parsed.Events) == 0 && len(parsed.Constructor.Inputs) == 0 {
		return abi.ABI{}, fmt.Errorf("ABI has no functions or events")
	}
	return parsed, nil
}

// LoadABIFile loads an ABI from a raw ABI array or a Hardhat/Foundry
// artifact; both formats are detected automatically.
func LoadABIFile(path string) (abi.ABI, error) {
	_, parsed, err := ReadABIFile(path)
	return parsed, err
}

// ReadABIFile is LoadABIFile that also returns the ABI array as it appeared
// in the file.
func ReadABIFile(path string) (json.RawMessage, abi.ABI, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, abi.ABI{}, fmt.Errorf("cannot read ABI file: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, abi.ABI{}, fmt.Errorf("ABI file is empty: %s", path)
	}

	var art struct {
		ABI json.RawMessage `json:"abi"`
	}
	if json.Unmarshal(data, &art) == nil && len(art.ABI) > 1 && art.ABI[0] == '[' {
		data = art.ABI
	}
	parsed, err := ParseABI(data)
	if err != nil {
		return nil, abi.ABI{}, fmt.Errorf("%s: %w", path, err)
	}
	return json.RawMessage(bytes.TrimSpace(data)), parsed, nil
}

// LoadArtifact reads a Hardhat or Foundry artifact that carries bytecode.
func LoadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read artifact file: %w", err)
	}

	var raw struct {
		ContractName string          `json:"contractName"`
		ABI          json.RawMessage `json:"abi"`
		Bytecode     json.RawMessage `json:"bytecode"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid artifact JSON %s: %w", path, err)
	}
	if len(raw.ABI) < 2 || raw.ABI[0] != '[' {
		return nil, fmt.Errorf("artifact has no \"abi\" array: %s", path)
	}
	parsed, err := ParseABI(raw.ABI)
	if err != nil {
		return nil, fmt.Errorf("parsing artifact ABI %s: %w", path, err)
	}

	if len(raw.Bytecode) == 0 {
		return nil, fmt.Errorf("artifact has no bytecode (interface or abstract contract?): %s", path)
	}
	bcHex, err := extractBytecodeHex(raw.Bytecode)
	if err != nil {
		return nil, fmt.Errorf("extracting bytecode from %s: %w", path, err)
	}
	if bcHex == "" || bcHex == "0x" {
		return nil, fmt.Errorf("artifact bytecode is empty (interface or abstract contract?): %s", path)
	}
	if !strings.HasPrefix(bcHex, "0x") {
		bcHex = "0x" + bcHex
	}
	code, err := hexutil.Decode(bcHex)
	if err != nil {
		return nil, fmt.Errorf("invalid bytecode hex in %s: %w", path, err)
	}

	name := raw.ContractName
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return &Artifact{Name: name, ABI: parsed, Bytecode: code}, nil
}

// DeployData is the creation bytecode followed by the packed constructor
// arguments.
func (a *Artifact) DeployData(args ...any) ([]byte, error) {
	packed, err := a.ABI.Pack("", args...)
	if err != nil {
		return nil, fmt.Errorf("encoding %s constructor arguments: %w", a.Name, err)
	}
	out := make([]byte, 0, len(a.Bytecode)+len(packed))
	out = append(out, a.Bytecode...)
	return append(out, packed...), nil
}

// DeployClause is the contract-creation clause for the artifact.
func (a *Artifact) DeployClause(args ...any) (chain.Clause, error) {
	data, err := a.DeployData(args...)
	if err != nil {
		return chain.Clause{}, err
	}
	return chain.Clause{To: nil, Data: data}, nil
}

// extractBytecodeHex handles the two common artifact formats:
//   - Hardhat:  "bytecode": "0x608060..."
//   - Foundry:  "bytecode": {"object": "0x608060..."}
func extractBytecodeHex(raw json.RawMessage) (string, error) {
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return strings.TrimSpace(str), nil
	}

	var obj struct {
		Object string `json:"object"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Object != "" {
		return strings.TrimSpace(obj.Object), nil
	}

	return "", fmt.Errorf("bytecode field is neither a hex string nor a {\"object\":\"0x...\"} object")
}
