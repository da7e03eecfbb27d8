package config

import "time"

// Gas ceiling attached to every clause batch the adapter submits. Thor
// refunds what is not used, so one generous ceiling covers every call.
const (
	DefaultGasLimit = uint64(1_000_000)
	GasLimitDeploy  = uint64(5_000_000) // contract creation clauses
	GasLimitBatch   = uint64(800_000)   // approve + create opportunity
)

// Receipt polling. 30 attempts spaced 2 s apart gives roughly a minute.
const (
	ReceiptPollInterval = 2 * time.Second
	ReceiptPollAttempts = 30
)

// Timeout constants used across cmd.
const (
	NodeSelectTimeout = 10 * time.Second // node benchmark / selection
	RequestTimeout    = 30 * time.Second // single read call or IPFS request
)

// Default locations relative to the working directory.
const (
	DefaultDeploymentFile = "src/contracts/deployment.json"
	DefaultArtifactsDir   = "artifacts/contracts"
)
