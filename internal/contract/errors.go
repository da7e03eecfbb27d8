package contract

import (
	"errors"
	"fmt"
	"time"

	"github.com/proofofimpact/poi/internal/chain"
)

// Names of the session dependencies a ConfigError can report.
const (
	MissingSigner = "transaction signer"
	MissingQuery  = "query interface"
)

var (
	// ErrRejected is returned when the signer hands back no transaction id,
	// which is how a declined signing prompt surfaces.
	ErrRejected = errors.New("transaction was rejected or cancelled")
	// ErrReverted matches any RevertedError.
	ErrReverted = errors.New("transaction reverted on chain")
	// ErrTimeout matches any TimeoutError.
	ErrTimeout = errors.New("transaction confirmation timed out")
	// ErrUnknownFunction is returned for names the ABI does not define.
	ErrUnknownFunction = errors.New("function not in ABI")
)

// ConfigError reports a session dependency that is not wired up. It is
// returned before any network traffic.
type ConfigError struct {
	Missing string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("wallet session not initialized: no %s", e.Missing)
}

// RevertedError is returned when a transaction was mined but reverted.
type RevertedError struct {
	TxID    string
	Receipt *chain.Receipt
}

func (e *RevertedError) Error() string {
	return fmt.Sprintf("%s (tx %s)", ErrReverted, e.TxID)
}

func (e *RevertedError) Unwrap() error { return ErrReverted }

// TimeoutError is returned when no receipt appeared within the polling budget.
type TimeoutError struct {
	TxID        string
	Attempts    int
	Interval    time.Duration
	ExplorerURL string
}

func (e *TimeoutError) Error() string {
	msg := fmt.Sprintf("transaction %s not confirmed after %d attempts (%s): please check the VeChain explorer",
		e.TxID, e.Attempts, time.Duration(e.Attempts)*e.Interval)
	if e.ExplorerURL != "" {
		msg += " at " + e.ExplorerURL
	}
	return msg
}

func (e *TimeoutError) Unwrap() error { return ErrTimeout }

// CallRevertedError is returned when a read call reverts inside the VM.
type CallRevertedError struct {
	Method  string
	VMError string
	Reason  string // decoded Error(string) payload, if any
}

func (e *CallRevertedError) Error() string {
	msg := fmt.Sprintf("call %s reverted", e.Method)
	if e.Reason != "" {
		return msg + ": " + e.Reason
	}
	if e.VMError != "" {
		return msg + ": " + e.VMError
	}
	return msg
}
