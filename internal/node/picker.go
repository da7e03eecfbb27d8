package node

import (
	"errors"
	"sync"
	"time"
)

// ErrNoHealthyNode is returned when no healthy node is available.
var ErrNoHealthyNode = errors.New("no healthy node available")

// Algorithm defines how a node is selected.
type Algorithm string

const (
	AlgorithmFastest    Algorithm = "fastest"
	AlgorithmRoundRobin Algorithm = "round-robin"
	AlgorithmFailover   Algorithm = "failover"

	// Discard nodes more than this many blocks behind the best.
	staleBlockThreshold = 3
)

// Endpoint is a node with its measured attributes.
type Endpoint struct {
	URL         string
	Latency     time.Duration
	BlockNumber uint64
	Healthy     bool // meaningful only when Checked == true
	Checked     bool
}

// Picker selects a node according to the configured algorithm.
type Picker struct {
	algo    Algorithm
	mu      sync.Mutex
	rrIndex int
}

// NewPicker creates a new Picker with the given algorithm.
func NewPicker(algo Algorithm) *Picker {
	return &Picker{algo: algo}
}

// Pick selects an endpoint from the provided list according to the algorithm.
func (p *Picker) Pick(endpoints []Endpoint) (*Endpoint, error) {
	if len(endpoints) == 0 {
		return nil, ErrNoHealthyNode
	}

	switch p.algo {
	case AlgorithmRoundRobin:
		return p.pickRoundRobin(endpoints)
	case AlgorithmFailover:
		return pickFailover(endpoints)
	default:
		return pickFastest(endpoints)
	}
}

// pickFastest selects the lowest-latency healthy node that is not stale.
func pickFastest(endpoints []Endpoint) (*Endpoint, error) {
	var bestBlock uint64
	for _, e := range endpoints {
		if e.BlockNumber > bestBlock {
			bestBlock = e.BlockNumber
		}
	}

	var winner *Endpoint
	for _, e := range candidates(endpoints) {
		if bestBlock > 0 && bestBlock-e.BlockNumber > staleBlockThreshold {
			continue
		}
		if winner == nil || e.Latency < winner.Latency {
			winner = e
		}
	}
	if winner == nil {
		return nil, ErrNoHealthyNode
	}
	return winner, nil
}

// pickRoundRobin cycles through all healthy endpoints.
func (p *Picker) pickRoundRobin(endpoints []Endpoint) (*Endpoint, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	healthy := candidates(endpoints)
	if len(healthy) == 0 {
		return nil, ErrNoHealthyNode
	}

	idx := p.rrIndex % len(healthy)
	p.rrIndex = (idx + 1) % len(healthy)
	return healthy[idx], nil
}

// pickFailover returns the first endpoint not known to be down.
func pickFailover(endpoints []Endpoint) (*Endpoint, error) {
	for i := range endpoints {
		e := &endpoints[i]
		if e.Checked && !e.Healthy {
			continue
		}
		return e, nil
	}
	return nil, ErrNoHealthyNode
}

// candidates returns endpoints eligible for selection. Unchecked endpoints
// are always eligible.
func candidates(endpoints []Endpoint) []*Endpoint {
	out := make([]*Endpoint, 0, len(endpoints))
	for i := range endpoints {
		e := &endpoints[i]
		if e.Checked && !e.Healthy {
			continue
		}
		out = append(out, e)
	}
	return out
}
