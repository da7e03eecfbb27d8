package wallet

import (
	"context"
	"crypto/ecdsa"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/proofofimpact/poi/internal/chain"
)

// Node is the part of a Thor node the signer talks to.
type Node interface {
	ChainTag(ctx context.Context) (byte, error)
	BestBlock(ctx context.Context) (*chain.Block, error)
	SendRaw(ctx context.Context, raw []byte) (string, error)
}

// Signer builds, signs and broadcasts Thor transactions for one key.
type Signer struct {
	key        *ecdsa.PrivateKey
	address    common.Address
	node       Node
	expiration uint32
	nonce      func() (uint64, error)

	mu       sync.Mutex
	chainTag *byte
}

// NewSigner signs with key and submits through node.
func NewSigner(key *ecdsa.PrivateKey, node Node) *Signer {
	return &Signer{
		key:        key,
		address:    crypto.PubkeyToAddress(key.PublicKey),
		node:       node,
		expiration: chain.DefaultExpiration,
		nonce:      randomNonce,
	}
}

// SignerFor loads the named wallet's key from m and returns a Signer for it.
func SignerFor(m *Manager, name string, node Node) (*Signer, error) {
	key, err := m.Key(name)
	if err != nil {
		return nil, err
	}
	return NewSigner(key, node), nil
}

// Address returns the signing account.
func (s *Signer) Address() common.Address { return s.address }

// Send packs clauses into one transaction anchored at the best block,
// signs and broadcasts it, and returns the id the node accepted.
func (s *Signer) Send(ctx context.Context, clauses []chain.Clause, gas uint64) (string, error) {
	tag, err := s.tag(ctx)
	if err != nil {
		return "", err
	}
	best, err := s.node.BestBlock(ctx)
	if err != nil {
		return "", fmt.Errorf("fetching best block: %w", err)
	}
	nonce, err := s.nonce()
	if err != nil {
		return "", err
	}

	tx := &chain.Tx{
		ChainTag:   tag,
		BlockRef:   best.Ref(),
		Expiration: s.expiration,
		Clauses:    clauses,
		Gas:        gas,
		Nonce:      nonce,
	}
	if err := tx.Sign(s.key); err != nil {
		return "", err
	}
	raw, err := tx.Encode()
	if err != nil {
		return "", err
	}
	want, err := tx.ID()
	if err != nil {
		return "", err
	}

	got, err := s.node.SendRaw(ctx, raw)
	if err != nil {
		return "", err
	}
	if got != "" && !strings.EqualFold(got, want) {
		return "", fmt.Errorf("node accepted tx %s, expected %s", got, want)
	}
	return got, nil
}

func (s *Signer) tag(ctx context.Context) (byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.chainTag != nil {
		return *s.chainTag, nil
	}
	tag, err := s.node.ChainTag(ctx)
	if err != nil {
		return 0, err
	}
	s.chainTag = &tag
	return tag, nil
}

func randomNonce() (uint64, error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("generating nonce: %w", err)
	}
	return binary.BigEndian.Uint64(b[:]), nil
}
