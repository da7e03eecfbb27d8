package wallet

import (
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// Wallet types.
const (
	TypeWatchOnly = "watch-only"
	TypeSigning   = "signing"
)

// ChainVeChain is the only chain type poi manages.
const ChainVeChain = "vechain"

// Errors.
var (
	ErrWalletNotFound = errors.New("wallet not found")
	ErrWalletExists   = errors.New("wallet already exists")
	ErrInvalidKey     = errors.New("invalid private key")
	ErrWatchOnly      = errors.New("wallet is watch-only")
)

// Wallet holds metadata for a single wallet. Keys live in the keystore;
// KeyRef points at them.
type Wallet struct {
	Name      string `json:"name"`
	Address   string `json:"address"`
	Type      string `json:"type"`
	KeyRef    string `json:"keyRef,omitempty"`
	ChainType string `json:"chainType"`
	IsDefault bool   `json:"isDefault,omitempty"`
	CreatedAt string `json:"createdAt"`
}

// Addr returns the wallet address parsed.
func (w *Wallet) Addr() common.Address {
	return common.HexToAddress(w.Address)
}

// CanSign reports whether the wallet has a stored key.
func (w *Wallet) CanSign() bool {
	return w.Type == TypeSigning && w.KeyRef != ""
}

// Store is an interface for persisting wallets.
type Store interface {
	Load() ([]*Wallet, error)
	Save([]*Wallet) error
}

// Manager handles wallet CRUD.
type Manager struct {
	store    Store
	keystore KeystoreBackend
	wallets  map[string]*Wallet
	loaded   bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithInMemoryStore keeps wallets and keys in memory.
func WithInMemoryStore() Option {
	return func(m *Manager) {
		m.store = &memStore{}
		m.keystore = NewInMemoryKeystore()
	}
}

// WithStore sets a custom store.
func WithStore(s Store) Option {
	return func(m *Manager) {
		m.store = s
	}
}

// WithKeystore sets where private keys are kept.
func WithKeystore(ks KeystoreBackend) Option {
	return func(m *Manager) {
		m.keystore = ks
	}
}

// NewManager creates a new wallet manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		wallets:  make(map[string]*Wallet),
		store:    &memStore{},
		keystore: NewInMemoryKeystore(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Keystore returns the backend holding private keys.
func (m *Manager) Keystore() KeystoreBackend { return m.keystore }

// Add registers a watch-only (or pre-built) wallet.
func (m *Manager) Add(name string, w *Wallet) error {
	if err := m.load(); err != nil {
		return err
	}
	if _, exists := m.wallets[name]; exists {
		return ErrWalletExists
	}
	if w.Name == "" {
		w.Name = name
	}
	if w.ChainType == "" {
		w.ChainType = ChainVeChain
	}
	if w.CreatedAt == "" {
		w.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	m.wallets[name] = w
	return m.persist()
}

// AddWatchOnly registers an address without a key.
func (m *Manager) AddWatchOnly(name, address string) error {
	if !common.IsHexAddress(address) {
		return fmt.Errorf("invalid address %q", address)
	}
	return m.Add(name, &Wallet{
		Name:    name,
		Address: common.HexToAddress(address).Hex(),
		Type:    TypeWatchOnly,
	})
}

// AddWithKey derives the address from a hex private key and stores the key
// in the keystore.
func (m *Manager) AddWithKey(name, hexKey string) error {
	if err := m.load(); err != nil {
		return err
	}
	if _, exists := m.wallets[name]; exists {
		return ErrWalletExists
	}

	privKey, err := crypto.HexToECDSA(normaliseHexKey(hexKey))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	_, err = m.addKey(name, privKey)
	return err
}

// Generate creates a fresh key, stores it and returns the wallet plus the
// 0x-prefixed hex key so the caller can show it once.
func (m *Manager) Generate(name string) (*Wallet, string, error) {
	if err := m.load(); err != nil {
		return nil, "", err
	}
	if _, exists := m.wallets[name]; exists {
		return nil, "", ErrWalletExists
	}

	privKey, err := crypto.GenerateKey()
	if err != nil {
		return nil, "", fmt.Errorf("generating key: %w", err)
	}
	w, err := m.addKey(name, privKey)
	if err != nil {
		return nil, "", err
	}
	return w, hexutil.Encode(crypto.FromECDSA(privKey)), nil
}

func (m *Manager) addKey(name string, privKey *ecdsa.PrivateKey) (*Wallet, error) {
	ref, err := m.keystore.Store(name, hexutil.Encode(crypto.FromECDSA(privKey)))
	if err != nil {
		return nil, fmt.Errorf("storing key: %w", err)
	}

	w := &Wallet{
		Name:      name,
		Address:   crypto.PubkeyToAddress(privKey.PublicKey).Hex(),
		Type:      TypeSigning,
		KeyRef:    ref,
		ChainType: ChainVeChain,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	m.wallets[name] = w
	if err := m.persist(); err != nil {
		return nil, err
	}
	return w, nil
}

// ExportKey returns the wallet's private key as 0x-prefixed hex.
func (m *Manager) ExportKey(name string) (string, error) {
	key, err := m.Key(name)
	if err != nil {
		return "", err
	}
	return hexutil.Encode(crypto.FromECDSA(key)), nil
}

// Key loads the wallet's private key and checks that it still matches the
// recorded address.
func (m *Manager) Key(name string) (*ecdsa.PrivateKey, error) {
	w, err := m.Get(name)
	if err != nil {
		return nil, err
	}
	if !w.CanSign() {
		return nil, fmt.Errorf("%w: %s", ErrWatchOnly, name)
	}
	hexKey, err := m.keystore.Retrieve(w.KeyRef)
	if err != nil {
		return nil, err
	}
	key, err := crypto.HexToECDSA(normaliseHexKey(hexKey))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	if crypto.PubkeyToAddress(key.PublicKey) != w.Addr() {
		return nil, fmt.Errorf("%w: stored key does not match %s", ErrInvalidKey, w.Address)
	}
	return key, nil
}

// Get returns a wallet by name.
func (m *Manager) Get(name string) (*Wallet, error) {
	if err := m.load(); err != nil {
		return nil, err
	}
	w, ok := m.wallets[name]
	if !ok {
		return nil, ErrWalletNotFound
	}
	return w, nil
}

// Remove deletes a wallet and its stored key.
func (m *Manager) Remove(name string) error {
	if err := m.load(); err != nil {
		return err
	}
	w, ok := m.wallets[name]
	if !ok {
		return ErrWalletNotFound
	}
	if w.KeyRef != "" {
		if err := m.keystore.Delete(w.KeyRef); err != nil {
			return err
		}
	}
	delete(m.wallets, name)
	return m.persist()
}

// List returns all wallets sorted by name.
func (m *Manager) List() []*Wallet {
	m.load() //nolint:errcheck
	out := make([]*Wallet, 0, len(m.wallets))
	for _, w := range m.wallets {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// SetDefault marks a wallet as the default.
func (m *Manager) SetDefault(name string) error {
	if err := m.load(); err != nil {
		return err
	}
	if _, ok := m.wallets[name]; !ok {
		return ErrWalletNotFound
	}
	for _, w := range m.wallets {
		w.IsDefault = w.Name == name
	}
	return m.persist()
}

// Default returns the default wallet, or nil if none.
func (m *Manager) Default() *Wallet {
	m.load() //nolint:errcheck
	for _, w := range m.wallets {
		if w.IsDefault {
			return w
		}
	}
	// A lone wallet is the default.
	if len(m.wallets) == 1 {
		for _, w := range m.wallets {
			return w
		}
	}
	return nil
}

// --- internal ---

func (m *Manager) load() error {
	if m.loaded {
		return nil
	}
	wallets, err := m.store.Load()
	if err != nil {
		return err
	}
	for _, w := range wallets {
		m.wallets[w.Name] = w
	}
	m.loaded = true
	return nil
}

func (m *Manager) persist() error {
	return m.store.Save(m.List())
}

// --- in-memory store ---

type memStore struct {
	wallets []*Wallet
}

func (s *memStore) Load() ([]*Wallet, error) {
	return s.wallets, nil
}

func (s *memStore) Save(wallets []*Wallet) error {
	s.wallets = wallets
	return nil
}

// --- JSON file store ---

// JSONStore persists wallets to a JSON file.
type JSONStore struct {
	path string
}

// NewJSONStore creates a JSON-backed wallet store.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

func (s *JSONStore) Load() ([]*Wallet, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var wallets []*Wallet
	if err := json.Unmarshal(data, &wallets); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", s.path, err)
	}
	return wallets, nil
}

func (s *JSONStore) Save(wallets []*Wallet) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(wallets, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}
