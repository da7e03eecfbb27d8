package wallet

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/99designs/keyring"
)

const keychainService = "poi"

// KeyEnvPrefix names the environment override for a signing key: the key for
// wallet "ngo-admin" is read from POI_KEY_NGO_ADMIN when that is set.
const KeyEnvPrefix = "POI_KEY_"

// KeystoreBackend stores private keys out of the wallet metadata file.
type KeystoreBackend interface {
	Store(name, hexKey string) (string, error)
	Retrieve(ref string) (string, error)
	Delete(ref string) error
}

// Keystore wraps OS keychain access.
type Keystore struct {
	ring keyring.Keyring
}

// DefaultKeystore returns a keystore backed by the OS keychain. dir holds the
// encrypted file backend used on headless Linux.
func DefaultKeystore(dir string) *Keystore {
	cfg := keyring.Config{
		ServiceName:              keychainService,
		KeychainTrustApplication: true,
		FileDir:                  dir,
		FilePasswordFunc:         filePassword,
	}

	if runtime.GOOS == "linux" {
		cfg.AllowedBackends = []keyring.BackendType{
			keyring.SecretServiceBackend,
			keyring.KWalletBackend,
			keyring.FileBackend,
		}
	}

	ring, err := keyring.Open(cfg)
	if err != nil {
		ring, _ = keyring.Open(keyring.Config{
			ServiceName:      keychainService,
			AllowedBackends:  []keyring.BackendType{keyring.FileBackend},
			FileDir:          dir,
			FilePasswordFunc: filePassword,
		})
	}

	return &Keystore{ring: ring}
}

// filePassword reads the file-backend passphrase from POI_KEYRING_PASSWORD,
// falling back to the keyring's terminal prompt.
func filePassword(prompt string) (string, error) {
	if pw := os.Getenv("POI_KEYRING_PASSWORD"); pw != "" {
		return pw, nil
	}
	return keyring.TerminalPrompt(prompt)
}

// Store saves a private key for a wallet name and returns a reference key.
func (k *Keystore) Store(name, hexKey string) (string, error) {
	ref := keyRef(name)
	if k.ring == nil {
		return "", fmt.Errorf("keystore not available")
	}
	err := k.ring.Set(keyring.Item{
		Key:   ref,
		Data:  []byte(normaliseHexKey(hexKey)),
		Label: "poi wallet " + name,
	})
	if err != nil {
		return "", fmt.Errorf("keychain store: %w", err)
	}
	return ref, nil
}

// Retrieve fetches a private key by its reference. An environment override
// wins over the keychain.
func (k *Keystore) Retrieve(ref string) (string, error) {
	if v, ok := envKey(ref); ok {
		return v, nil
	}
	if k.ring == nil {
		return "", fmt.Errorf("keystore not available")
	}
	item, err := k.ring.Get(ref)
	if err != nil {
		return "", fmt.Errorf("keychain retrieve: %w", err)
	}
	return normaliseHexKey(string(item.Data)), nil
}

// Delete removes a stored key.
func (k *Keystore) Delete(ref string) error {
	if k.ring == nil {
		return nil
	}
	if err := k.ring.Remove(ref); err != nil && err != keyring.ErrKeyNotFound {
		return fmt.Errorf("keychain delete: %w", err)
	}
	return nil
}

// InMemoryKeystore keeps keys in process memory.
type InMemoryKeystore struct {
	mu   sync.Mutex
	data map[string]string
}

// NewInMemoryKeystore creates an in-memory keystore.
func NewInMemoryKeystore() *InMemoryKeystore {
	return &InMemoryKeystore{data: make(map[string]string)}
}

func (k *InMemoryKeystore) Store(name, hexKey string) (string, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	ref := keyRef(name)
	k.data[ref] = normaliseHexKey(hexKey)
	return ref, nil
}

func (k *InMemoryKeystore) Retrieve(ref string) (string, error) {
	if v, ok := envKey(ref); ok {
		return v, nil
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	v, ok := k.data[ref]
	if !ok {
		return "", fmt.Errorf("key not found: %s", ref)
	}
	return v, nil
}

func (k *InMemoryKeystore) Delete(ref string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	delete(k.data, ref)
	return nil
}

func keyRef(name string) string {
	return keychainService + "." + name
}

// envKey resolves the POI_KEY_<NAME> override for a key reference.
func envKey(ref string) (string, bool) {
	name := strings.TrimPrefix(ref, keychainService+".")
	name = strings.ToUpper(strings.NewReplacer("-", "_", ".", "_", " ", "_").Replace(name))
	v := os.Getenv(KeyEnvPrefix + name)
	if v == "" {
		return "", false
	}
	return normaliseHexKey(v), true
}

func normaliseHexKey(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && (s[:2] == "0x" || s[:2] == "0X") {
		return s[2:]
	}
	return s
}
